package service

import "sort"

// QualificationRule gates entry into the competitive cohort. Zero-valued
// minimums impose no floor beyond having any recorded activity; the two
// non-trivial shapes in use are minimum total completions (all-time views)
// and minimum days worked (fixed-length period views).
type QualificationRule struct {
	MinTotalCount int
	MinDaysWorked int
}

// Qualifies applies the rule to one scorecard.
func (r QualificationRule) Qualifies(card AgentScorecard) bool {
	if card.TotalCount == 0 {
		return false
	}
	return card.TotalCount >= r.MinTotalCount && card.DaysWorked >= r.MinDaysWorked
}

// PartitionConfig carries the exemption and restriction inputs as explicit
// configuration rather than package-level state.
type PartitionConfig struct {
	// ExemptAgentIDs lists long-tenured agents reported but excluded from
	// competitive ranking.
	ExemptAgentIDs map[string]struct{}
	// RestrictedOnly marks agents whose roster capability assignment is
	// limited to the restricted category. This is an explicit attribute, not
	// inferred from which categories appear in completed items.
	RestrictedOnly map[string]struct{}
}

// Partition splits one window's scorecards into competitive, exempt and
// unqualified sets. Restricted-only agents whose window activity is entirely
// in the restricted category, with no board activity, are removed from all
// three sets: they belong to a separately reported leaderboard.
// Output ordering is deterministic (agent ID ascending) regardless of input
// order. An empty competitive set is a valid result meaning no ranking is
// possible.
func Partition(cards []AgentScorecard, rule QualificationRule, cfg PartitionConfig) Cohort {
	sorted := make([]AgentScorecard, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AgentID < sorted[j].AgentID })

	var cohort Cohort
	for _, card := range sorted {
		if _, restricted := cfg.RestrictedOnly[card.AgentID]; restricted &&
			card.ExternalCount == 0 && card.ItemCount == card.RestrictedItemCount {
			continue
		}

		if _, exempt := cfg.ExemptAgentIDs[card.AgentID]; exempt {
			card.IsExempt = true
			cohort.Exempt = append(cohort.Exempt, card)
			continue
		}

		if !rule.Qualifies(card) {
			cohort.Unqualified = append(cohort.Unqualified, card)
			continue
		}

		card.IsQualified = true
		cohort.Competitive = append(cohort.Competitive, card)
	}
	return cohort
}
