package service

import (
	"math"
	"sort"
)

// TierRule assigns a tier when either the percentile or the absolute hybrid
// score clears its threshold.
type TierRule struct {
	Name          string
	MinPercentile int
	MinScore      float64
}

// TierThresholds is evaluated most to least exclusive; first match wins.
type TierThresholds []TierRule

// DefaultTierThresholds returns the standard bands. The Elite score branch
// sits above the 100-point cap the normalization imposes; it is kept as
// configuration so a future cap change makes it reachable.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{
		{Name: TierElite, MinPercentile: 90, MinScore: 120},
		{Name: TierHighPerformer, MinPercentile: 75, MinScore: 100},
		{Name: TierOnTrack, MinPercentile: 50, MinScore: 80},
	}
}

// TierFor resolves the tier label for one ranked agent.
func (t TierThresholds) TierFor(percentile int, hybridScore float64) string {
	for _, rule := range t {
		if percentile >= rule.MinPercentile || hybridScore >= rule.MinScore {
			return rule.Name
		}
	}
	return TierNeedsSupport
}

// Rank orders a scored cohort by hybrid score descending and assigns dense
// ranks 1..N, percentiles and tiers. Ties break by agent ID ascending so the
// ordering is deterministic. Independent secondary rankings by items per day
// and weighted points per day are assigned without disturbing the primary
// order. An empty cohort returns an empty slice.
func Rank(scored []RankedAgent, tiers TierThresholds) []RankedAgent {
	if len(scored) == 0 {
		return []RankedAgent{}
	}

	ranked := make([]RankedAgent, len(scored))
	copy(ranked, scored)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].HybridScore != ranked[j].HybridScore {
			return ranked[i].HybridScore > ranked[j].HybridScore
		}
		return ranked[i].AgentID < ranked[j].AgentID
	})

	n := len(ranked)
	for i := range ranked {
		ranked[i].RankByHybrid = i + 1
		ranked[i].Percentile = percentile(i+1, n)
		ranked[i].Tier = tiers.TierFor(ranked[i].Percentile, ranked[i].HybridScore)
	}

	assignSecondaryRank(ranked, func(ra RankedAgent) float64 { return ra.ItemsPerDay },
		func(ra *RankedAgent, rank int) { ra.RankByItemsPerDay = rank })
	assignSecondaryRank(ranked, func(ra RankedAgent) float64 { return ra.WeightedPointsPerDay },
		func(ra *RankedAgent, rank int) { ra.RankByPointsPerDay = rank })

	return ranked
}

func percentile(rank, n int) int {
	return int(math.Round(float64(n-rank) / float64(n) * 100))
}

// assignSecondaryRank ranks the cohort by one metric descending (agent ID
// tie-break) and writes the rank back into the primary-ordered slice.
func assignSecondaryRank(ranked []RankedAgent, metric func(RankedAgent) float64, set func(*RankedAgent, int)) {
	order := make([]int, len(ranked))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if metric(ranked[i]) != metric(ranked[j]) {
			return metric(ranked[i]) > metric(ranked[j])
		}
		return ranked[i].AgentID < ranked[j].AgentID
	})
	for pos, idx := range order {
		set(&ranked[idx], pos+1)
	}
}
