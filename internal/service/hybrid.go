package service

// Default hybrid split. The composite deliberately weights difficulty-adjusted
// throughput over raw item count because categories vary enormously in effort.
const (
	defaultVolumeWeight     = 0.30
	defaultComplexityWeight = 0.70
)

// HybridWeights is the tunable volume/complexity split of the composite
// score. It is injected configuration, never hard-coded at call sites.
type HybridWeights struct {
	Volume     float64
	Complexity float64
}

// DefaultHybridWeights returns the standard 30/70 split.
func DefaultHybridWeights() HybridWeights {
	return HybridWeights{Volume: defaultVolumeWeight, Complexity: defaultComplexityWeight}
}

// ScoreCohort min-max normalizes the two rate metrics within the competitive
// cohort and combines them into a hybrid score in [0, 100]. The cohort leader
// holds 100 on at least one axis by construction. An empty cohort yields an
// empty result.
func ScoreCohort(competitive []AgentScorecard, w HybridWeights) []RankedAgent {
	if len(competitive) == 0 {
		return []RankedAgent{}
	}

	var maxItems, maxPoints float64
	for _, card := range competitive {
		if card.ItemsPerDay > maxItems {
			maxItems = card.ItemsPerDay
		}
		if card.WeightedPointsPerDay > maxPoints {
			maxPoints = card.WeightedPointsPerDay
		}
	}

	scored := make([]RankedAgent, 0, len(competitive))
	for _, card := range competitive {
		ra := RankedAgent{AgentScorecard: card}
		if maxItems > 0 {
			ra.VolumeScore = card.ItemsPerDay / maxItems * 100
		}
		if maxPoints > 0 {
			ra.ComplexityScore = card.WeightedPointsPerDay / maxPoints * 100
		}
		ra.HybridScore = ra.VolumeScore*w.Volume + ra.ComplexityScore*w.Complexity
		scored = append(scored, ra)
	}
	return scored
}
