package service

// Metric names reported by TrendDeltas.
const (
	MetricItemsPerDay          = "items_per_day"
	MetricWeightedPointsPerDay = "weighted_points_per_day"
	MetricAvgHandleSeconds     = "avg_handle_seconds"
	MetricTotalCount           = "total_count"
)

// TrendDeltas compares two independently built scorecards for the same agent
// across two non-overlapping windows, producing one delta per tracked metric.
// percentChange never divides by zero: a zero prior with a non-zero current
// is reported with the explicit undefined flag instead of an infinity.
func TrendDeltas(current, prior AgentScorecard) []TrendDelta {
	pairs := []struct {
		metric  string
		current float64
		prior   float64
	}{
		{MetricItemsPerDay, current.ItemsPerDay, prior.ItemsPerDay},
		{MetricWeightedPointsPerDay, current.WeightedPointsPerDay, prior.WeightedPointsPerDay},
		{MetricAvgHandleSeconds, current.AvgHandleSeconds, prior.AvgHandleSeconds},
		{MetricTotalCount, float64(current.TotalCount), float64(prior.TotalCount)},
	}

	deltas := make([]TrendDelta, 0, len(pairs))
	for _, p := range pairs {
		d := TrendDelta{
			Metric:         p.metric,
			CurrentValue:   p.current,
			PriorValue:     p.prior,
			AbsoluteChange: p.current - p.prior,
		}
		switch {
		case p.prior != 0:
			d.PercentChange = (p.current - p.prior) / p.prior * 100
		case p.current != 0:
			d.PercentUndefined = true
		}
		deltas = append(deltas, d)
	}
	return deltas
}
