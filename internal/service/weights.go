package service

// fallbackWeight is the universal default when a category has no entry at
// all. A missing weight is a configuration gap, not a failure; lookups must
// never block the engine.
const fallbackWeight = 1.0

// WeightEntry maps a (category, disposition) pair to a point value. An entry
// with an empty disposition is the category default.
type WeightEntry struct {
	Category    string
	Disposition string
	Points      float64
}

// WeightTable is a static lookup from (category, disposition) to points.
// It is immutable after construction and safe for concurrent use.
type WeightTable struct {
	exact    map[string]map[string]float64
	defaults map[string]float64
}

// NewWeightTable builds a table from configuration entries. Later entries for
// the same key overwrite earlier ones.
func NewWeightTable(entries []WeightEntry) *WeightTable {
	t := &WeightTable{
		exact:    make(map[string]map[string]float64),
		defaults: make(map[string]float64),
	}
	for _, e := range entries {
		if e.Disposition == "" {
			t.defaults[e.Category] = e.Points
			continue
		}
		m, ok := t.exact[e.Category]
		if !ok {
			m = make(map[string]float64)
			t.exact[e.Category] = m
		}
		m[e.Disposition] = e.Points
	}
	return t
}

// WeightOf resolves in order: exact (category, disposition) match, category
// default, universal fallback. It never fails.
func (t *WeightTable) WeightOf(category, disposition string) float64 {
	if disposition != "" {
		if m, ok := t.exact[category]; ok {
			if w, ok := m[disposition]; ok {
				return w
			}
		}
	}
	if w, ok := t.defaults[category]; ok {
		return w
	}
	return fallbackWeight
}
