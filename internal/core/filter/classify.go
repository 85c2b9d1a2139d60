package filter

import "github.com/samirrijal/geosearch/internal/core/domain"

// Groups holds filter entries partitioned by category, each in input order.
type Groups struct {
	MagicWords []domain.FilterEntry
	Sensors    []domain.FilterEntry
	IDs        []domain.FilterEntry
}

// Classify partitions entries by category. Entries with an unknown category
// belong to no group.
func Classify(entries []domain.FilterEntry) Groups {
	var g Groups
	for _, e := range entries {
		switch e.Category {
		case domain.CategoryMagicWord:
			g.MagicWords = append(g.MagicWords, e)
		case domain.CategorySensor:
			g.Sensors = append(g.Sensors, e)
		case domain.CategoryID:
			g.IDs = append(g.IDs, e)
		}
	}
	return g
}
