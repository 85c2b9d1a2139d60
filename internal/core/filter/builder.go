// Package filter turns user-entered search filters into the filter expression
// understood by the feature query service.
//
// Every function in the package is pure and safe for concurrent use.
package filter

import (
	"fmt"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

// VideoFilter builds the expression for the video feature type, in category
// order magic word, id. Magic words are filename substrings; sensor entries
// are ignored.
func VideoFilter(entries []domain.FilterEntry) string {
	g := Classify(entries)
	return Compose(
		Fragment(build(g.MagicWords, FilenamePredicate)),
		Fragment(build(g.IDs, EntryPredicate)),
	)
}

// ImageryFilter builds the expression for the imagery feature type, in
// category order magic word, sensor, id. Magic words that encode a coordinate
// become point intersections.
func ImageryFilter(entries []domain.FilterEntry) (string, error) {
	g := Classify(entries)

	magic := make([]Predicate, 0, len(g.MagicWords))
	for _, e := range g.MagicWords {
		p, err := MagicWordPredicate(e)
		if err != nil {
			return "", fmt.Errorf("magic word %q: %w", e.Value, err)
		}
		magic = append(magic, p)
	}

	return Compose(
		Fragment(magic),
		Fragment(build(g.Sensors, EntryPredicate)),
		Fragment(build(g.IDs, EntryPredicate)),
	), nil
}

// Build dispatches to the facade for ctx.
func Build(ctx domain.SearchContext, entries []domain.FilterEntry) (string, error) {
	switch ctx {
	case domain.ContextImagery:
		return ImageryFilter(entries)
	case domain.ContextVideo:
		return VideoFilter(entries), nil
	}
	return "", fmt.Errorf("unknown search context %q", ctx)
}

func build(entries []domain.FilterEntry, fn func(domain.FilterEntry) Predicate) []Predicate {
	preds := make([]Predicate, 0, len(entries))
	for _, e := range entries {
		preds = append(preds, fn(e))
	}
	return preds
}
