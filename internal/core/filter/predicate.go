package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/geosearch/internal/core/domain"
)

// Attribute names of the feature service schema.
const (
	geometryField = "ground_geom"
	imageIDField  = "image_id"
	filenameField = "filename"
)

// Predicate renders a single comparison of a filter expression.
// The set of implementations is closed.
type Predicate interface {
	String() string
	isPredicate()
}

// FieldLike matches a substring of a named attribute, case-insensitively.
type FieldLike struct {
	Field string
	Value string
}

func (p FieldLike) String() string {
	return fmt.Sprintf("%s LIKE '%%%s%%'", p.Field, strings.ToUpper(p.Value))
}

func (FieldLike) isPredicate() {}

// Intersects matches features whose ground footprint contains a point.
type Intersects struct {
	Point domain.GeoPoint
}

func (p Intersects) String() string {
	return fmt.Sprintf("INTERSECTS(%s,POINT(%s+%s))",
		geometryField, formatDegrees(p.Point.Lng), formatDegrees(p.Point.Lat))
}

func (Intersects) isPredicate() {}

// formatDegrees prints the shortest decimal that round-trips, without rounding.
func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EntryPredicate builds the field comparison for an id or sensor entry.
func EntryPredicate(e domain.FilterEntry) Predicate {
	return FieldLike{Field: e.Field, Value: e.Value}
}

// FilenamePredicate builds the video search comparison. Video search never
// interprets coordinates.
func FilenamePredicate(e domain.FilterEntry) Predicate {
	return FieldLike{Field: filenameField, Value: e.Value}
}

// MagicWordPredicate builds the imagery comparison for a magic word: a point
// intersection when the value is a coordinate, an image id match otherwise.
func MagicWordPredicate(e domain.FilterEntry) (Predicate, error) {
	m, err := Recognize(e.Value)
	if err != nil {
		return nil, err
	}
	return MatchPredicate(m), nil
}

// MatchPredicate renders a recognised token.
func MatchPredicate(m domain.CoordinateMatch) Predicate {
	switch v := m.(type) {
	case domain.SpatialMatch:
		return Intersects{Point: v.Point()}
	case domain.PlainText:
		return FieldLike{Field: imageIDField, Value: v.Text}
	}
	panic(fmt.Sprintf("filter: unhandled coordinate match %T", m))
}
