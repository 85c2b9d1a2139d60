package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Notation names the textual form a magic word was recognised as.
type Notation string

const (
	NotationDecimal Notation = "decimal"
	NotationDMS     Notation = "dms"
	NotationGrid    Notation = "grid"
	NotationText    Notation = "text"
)

// CoordinateMatch is the result of recognising one free-text token.
// The set of variants is closed: DecimalMatch, DMSMatch, GridMatch and PlainText.
type CoordinateMatch interface {
	Notation() Notation
	isCoordinateMatch()
}

// SpatialMatch is implemented by every variant that resolved to a point.
type SpatialMatch interface {
	CoordinateMatch
	Point() GeoPoint
}

// DecimalMatch is a token written as signed decimal degrees.
type DecimalMatch struct {
	Lat float64
	Lng float64
}

func (DecimalMatch) Notation() Notation { return NotationDecimal }
func (m DecimalMatch) Point() GeoPoint  { return GeoPoint{Lat: m.Lat, Lng: m.Lng} }
func (DecimalMatch) isCoordinateMatch() {}

// DMSMatch is a degrees-minutes-seconds token, already reduced to decimal degrees.
type DMSMatch struct {
	Lat float64
	Lng float64
}

func (DMSMatch) Notation() Notation { return NotationDMS }
func (m DMSMatch) Point() GeoPoint  { return GeoPoint{Lat: m.Lat, Lng: m.Lng} }
func (DMSMatch) isCoordinateMatch() {}

// GridMatch is a military grid reference converted to decimal degrees.
type GridMatch struct {
	Lat float64
	Lng float64
}

func (GridMatch) Notation() Notation { return NotationGrid }
func (m GridMatch) Point() GeoPoint  { return GeoPoint{Lat: m.Lat, Lng: m.Lng} }
func (GridMatch) isCoordinateMatch() {}

// PlainText is the fallback when no coordinate notation was recognised.
type PlainText struct {
	Text string
}

func (PlainText) Notation() Notation { return NotationText }
func (PlainText) isCoordinateMatch() {}
