package filter

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/pkg/geospatial"
)

// The patterns are unanchored: a notation is recognised anywhere inside the
// token, so one token can have the shape of more than one notation.
var (
	decimalPattern = regexp.MustCompile(
		`([-+]?\d{1,2}\.?\d*)[\s,+]\s*([-+]?\d{1,3}\.?\d*)`)

	dmsPattern = regexp.MustCompile(
		`(\d{1,2})\D*?(\d{2})\D*?(\d{2}\.?\d*)\D*?([NnSs])\W*` +
			`(\d{1,3})\D*?(\d{2})\D*?(\d{2}\.?\d*)\D*?([EeWw])`)

	gridPattern = regexp.MustCompile(
		`(\d{1,2})([A-Za-z])\W*([A-Za-z])([A-Za-z])\W*(\d{5})\W*(\d{5})`)
)

// matcher tries one notation. ok is false when the token does not have the
// notation's shape; err is set when it does but cannot be converted.
type matcher func(token string) (m domain.CoordinateMatch, ok bool, err error)

// notations is evaluated in order and the first match wins. The patterns are
// not mutually exclusive, so the order decides ambiguous tokens.
var notations = []matcher{
	matchDecimal,
	matchDMS,
	matchGrid,
}

// Recognize classifies a free-text token as a coordinate or plain text.
// The only error is a grid reference naming a zone, band or square that
// does not exist; it wraps domain.ErrInvalidGridReference.
func Recognize(token string) (domain.CoordinateMatch, error) {
	for _, match := range notations {
		m, ok, err := match(token)
		if err != nil {
			return nil, err
		}
		if ok {
			return m, nil
		}
	}
	return domain.PlainText{Text: token}, nil
}

func matchDecimal(token string) (domain.CoordinateMatch, bool, error) {
	g := decimalPattern.FindStringSubmatch(token)
	if g == nil {
		return nil, false, nil
	}
	lat, err := strconv.ParseFloat(g[1], 64)
	if err != nil {
		return nil, false, nil
	}
	lng, err := strconv.ParseFloat(g[2], 64)
	if err != nil {
		return nil, false, nil
	}
	return domain.DecimalMatch{Lat: lat, Lng: lng}, true, nil
}

func matchDMS(token string) (domain.CoordinateMatch, bool, error) {
	g := dmsPattern.FindStringSubmatch(token)
	if g == nil {
		return nil, false, nil
	}
	parts, ok := parseFloats(g[1], g[2], g[3], g[5], g[6], g[7])
	if !ok {
		return nil, false, nil
	}
	return domain.DMSMatch{
		Lat: geospatial.DMSToDecimal(parts[0], parts[1], parts[2], g[4]),
		Lng: geospatial.DMSToDecimal(parts[3], parts[4], parts[5], g[8]),
	}, true, nil
}

func matchGrid(token string) (domain.CoordinateMatch, bool, error) {
	g := gridPattern.FindStringSubmatch(token)
	if g == nil {
		return nil, false, nil
	}
	// The pattern guarantees digits, so Atoi cannot fail here.
	zone, _ := strconv.Atoi(g[1])
	easting, _ := strconv.Atoi(g[5])
	northing, _ := strconv.Atoi(g[6])

	ref := geospatial.GridReference{
		Zone:     zone,
		Band:     g[2][0],
		Column:   g[3][0],
		Row:      g[4][0],
		Easting:  easting,
		Northing: northing,
	}
	lat, lng, err := ref.LatLng()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrInvalidGridReference, err)
	}
	return domain.GridMatch{Lat: lat, Lng: lng}, true, nil
}

func parseFloats(values ...string) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
