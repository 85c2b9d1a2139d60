package geospatial

import (
	"fmt"
	"strings"

	"github.com/wroge/wgs84"
)

// Grid square size and the northing span after which row letters repeat.
const (
	squareSize = 100000.0
	bandCycle  = 2000000.0
)

const (
	bandLetters = "CDEFGHJKLMNPQRSTUVWX"
	rowLetters  = "ABCDEFGHJKLMNPQRSTUV"
)

// Column letters repeat every three zones.
var columnSets = [3]string{"STUVWXYZ", "ABCDEFGH", "JKLMNPQR"}

// minNorthing is the lowest UTM northing inside each latitude band.
var minNorthing = map[byte]float64{
	'C': 1100000, 'D': 2000000, 'E': 2800000, 'F': 3700000, 'G': 4600000,
	'H': 5500000, 'J': 6400000, 'K': 7300000, 'L': 8200000, 'M': 9100000,
	'N': 0, 'P': 800000, 'Q': 1700000, 'R': 2600000, 'S': 3500000,
	'T': 4400000, 'U': 5300000, 'V': 6200000, 'W': 7000000, 'X': 7900000,
}

// GridError describes why a grid reference could not be decoded.
type GridError struct {
	Reference string
	Reason    string
}

func (e *GridError) Error() string {
	return fmt.Sprintf("grid reference %q: %s", e.Reference, e.Reason)
}

// GridReference is a decoded military grid reference at 1 m precision.
type GridReference struct {
	Zone     int
	Band     byte
	Column   byte
	Row      byte
	Easting  int
	Northing int
}

func (g GridReference) String() string {
	return fmt.Sprintf("%d%c%c%c%05d%05d", g.Zone, g.Band, g.Column, g.Row, g.Easting, g.Northing)
}

// UTM returns the full UTM easting and northing of the centre of the 1 m cell.
func (g GridReference) UTM() (easting, northing float64, err error) {
	zone, band := g.Zone, upper(g.Band)
	col, row := upper(g.Column), upper(g.Row)

	if zone < 1 || zone > 60 {
		return 0, 0, &GridError{Reference: g.String(), Reason: fmt.Sprintf("zone %d out of range 1-60", zone)}
	}
	if strings.IndexByte(bandLetters, band) < 0 {
		return 0, 0, &GridError{Reference: g.String(), Reason: fmt.Sprintf("invalid latitude band %q", band)}
	}
	if g.Easting < 0 || g.Easting > 99999 || g.Northing < 0 || g.Northing > 99999 {
		return 0, 0, &GridError{Reference: g.String(), Reason: "offsets must be 5 digits"}
	}

	colIdx := strings.IndexByte(columnSets[zone%3], col)
	if colIdx < 0 {
		return 0, 0, &GridError{Reference: g.String(), Reason: fmt.Sprintf("column letter %q not used in zone %d", col, zone)}
	}
	rowIdx := strings.IndexByte(rowLetters, row)
	if rowIdx < 0 {
		return 0, 0, &GridError{Reference: g.String(), Reason: fmt.Sprintf("invalid row letter %q", row)}
	}
	// Even zones start their row lettering at F.
	if zone%2 == 0 {
		rowIdx = (rowIdx - 5 + len(rowLetters)) % len(rowLetters)
	}

	north := float64(rowIdx) * squareSize
	for north < minNorthing[band] {
		north += bandCycle
	}

	easting = float64(colIdx+1)*squareSize + float64(g.Easting) + 0.5
	northing = north + float64(g.Northing) + 0.5
	return easting, northing, nil
}

// LatLng converts the grid reference to WGS 84 decimal degrees.
func (g GridReference) LatLng() (lat, lng float64, err error) {
	easting, northing, err := g.UTM()
	if err != nil {
		return 0, 0, err
	}
	lat, lng = UTMToLatLng(g.Zone, upper(g.Band) >= 'N', easting, northing)
	return lat, lng, nil
}

// UTMToLatLng projects a WGS 84 UTM coordinate back to decimal degrees.
func UTMToLatLng(zone int, north bool, easting, northing float64) (lat, lng float64) {
	lng, lat, _ = wgs84.UTM(float64(zone), north).To(wgs84.LonLat())(easting, northing, 0)
	return lat, lng
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
