package geospatial

import "strings"

// DMSToDecimal converts degrees, minutes and seconds with a hemisphere letter
// to signed decimal degrees. S and W are negative.
func DMSToDecimal(degrees, minutes, seconds float64, hemisphere string) float64 {
	dd := degrees + minutes/60 + seconds/3600
	switch strings.ToUpper(hemisphere) {
	case "S", "W":
		return -dd
	}
	return dd
}
