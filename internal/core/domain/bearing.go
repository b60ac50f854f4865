package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Bearing is a quadrant bearing: an acute angle measured from the north or
// south axis toward east or west, e.g. "N 45D30′ E".
type Bearing struct {
	NS      string `json:"ns"` // "N" or "S"
	EW      string `json:"ew"` // "E" or "W"
	Degrees int    `json:"deg"`
	Minutes int    `json:"min"`
}

// SurveyLine is one traverse leg: a quadrant bearing plus a distance in meters.
type SurveyLine struct {
	Bearing  Bearing `json:"bearing"`
	Distance float64 `json:"distance"`
}

// bearingPattern matches e.g. "N 01D 02′ E" or "s89d59'w".
var bearingPattern = regexp.MustCompile(`(?i)^([NS])\s*(\d{1,2})D\s*(\d{1,2})[′']\s*([EW])$`)

// ParseSurveyLine parses "<bearing>;<distance>" into a SurveyLine.
// Degrees must be 0-89 (quadrant bearings are always acute; a value of 90 or
// more usually means someone entered a raw azimuth), minutes 0-59, and the
// distance strictly positive.
func ParseSurveyLine(s string) (*SurveyLine, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected 2 parts separated by ';', got %d", len(parts))
	}

	distance, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid distance %q", strings.TrimSpace(parts[1]))
	}
	if distance <= 0 {
		return nil, fmt.Errorf("distance must be > 0, got %g", distance)
	}

	m := bearingPattern.FindStringSubmatch(strings.TrimSpace(parts[0]))
	if m == nil {
		return nil, fmt.Errorf("invalid bearing %q", strings.TrimSpace(parts[0]))
	}

	deg, _ := strconv.Atoi(m[2])
	min, _ := strconv.Atoi(m[3])
	if deg > 89 {
		return nil, fmt.Errorf("degrees must be 0-89, got %d", deg)
	}
	if min > 59 {
		return nil, fmt.Errorf("minutes must be 0-59, got %d", min)
	}

	return &SurveyLine{
		Bearing: Bearing{
			NS:      strings.ToUpper(m[1]),
			EW:      strings.ToUpper(m[4]),
			Degrees: deg,
			Minutes: min,
		},
		Distance: distance,
	}, nil
}

// Azimuth folds the quadrant bearing into a clockwise-from-north azimuth in
// decimal degrees, always in [0, 360). The quadrant check is defensive;
// ParseSurveyLine only produces valid letter pairs.
func (b Bearing) Azimuth() (float64, error) {
	dec := float64(b.Degrees) + float64(b.Minutes)/60.0

	switch {
	case b.NS == "N" && b.EW == "E":
		return dec, nil
	case b.NS == "S" && b.EW == "E":
		return 180.0 - dec, nil
	case b.NS == "S" && b.EW == "W":
		return 180.0 + dec, nil
	case b.NS == "N" && b.EW == "W":
		return math.Mod(360.0-dec, 360.0), nil
	}
	return 0, fmt.Errorf("invalid quadrant %q%q", b.NS, b.EW)
}

const cardinalEpsilon = 1e-6

// AzimuthToBearing renders a decimal azimuth as a quadrant-bearing display
// string, e.g. 45.5 -> "N 45D30′00″ E". Exact cardinal directions become
// "Due North" / "Due East" / "Due South" / "Due West". This is the inverse of
// Bearing.Azimuth up to rounding at the arc-second.
func AzimuthToBearing(azimuthDeg float64) string {
	switch {
	case math.Abs(azimuthDeg) < cardinalEpsilon || math.Abs(azimuthDeg-360.0) < cardinalEpsilon:
		return "Due North"
	case math.Abs(azimuthDeg-90.0) < cardinalEpsilon:
		return "Due East"
	case math.Abs(azimuthDeg-180.0) < cardinalEpsilon:
		return "Due South"
	case math.Abs(azimuthDeg-270.0) < cardinalEpsilon:
		return "Due West"
	}

	var angle float64
	var ns, ew string
	switch {
	case azimuthDeg > 0 && azimuthDeg < 90:
		angle, ns, ew = azimuthDeg, "N", "E"
	case azimuthDeg > 90 && azimuthDeg < 180:
		angle, ns, ew = 180.0-azimuthDeg, "S", "E"
	case azimuthDeg > 180 && azimuthDeg < 270:
		angle, ns, ew = azimuthDeg-180.0, "S", "W"
	case azimuthDeg > 270 && azimuthDeg < 360:
		angle, ns, ew = 360.0-azimuthDeg, "N", "W"
	default:
		return "Invalid Azimuth"
	}

	deg := int(angle)
	minFloat := (angle - float64(deg)) * 60.0
	min := int(minFloat)
	sec := int(math.Round((minFloat - float64(min)) * 60.0))

	// Carry rounding overflow up through minutes and degrees.
	if sec == 60 {
		sec = 0
		min++
	}
	if min == 60 {
		min = 0
		deg++
	}

	return fmt.Sprintf("%s %02dD%02d′%02d″ %s", ns, deg, min, sec, ew)
}
