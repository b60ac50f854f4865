package domain

import (
	"math"
	"testing"
)

func TestParseSurveyLine(t *testing.T) {
	sl, err := ParseSurveyLine("N 01D 02′ E;100.50")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sl.Bearing.NS != "N" || sl.Bearing.EW != "E" {
		t.Errorf("quadrant = %s%s, want NE", sl.Bearing.NS, sl.Bearing.EW)
	}
	if sl.Bearing.Degrees != 1 || sl.Bearing.Minutes != 2 {
		t.Errorf("angle = %dD%d′, want 1D2′", sl.Bearing.Degrees, sl.Bearing.Minutes)
	}
	if sl.Distance != 100.50 {
		t.Errorf("distance = %g, want 100.50", sl.Distance)
	}
}

func TestParseSurveyLineLowercaseAndASCIIQuote(t *testing.T) {
	sl, err := ParseSurveyLine("s 89d 59' w ; 3.25")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sl.Bearing.NS != "S" || sl.Bearing.EW != "W" {
		t.Errorf("quadrant letters not uppercased: %s%s", sl.Bearing.NS, sl.Bearing.EW)
	}
	if sl.Bearing.Degrees != 89 || sl.Bearing.Minutes != 59 {
		t.Errorf("angle = %dD%d′", sl.Bearing.Degrees, sl.Bearing.Minutes)
	}
}

func TestParseSurveyLineRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"no separator", "N 10D 00′ E 100"},
		{"too many parts", "N 10D 00′ E;100;extra"},
		{"bad distance", "N 10D 00′ E;abc"},
		{"zero distance", "N 10D 00′ E;0"},
		{"negative distance", "N 10D 00′ E;-5"},
		{"degrees too large", "N 90D 00′ E;10"},
		{"minutes too large", "N 10D 60′ E;10"},
		{"bad quadrant", "X 10D 00′ E;10"},
		{"missing bearing", ";100"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseSurveyLine(tc.in); err == nil {
				t.Errorf("ParseSurveyLine(%q) accepted, want error", tc.in)
			}
		})
	}
}

func TestAzimuthQuadrantFolding(t *testing.T) {
	cases := []struct {
		b    Bearing
		want float64
	}{
		{Bearing{NS: "N", EW: "E", Degrees: 45, Minutes: 0}, 45},
		{Bearing{NS: "S", EW: "E", Degrees: 45, Minutes: 0}, 135},
		{Bearing{NS: "S", EW: "W", Degrees: 45, Minutes: 0}, 225},
		{Bearing{NS: "N", EW: "W", Degrees: 45, Minutes: 0}, 315},
		{Bearing{NS: "N", EW: "E", Degrees: 0, Minutes: 30}, 0.5},
		{Bearing{NS: "N", EW: "W", Degrees: 0, Minutes: 0}, 0}, // folds to north, not 360
	}

	for _, tc := range cases {
		got, err := tc.b.Azimuth()
		if err != nil {
			t.Fatalf("Azimuth(%+v): %v", tc.b, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Azimuth(%+v) = %g, want %g", tc.b, got, tc.want)
		}
		if got < 0 || got >= 360 {
			t.Errorf("Azimuth(%+v) = %g outside [0,360)", tc.b, got)
		}
	}
}

func TestAzimuthRejectsBadQuadrant(t *testing.T) {
	if _, err := (Bearing{NS: "N", EW: "N", Degrees: 10}).Azimuth(); err == nil {
		t.Error("accepted NN quadrant")
	}
}

func TestAzimuthToBearingCardinals(t *testing.T) {
	cases := map[float64]string{
		0:   "Due North",
		360: "Due North",
		90:  "Due East",
		180: "Due South",
		270: "Due West",
	}
	for az, want := range cases {
		if got := AzimuthToBearing(az); got != want {
			t.Errorf("AzimuthToBearing(%g) = %q, want %q", az, got, want)
		}
	}
}

func TestAzimuthToBearingQuadrants(t *testing.T) {
	cases := map[float64]string{
		45.5:  "N 45D30′00″ E",
		135:   "S 45D00′00″ E",
		225:   "S 45D00′00″ W",
		315:   "N 45D00′00″ W",
		1.25:  "N 01D15′00″ E",
		359.5: "N 00D30′00″ W",
	}
	for az, want := range cases {
		if got := AzimuthToBearing(az); got != want {
			t.Errorf("AzimuthToBearing(%g) = %q, want %q", az, got, want)
		}
	}
}

func TestAzimuthToBearingSecondCarry(t *testing.T) {
	// 10 degrees 59 minutes 59.6 seconds rounds up through the minute.
	az := 10.0 + 59.0/60.0 + 59.6/3600.0
	if got := AzimuthToBearing(az); got != "N 11D00′00″ E" {
		t.Errorf("carry: got %q, want N 11D00′00″ E", got)
	}
}

func TestAzimuthToBearingInvalid(t *testing.T) {
	for _, az := range []float64{-1, 361} {
		if got := AzimuthToBearing(az); got != "Invalid Azimuth" {
			t.Errorf("AzimuthToBearing(%g) = %q", az, got)
		}
	}
}

// Round trip: bearing -> azimuth -> display string preserves the angle to
// the arc-second.
func TestBearingAzimuthRoundTrip(t *testing.T) {
	for _, b := range []Bearing{
		{NS: "N", EW: "E", Degrees: 12, Minutes: 34},
		{NS: "S", EW: "E", Degrees: 1, Minutes: 2},
		{NS: "S", EW: "W", Degrees: 89, Minutes: 59},
		{NS: "N", EW: "W", Degrees: 44, Minutes: 30},
	} {
		az, err := b.Azimuth()
		if err != nil {
			t.Fatalf("Azimuth(%+v): %v", b, err)
		}
		want := fmtBearing(b)
		if got := AzimuthToBearing(az); got != want {
			t.Errorf("round trip %+v: got %q, want %q", b, got, want)
		}
	}
}

func fmtBearing(b Bearing) string {
	return b.NS + " " + two(b.Degrees) + "D" + two(b.Minutes) + "′00″ " + b.EW
}

func two(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
