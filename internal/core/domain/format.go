package domain

import "fmt"

// FormatAzimuth renders an optional azimuth as a quadrant bearing string,
// or "N/A" when absent.
func FormatAzimuth(azimuthDeg *float64) string {
	if azimuthDeg == nil {
		return "N/A"
	}
	return AzimuthToBearing(*azimuthDeg)
}

// FormatDistance renders an optional distance in meters, e.g. "123.456m".
func FormatDistance(meters *float64) string {
	if meters == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3fm", *meters)
}

// FormatAreaSqm renders an optional area in square meters.
func FormatAreaSqm(sqm *float64) string {
	if sqm == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.3f sqm", *sqm)
}

// FormatAreaHectares renders an optional area in hectares.
func FormatAreaHectares(sqm *float64) string {
	if sqm == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.4f ha", *sqm*1e-4)
}
