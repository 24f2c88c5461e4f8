package domain

import (
	"math"
	"strconv"
)

const (
	metresPerFoot = 0.3048
	kmhPerKnot    = 1.852
)

// FeetToMetres converts feet to metres, rounded half up to one decimal.
func FeetToMetres(feet float64) float64 {
	return roundTenths(feet * metresPerFoot)
}

// KnotsToKmh converts knots to km/h, rounded half up to one decimal.
func KnotsToKmh(knots float64) float64 {
	return roundTenths(knots * kmhPerKnot)
}

// FormatSwellHeight renders a swell height in feet as metres, e.g. "1.8m".
// Nil and zero render as "N/A".
func FormatSwellHeight(feet *float64) string {
	if !present(feet) {
		return "N/A"
	}
	return formatTenths(FeetToMetres(*feet)) + "m"
}

// FormatWindSpeed renders a wind speed in knots as km/h, e.g. "18.5km/h".
// Nil and zero render as "N/A".
func FormatWindSpeed(knots *float64) string {
	if !present(knots) {
		return "N/A"
	}
	return formatTenths(KnotsToKmh(*knots)) + "km/h"
}

// FormatSwellPeriod renders a swell period, e.g. "12s".
func FormatSwellPeriod(seconds *float64) string {
	if !present(seconds) {
		return "N/A"
	}
	return formatTenths(roundTenths(*seconds)) + "s"
}

// FormatDirection renders a compass direction, "N/A" when empty.
func FormatDirection(dir string) string {
	if dir == "" {
		return "N/A"
	}
	return dir
}

// roundTenths rounds half up (toward +Inf) to one decimal place.
func roundTenths(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// formatTenths prints the shortest representation, so 2.0 renders as "2".
func formatTenths(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func present(v *float64) bool {
	return v != nil && *v != 0
}
