// Package geo resolves request coordinates and measures distances between them.
package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/benvon/datenight/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used by DistanceMeters
const EarthRadiusMeters = 6371000.0

// MetersPerMile converts distances for preference filtering
const MetersPerMile = 1609.34

// Resolve parses lat and lng, substituting the matching fallback coordinate for any
// value that is missing, unparsable, zero or out of range. usedDefault reports whether
// a substitution happened.
func Resolve(lat, lng string, fallback models.Location) (loc models.Location, usedDefault bool) {
	var okLat, okLng bool
	loc.Lat, okLat = parseCoord(lat, 90)
	loc.Lng, okLng = parseCoord(lng, 180)
	if !okLat {
		loc.Lat = fallback.Lat
	}
	if !okLng {
		loc.Lng = fallback.Lng
	}
	return loc, !okLat || !okLng
}

func parseCoord(s string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v == 0 || math.IsNaN(v) || math.Abs(v) > limit {
		return 0, false
	}
	return v, true
}

// DistanceMeters is the great-circle distance between a and b
func DistanceMeters(a, b models.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// MetersToMiles converts meters to statute miles
func MetersToMiles(m float64) float64 {
	return m / MetersPerMile
}
