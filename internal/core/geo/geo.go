// Package geo ranks location-bearing records by distance from a point.
package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// EarthRadius is the equatorial radius in metres.
	EarthRadius = 6378137.0

	// DefaultRadiusKm is used when no positive radius is given.
	DefaultRadiusKm = 50.0
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// ParsePoint parses decimal degree strings.
func ParsePoint(lat, lon string) (Point, error) {
	la, err := parseDegrees(lat, 90)
	if err != nil {
		return Point{}, fmt.Errorf("latitude %q: %w", lat, err)
	}
	lo, err := parseDegrees(lon, 180)
	if err != nil {
		return Point{}, fmt.Errorf("longitude %q: %w", lon, err)
	}
	return Point{Latitude: la, Longitude: lo}, nil
}

func parseDegrees(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, ErrInvalidCoordinate
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return 0, ErrInvalidCoordinate
	}
	return v, nil
}

// Distance returns the great-circle distance between a and b in whole metres.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(1, h)

	return math.Round(2 * EarthRadius * math.Asin(math.Sqrt(h)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Locatable exposes the raw coordinates of a record.
type Locatable interface {
	Coordinates() (lat, lon string)
}

// Match is a candidate within the radius.
type Match[T any] struct {
	Item       T
	DistanceKm float64
}

// FilterNearby keeps the candidates within radiusKm of origin, nearest first.
// Candidates whose coordinates do not parse are dropped. Ties keep input order.
func FilterNearby[T Locatable](origin Point, candidates []T, radiusKm float64) []Match[T] {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	matches := make([]Match[T], 0, len(candidates))
	for _, c := range candidates {
		p, err := ParsePoint(c.Coordinates())
		if err != nil {
			continue
		}
		km := Distance(origin, p) / 1000
		if km <= radiusKm {
			matches = append(matches, Match[T]{Item: c, DistanceKm: km})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
	return matches
}
