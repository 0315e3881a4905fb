// Package geocode resolves postal addresses to coordinates.
package geocode

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when the address matches no known place.
var ErrNotFound = errors.New("geocode: no match")

// Query is the address to resolve.
type Query struct {
	Street      string
	HouseNumber string
	City        string
	PostalCode  string
	CountryCode string
}

// String renders the query on one line, skipping empty parts.
func (q Query) String() string {
	street := strings.TrimSpace(q.Street + " " + q.HouseNumber)
	parts := make([]string, 0, 4)
	for _, p := range []string{street, q.PostalCode, q.City, q.CountryCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether the query has nothing to search for.
func (q Query) IsEmpty() bool {
	return q.Street == "" && q.City == "" && q.PostalCode == ""
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Lng float64
	Lat float64
}

// Geocoder resolves addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, q Query) (Point, error)
}
