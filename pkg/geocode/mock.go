package geocode

import (
	"context"
	"sync/atomic"
)

// Mock is a Geocoder for tests and offline runs.
type Mock struct {
	// Point is returned when OnGeocode is nil.
	Point Point

	OnGeocode func(ctx context.Context, q Query) (Point, error)

	calls atomic.Int64
}

// NewMock returns a mock resolving every non-empty query to Brussels.
func NewMock() *Mock {
	return &Mock{Point: Point{Lng: 4.3517, Lat: 50.8503}}
}

// Geocode returns the configured point.
func (m *Mock) Geocode(ctx context.Context, q Query) (Point, error) {
	m.calls.Add(1)
	if m.OnGeocode != nil {
		return m.OnGeocode(ctx, q)
	}
	if q.IsEmpty() {
		return Point{}, ErrNotFound
	}
	return m.Point, nil
}

// Calls returns how many times Geocode ran.
func (m *Mock) Calls() int {
	return int(m.calls.Load())
}

var _ Geocoder = (*Mock)(nil)
