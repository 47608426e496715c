// Package geo handles geographic point data and the area of interest.
package geo

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r1"
)

// Point is a single weighted observation.
// On the wire it is a 3-element array: [lat, lng, weight].
type Point struct {
	Lat    float64
	Lng    float64
	Weight float64
}

// MarshalJSON encodes the point as [lat, lng, weight].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{p.Lat, p.Lng, p.Weight})
}

// UnmarshalJSON decodes a [lat, lng, weight] triple.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("expected 3 fields, got %d", len(raw))
	}
	for i, v := range raw {
		if v == nil {
			return fmt.Errorf("field %d is null", i)
		}
	}

	p.Lat, p.Lng, p.Weight = *raw[0], *raw[1], *raw[2]
	return nil
}

// BoundingBox is an inclusive latitude/longitude window.
type BoundingBox struct {
	MinLat float64 `yaml:"min_lat" json:"min_lat"`
	MaxLat float64 `yaml:"max_lat" json:"max_lat"`
	MinLng float64 `yaml:"min_lng" json:"min_lng"`
	MaxLng float64 `yaml:"max_lng" json:"max_lng"`
}

// SanFrancisco is the window the Yelp exports were taken for.
var SanFrancisco = BoundingBox{
	MinLat: 37.708,
	MaxLat: 37.816,
	MinLng: -122.52,
	MaxLng: -122.35,
}

// Lat returns the latitude span as an interval.
func (b BoundingBox) Lat() r1.Interval {
	return r1.Interval{Lo: b.MinLat, Hi: b.MaxLat}
}

// Lng returns the longitude span as an interval.
func (b BoundingBox) Lng() r1.Interval {
	return r1.Interval{Lo: b.MinLng, Hi: b.MaxLng}
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return b.Lat().Contains(p.Lat) && b.Lng().Contains(p.Lng)
}

// Center returns the middle of the box as (lat, lng).
func (b BoundingBox) Center() (lat, lng float64) {
	return b.Lat().Center(), b.Lng().Center()
}

// IsZero reports whether the box was left unset.
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Filter returns the points inside box, keeping their input order.
// The input slice is not modified.
func Filter(points []Point, box BoundingBox) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if box.Contains(p) {
			out = append(out, p)
		}
	}

	return out
}

// Weights extracts the weight field of every point.
func Weights(points []Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Weight
	}

	return values
}
