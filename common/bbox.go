package common

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidBoundingBox is an error returned when a bounding box fails validation
type ErrInvalidBoundingBox struct {
	Reason string
}

func (e ErrInvalidBoundingBox) Error() string {
	return fmt.Sprintf("invalid bounding box: %s", e.Reason)
}

// BoundingBox is a rectangular geographic extent in decimal degrees (EPSG:4326)
type BoundingBox struct {
	West  float64 `json:"west" yaml:"west"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	North float64 `json:"north" yaml:"north"`
}

// NewBoundingBox creates a validated bounding box from (west, south, east, north)
func NewBoundingBox(west, south, east, north float64) (BoundingBox, error) {
	bbox := BoundingBox{West: west, South: south, East: east, North: north}
	if err := bbox.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return bbox, nil
}

// ParseBoundingBox parses a "west,south,east,north" string
func ParseBoundingBox(s string) (BoundingBox, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return BoundingBox{}, ErrInvalidBoundingBox{Reason: fmt.Sprintf("expecting 4 comma-separated coordinates, got %d", len(fields))}
	}
	coords := [4]float64{}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return BoundingBox{}, ErrInvalidBoundingBox{Reason: fmt.Sprintf("coordinate %q is not a number", f)}
		}
		coords[i] = v
	}
	return NewBoundingBox(coords[0], coords[1], coords[2], coords[3])
}

// Validate returns ErrInvalidBoundingBox if the coordinates are out of range or badly ordered
func (b BoundingBox) Validate() error {
	switch {
	case b.West < -180 || b.West > 180:
		return ErrInvalidBoundingBox{Reason: fmt.Sprintf("western longitude %g must be between -180 and 180", b.West)}
	case b.East < -180 || b.East > 180:
		return ErrInvalidBoundingBox{Reason: fmt.Sprintf("eastern longitude %g must be between -180 and 180", b.East)}
	case b.South < -90 || b.South > 90:
		return ErrInvalidBoundingBox{Reason: fmt.Sprintf("southern latitude %g must be between -90 and 90", b.South)}
	case b.North < -90 || b.North > 90:
		return ErrInvalidBoundingBox{Reason: fmt.Sprintf("northern latitude %g must be between -90 and 90", b.North)}
	case b.West >= b.East:
		return ErrInvalidBoundingBox{Reason: "western longitude must be less than eastern longitude"}
	case b.South >= b.North:
		return ErrInvalidBoundingBox{Reason: "southern latitude must be less than northern latitude"}
	}
	return nil
}

// String formats the bounding box as "west,south,east,north"
func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.West, b.South, b.East, b.North)
}
