// Package geo maps coordinates to H3 cells.
package geo

import (
	"errors"
	"fmt"
	"math"

	h3 "github.com/uber/h3-go/v4"
)

const DefaultRes = 9

var ErrOutOfRange = errors.New("coordinates out of range")

// ValidCoordinates reports whether lat/lng are finite WGS84 degrees.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// CellFor returns the H3 cell containing the point at res.
func CellFor(lat, lng float64, res int) (string, error) {
	if err := validateRes(res); err != nil {
		return "", err
	}
	if !ValidCoordinates(lat, lng) {
		return "", fmt.Errorf("%w: (%v, %v)", ErrOutOfRange, lat, lng)
	}
	c, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lng}, res)
	if err != nil {
		return "", fmt.Errorf("h3 cell: %w", err)
	}
	return c.String(), nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}
