package search

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
)

// Normalize picks the request shape for a free-text location. A string with
// a comma must be a "lat,lng" pair; anything else is sent as an address.
func Normalize(location string, f model.Filter) (model.SearchRequest, error) {
	loc := strings.TrimSpace(location)
	if loc == "" {
		return model.SearchRequest{}, ErrBlankLocation
	}

	latText, lngText, ok := strings.Cut(loc, ",")
	if !ok {
		return model.SearchRequest{Shape: model.ShapeAddress, Address: loc, Filters: f}, nil
	}

	lat, err := parseCoord(latText)
	if err != nil {
		return model.SearchRequest{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinates, strings.TrimSpace(latText))
	}
	lng, err := parseCoord(lngText)
	if err != nil {
		return model.SearchRequest{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinates, strings.TrimSpace(lngText))
	}

	return model.SearchRequest{
		Shape:     model.ShapeCoordinates,
		Latitude:  lat,
		Longitude: lng,
		Filters:   f,
	}, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
