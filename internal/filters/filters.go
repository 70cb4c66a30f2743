// Package filters merges on-screen filter selections with stored
// preferences into the Filter sent to the search backend.
package filters

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
)

const (
	MetersPerMile         = 1609
	DefaultDistanceMeters = 5000

	maxPrice  = 4
	maxRating = 5
)

var (
	leadingNumber = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// ParsePrice counts '$' glyphs. "$$$" -> 3.
func ParsePrice(text string) int {
	return min(strings.Count(text, "$"), maxPrice)
}

// ParseDistance turns "3 miles" into meters. Unparseable text yields
// DefaultDistanceMeters.
func ParseDistance(text string) float64 {
	m := leadingNumber.FindStringSubmatch(text)
	if m == nil {
		return DefaultDistanceMeters
	}
	miles, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return DefaultDistanceMeters
	}
	return miles * MetersPerMile
}

// ParseRating counts ★ glyphs, then falls back to the first decimal in
// the text, then to 0.
func ParseRating(text string) float64 {
	if n := strings.Count(text, "★"); n > 0 {
		return float64(min(n, maxRating))
	}
	m := leadingNumber.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return math.Min(v, maxRating)
}

// Chips is the structured filter state kept by the UI. Zero fields are unset.
type Chips struct {
	Cuisine        string
	Price          int
	DistanceMeters float64
	MinRating      float64
}

// SetCuisine selects a cuisine by its label, e.g. "Italian".
func (c *Chips) SetCuisine(label string) { c.Cuisine = strings.TrimSpace(label) }

// SetPrice selects a price level from "$" text; unparseable text clears it.
func (c *Chips) SetPrice(label string) { c.Price = ParsePrice(label) }

// SetDistance selects a radius from "Within X miles" text.
func (c *Chips) SetDistance(label string) { c.DistanceMeters = ParseDistance(label) }

// SetRating selects a minimum rating from star glyphs or a decimal.
func (c *Chips) SetRating(label string) { c.MinRating = ParseRating(label) }

// Collect builds the backend Filter. For each dimension the chip value wins,
// then the stored preference, otherwise the field is omitted. prefs may be nil.
func Collect(chips Chips, prefs *model.Preferences) model.Filter {
	var f model.Filter
	if prefs == nil {
		prefs = &model.Preferences{}
	}

	if chips.Cuisine != "" {
		f.CuisineType = chips.Cuisine
	} else if len(prefs.Cuisines) > 0 {
		f.CuisinesToInclude = slices.Clone(prefs.Cuisines)
	}

	if chips.Price > 0 {
		f.PriceRange = []int{chips.Price}
	} else if len(prefs.PriceRange) > 0 {
		f.PriceRange = slices.Clone(prefs.PriceRange)
	}

	if chips.DistanceMeters > 0 {
		f.DistanceMeters = chips.DistanceMeters
	} else if prefs.RadiusMiles > 0 {
		// whole miles only
		f.DistanceMeters = math.Trunc(prefs.RadiusMiles) * MetersPerMile
	}

	if chips.MinRating > 0 {
		f.MinRating = chips.MinRating
	} else if prefs.MinRating > 0 {
		f.MinRating = prefs.MinRating
	}

	return f
}
