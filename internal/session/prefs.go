package session

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
)

var (
	Cuisines = []string{
		"italian", "chinese", "mexican", "indian", "japanese", "thai",
		"american", "mediterranean", "french", "korean", "bbq", "vegan",
	}
	Toggles = []string{"open-now", "reservations", "delivery", "takeout", "outdoor"}
)

// DefaultPreferences is what "reset" restores.
func DefaultPreferences() model.Preferences {
	toggles := make(map[string]bool, len(Toggles))
	for _, t := range Toggles {
		toggles[t] = false
	}
	return model.Preferences{
		RadiusMiles:       5,
		PriceRange:        []int{1, 2, 3},
		Cuisines:          []string{"italian", "chinese", "mexican", "japanese", "american"},
		MinRating:         3.5,
		AdditionalFilters: toggles,
	}
}

// ValidatePreferences normalizes p in place (lower-cased cuisines, sorted
// unique prices) and rejects values outside the catalogue.
func ValidatePreferences(p *model.Preferences) error {
	p.Location = strings.TrimSpace(p.Location)

	if p.RadiusMiles < 0 || math.IsNaN(p.RadiusMiles) || math.IsInf(p.RadiusMiles, 0) {
		return fmt.Errorf("%w: radius %v", ErrInvalidPreferences, p.RadiusMiles)
	}
	if p.MinRating < 0 || p.MinRating > 5 || math.IsNaN(p.MinRating) {
		return fmt.Errorf("%w: min rating %v not in 0..5", ErrInvalidPreferences, p.MinRating)
	}

	for _, n := range p.PriceRange {
		if n < 1 || n > 4 {
			return fmt.Errorf("%w: price level %d not in 1..4", ErrInvalidPreferences, n)
		}
	}
	slices.Sort(p.PriceRange)
	p.PriceRange = slices.Compact(p.PriceRange)

	seen := make(map[string]bool, len(p.Cuisines))
	out := p.Cuisines[:0]
	for _, c := range p.Cuisines {
		c = strings.ToLower(strings.TrimSpace(c))
		if !slices.Contains(Cuisines, c) {
			return fmt.Errorf("%w: unknown cuisine %q", ErrInvalidPreferences, c)
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	p.Cuisines = out

	for k := range p.AdditionalFilters {
		if !slices.Contains(Toggles, k) {
			return fmt.Errorf("%w: unknown filter %q", ErrInvalidPreferences, k)
		}
	}
	return nil
}
