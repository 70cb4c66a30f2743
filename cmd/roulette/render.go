package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
	"github.com/mohammed-shakir/restaurant-roulette/internal/search"
	"github.com/mohammed-shakir/restaurant-roulette/internal/session"
	"github.com/mohammed-shakir/restaurant-roulette/internal/signup"
)

const (
	msgLoading     = "Searching for restaurants..."
	msgNoMatch     = "No restaurants found matching your criteria. Try widening your filters."
	msgRetryLater  = "Sorry, we couldn't reach the restaurant service. Please try again later."
	msgNoLocation  = "Please enter a location or save one in your preferences."
	msgSignIn      = "Please sign in to search for restaurants."
	msgBadCoords   = `Invalid coordinates. Use "latitude, longitude", e.g. "40.7128, -74.0060".`
	msgNoHistory   = "No recent searches."
	msgUnknownFail = "Something went wrong."
)

// userMessage maps an error to the text shown to the user. Validation and
// parse errors get a specific message, transport failures a generic one.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, search.ErrBlankLocation):
		return msgNoLocation
	case errors.Is(err, search.ErrNoSession), errors.Is(err, session.ErrNotSignedIn):
		return msgSignIn
	case errors.Is(err, search.ErrInvalidCoordinates):
		return msgBadCoords
	case errors.Is(err, search.ErrTransport):
		return msgRetryLater
	case errors.Is(err, session.ErrInvalidPreferences):
		return "Those preferences are not valid: " + strings.TrimPrefix(err.Error(), session.ErrInvalidPreferences.Error()+": ")
	case errors.Is(err, session.ErrAccountExists), errors.Is(err, signup.ErrEmailTaken):
		return "An account with this email already exists."
	case errors.Is(err, session.ErrNoAccount):
		return "No account found with this email."
	case errors.Is(err, session.ErrWrongPassword):
		return "Incorrect password."
	case errors.Is(err, session.ErrWeakPassword):
		return "Password must be at least 8 characters long and contain both letters and numbers."
	case errors.Is(err, signup.ErrMissingField):
		return "All fields are required."
	case errors.Is(err, signup.ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, signup.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, signup.ErrPasswordTooLong):
		return "Password must be at most 72 bytes."
	default:
		return msgUnknownFail
	}
}

func renderOutcome(w io.Writer, o search.Outcome) {
	switch o.State {
	case search.StateSuccess:
		renderResult(w, *o.Result)
	case search.StateEmpty:
		fmt.Fprintln(w, msgNoMatch)
	default:
		fmt.Fprintln(w, userMessage(o.Err))
	}
}

func renderResult(w io.Writer, r model.RestaurantResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", r.Name)
	fmt.Fprintf(tw, "Address:\t%s\n", r.Address)
	fmt.Fprintf(tw, "Cuisine:\t%s\n", r.Cuisine)
	fmt.Fprintf(tw, "Rating:\t%s %.1f\n", stars(r.Rating), r.Rating)
	fmt.Fprintf(tw, "Price:\t%s\n", dollars(r.Price))
	_ = tw.Flush()
}

func renderHistory(w io.Writer, entries []model.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, msgNoHistory)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tWHEN\tQUERY\tRESTAURANT\tRATING")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\n",
			i+1, e.SearchedAt.Local().Format("2006-01-02 15:04"), e.Query, e.Result.Name, e.Result.Rating)
	}
	_ = tw.Flush()
}

func renderPreferences(w io.Writer, p *model.Preferences) {
	if p == nil {
		d := session.DefaultPreferences()
		p = &d
	}
	loc := p.Location
	if loc == "" {
		loc = "(not set)"
	}
	prices := make([]string, 0, len(p.PriceRange))
	for _, v := range p.PriceRange {
		prices = append(prices, dollars(v))
	}
	var on []string
	for k, v := range p.AdditionalFilters {
		if v {
			on = append(on, k)
		}
	}
	slices.Sort(on)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Location:\t%s\n", loc)
	fmt.Fprintf(tw, "Radius:\t%g miles\n", p.RadiusMiles)
	fmt.Fprintf(tw, "Price:\t%s\n", joinOr(prices, "any"))
	fmt.Fprintf(tw, "Cuisines:\t%s\n", joinOr(p.Cuisines, "any"))
	fmt.Fprintf(tw, "Min rating:\t%g\n", p.MinRating)
	fmt.Fprintf(tw, "Filters:\t%s\n", joinOr(on, "none"))
	_ = tw.Flush()
}

func stars(rating float64) string {
	n := min(max(int(rating+0.5), 0), 5)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func dollars(price int) string {
	return strings.Repeat("$", min(max(price, 1), 4))
}

func joinOr(s []string, empty string) string {
	if len(s) == 0 {
		return empty
	}
	return strings.Join(s, ", ")
}
