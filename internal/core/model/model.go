// Package model defines core domain types shared across the service.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Filter is the normalized constraint set sent to the search backend.
// Zero values mean "not set" and are omitted on the wire.
type Filter struct {
	CuisineType       string   `json:"cuisineType,omitempty"`
	CuisinesToInclude []string `json:"cuisinesToInclude,omitempty"`
	PriceRange        []int    `json:"priceRange,omitempty"`
	DistanceMeters    float64  `json:"distance,omitempty"`
	MinRating         float64  `json:"minRating,omitempty"`
}

// Preferences is the per-user record saved from the preferences screen.
type Preferences struct {
	Location          string          `json:"location,omitempty"`
	RadiusMiles       float64         `json:"radius,omitempty"`
	PriceRange        []int           `json:"priceRange,omitempty"`
	Cuisines          []string        `json:"cuisines,omitempty"`
	MinRating         float64         `json:"minRating,omitempty"`
	AdditionalFilters map[string]bool `json:"additionalFilters,omitempty"`
}

type RequestShape int

const (
	ShapeAddress RequestShape = iota
	ShapeCoordinates
)

func (s RequestShape) String() string {
	if s == ShapeCoordinates {
		return "coordinates"
	}
	return "address"
}

// SearchRequest carries exactly one location shape.
type SearchRequest struct {
	Shape     RequestShape
	Address   string
	Latitude  float64
	Longitude float64
	Filters   Filter
}

type coordinatePayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Filters   Filter  `json:"filters"`
}

type addressPayload struct {
	Address string `json:"address"`
	Filters Filter `json:"filters"`
}

// MarshalJSON emits the body for the endpoint matching the request shape.
func (r SearchRequest) MarshalJSON() ([]byte, error) {
	if r.Shape == ShapeCoordinates {
		return json.Marshal(coordinatePayload{Latitude: r.Latitude, Longitude: r.Longitude, Filters: r.Filters})
	}
	return json.Marshal(addressPayload{Address: r.Address, Filters: r.Filters})
}

// String representation used in logs
func (r SearchRequest) String() string {
	if r.Shape == ShapeCoordinates {
		return fmt.Sprintf("coords(%.6f,%.6f)", r.Latitude, r.Longitude)
	}
	return fmt.Sprintf("address(%q)", r.Address)
}

type RestaurantResult struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Cuisine string  `json:"cuisine"`
	Rating  float64 `json:"rating"`
	Price   int     `json:"price"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Cell      string  `json:"cell,omitempty"`
}

type HistoryEntry struct {
	Fingerprint string           `json:"fingerprint"`
	Query       string           `json:"query"`
	Result      RestaurantResult `json:"result"`
	SearchedAt  time.Time        `json:"searchedAt"`
}

// User is the session record stored under currentUser and in allUsers.
type User struct {
	Email            string         `json:"email"`
	FirstName        string         `json:"firstName"`
	LastName         string         `json:"lastName"`
	FullName         string         `json:"fullName"`
	PasswordHash     string         `json:"passwordHash,omitempty"`
	IsLoggedIn       bool           `json:"isLoggedIn"`
	RegistrationTime time.Time      `json:"registrationTime"`
	LoginTime        *time.Time     `json:"loginTime,omitempty"`
	Preferences      *Preferences   `json:"preferences,omitempty"`
	History          []HistoryEntry `json:"history,omitempty"`
}
