// Package location stores the last location a client reported.
package location

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
	"github.com/mohammed-shakir/restaurant-roulette/internal/core/observability"
	"github.com/mohammed-shakir/restaurant-roulette/internal/geo"
)

const (
	StoredMessage = "Location received and stored"
	maxBody       = 4 << 10
)

var ErrNoLocation = errors.New("no location data available")

// Store keeps a single last-known location for the whole process.
type Store struct {
	mu    sync.RWMutex
	last  *model.Location
	h3Res int
}

func NewStore(h3Res int) *Store {
	return &Store{h3Res: h3Res}
}

// Put validates and stores lat/lng, tagging it with its H3 cell.
func (s *Store) Put(lat, lng float64) (model.Location, error) {
	cell, err := geo.CellFor(lat, lng, s.h3Res)
	if err != nil {
		return model.Location{}, err
	}
	loc := model.Location{Latitude: lat, Longitude: lng, Cell: cell}

	s.mu.Lock()
	s.last = &loc
	s.mu.Unlock()
	return loc, nil
}

func (s *Store) Get() (model.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return model.Location{}, ErrNoLocation
	}
	return *s.last, nil
}

// Submit serves POST /LocalServer.
func Submit(s *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
		if err := dec.Decode(&in); err != nil {
			observability.IncLocationSubmission("invalid")
			http.Error(w, fmt.Sprintf("invalid location body: %v", err), http.StatusBadRequest)
			return
		}
		if in.Latitude == nil || in.Longitude == nil {
			observability.IncLocationSubmission("invalid")
			http.Error(w, "latitude and longitude are required", http.StatusBadRequest)
			return
		}

		loc, err := s.Put(*in.Latitude, *in.Longitude)
		if err != nil {
			observability.IncLocationSubmission("invalid")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		observability.IncLocationSubmission("stored")
		logger.DebugContext(r.Context(), "location stored", "cell", loc.Cell)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, StoredMessage)
	}
}

// Current serves GET /getLocation. It answers 200 even when nothing is
// stored, so it doubles as the liveness probe target.
func Current(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		loc, err := s.Get()
		if err != nil {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(loc)
	}
}
