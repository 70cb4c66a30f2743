// Package history keeps a user's most recent successful searches.
package history

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
	"github.com/mohammed-shakir/restaurant-roulette/internal/geo"
)

const Size = 5

// Recent is a bounded, recency-ordered set of history entries keyed by
// fingerprint. Not safe for concurrent use.
type Recent struct {
	lru *lru.Cache[string, model.HistoryEntry]
}

// New seeds the set from entries stored newest first.
func New(entries []model.HistoryEntry) *Recent {
	c, _ := lru.New[string, model.HistoryEntry](Size)
	for _, e := range slices.Backward(entries) {
		c.Add(e.Fingerprint, e)
	}
	return &Recent{lru: c}
}

// Add inserts e at the front. A repeated fingerprint moves to the front.
func (r *Recent) Add(e model.HistoryEntry) {
	r.lru.Add(e.Fingerprint, e)
}

// Entries returns newest first.
func (r *Recent) Entries() []model.HistoryEntry {
	vals := r.lru.Values()
	slices.Reverse(vals)
	return vals
}

// Fingerprint identifies a search by what was asked. Coordinates collapse to
// their H3 cell so small GPS jitter counts as the same search.
func Fingerprint(req model.SearchRequest, res int) string {
	var where string
	if req.Shape == model.ShapeCoordinates {
		cell, err := geo.CellFor(req.Latitude, req.Longitude, res)
		if err != nil {
			cell = strconv.FormatFloat(req.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(req.Longitude, 'f', 6, 64)
		}
		where = "cell=" + cell
	} else {
		where = "addr=" + strings.ToLower(collapseASCIIWhitespace(req.Address))
	}
	f, _ := json.Marshal(req.Filters)
	sum := xxhash.Sum64String(req.Shape.String() + "|" + where + "|" + string(f))
	return fmt.Sprintf("%016x", sum)
}

// Entry builds the history record for a successful search.
func Entry(req model.SearchRequest, result model.RestaurantResult, res int, now time.Time) model.HistoryEntry {
	q := req.Address
	if req.Shape == model.ShapeCoordinates {
		q = strconv.FormatFloat(req.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(req.Longitude, 'f', -1, 64)
	}
	return model.HistoryEntry{
		Fingerprint: Fingerprint(req, res),
		Query:       q,
		Result:      result,
		SearchedAt:  now.UTC(),
	}
}

// converts any run of ASCII whitespace to a single space.
func collapseASCIIWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	wasWS := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			if !wasWS {
				b.WriteByte(' ')
				wasWS = true
			}
			continue
		}
		b.WriteRune(r)
		wasWS = false
	}
	return strings.TrimSpace(b.String())
}
