package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
)

const (
	DefaultCuisine = "Various"
	DefaultRating  = 4.0
	DefaultPrice   = 2

	positionalLen = 5
)

type PayloadKind int

const (
	NoResult PayloadKind = iota
	PositionalResult
	NamedResult
)

func (k PayloadKind) String() string {
	switch k {
	case PositionalResult:
		return "positional"
	case NamedResult:
		return "named"
	default:
		return "no_result"
	}
}

// Payload is a backend body after classification. Only the slot matching
// Kind is populated.
type Payload struct {
	Kind       PayloadKind
	Positional []json.RawMessage
	Named      map[string]json.RawMessage
}

// Classify decodes a backend body into one of the three payload kinds.
// Malformed JSON is an error; well-formed JSON of any other shape is NoResult.
func Classify(body []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Payload{Kind: NoResult}, nil
	}

	switch trimmed[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return Payload{}, fmt.Errorf("decode positional body: %w", err)
		}
		if len(arr) < positionalLen {
			return Payload{Kind: NoResult}, nil
		}
		return Payload{Kind: PositionalResult, Positional: arr}, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Payload{}, fmt.Errorf("decode named body: %w", err)
		}
		if !truthy(obj["name"]) {
			return Payload{Kind: NoResult}, nil
		}
		return Payload{Kind: NamedResult, Named: obj}, nil
	default:
		if !json.Valid(trimmed) {
			return Payload{}, fmt.Errorf("decode body: invalid JSON")
		}
		return Payload{Kind: NoResult}, nil
	}
}

// Interpret maps a classified payload into a RestaurantResult. A nil result
// with a nil error means "no match".
func Interpret(p Payload, f model.Filter) *model.RestaurantResult {
	switch p.Kind {
	case PositionalResult:
		a := p.Positional
		// index 2 is ignored; cuisine comes from what was asked for
		cuisine := f.CuisineType
		if cuisine == "" {
			cuisine = DefaultCuisine
		}
		return &model.RestaurantResult{
			Name:    text(a[0]),
			Address: text(a[1]),
			Cuisine: cuisine,
			Rating:  numberOr(a[3], DefaultRating),
			Price:   int(numberOr(a[4], DefaultPrice)),
		}
	case NamedResult:
		o := p.Named
		cuisine := text(o["cuisine"])
		if cuisine == "" {
			cuisine = DefaultCuisine
		}
		return &model.RestaurantResult{
			Name:    text(o["name"]),
			Address: text(o["address"]),
			Cuisine: cuisine,
			Rating:  numberOr(o["rating"], DefaultRating),
			Price:   int(numberOr(o["price"], DefaultPrice)),
		}
	default:
		return nil
	}
}

// Decode is Classify followed by Interpret.
func Decode(body []byte, f model.Filter) (*model.RestaurantResult, PayloadKind, error) {
	p, err := Classify(body)
	if err != nil {
		return nil, NoResult, err
	}
	return Interpret(p, f), p.Kind, nil
}

func truthy(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "false", `""`:
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

func text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if !truthy(raw) {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// numberOr reads a JSON number or numeric string. Falsy values (null, false,
// 0, "") and non-numeric strings fall back to def; a non-empty string such as
// "0" is truthy and kept.
func numberOr(raw json.RawMessage, def float64) float64 {
	if !truthy(raw) {
		return def
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return def
}
