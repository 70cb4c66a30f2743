package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/urfave/cli"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/config"
	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
)

func testEnv(t *testing.T, backend http.Handler) (*env, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	e, err := buildEnv(context.Background(), config.Config{
		LogLevel:      "error",
		BackendURL:    srv.URL,
		SignupURL:     srv.URL,
		SearchTimeout: 5 * time.Second,
		ProbeTimeout:  time.Second,
		Session:       config.SessionCfg{Driver: "memory"},
		H3Res:         9,
	}, &out)
	if err != nil {
		t.Fatalf("buildEnv: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e, &out
}

func cliContext(t *testing.T, flags func(*flag.FlagSet), args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	if flags != nil {
		flags(set)
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func findFlags(set *flag.FlagSet) {
	for _, n := range []string{"cuisine", "price", "distance", "rating"} {
		set.String(n, "", "")
	}
}

func signIn(t *testing.T, e *env, prefs *model.Preferences) {
	t.Helper()
	err := e.sessions.Set(e.ctx, &model.User{Email: "ada@example.com", FirstName: "Ada", IsLoggedIn: true, Preferences: prefs})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
}

func TestFind_CoordinatesWithChips(t *testing.T) {
	var got map[string]any
	var path atomic.Value
	e, out := testEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`["Joe's Pizza","12 Main St",null,4.7,3]`))
	}))
	signIn(t, e, nil)

	c := cliContext(t, findFlags, "-cuisine", "Italian", "-price", "$$", "40.7128, -74.0060")
	if err := findAction(c, e); err != nil {
		t.Fatalf("findAction: %v", err)
	}

	if p, _ := path.Load().(string); p != "/search" {
		t.Fatalf("path=%q want /search", p)
	}
	f, _ := got["filters"].(map[string]any)
	if f["cuisineType"] != "Italian" {
		t.Fatalf("filters=%v", f)
	}
	text := out.String()
	if !strings.Contains(text, msgLoading) || !strings.Contains(text, "Joe's Pizza") {
		t.Fatalf("output:\n%s", text)
	}

	hist, err := e.sessions.History(e.ctx)
	if err != nil || len(hist) != 1 {
		t.Fatalf("history=%v err=%v", hist, err)
	}
}

func TestFind_FallsBackToSavedLocation(t *testing.T) {
	var body map[string]any
	e, out := testEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/searchByAddress" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{}`))
	}))
	signIn(t, e, &model.Preferences{Location: "Boston, MA"})

	// "Boston, MA" contains a comma and is not a coordinate pair
	if err := findAction(cliContext(t, findFlags), e); err == nil {
		t.Fatal("expected exit error for malformed coordinates")
	}
	if !strings.Contains(out.String(), "Invalid coordinates") {
		t.Fatalf("output:\n%s", out.String())
	}

	out.Reset()
	signIn(t, e, &model.Preferences{Location: "Boston"})
	if err := findAction(cliContext(t, findFlags), e); err != nil {
		t.Fatalf("findAction: %v", err)
	}
	if body["address"] != "Boston" {
		t.Fatalf("body=%v", body)
	}
	if strings.TrimSpace(strings.TrimPrefix(out.String(), msgLoading)) != msgNoMatch {
		t.Fatalf("output:\n%s", out.String())
	}
	if hist, err := e.sessions.History(e.ctx); err != nil || len(hist) != 0 {
		t.Fatalf("no-match searches must not enter history: %v err=%v", hist, err)
	}
}

func TestFind_NotSignedIn(t *testing.T) {
	var calls atomic.Int32
	e, out := testEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	if err := findAction(cliContext(t, findFlags, "Boston"), e); err == nil {
		t.Fatal("expected exit error")
	}
	if calls.Load() != 0 {
		t.Fatalf("backend called %d times", calls.Load())
	}
	if strings.TrimSpace(out.String()) != msgSignIn {
		t.Fatalf("output %q", out.String())
	}
}

func TestApplyPrefFlags(t *testing.T) {
	c := cliContext(t, func(set *flag.FlagSet) {
		set.String("location", "", "")
		set.Float64("radius", 0, "")
		set.Var(&cli.IntSlice{}, "price", "")
		set.Var(&cli.StringSlice{}, "cuisine", "")
		set.Float64("min-rating", 0, "")
		set.Var(&cli.StringSlice{}, "enable", "")
		set.Var(&cli.StringSlice{}, "disable", "")
	}, "-radius", "2", "-price", "1", "-price", "2", "-enable", "delivery", "-disable", "outdoor")

	p := model.Preferences{Location: "Boston", Cuisines: []string{"thai"}, AdditionalFilters: map[string]bool{"outdoor": true}}
	applyPrefFlags(c, &p)

	if p.Location != "Boston" || p.RadiusMiles != 2 {
		t.Fatalf("prefs=%+v", p)
	}
	if len(p.PriceRange) != 2 || len(p.Cuisines) != 1 {
		t.Fatalf("prefs=%+v", p)
	}
	if !p.AdditionalFilters["delivery"] || p.AdditionalFilters["outdoor"] {
		t.Fatalf("toggles=%v", p.AdditionalFilters)
	}
}

func TestLocate_SendsCoordinates(t *testing.T) {
	e, out := testEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/LocalServer" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("Location received and stored"))
	}))
	c := cliContext(t, func(set *flag.FlagSet) {
		set.Float64("lat", 0, "")
		set.Float64("lng", 0, "")
	}, "-lat", "40.7", "-lng", "-74")
	if err := locateAction(c, e); err != nil {
		t.Fatalf("locateAction: %v", err)
	}
	if !strings.Contains(out.String(), "Location received and stored") {
		t.Fatalf("output %q", out.String())
	}
}
