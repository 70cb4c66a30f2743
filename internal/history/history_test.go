package history

import (
	"testing"
	"time"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
)

func addr(a string) model.SearchRequest {
	return model.SearchRequest{Shape: model.ShapeAddress, Address: a}
}

func TestRecent_BoundedNewestFirst(t *testing.T) {
	r := New(nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, a := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		r.Add(Entry(addr(a), model.RestaurantResult{Name: a}, 9, now.Add(time.Duration(i)*time.Minute)))
	}
	got := r.Entries()
	if len(got) != Size {
		t.Fatalf("len=%d want %d", len(got), Size)
	}
	want := []string{"g", "f", "e", "d", "c"}
	for i, w := range want {
		if got[i].Query != w {
			t.Fatalf("entries[%d]=%q want %q (all=%v)", i, got[i].Query, w, got)
		}
	}
}

func TestRecent_RepeatMovesToFront(t *testing.T) {
	r := New(nil)
	now := time.Now()
	r.Add(Entry(addr("Main St"), model.RestaurantResult{Name: "one"}, 9, now))
	r.Add(Entry(addr("Elm St"), model.RestaurantResult{Name: "two"}, 9, now))
	r.Add(Entry(addr("  main   st "), model.RestaurantResult{Name: "three"}, 9, now))

	got := r.Entries()
	if len(got) != 2 {
		t.Fatalf("len=%d want 2 (dedup)", len(got))
	}
	if got[0].Result.Name != "three" || got[1].Result.Name != "two" {
		t.Fatalf("order=%v", got)
	}
}

func TestNew_RoundTripsStoredOrder(t *testing.T) {
	r := New(nil)
	for _, a := range []string{"x", "y", "z"} {
		r.Add(Entry(addr(a), model.RestaurantResult{}, 9, time.Now()))
	}
	again := New(r.Entries()).Entries()
	if again[0].Query != "z" || again[2].Query != "x" {
		t.Fatalf("order lost on reload: %v", again)
	}
}

func TestFingerprint(t *testing.T) {
	a := model.SearchRequest{Shape: model.ShapeCoordinates, Latitude: 59.32930, Longitude: 18.06860}
	b := model.SearchRequest{Shape: model.ShapeCoordinates, Latitude: 59.32931, Longitude: 18.06861}
	if Fingerprint(a, 9) != Fingerprint(b, 9) {
		t.Fatal("points in the same cell should share a fingerprint")
	}

	withFilter := a
	withFilter.Filters = model.Filter{CuisineType: "Thai"}
	if Fingerprint(a, 9) == Fingerprint(withFilter, 9) {
		t.Fatal("filters must change the fingerprint")
	}

	if Fingerprint(addr("Main St"), 9) == Fingerprint(addr("Elm St"), 9) {
		t.Fatal("different addresses collided")
	}
	if len(Fingerprint(addr("x"), 9)) != 16 {
		t.Fatal("fingerprint should be 16 hex chars")
	}
}
