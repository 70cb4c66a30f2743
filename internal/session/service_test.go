package session

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
	"github.com/mohammed-shakir/restaurant-roulette/internal/logger"
)

func newService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	st := NewMemoryStore()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := New(st, logger.Discard(),
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { clock = clock.Add(time.Second); return clock }))
	return svc, st
}

var ada = Registration{FirstName: "Ada", LastName: "Lovelace", Email: "Ada@Example.com", Password: "engine1843"}

func TestRegisterLoginLogout(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, ada)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ada@example.com" || u.FullName != "Ada Lovelace" || !u.IsLoggedIn {
		t.Fatalf("user=%+v", u)
	}
	if u.PasswordHash != "" {
		t.Fatal("current user must not carry the password hash")
	}

	if _, err := svc.Register(ctx, ada); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("duplicate register err=%v", err)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if cur, _ := svc.Get(ctx); cur != nil {
		t.Fatalf("still signed in: %+v", cur)
	}
	if _, err := st.Get(ctx, KeyCurrentUser); !errors.Is(err, ErrNotFound) {
		t.Fatal("currentUser should be removed on logout")
	}

	if _, err := svc.Login(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrNoAccount) {
		t.Fatalf("unknown email err=%v", err)
	}
	if _, err := svc.Login(ctx, "ada@example.com", "wrong-pass1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong password err=%v", err)
	}
	u, err = svc.Login(ctx, " ADA@example.com ", "engine1843")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.LoginTime == nil || !u.IsLoggedIn {
		t.Fatalf("login not recorded: %+v", u)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newService(t)
	for _, pw := range []string{"short1", "lettersonly", "12345678", "spaces in 1"} {
		r := ada
		r.Password = pw
		if _, err := svc.Register(context.Background(), r); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("password %q: err=%v want ErrWeakPassword", pw, err)
		}
	}
}

func TestPreferences_SaveResetAndSurviveRelogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.SavePreferences(ctx, model.Preferences{}); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("save while signed out err=%v", err)
	}
	if _, err := svc.Register(ctx, ada); err != nil {
		t.Fatal(err)
	}

	u, err := svc.SavePreferences(ctx, model.Preferences{
		RadiusMiles: 10,
		PriceRange:  []int{3, 1, 3},
		Cuisines:    []string{"Thai", "thai", "vegan"},
		MinRating:   4,
	})
	if err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	if !reflect.DeepEqual(u.Preferences.PriceRange, []int{1, 3}) || !reflect.DeepEqual(u.Preferences.Cuisines, []string{"thai", "vegan"}) {
		t.Fatalf("not normalized: %+v", u.Preferences)
	}

	_ = svc.Logout(ctx)
	u, err = svc.Login(ctx, ada.Email, ada.Password)
	if err != nil {
		t.Fatal(err)
	}
	if u.Preferences == nil || u.Preferences.RadiusMiles != 10 {
		t.Fatalf("preferences lost across login: %+v", u.Preferences)
	}

	u, err = svc.ResetPreferences(ctx)
	if err != nil {
		t.Fatalf("ResetPreferences: %v", err)
	}
	if !reflect.DeepEqual(*u.Preferences, DefaultPreferences()) {
		t.Fatalf("reset=%+v", u.Preferences)
	}
}

func TestValidatePreferences_Rejects(t *testing.T) {
	bad := []model.Preferences{
		{PriceRange: []int{5}},
		{Cuisines: []string{"martian"}},
		{MinRating: 5.5},
		{RadiusMiles: -1},
		{AdditionalFilters: map[string]bool{"valet": true}},
	}
	for _, p := range bad {
		if err := ValidatePreferences(&p); !errors.Is(err, ErrInvalidPreferences) {
			t.Fatalf("%+v: err=%v want ErrInvalidPreferences", p, err)
		}
	}
	ok := model.Preferences{AdditionalFilters: map[string]bool{"open-now": true}}
	if err := ValidatePreferences(&ok); err != nil {
		t.Fatalf("valid preferences rejected: %v", err)
	}
}

func TestRecordSearch_HistoryNewestFirstAndBounded(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, ada); err != nil {
		t.Fatal(err)
	}

	for _, a := range []string{"a", "b", "c", "d", "e", "f", "b"} {
		req := model.SearchRequest{Shape: model.ShapeAddress, Address: a}
		if err := svc.RecordSearch(ctx, req, model.RestaurantResult{Name: a}); err != nil {
			t.Fatalf("RecordSearch: %v", err)
		}
	}
	h, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	var got []string
	for _, e := range h {
		got = append(got, e.Query)
	}
	if want := []string{"b", "f", "e", "d", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("history=%v want %v", got, want)
	}

	if err := svc.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if h, _ := svc.History(ctx); len(h) != 0 {
		t.Fatalf("history not cleared: %v", h)
	}
}

func TestGet_SignedOutUserIsNil(t *testing.T) {
	svc, st := newService(t)
	_ = st.Set(context.Background(), KeyCurrentUser, []byte(`{"email":"x@y.zz","isLoggedIn":false}`))
	u, err := svc.Get(context.Background())
	if err != nil || u != nil {
		t.Fatalf("u=%v err=%v", u, err)
	}
}
