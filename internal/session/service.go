package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
	"github.com/mohammed-shakir/restaurant-roulette/internal/geo"
	"github.com/mohammed-shakir/restaurant-roulette/internal/history"
)

const (
	KeyCurrentUser = "currentUser"
	KeyAllUsers    = "allUsers"
)

var (
	ErrInvalidPreferences = errors.New("session: invalid preferences")
	ErrAccountExists      = errors.New("session: an account with this email already exists")
	ErrNoAccount          = errors.New("session: no account found with this email")
	ErrWrongPassword      = errors.New("session: incorrect password")
	ErrWeakPassword       = errors.New("session: password must be at least 8 characters with letters and numbers")
	ErrNotSignedIn        = errors.New("session: not signed in")
)

type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Service is the session/preferences service the CLI and search pipeline
// share. Methods are safe to call sequentially; concurrent writers from
// separate processes race on the underlying store.
type Service struct {
	store  Store
	logger *slog.Logger
	h3Res  int
	cost   int
	now    func() time.Time
}

type Option func(*Service)

func WithH3Resolution(res int) Option { return func(s *Service) { s.h3Res = res } }

// WithBcryptCost lowers hashing cost in tests.
func WithBcryptCost(cost int) Option { return func(s *Service) { s.cost = cost } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func New(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		h3Res:  geo.DefaultRes,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the signed-in user, or nil when nobody is.
func (s *Service) Get(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := s.read(ctx, KeyCurrentUser, &u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !u.IsLoggedIn {
		return nil, nil
	}
	return &u, nil
}

// Set replaces the current user and mirrors it into the account directory.
// The password hash only ever lives in the directory.
func (s *Service) Set(ctx context.Context, u *model.User) error {
	if u == nil {
		return s.Clear(ctx)
	}
	cur := *u
	cur.PasswordHash = ""
	if err := s.write(ctx, KeyCurrentUser, cur); err != nil {
		return err
	}
	if u.Email == "" {
		return nil
	}
	users, err := s.accounts(ctx)
	if err != nil {
		return err
	}
	if i := indexOf(users, u.Email); i >= 0 {
		keep := users[i].PasswordHash
		users[i] = *u
		if users[i].PasswordHash == "" {
			users[i].PasswordHash = keep
		}
		return s.write(ctx, KeyAllUsers, users)
	}
	return nil
}

func (s *Service) Clear(ctx context.Context) error {
	return s.store.Del(ctx, KeyCurrentUser)
}

func (s *Service) Register(ctx context.Context, r Registration) (*model.User, error) {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.FirstName == "" || r.LastName == "" || r.Email == "" {
		return nil, errors.New("session: first name, last name and email are required")
	}
	if !strongPassword(r.Password) {
		return nil, ErrWeakPassword
	}

	users, err := s.accounts(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(users, r.Email) >= 0 {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := model.User{
		Email:            r.Email,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		FullName:         r.FirstName + " " + r.LastName,
		PasswordHash:     string(hash),
		IsLoggedIn:       true,
		RegistrationTime: now,
		LoginTime:        &now,
	}
	users = append(users, u)
	if err := s.write(ctx, KeyAllUsers, users); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	if err := s.write(ctx, KeyCurrentUser, u); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account registered", "email", u.Email)
	return &u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := s.accounts(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(users, email)
	if i < 0 {
		return nil, ErrNoAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	now := s.now().UTC()
	users[i].IsLoggedIn = true
	users[i].LoginTime = &now
	if err := s.write(ctx, KeyAllUsers, users); err != nil {
		return nil, err
	}
	u := users[i]
	u.PasswordHash = ""
	if err := s.write(ctx, KeyCurrentUser, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout marks the directory entry signed out and clears the current user.
// Logging out with nobody signed in is not an error.
func (s *Service) Logout(ctx context.Context) error {
	cur, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if cur != nil && cur.Email != "" {
		users, err := s.accounts(ctx)
		if err != nil {
			return err
		}
		if i := indexOf(users, cur.Email); i >= 0 {
			users[i].IsLoggedIn = false
			if err := s.write(ctx, KeyAllUsers, users); err != nil {
				return err
			}
		}
	}
	return s.Clear(ctx)
}

func (s *Service) SavePreferences(ctx context.Context, p model.Preferences) (*model.User, error) {
	if err := ValidatePreferences(&p); err != nil {
		return nil, err
	}
	return s.update(ctx, func(u *model.User) { u.Preferences = &p })
}

func (s *Service) ResetPreferences(ctx context.Context) (*model.User, error) {
	def := DefaultPreferences()
	return s.update(ctx, func(u *model.User) { u.Preferences = &def })
}

// RecordSearch pushes a successful search onto the user's history.
func (s *Service) RecordSearch(ctx context.Context, req model.SearchRequest, res model.RestaurantResult) error {
	_, err := s.update(ctx, func(u *model.User) {
		r := history.New(u.History)
		r.Add(history.Entry(req, res, s.h3Res, s.now()))
		u.History = r.Entries()
	})
	return err
}

func (s *Service) History(ctx context.Context) ([]model.HistoryEntry, error) {
	u, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotSignedIn
	}
	return history.New(u.History).Entries(), nil
}

func (s *Service) ClearHistory(ctx context.Context) error {
	_, err := s.update(ctx, func(u *model.User) { u.History = nil })
	return err
}

func (s *Service) update(ctx context.Context, fn func(*model.User)) (*model.User, error) {
	u, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotSignedIn
	}
	fn(u)
	if err := s.Set(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) accounts(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.read(ctx, KeyAllUsers, &users); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return users, nil
}

func (s *Service) read(ctx context.Context, key string, dst any) error {
	b, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Service) write(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Set(ctx, key, b)
}

func indexOf(users []model.User, email string) int {
	return slices.IndexFunc(users, func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}

// at least 8 chars from [A-Za-z0-9@$!%*#?&], with a letter and a digit
func strongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("@$!%*#?&", r):
		default:
			return false
		}
	}
	return letter && digit
}
