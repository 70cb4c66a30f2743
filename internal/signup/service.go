package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/observability"
)

type Service struct {
	store  Store
	logger *slog.Logger
	cost   int
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, cost: bcrypt.DefaultCost, now: time.Now}
}

// Register validates the form and stores a record with a bcrypt-hashed
// password. Validation errors are returned before any store call.
func (s *Service) Register(ctx context.Context, f Form) (Record, error) {
	f.Normalize()
	if err := f.Validate(); err != nil {
		observability.IncSignup("invalid")
		return Record{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		observability.IncSignup("invalid")
		return Record{}, ErrPasswordTooLong
	}
	if err != nil {
		observability.IncSignup("error")
		return Record{}, fmt.Errorf("hash password: %w", err)
	}

	rec := Record{
		ID:           uuid.NewString(),
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			observability.IncSignup("conflict")
			return Record{}, err
		}
		observability.IncSignup("error")
		s.logger.ErrorContext(ctx, "signup store failed", "err", err)
		return Record{}, err
	}

	observability.IncSignup("created")
	s.logger.InfoContext(ctx, "user registered", "id", rec.ID)
	return rec, nil
}
