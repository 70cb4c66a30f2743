package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
	"github.com/mohammed-shakir/restaurant-roulette/internal/filters"
	mylog "github.com/mohammed-shakir/restaurant-roulette/internal/logger"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateLoading
	StateSuccess
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Sessions is the read side of the session service. Get returns a nil user
// when nobody is signed in. The finder never writes the session record.
type Sessions interface {
	Get(ctx context.Context) (*model.User, error)
}

type Searcher interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.RestaurantResult, error)
}

// Outcome is what one Find call ended with. State is the terminal state
// reached, or StateIdle when a precondition aborted the action.
type Outcome struct {
	State   State
	Request model.SearchRequest
	Result  *model.RestaurantResult
	Err     error
}

type Finder struct {
	logger   *slog.Logger
	sessions Sessions
	searcher Searcher

	// OnTransition sees every state change, including the final return to idle.
	OnTransition func(State)
}

func NewFinder(logger *slog.Logger, sessions Sessions, searcher Searcher) *Finder {
	return &Finder{logger: logger, sessions: sessions, searcher: searcher}
}

func (f *Finder) Find(ctx context.Context, location string, chips filters.Chips) Outcome {
	user, err := f.sessions.Get(ctx)
	if err != nil {
		return Outcome{State: StateIdle, Err: fmt.Errorf("load session: %w", err)}
	}
	if user == nil {
		return Outcome{State: StateIdle, Err: ErrNoSession}
	}
	if strings.TrimSpace(location) == "" {
		return Outcome{State: StateIdle, Err: ErrBlankLocation}
	}
	ctx = mylog.WithUser(ctx, user.Email)
	defer f.enter(StateIdle)

	f.enter(StateValidating)
	req, err := Normalize(location, filters.Collect(chips, user.Preferences))
	if err != nil {
		f.logger.WarnContext(ctx, "search rejected", "err", err)
		f.enter(StateError)
		return Outcome{State: StateError, Err: err}
	}

	f.enter(StateLoading)
	res, err := f.searcher.Search(ctx, req)
	switch {
	case err != nil:
		f.enter(StateError)
		return Outcome{State: StateError, Request: req, Err: err}
	case res == nil:
		f.enter(StateEmpty)
		return Outcome{State: StateEmpty, Request: req}
	}

	f.enter(StateSuccess)
	return Outcome{State: StateSuccess, Request: req, Result: res}
}

func (f *Finder) enter(s State) {
	if f.OnTransition != nil {
		f.OnTransition(s)
	}
}
