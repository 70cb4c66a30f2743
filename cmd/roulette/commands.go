package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
	"github.com/mohammed-shakir/restaurant-roulette/internal/filters"
	"github.com/mohammed-shakir/restaurant-roulette/internal/search"
	"github.com/mohammed-shakir/restaurant-roulette/internal/session"
	"github.com/mohammed-shakir/restaurant-roulette/internal/signup"
)

func commands() []cli.Command {
	return []cli.Command{
		{
			Name:  "signup",
			Usage: "create an account and sign in",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "first-name"},
				cli.StringFlag{Name: "last-name"},
				cli.StringFlag{Name: "email"},
				cli.StringFlag{Name: "password"},
				cli.StringFlag{Name: "confirm-password"},
				cli.BoolFlag{Name: "local-only", Usage: "do not submit the registration to the signup service"},
			},
			Action: withEnv(signupAction),
		},
		{
			Name:   "login",
			Usage:  "sign in with an existing account",
			Flags:  []cli.Flag{cli.StringFlag{Name: "email"}, cli.StringFlag{Name: "password"}},
			Action: withEnv(loginAction),
		},
		{
			Name:   "logout",
			Usage:  "sign out",
			Action: withEnv(logoutAction),
		},
		{
			Name:  "prefs",
			Usage: "show or change search preferences",
			Subcommands: []cli.Command{
				{Name: "show", Usage: "print saved preferences", Action: withEnv(prefsShowAction)},
				{
					Name:  "save",
					Usage: "save preferences; unset flags keep their saved value",
					Flags: []cli.Flag{
						cli.StringFlag{Name: "location"},
						cli.Float64Flag{Name: "radius", Usage: "search radius in miles"},
						cli.IntSliceFlag{Name: "price", Value: &cli.IntSlice{}, Usage: "price level 1-4, repeatable"},
						cli.StringSliceFlag{Name: "cuisine", Value: &cli.StringSlice{}, Usage: "cuisine, repeatable"},
						cli.Float64Flag{Name: "min-rating"},
						cli.StringSliceFlag{Name: "enable", Value: &cli.StringSlice{}, Usage: "turn a filter on (" + strings.Join(session.Toggles, ", ") + ")"},
						cli.StringSliceFlag{Name: "disable", Value: &cli.StringSlice{}, Usage: "turn a filter off"},
					},
					Action: withEnv(prefsSaveAction),
				},
				{Name: "reset", Usage: "restore default preferences", Action: withEnv(prefsResetAction)},
			},
		},
		{
			Name:  "locate",
			Usage: "send your current position to the location service",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "lat"},
				cli.Float64Flag{Name: "lng"},
			},
			Action: withEnv(locateAction),
		},
		{
			Name:      "find",
			Usage:     "pick a restaurant near an address or \"lat, lng\"",
			ArgsUsage: "[location]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "cuisine", Usage: `e.g. "Italian"`},
				cli.StringFlag{Name: "price", Usage: `e.g. "$$"`},
				cli.StringFlag{Name: "distance", Usage: `e.g. "Within 2 miles"`},
				cli.StringFlag{Name: "rating", Usage: `e.g. "4+" or "★★★★"`},
			},
			Action: withEnv(findAction),
		},
		{
			Name:   "history",
			Usage:  "list recent searches",
			Flags:  []cli.Flag{cli.BoolFlag{Name: "clear", Usage: "forget recent searches"}},
			Action: withEnv(historyAction),
		},
	}
}

// fail prints the user-facing message and returns an exit error carrying it.
func fail(err error) error {
	return cli.NewExitError(userMessage(err), 1)
}

func signupAction(c *cli.Context, e *env) error {
	ctx := e.ctx
	form := signup.Form{
		FirstName:       c.String("first-name"),
		LastName:        c.String("last-name"),
		Email:           c.String("email"),
		Password:        c.String("password"),
		ConfirmPassword: c.String("confirm-password"),
	}
	form.Normalize()
	if err := form.Validate(); err != nil {
		return fail(err)
	}

	u, err := e.sessions.Register(ctx, session.Registration{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Password:  form.Password,
	})
	if err != nil {
		e.log.DebugContext(ctx, "local registration failed", "err", err)
		return fail(err)
	}

	if !c.Bool("local-only") {
		if _, err := e.signup.Submit(ctx, form); err != nil {
			e.log.WarnContext(ctx, "signup service did not accept registration", "err", err)
			fmt.Fprintln(e.out, "Note: the account could not be synced to the signup service.")
		}
	}
	fmt.Fprintf(e.out, "Welcome, %s! You are signed in.\n", u.FirstName)
	return nil
}

func loginAction(c *cli.Context, e *env) error {
	u, err := e.sessions.Login(e.ctx, c.String("email"), c.String("password"))
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(e.out, "Welcome back, %s!\n", u.FirstName)
	return nil
}

func logoutAction(c *cli.Context, e *env) error {
	if err := e.sessions.Logout(e.ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Signed out.")
	return nil
}

func currentUser(c *cli.Context, e *env) (*model.User, error) {
	u, err := e.sessions.Get(e.ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fail(session.ErrNotSignedIn)
	}
	return u, nil
}

func prefsShowAction(c *cli.Context, e *env) error {
	u, err := currentUser(c, e)
	if err != nil {
		return err
	}
	renderPreferences(e.out, u.Preferences)
	return nil
}

func prefsSaveAction(c *cli.Context, e *env) error {
	u, err := currentUser(c, e)
	if err != nil {
		return err
	}
	p := session.DefaultPreferences()
	if u.Preferences != nil {
		p = *u.Preferences
	}
	applyPrefFlags(c, &p)

	u, err = e.sessions.SavePreferences(e.ctx, p)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(e.out, "Preferences saved.")
	renderPreferences(e.out, u.Preferences)
	return nil
}

func applyPrefFlags(c *cli.Context, p *model.Preferences) {
	if c.IsSet("location") {
		p.Location = c.String("location")
	}
	if c.IsSet("radius") {
		p.RadiusMiles = c.Float64("radius")
	}
	if c.IsSet("price") {
		p.PriceRange = c.IntSlice("price")
	}
	if c.IsSet("cuisine") {
		p.Cuisines = c.StringSlice("cuisine")
	}
	if c.IsSet("min-rating") {
		p.MinRating = c.Float64("min-rating")
	}
	toggles := make(map[string]bool, len(p.AdditionalFilters))
	for k, v := range p.AdditionalFilters {
		toggles[k] = v
	}
	for _, k := range c.StringSlice("enable") {
		toggles[k] = true
	}
	for _, k := range c.StringSlice("disable") {
		toggles[k] = false
	}
	p.AdditionalFilters = toggles
}

func prefsResetAction(c *cli.Context, e *env) error {
	u, err := e.sessions.ResetPreferences(e.ctx)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(e.out, "Preferences reset to defaults.")
	renderPreferences(e.out, u.Preferences)
	return nil
}

func locateAction(c *cli.Context, e *env) error {
	if !c.IsSet("lat") || !c.IsSet("lng") {
		return cli.NewExitError("Both --lat and --lng are required.", 1)
	}
	msg, err := e.search.SendLocation(e.ctx, c.Float64("lat"), c.Float64("lng"))
	if err != nil {
		e.log.ErrorContext(e.ctx, "location not sent", "err", err)
		return fail(err)
	}
	fmt.Fprintln(e.out, msg)
	return nil
}

func findAction(c *cli.Context, e *env) error {
	ctx := e.ctx
	var chips filters.Chips
	if v := c.String("cuisine"); v != "" {
		chips.SetCuisine(v)
	}
	if v := c.String("price"); v != "" {
		chips.SetPrice(v)
	}
	if v := c.String("distance"); v != "" {
		chips.SetDistance(v)
	}
	if v := c.String("rating"); v != "" {
		chips.SetRating(v)
	}

	location := c.Args().First()
	if strings.TrimSpace(location) == "" {
		if u, err := e.sessions.Get(ctx); err == nil && u != nil && u.Preferences != nil {
			location = u.Preferences.Location
		}
	}

	f := search.NewFinder(e.log, e.sessions, e.search)
	f.OnTransition = func(s search.State) {
		if s == search.StateLoading {
			fmt.Fprintln(e.out, msgLoading)
		}
	}
	out := f.Find(ctx, location, chips)
	if out.State == search.StateSuccess {
		if err := e.sessions.RecordSearch(ctx, out.Request, *out.Result); err != nil {
			e.log.WarnContext(ctx, "history not saved", "err", err)
		}
	}
	renderOutcome(e.out, out)
	if out.State == search.StateError || (out.State == search.StateIdle && out.Err != nil) {
		return cli.NewExitError("", 1)
	}
	return nil
}

func historyAction(c *cli.Context, e *env) error {
	ctx := e.ctx
	if c.Bool("clear") {
		if err := e.sessions.ClearHistory(ctx); err != nil {
			return fail(err)
		}
		fmt.Fprintln(e.out, "History cleared.")
		return nil
	}
	entries, err := e.sessions.History(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotSignedIn) {
			return fail(err)
		}
		return err
	}
	renderHistory(e.out, entries)
	return nil
}
