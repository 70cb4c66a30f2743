package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mohammed-shakir/restaurant-roulette/internal/core/model"
	"github.com/mohammed-shakir/restaurant-roulette/internal/core/observability"
	"github.com/mohammed-shakir/restaurant-roulette/internal/events"
	"github.com/mohammed-shakir/restaurant-roulette/internal/geo"
	mylog "github.com/mohammed-shakir/restaurant-roulette/internal/logger"
)

const (
	pathSearch          = "/search"
	pathSearchByAddress = "/searchByAddress"
	pathLiveness        = "/getLocation"
	pathLocation        = "/LocalServer"

	upstreamName = "backend"
	maxErrBody   = 8 << 10
)

type ProbeResult string

const (
	ProbeUp    ProbeResult = "up"    // 2xx: backend reachable, the request itself failed
	ProbeError ProbeResult = "error" // backend answered with a bad status
	ProbeDown  ProbeResult = "down"  // no answer within the timeout
)

// Option configures a Client.
type Option func(*Client)

// WithProbeTimeout bounds the liveness probe. Non-positive values keep the 3s default.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.probeTimeout = d
		}
	}
}

// WithEvents sends search and probe outcomes to s.
func WithEvents(s events.Sink) Option {
	return func(c *Client) {
		if s != nil {
			c.events = s
		}
	}
}

// WithH3Resolution sets the cell resolution attached to coordinate search events.
func WithH3Resolution(res int) Option {
	return func(c *Client) { c.h3Res = res }
}

// Client talks to the restaurant search backend.
type Client struct {
	logger       *slog.Logger
	client       *http.Client
	base         *url.URL
	probeTimeout time.Duration
	events       events.Sink
	h3Res        int
	startNow     func() time.Time // for tests
}

// New returns a Client for the backend rooted at baseURL, which must be absolute.
func New(logger *slog.Logger, client *http.Client, baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse backend url: %q is not absolute", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	c := &Client{
		logger:       logger,
		client:       client,
		base:         u,
		probeTimeout: 3 * time.Second,
		events:       events.Nop{},
		h3Res:        geo.DefaultRes,
		startNow:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Search posts the request to the endpoint matching its shape.
// (nil, nil) means the backend had no match.
func (c *Client) Search(ctx context.Context, req model.SearchRequest) (*model.RestaurantResult, error) {
	path := pathSearchByAddress
	if req.Shape == model.ShapeCoordinates {
		path = pathSearch
	}
	shape := req.Shape.String()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "search request", "shape", shape, "path", path, "request", req.String())

	start := c.startNow()
	resp, err := c.client.Do(httpReq)
	observability.ObserveUpstreamLatency(upstreamName, time.Since(start).Seconds())
	if err != nil {
		c.logger.ErrorContext(ctx, "search transport failure", "shape", shape, "err", err)
		c.record(ctx, req, "error", 0)
		if !errors.Is(err, context.Canceled) {
			c.Probe(ctx)
		}
		return nil, fmt.Errorf("%w: POST %s: %w", ErrTransport, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		c.logger.ErrorContext(ctx, "search failed", "shape", shape, "status", resp.StatusCode)
		c.record(ctx, req, "status", resp.StatusCode)
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(ctx, req, "error", resp.StatusCode)
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	res, kind, err := Decode(raw, req.Filters)
	if err != nil {
		c.logger.ErrorContext(ctx, "search response undecodable", "shape", shape, "err", err)
		c.record(ctx, req, "invalid", resp.StatusCode)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.logger.DebugContext(ctx, "search response", "shape", shape, "payload", kind.String())

	if res == nil {
		c.record(ctx, req, "empty", resp.StatusCode)
		return nil, nil
	}
	c.record(ctx, req, "success", resp.StatusCode)
	return res, nil
}

// Probe classifies backend reachability after a failed request. It never
// outlives probeTimeout and ignores cancellation of the failed call.
func (c *Client) Probe(ctx context.Context) ProbeResult {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.probeTimeout)
	defer cancel()

	result := ProbeDown
	var status int
	req, err := http.NewRequestWithContext(pctx, http.MethodGet, c.endpoint(pathLiveness), nil)
	if err == nil {
		var resp *http.Response
		resp, err = c.client.Do(req)
		if err == nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrBody))
			_ = resp.Body.Close()
			status = resp.StatusCode
			if status >= 200 && status < 300 {
				result = ProbeUp
			} else {
				result = ProbeError
			}
		}
	}

	switch result {
	case ProbeUp:
		c.logger.WarnContext(ctx, "backend reachable but request failed", "probe_status", status)
	case ProbeError:
		c.logger.ErrorContext(ctx, "backend returned error status", "probe_status", status)
	default:
		c.logger.ErrorContext(ctx, "backend unreachable", "err", err)
	}
	observability.IncProbe(string(result))
	c.events.Publish(events.Event{Kind: events.KindProbe, Outcome: string(result), Status: status})
	return result
}

// SendLocation reports the user's coordinates and returns the backend's text reply.
func (c *Client) SendLocation(ctx context.Context, lat, lng float64) (string, error) {
	body, err := json.Marshal(model.Location{Latitude: lat, Longitude: lng})
	if err != nil {
		return "", fmt.Errorf("encode location: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(pathLocation), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: POST %s: %w", ErrTransport, pathLocation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return strings.TrimSpace(string(b)), nil
}

func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

func (c *Client) record(ctx context.Context, req model.SearchRequest, outcome string, status int) {
	shape := req.Shape.String()
	observability.IncSearch(shape, outcome)

	ev := events.Event{Kind: events.KindSearch, Outcome: outcome, Shape: shape, Status: status}
	if req.Shape == model.ShapeCoordinates {
		if cell, err := geo.CellFor(req.Latitude, req.Longitude, c.h3Res); err == nil {
			ev.Cell = cell
		}
	}
	ev.User = mylog.User(ctx)
	c.events.Publish(ev)
}
