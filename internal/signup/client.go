package signup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrRejected = errors.New("signup: rejected")

// Client submits the registration form to a remote signup service.
type Client struct {
	http *http.Client
	url  string
}

func NewClient(hc *http.Client, baseURL string) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{http: hc, url: strings.TrimRight(baseURL, "/") + "/signup"}
}

// Submit returns the server's message on success. A 409 maps to
// ErrEmailTaken and other 4xx replies to ErrRejected.
func (c *Client) Submit(ctx context.Context, f Form) (string, error) {
	body, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("signup request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out Response
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err := json.Unmarshal(raw, &out); err != nil {
		out.Message = strings.TrimSpace(string(raw))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300 && out.Success:
		return out.Message, nil
	case resp.StatusCode == http.StatusConflict:
		return "", fmt.Errorf("%w: %s", ErrEmailTaken, out.Message)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", fmt.Errorf("%w: %s", ErrRejected, out.Message)
	default:
		return "", fmt.Errorf("signup service status %d: %s", resp.StatusCode, out.Message)
	}
}
