package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yardtrack-io/yardtrack/internal/yard/model"
)

// httpProvider queries a local positioning daemon for a single high-accuracy
// fix. No fix is ever cached: every Acquire hits the daemon again.
type httpProvider struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewHTTPProvider creates a Provider over a positioning daemon exposing
// GET {endpoint} -> {"lat": .., "lng": .., "accuracy": ..}.
func NewHTTPProvider(endpoint string, timeout time.Duration) Provider {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &httpProvider{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

func (p *httpProvider) Acquire(ctx context.Context) (model.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	// Ask the daemon for a fresh high-accuracy fix rather than its last one.
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return model.Position{}, ErrTimeout
		}
		return model.Position{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return model.Position{}, ErrPermission
	case resp.StatusCode != http.StatusOK:
		return model.Position{}, fmt.Errorf("%w: daemon returned %d", ErrUnsupported, resp.StatusCode)
	}

	var fix struct {
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
		Accuracy float64 `json:"accuracy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fix); err != nil {
		return model.Position{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	return model.Position{Lat: fix.Lat, Lng: fix.Lng}, nil
}

// fixedProvider always reports a surveyed position. Yards where terminals sit
// at the gate use it as the fallback when no daemon is configured.
type fixedProvider struct {
	pos model.Position
}

// NewFixedProvider returns a Provider pinned to the given position.
func NewFixedProvider(pos model.Position) Provider {
	return &fixedProvider{pos: pos}
}

func (p *fixedProvider) Acquire(ctx context.Context) (model.Position, error) {
	if err := ctx.Err(); err != nil {
		return model.Position{}, ErrTimeout
	}
	return p.pos, nil
}
