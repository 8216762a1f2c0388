// Package client talks to a running fleetroster server over its HTTP API
// and gRPC health endpoint.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
)

// ErrUnavailable is returned when the server reports it cannot serve.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.Status, e.Code, e.Message)
	}

	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// Day is the state of one day as served by the API.
type Day struct {
	Date              string             `json:"date"`
	Caption           string             `json:"caption"`
	Assignments       []model.Assignment `json:"assignments"`
	Counts            fleet.Counts       `json:"counts"`
	Available         []int              `json:"available"`
	AvailableStations []string           `json:"available_stations"`
}

// Config is the user's configuration as served by the API.
type Config struct {
	Config   model.FleetConfig `json:"config"`
	Caption  string            `json:"default_caption"`
	PoolSize int               `json:"pool_size"`
}

// Client is an HTTP client for the fleetroster API.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{http: http}
}

// Health checks the server's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/health")
	if err != nil {
		return fmt.Errorf("calling health endpoint: %w", err)
	}

	if resp.IsError() || body.Status != "ok" {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	return nil
}

// Day fetches the ledger of user for date.
func (c *Client) Day(ctx context.Context, user string, date time.Time) (*Day, error) {
	var day Day
	if err := c.get(ctx, "/api/users/"+url.PathEscape(user)+"/days/"+model.DateKey(date), nil, &day); err != nil {
		return nil, err
	}

	return &day, nil
}

// Config fetches the configuration of user.
func (c *Client) Config(ctx context.Context, user string) (*Config, error) {
	var cfg Config
	if err := c.get(ctx, "/api/users/"+url.PathEscape(user)+"/config", nil, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// History lists the saved days of user between from and to, inclusive.
func (c *Client) History(ctx context.Context, user string, from, to time.Time) ([]model.DayRecord, error) {
	params := map[string]string{
		"from": model.DateKey(from),
		"to":   model.DateKey(to),
	}

	var days []model.DayRecord
	if err := c.get(ctx, "/api/users/"+url.PathEscape(user)+"/history", params, &days); err != nil {
		return nil, err
	}

	return days, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	var env envelope

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&env).
		SetError(&env).
		Get(path)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}

	if resp.IsError() || !env.Success {
		slog.Debug("api request failed", "path", path, "status", resp.StatusCode(), "code", env.Code)

		return &APIError{Status: resp.StatusCode(), Code: env.Code, Message: env.Error}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}
