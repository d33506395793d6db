// Package client is a Go client for the activities JSON API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Activity mirrors one activity entry on the wire.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// SpotsLeft returns the remaining roster capacity, never negative.
func (a Activity) SpotsLeft() int {
	left := a.MaxParticipants - len(a.Participants)
	if left < 0 {
		return 0
	}
	return left
}

// Client performs the signup page operations against a remote server.
type Client interface {
	Snapshot(ctx context.Context) (map[string]Activity, error)
	Signup(ctx context.Context, activity, email string) (string, error)
	Unregister(ctx context.Context, activity, email string) (string, error)
}

// APIError is a non-2xx response with its detail message.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Detail)
}

type clientImpl struct {
	baseURL    *url.URL
	httpClient *http.Client
	staffToken string
}

// Option configures the client.
type Option func(*clientImpl)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *clientImpl) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithStaffToken attaches a staff session token to every request.
func WithStaffToken(token string) Option {
	return func(c *clientImpl) {
		c.staffToken = strings.TrimSpace(token)
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("server url %q must include scheme and host", baseURL)
	}
	result := &clientImpl{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(result)
	}
	return result, nil
}

func (c *clientImpl) Snapshot(ctx context.Context) (map[string]Activity, error) {
	var snapshot map[string]Activity
	if err := c.do(ctx, http.MethodGet, "/activities", nil, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (c *clientImpl) Signup(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, activity, "signup", email)
}

func (c *clientImpl) Unregister(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, activity, "unregister", email)
}

func (c *clientImpl) mutate(ctx context.Context, activity, action, email string) (string, error) {
	activity = strings.TrimSpace(activity)
	if activity == "" {
		return "", fmt.Errorf("activity name is required")
	}
	path := "/activities/" + url.PathEscape(activity) + "/" + action
	query := url.Values{"email": {strings.TrimSpace(email)}}

	var body struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, path+"?"+query.Encode(), nil, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

func (c *clientImpl) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if c.staffToken != "" {
		request.Header.Set("Authorization", "Bearer "+c.staffToken)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(raw))}

	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Detail != "" {
		apiErr.Detail = envelope.Detail
	}
	return apiErr
}
