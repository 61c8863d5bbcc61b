// Package client is the GatherGuru API client. It reads the bearer token from an
// authstate.Store and writes back to it when the API says the session is gone.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gatherguru/pkg/authstate"
	"gatherguru/pkg/claims"
	"gatherguru/pkg/preferences"
)

const (
	bearerPrefix = "Bearer "
	maxErrorBody = 1 << 20
)

// Navigator is the client's view of where the user is. After a forced logout the client sends
// the user to a login page unless they are already on one.
type Navigator interface {
	Path() string
	Navigate(path string)
}

// loginPaths are the pages a forced logout must not redirect away from.
var loginPaths = map[string]bool{
	"/login":           true,
	"/signup":          true,
	"/admin-login":     true,
	"/organizer/login": true,
}

func IsLoginPath(path string) bool { return loginPaths[path] }

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *authstate.Store
	nav        Navigator
	prefs      *preferences.Preferences
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

func WithNavigator(nav Navigator) Option { return func(c *Client) { c.nav = nav } }

func WithPreferences(p *preferences.Preferences) Option { return func(c *Client) { c.prefs = p } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New creates a new API client.
func New(baseURL string, store *authstate.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Store() *authstate.Store { return c.store }

// envelope mirrors the API's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
}

func authorization(token string) string {
	if strings.HasPrefix(token, bearerPrefix) {
		return token
	}
	return bearerPrefix + token
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	sess := c.store.Snapshot()
	if sess.Token != "" {
		req.Header.Set("Authorization", authorization(sess.Token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return c.handleError(resp, sess)
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (c *Client) handleError(resp *http.Response, sent authstate.Session) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}

	var env envelope
	msg := strings.TrimSpace(string(respBody))
	if json.Unmarshal(respBody, &env) == nil && env.Message != "" {
		msg = env.Message
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.forceLogout(sent)
	case resp.StatusCode == http.StatusForbidden && (env.Status == "inactive" || env.Status == "blocked"):
		c.forceLogout(sent)
		return &AccountStatusError{Status: env.Status, Message: msg}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
}

// forceLogout ends the session the failed request was sent with. When several requests fail
// together only the first one logs out and navigates.
func (c *Client) forceLogout(sent authstate.Session) {
	if sent.Token == "" || !c.store.LogoutIfCurrent(sent.Token) {
		return
	}
	c.logger.Info("session rejected by server, logged out", "user", sent.User.ID)

	if c.nav == nil || IsLoginPath(c.nav.Path()) {
		return
	}
	c.nav.Navigate(loginPathFor(sent.Role))
}

func loginPathFor(role claims.Role) string {
	if role.Valid() {
		return role.LoginPath()
	}
	return claims.RoleUser.LoginPath()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}
