// Package api implements the HTTP client for the authgate server.
// The session cookie issued on signup/login is held in an in-memory
// cookie jar and sent automatically on subsequent requests; the client
// never inspects the token itself.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/avdokushin/authgate/internal/common"
)

// AuthResult mirrors the server's result payload for signup/login/logout.
type AuthResult struct {
	OK      bool                `json:"ok"`
	Errors  map[string][]string `json:"errors"`
	Message string              `json:"message"`
}

// Profile is the protected account view returned by /api/profile.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar init error: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

// Signup registers a new account. Field errors come back inside the
// AuthResult; only transport-level problems are returned as an error.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	form := url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	}
	return c.postForm(ctx, "/api/signup", form)
}

// Login verifies credentials and stores the session cookie on success.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	form := url.Values{
		"email":    {email},
		"password": {password},
	}
	return c.postForm(ctx, "/api/login", form)
}

// Logout drops the server-set session cookie. It succeeds even when no
// session was active.
func (c *Client) Logout(ctx context.Context) (*AuthResult, error) {
	return c.postForm(ctx, "/api/logout", url.Values{})
}

// Profile fetches the authenticated account. Without a valid session the
// server answers 401, surfaced as common.ErrorUnauthorized.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/profile", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		profile := &Profile{}
		if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
			return nil, fmt.Errorf("decoding profile: %w", err)
		}
		return profile, nil
	case http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	case http.StatusNotFound:
		return nil, common.ErrorNotFound
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// Ping checks server liveness.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/ping", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*AuthResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &AuthResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return result, nil
}
