// Package thumbclient is the Go API client for the thumbnail service. It
// owns the session cookie after login and the polling loop callers use to
// follow a generation to its terminal state.
package thumbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// DefaultPollInterval matches the browser client's 5 second re-fetch.
const DefaultPollInterval = 5 * time.Second

// Thumbnail mirrors the service's generation record payload.
type Thumbnail struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	UserPrompt    string    `json:"prompt,omitempty"`
	RefinedPrompt string    `json:"refined_prompt,omitempty"`
	Style         string    `json:"style"`
	AspectRatio   string    `json:"aspect_ratio"`
	ColorScheme   string    `json:"color_scheme"`
	TextOverlay   bool      `json:"text_overlay"`
	ImageURL      string    `json:"image_url,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Terminal reports whether the record reached complete or failed.
func (t Thumbnail) Terminal() bool {
	return t.Status == "complete" || t.Status == "failed"
}

// GenerateParams are the inputs for one generation request.
type GenerateParams struct {
	Title       string `json:"title"`
	Prompt      string `json:"prompt,omitempty"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	ColorScheme string `json:"color_scheme,omitempty"`
	TextOverlay bool   `json:"text_overlay,omitempty"`
}

// User is the account summary returned by the auth endpoints.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the service at baseURL. The underlying HTTP client
// keeps the session cookie issued by Register or Login.
func New(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("thumbclient: base url is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("thumbclient: cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar, Timeout: 5 * time.Minute},
	}, nil
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Message    string       `json:"message"`
	Error      *apiError    `json:"error"`
	User       *User        `json:"user"`
	Thumbnail  *Thumbnail   `json:"thumbnail"`
	Thumbnails []*Thumbnail `json:"thumbnails"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	})
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	})
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	return err
}

// Generate submits a generation request. The call blocks until the server
// finishes the pipeline; a failed generation returns the failed record
// alongside the error.
func (c *Client) Generate(ctx context.Context, params GenerateParams) (*Thumbnail, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/thumbnail/generate", params)
	if env != nil && env.Thumbnail != nil {
		return env.Thumbnail, err
	}
	return nil, err
}

func (c *Client) Get(ctx context.Context, id string) (*Thumbnail, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/user/thumbnails/"+id, nil)
	if err != nil {
		return nil, err
	}
	if env.Thumbnail == nil {
		return nil, errors.New("thumbclient: response missing thumbnail")
	}
	return env.Thumbnail, nil
}

func (c *Client) List(ctx context.Context) ([]*Thumbnail, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/user/thumbnails", nil)
	if err != nil {
		return nil, err
	}
	return env.Thumbnails, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/thumbnail/delete/"+id, nil)
	return err
}

// PollUntilTerminal re-fetches the record every interval until it reaches a
// terminal state or the context is cancelled. It performs one fetch per tick
// and tears the ticker down deterministically with the context.
func (c *Client) PollUntilTerminal(ctx context.Context, id string, interval time.Duration) (*Thumbnail, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	rec, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Terminal() {
		return rec, nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-ticker.C:
			rec, err = c.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if rec.Terminal() {
				return rec, nil
			}
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("thumbclient: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("thumbclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thumbclient: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("thumbclient: decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		message := http.StatusText(resp.StatusCode)
		if env.Error != nil && env.Error.Message != "" {
			message = env.Error.Message
		}
		return &env, fmt.Errorf("thumbclient: %s %s: %s (status %d)", method, path, message, resp.StatusCode)
	}
	return &env, nil
}
