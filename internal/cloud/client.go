// Package cloud talks to the Study With sync server: account auth,
// profile upload and the per-user preset store.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/logger"
)

var (
	ErrNotConfigured = errors.New("cloud server URL is not set")
	ErrNotLoggedIn   = errors.New("not logged in to the cloud server")
)

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Profile struct {
	Level      int    `json:"level"`
	XP         int    `json:"xp"`
	TotalScore int    `json:"total_score"`
	Rank       string `json:"rank"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

type PresetInfo struct {
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
	Size      int    `json:"size"`
}

type Preset struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updated_at"`
}

type envelope struct {
	OK      bool         `json:"ok"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token,omitempty"`
	User    *User        `json:"user,omitempty"`
	Profile *Profile     `json:"profile,omitempty"`
	Presets []PresetInfo `json:"presets,omitempty"`
	Preset  *Preset      `json:"preset,omitempty"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: NormalizeBaseURL(baseURL),
		token:   token,
		http:    &http.Client{Timeout: constants.CloudRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeBaseURL trims whitespace and trailing slashes.
func NormalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

func (c *Client) IsLoggedIn() bool {
	return c.baseURL != "" && c.token != ""
}

// Token returns the bearer token obtained by the last Login or Register.
func (c *Client) Token() string {
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body any, auth bool) (*envelope, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	if auth && c.token == "" {
		return nil, ErrNotLoggedIn
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logger.Debug("Cloud request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach cloud server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		env.OK = true
	} else if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}
	return &env, nil
}

func presetPath(name string) string {
	return "/presets/" + url.PathEscape(name)
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, false)
	return err
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (User, error) {
	env, err := c.do(ctx, http.MethodPost, path, map[string]string{"username": username, "password": password}, false)
	if err != nil {
		return User{}, err
	}
	user := User{Username: username}
	if env.User != nil {
		user = *env.User
		if user.Username == "" {
			user.Username = username
		}
	}
	if env.OK && env.Token != "" {
		c.token = env.Token
	}
	return user, nil
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, username, password string) (User, error) {
	return c.authenticate(ctx, "/auth/register", username, password)
}

// Login keeps the returned token on success.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	return c.authenticate(ctx, "/auth/login", username, password)
}

// Logout forgets the token locally.
func (c *Client) Logout() {
	c.token = ""
}

func (c *Client) Me(ctx context.Context) (User, Profile, error) {
	env, err := c.do(ctx, http.MethodGet, "/me", nil, true)
	if err != nil {
		return User{}, Profile{}, err
	}
	var user User
	var profile Profile
	if env.User != nil {
		user = *env.User
	}
	if env.Profile != nil {
		profile = *env.Profile
	}
	return user, profile, nil
}

// UploadProfile publishes the locally computed score and rank code.
func (c *Client) UploadProfile(ctx context.Context, totalScore int, rank string) (Profile, error) {
	env, err := c.do(ctx, http.MethodPut, "/me/profile", map[string]any{"total_score": totalScore, "rank": rank}, true)
	if err != nil {
		return Profile{}, err
	}
	if env.Profile == nil {
		return Profile{TotalScore: totalScore, Rank: rank}, nil
	}
	return *env.Profile, nil
}

func (c *Client) ListPresets(ctx context.Context) ([]PresetInfo, error) {
	env, err := c.do(ctx, http.MethodGet, "/presets", nil, true)
	if err != nil {
		return nil, err
	}
	return env.Presets, nil
}

func (c *Client) GetPreset(ctx context.Context, name string) (Preset, error) {
	env, err := c.do(ctx, http.MethodGet, presetPath(name), nil, true)
	if err != nil {
		return Preset{}, err
	}
	if env.Preset == nil {
		return Preset{Name: name}, nil
	}
	return *env.Preset, nil
}

func (c *Client) PutPreset(ctx context.Context, name, content string) error {
	_, err := c.do(ctx, http.MethodPut, presetPath(name), map[string]string{"content": content}, true)
	return err
}

func (c *Client) DeletePreset(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodDelete, presetPath(name), nil, true)
	return err
}
