// Package directus talks to the Directus REST API: it logs in and downloads
// the OpenAPI document the server generates for its data model.
package directus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

const (
	loginPath = "/auth/login"
	specPath  = "/server/specs/oas"
)

// loginResponseSchema checks the envelope of a successful login.
var loginResponseSchema = jsonschema.MustCompileString("directus://schemas/login-response.json", `{
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {
			"type": "object",
			"required": ["access_token"],
			"properties": {
				"access_token": {"type": "string", "minLength": 1}
			}
		}
	}
}`)

// specResponseSchema checks that a spec response is an OpenAPI or Swagger document.
var specResponseSchema = jsonschema.MustCompileString("directus://schemas/spec-response.json", `{
	"type": "object",
	"anyOf": [
		{"required": ["openapi"], "properties": {"openapi": {"type": "string"}}},
		{"required": ["swagger"], "properties": {"swagger": {"type": "string"}}}
	]
}`)

// Client is a minimal Directus API client.
type Client struct {
	host       string
	base       *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns a client for the Directus instance at host, e.g.
// "https://cms.example.com".
func NewClient(host string, opts ...Option) (*Client, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid host %q: scheme must be http or https", host)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid host %q: missing host name", host)
	}

	c := &Client{
		host:       strings.TrimRight(host, "/"),
		base:       base,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// LoginURL is the login endpoint. Any path on the host is replaced.
func (c *Client) LoginURL() string {
	return c.base.ResolveReference(&url.URL{Path: loginPath}).String()
}

// SpecURL is the OpenAPI endpoint, appended to the host as given.
func (c *Client) SpecURL() string {
	return c.host + specPath
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Mode     string `json:"mode"`
}

type loginResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

// Login exchanges email and password for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password, Mode: "json"})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	endpoint := c.LoginURL()
	c.logger.Info("logging in", zap.String("url", endpoint), zap.String("email", email))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	if err := validateEnvelope(loginResponseSchema, body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingToken, err)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}

	c.logger.Debug("logged in")
	return resp.Data.AccessToken, nil
}

// FetchSpec downloads the OpenAPI document and returns it unmodified.
func (c *Client) FetchSpec(ctx context.Context, token string) ([]byte, error) {
	endpoint := c.SpecURL()
	c.logger.Info("fetching spec", zap.String("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create spec request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spec: %w", err)
	}

	if err := validateEnvelope(specResponseSchema, body); err != nil {
		return nil, fmt.Errorf("unexpected spec response: %w", err)
	}

	c.logger.Debug("fetched spec", zap.Int("bytes", len(body)))
	return body, nil
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("received response",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func validateEnvelope(schema *jsonschema.Schema, body []byte) error {
	var document any
	if err := json.Unmarshal(body, &document); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
