// Package api is the HTTP transport for the Karir company API. It attaches
// the session's bearer token, unwraps the {success, message, data, error}
// envelope and is the single place where authentication failures are
// handled.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout is the fixed per-call timeout when none is configured
	DefaultTimeout = 30 * time.Second

	maxBodySize = 20 << 20
)

// TokenSource yields the current bearer token. It is consulted on every
// call, so a session change between calls is always honored.
type TokenSource interface {
	Token() string
}

// AuthFailureHandler is invoked when the server rejects the bearer token
type AuthFailureHandler interface {
	HandleAuthFailure()
}

// AuthFailureFunc adapts a function to AuthFailureHandler
type AuthFailureFunc func()

func (f AuthFailureFunc) HandleAuthFailure() { f() }

// Envelope is the uniform wrapper of every API response
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Meta    json.RawMessage `json:"meta,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// HasData reports whether the envelope carries a non-null payload
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// ErrorBody is the error member of an envelope
type ErrorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Request is a logical API call
type Request struct {
	Method string
	Path   string
	Query  params.Params
	Body   any
	// Public marks credential exchanges (login, register, password reset)
	// where a 401 means bad credentials rather than an expired session.
	Public bool
}

// Client executes API requests
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        TokenSource
	onAuthFailure AuthFailureHandler
	logger        zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the client's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithAuthFailureHandler sets the handler run on 401 responses
func WithAuthFailureHandler(h AuthFailureHandler) Option {
	return func(c *Client) { c.onAuthFailure = h }
}

// NewClient returns a Client for baseURL. A nil httpClient gets one with
// DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req and decodes the envelope's data into out (which may be nil)
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	env, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

// Send executes req and returns the unwrapped success envelope
func (c *Client) Send(ctx context.Context, req Request) (*Envelope, error) {
	var body io.Reader
	contentType := ""
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	httpReq, err := c.newRequest(ctx, req.Method, req.Path, req.Query, body, contentType)
	if err != nil {
		return nil, err
	}
	return c.execute(httpReq, req.Public)
}

// FileField is a file part of a multipart upload
type FileField struct {
	Name string // form field name
	Path string // local file path
}

// Upload posts a multipart form. The content type is the multipart boundary
// type, never JSON; auth and envelope rules are the same as Do.
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, file FileField, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(file.Name, filepath.Base(file.Path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy upload file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	env, err := c.execute(httpReq, false)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

// Download fetches a binary body such as an invoice PDF. Error responses
// are still decoded as envelopes.
func (c *Client) Download(ctx context.Context, path string, query params.Params) ([]byte, string, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, "", err
	}
	httpReq.Header.Set("Accept", "application/pdf, application/octet-stream, application/json")

	resp, err := c.roundTrip(httpReq)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, "", errors.Wrap(err, "read download body")
		}
		return data, resp.Header.Get("Content-Type"), nil
	}
	_, err = c.unwrap(resp, false)
	return nil, "", err
}

func (c *Client) newRequest(ctx context.Context, method, path string, query params.Params, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + path
	if q := query.Values(); len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Read at call time: the session may have changed since the last call.
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) execute(req *http.Request, public bool) (*Envelope, error) {
	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return c.unwrap(resp, public)
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Msg("request failed")
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")
	return resp, nil
}

func (c *Client) unwrap(resp *http.Response, public bool) (*Envelope, error) {
	if resp.StatusCode == http.StatusNoContent {
		return &Envelope{Success: true, Data: json.RawMessage("null")}, nil
	}

	if resp.StatusCode == http.StatusUnauthorized && !public {
		c.expireSession(resp.Request)
		return nil, ErrSessionExpired
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	var env *Envelope
	var decodeErr error
	if len(bytes.TrimSpace(raw)) > 0 {
		env = &Envelope{}
		if decodeErr = json.Unmarshal(raw, env); decodeErr != nil {
			env = nil
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, env)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, decodeErr)
	}
	if env == nil {
		return &Envelope{Success: true, Data: json.RawMessage("null")}, nil
	}
	if !env.Success {
		return nil, newAPIError(resp.StatusCode, env)
	}
	return env, nil
}

func (c *Client) expireSession(req *http.Request) {
	path := ""
	if req != nil {
		path = req.URL.Path
	}
	c.logger.Warn().Str("path", path).Msg("authentication rejected, ending session")
	if c.onAuthFailure != nil {
		c.onAuthFailure.HandleAuthFailure()
	}
}

func decodeData(env *Envelope, out any) error {
	if out == nil || !env.HasData() {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrMalformedEnvelope, err)
	}
	return nil
}

func decodeMeta(env *Envelope, out any) error {
	if len(env.Meta) == 0 || string(env.Meta) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Meta, out); err != nil {
		return fmt.Errorf("%w: decode meta: %v", ErrMalformedEnvelope, err)
	}
	return nil
}
