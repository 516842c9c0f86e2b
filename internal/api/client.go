// Package api is the HTTP client for the marketplace API. Every request goes
// through one middleware chain that tags it with a request ID, attaches the
// session's bearer token and, on a 401, signs the client out.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/metrics"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the resolved API base, e.g. http://localhost:5000/api.
	BaseURL string

	// Sessions supplies the bearer token and is cleared on a 401.
	Sessions session.Store

	// Navigator receives the redirect to the login page on a 401.
	Navigator router.Navigator

	// Transport is the innermost round tripper. Defaults to a clone of
	// http.DefaultTransport.
	Transport http.RoundTripper

	Timeout   time.Duration
	UserAgent string
	Metrics   *metrics.Metrics
	Logger    *log.Logger

	// Contract, when set, checks each outgoing request against the API
	// description and logs mismatches.
	Contract *Contract
}

// Client is the API client. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	logger    *log.Logger
}

// New builds a Client. The middleware chain, outermost first, is:
// request ID, bearer token, 401 reaction, contract check, instrumentation,
// base transport.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeConfigBaseURL, "API base URL is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "session store is required")
	}
	if cfg.Navigator == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "navigator is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.DefaultLogger()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "padup"
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	logger := cfg.Logger.With("component", "api")

	var rt http.RoundTripper = &instrumentedTransport{next: base, metrics: cfg.Metrics, logger: logger}
	if cfg.Contract != nil {
		rt = &contractTransport{next: rt, contract: cfg.Contract, basePath: basePath(cfg.BaseURL), logger: logger}
	}
	rt = &unauthorizedTransport{next: rt, handler: newRejectionHandler(cfg.Sessions, cfg.Navigator, cfg.Metrics, logger)}
	rt = &bearerTransport{next: rt, sessions: cfg.Sessions}
	rt = &requestIDTransport{next: rt}

	// Cookies set by the API are sent back on later requests.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to create cookie jar", err)
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
			Jar:       jar,
		},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}, nil
}

// BaseURL returns the resolved API base.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post sends in as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

// Put sends in as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, in, out)
}

// Delete performs a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// PostMultipart sends form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out any) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, body, contentType)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(errors.ErrCodeAPIRequest, "failed to marshal request body", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAPIRequest, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.NewNetworkError(req.Method, req.URL.Redacted(), err)
	}
	return parseResponse(req, resp, out)
}

// errorBody is the error envelope returned by the API.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// parseResponse decodes a 2xx body into target and turns anything else into
// an error carrying an *APIError.
func parseResponse(req *http.Request, resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     req.Method,
			Path:       req.URL.Path,
			RequestID:  resp.Request.Header.Get(RequestIDHeader),
		}
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil {
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return errors.NewSessionRejectedError(apiErr)
		}
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return errors.Wrap(errors.ErrCodeAPIResponse, msg, apiErr)
	}

	if target == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewNetworkError(req.Method, req.URL.Redacted(), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return errors.Wrap(errors.ErrCodeAPIDecode, "failed to decode response", err)
	}
	return nil
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s returned %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// MessageOf returns the server-provided message carried by err, or fallback
// when there is none (network failures, empty error bodies).
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
