// Package apiclient is the typed wrapper around the queue backend's REST
// surface. It never retries and never caches.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Credentials hands out the current credential, or "" when logged out.
type Credentials interface {
	Credential(ctx context.Context) string
}

type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials Credentials
	Logger      *zap.Logger
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	logger  *zap.Logger
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	base := http.DefaultTransport
	var timeout time.Duration
	if opts.HTTPClient != nil {
		if opts.HTTPClient.Transport != nil {
			base = opts.HTTPClient.Transport
		}
		timeout = opts.HTTPClient.Timeout
	}
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(&loggingTransport{next: base, logger: logger}),
		},
		creds:  opts.Credentials,
		logger: logger,
	}
}

type request struct {
	op     Op
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

// do sends req and returns the body of a 2xx response. Anything else becomes
// an *Error.
func (c *Client) do(ctx context.Context, req request) ([]byte, string, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return nil, "", &Error{Op: req.op, Err: fmt.Errorf("%w: encode body: %w", ErrRequest, err)}
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, "", &Error{Op: req.op, Err: fmt.Errorf("%w: %w", ErrRequest, err)}
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if req.auth && c.creds != nil {
		if token := c.creds.Credential(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", &Error{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &Error{Op: req.op, Err: fmt.Errorf("read response: %w", err)}
	}
	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, contentType, errorFromResponse(req.op, resp.StatusCode, contentType, raw)
	}
	return raw, contentType, nil
}

// doJSON decodes a 2xx JSON body into out. Empty and non-JSON bodies leave
// out untouched; several mutating endpoints answer with plain text.
func (c *Client) doJSON(ctx context.Context, req request, out any) error {
	raw, contentType, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 || !isJSON(contentType, raw) {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: req.op, Status: http.StatusOK, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// doText returns the backend's confirmation text. A JSON string or a
// {"message"} object is unwrapped.
func (c *Client) doText(ctx context.Context, req request) (string, error) {
	raw, contentType, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(raw))
	if !isJSON(contentType, raw) {
		return text, nil
	}
	var plain string
	if json.Unmarshal(raw, &plain) == nil {
		return plain, nil
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		return payload.Message, nil
	}
	return text, nil
}

func isJSON(contentType string, raw []byte) bool {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
		}
	}
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '"')
}
