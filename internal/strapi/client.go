package strapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitecontent/internal/logging"
	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

const (
	defaultAPIPrefix = "/api"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 8 << 20
)

// Config locates the content service.
type Config struct {
	BaseURL   string
	APIPrefix string
	Token     string
	Timeout   time.Duration
	UserAgent string
}

// Client performs authenticated GET requests against Strapi.
type Client struct {
	baseURL   string
	prefix    string
	token     string
	userAgent string
	http      *http.Client
	logger    interfaces.Logger
	requestID func() string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Tests use it to route
// requests through gock.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Or(logger)
	}
}

// WithRequestIDs sets the generator for the X-Request-ID header. Passing nil
// disables the header.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		c.requestID = fn
	}
}

// NewClient builds a Client from cfg. Zero timeout and prefix fall back to
// 10s and /api.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	prefix := strings.TrimSpace(cfg.APIPrefix)
	if prefix == "" {
		prefix = defaultAPIPrefix
	}
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		prefix:    "/" + strings.Trim(prefix, "/"),
		token:     strings.TrimSpace(cfg.Token),
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http:      &http.Client{Timeout: timeout},
		logger:    logging.NoOp(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured origin without a trailing slash. Media paths
// are resolved against it.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute request URL for endpoint and query.
func (c *Client) URL(endpoint string, query url.Values) string {
	return BuildURL(c.baseURL, c.prefix, endpoint, query)
}

// Request performs a GET and returns the raw body of a 2xx response.
func (c *Client) Request(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target := c.URL(endpoint, query)
	logger := logging.WithFields(c.logger, map[string]any{"endpoint": endpoint})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	c.decorate(req)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &NetworkError{Endpoint: endpoint, Err: err}
		if netErr.Canceled() {
			logger.Debug("strapi.request.canceled")
		} else {
			logger.Error("strapi.request.failed", "error", err)
		}
		return nil, netErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		statusErr := &HTTPStatusError{
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Status:   statusText(resp),
		}
		logger.Error("strapi.request.status", "status", resp.StatusCode, "status_text", statusErr.Status)
		return nil, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logger.Error("strapi.request.read_failed", "error", err)
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	logger.Trace("strapi.request.success", "status", resp.StatusCode, "elapsed", time.Since(started), "bytes", len(body))
	return body, nil
}

// Fetch performs Request and decodes the response envelope.
func (c *Client) Fetch(ctx context.Context, endpoint string, query url.Values) (*Envelope, error) {
	body, err := c.Request(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}
	envelope, err := DecodeEnvelope(body)
	if err != nil {
		c.logger.Error("strapi.decode.failed", "endpoint", endpoint, "error", err)
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	return envelope, nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.requestID != nil {
		if id := c.requestID(); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
}

// BuildURL joins base, prefix and endpoint and appends the encoded query.
func BuildURL(base, prefix, endpoint string, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	if p := strings.Trim(prefix, "/"); p != "" {
		b.WriteByte('/')
		b.WriteString(p)
	}
	if e := strings.TrimLeft(endpoint, "/"); e != "" {
		b.WriteByte('/')
		b.WriteString(e)
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(encodeQuery(query))
	}
	return b.String()
}

// encodeQuery matches url.Values.Encode but keeps '*' literal so populate=*
// reads the way Strapi documents it.
func encodeQuery(query url.Values) string {
	return strings.ReplaceAll(query.Encode(), "%2A", "*")
}

// Populate returns the query used for endpoints that only need populate.
func Populate(value string) url.Values {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return url.Values{"populate": []string{value}}
}
