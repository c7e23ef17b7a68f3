// Package backend talks to the storefront REST API on behalf of a browser
// session.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/imrishuroy/storefront-checkout/internal/config"
)

type Endpoint struct {
	Method string
	Path   string
}

type Endpoints struct {
	CartView   Endpoint
	UpdateCart Endpoint
	DeleteCart Endpoint
	ClearCart  Endpoint
	Payment    Endpoint
}

var DefaultEndpoints = Endpoints{
	CartView:   Endpoint{http.MethodGet, "/api/view-cart-product"},
	UpdateCart: Endpoint{http.MethodPost, "/api/update-cart-product"},
	DeleteCart: Endpoint{http.MethodPost, "/api/delete-cart-product"},
	ClearCart:  Endpoint{http.MethodPost, "/api/clear-cart"},
	Payment:    Endpoint{http.MethodPost, "/api/checkout/payment"},
}

// envelope is the reply shape of every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL   string
	http      *http.Client
	endpoints Endpoints
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.endpoints = e }
}

// New returns a client whose transport is traced with otelhttp. No retries
// are made; the timeout is the transport's unless cfg.Timeout is set.
func New(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		endpoints: DefaultEndpoints,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentialsKey struct{}

// WithCredentials attaches the caller's backend cookies to ctx. Every request
// made with that context carries them.
func WithCredentials(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, credentialsKey{}, cookies)
}

func credentials(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(credentialsKey{}).([]*http.Cookie)
	return cookies
}

// do sends body as JSON and decodes the envelope's data into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, op string, ep Endpoint, body any, out any, header http.Header) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, c.baseURL+ep.Path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range credentials(ctx) {
		req.AddCookie(ck)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportErr(op, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return transportErr(op, fmt.Errorf("decode reply (status %d): %w", resp.StatusCode, err))
	}
	if !env.Success || env.Error {
		return &BusinessError{Operation: op, Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return transportErr(op, fmt.Errorf("decode data: %w", err))
		}
	}
	return nil
}
