// Package directory 远程用户目录的 HTTP 客户端：GET/POST /users，DELETE /users/{id}
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/example/asati/internal/config"
	"github.com/example/asati/internal/datamodels/user"
)

// StatusError 目录服务返回非 2xx
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("directory %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("directory %s: status %d: %s", e.Op, e.Status, e.Body)
}

// Client 目录服务客户端，不做重试
type Client struct {
	base   *url.URL
	http   *http.Client
	apiKey string
}

// New 创建客户端，transport 为 nil 时使用 http.DefaultTransport
func New(cfg config.DirectoryConfig, transport http.RoundTripper) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("directory base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("directory base url %q: scheme and host required", cfg.BaseURL)
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base: base,
		http: &http.Client{
			Transport: otelhttp.NewTransport(transport),
			Timeout:   timeout,
		},
		apiKey: cfg.APIKey,
	}, nil
}

func (c *Client) endpoint(parts ...string) string {
	u := *c.base
	for _, p := range parts {
		u.Path += "/" + url.PathEscape(p)
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, target string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("directory %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("directory %s: decode: %w", op, err)
	}
	return nil
}

// List GET /users
func (c *Client) List(ctx context.Context) ([]user.User, error) {
	var users []user.User
	if err := c.do(ctx, "list", http.MethodGet, c.endpoint("users"), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create POST /users，返回带 ID 的记录
func (c *Client) Create(ctx context.Context, in user.NewUser) (*user.User, error) {
	var u user.User
	if err := c.do(ctx, "create", http.MethodPost, c.endpoint("users"), in, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("directory create: response has no id")
	}
	return &u, nil
}

// Delete DELETE /users/{id}
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, c.endpoint("users", id), nil, nil)
}
