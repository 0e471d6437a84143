// Package httpapi is the REST adapter of remote.Collection, speaking the
// json-server style /transactions resource.
package httpapi

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

	"finanzy/internal/core"
	"finanzy/internal/remote"
)

const (
	resourcePath   = "/transactions"
	maxErrorBody   = 512
	defaultTimeout = 10 * time.Second
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the collection rooted at baseURL. A zero timeout
// uses the default of 10s.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{baseURL: u.String(), http: &http.Client{Timeout: timeout}}, nil
}

// WithHTTPClient replaces the underlying client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := c.do(ctx, "list transactions", http.MethodGet, resourcePath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Transaction{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, "create transaction", http.MethodPost, resourcePath, tx, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	if err := c.do(ctx, "update transaction", http.MethodPatch, itemPath(tx.ID), tx, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete transaction", http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id string) string {
	return resourcePath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &remote.StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

var _ remote.Collection = (*Client)(nil)
