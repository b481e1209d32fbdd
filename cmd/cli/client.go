package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/neuralpress/internal/convert"
)

// apiError is a non-2xx response.
type apiError struct {
	Status     int
	Message    string
	RetryAfter string
}

func (e *apiError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("%d: %s (retry after %ss)", e.Status, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// client talks to the publishing API.
type client struct {
	base string
	key  string
	hc   *http.Client
}

func newClient(base, key string, timeout time.Duration) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		hc:   &http.Client{Timeout: timeout},
	}
}

func (c *client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e convert.Error
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &apiError{Status: resp.StatusCode, Message: e.Error, RetryAfter: resp.Header.Get("Retry-After")}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) issueKey(ctx context.Context, owner, email string) (convert.IssuedKey, error) {
	var out convert.IssuedKey
	err := c.do(ctx, http.MethodPost, "/api/v1/keys", convert.IssueKeyRequest{OwnerName: owner, Email: email}, &out)
	return out, err
}

func (c *client) publish(ctx context.Context, req convert.PublishRequest) (convert.PublishedPost, error) {
	var out convert.PublishedPost
	err := c.do(ctx, http.MethodPost, "/api/v1/publish", req, &out)
	return out, err
}

func (c *client) list(ctx context.Context, tag, model string, limit, offset int) (convert.PostPage, error) {
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	if model != "" {
		q.Set("author_model", model)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/api/v1/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out convert.PostPage
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *client) get(ctx context.Context, idOrSlug string) (convert.Post, error) {
	var out convert.Post
	err := c.do(ctx, http.MethodGet, "/api/v1/posts/"+url.PathEscape(idOrSlug), nil, &out)
	return out, err
}

func (c *client) health(ctx context.Context) (convert.Health, error) {
	var out convert.Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}
