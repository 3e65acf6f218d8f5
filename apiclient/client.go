// Package apiclient talks to the restaurant REST backend. Every call is one
// request and one response: no retry, no cache.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"restaurant-dashboard/models"

	"github.com/goccy/go-json"
)

// maxErrorBody bounds how much of a failed response is read for its message
const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// WithToken returns a copy of the client that sends the bearer token
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Token() string { return c.token }

func (c *Client) url(path string) string {
	return c.baseURL + path
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// doMultipart sends the entity as a JSON "data" field next to an "image" file part
func (c *Client) doMultipart(ctx context.Context, method, path string, entity interface{}, upload *models.Upload, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if entity != nil {
		payload, err := json.Marshal(entity)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		if err := mw.WriteField("data", string(payload)); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("image", upload.Filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(upload.Content); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), &buf)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &HTTPError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "request failed"
}
