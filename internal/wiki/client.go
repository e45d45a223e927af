// Package wiki publishes generated documents to an external wiki over its
// JSON HTTP API. Pages are upserted by (space, title): publishing a document
// whose title already exists in the space creates a new page version instead
// of a duplicate page.
package wiki

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

	"scribe/internal/orchestrator"
	"scribe/pkg/docboard"
)

// Client is a minimal wiki HTTP API client.
type Client struct {
	BaseURL     string
	SpaceKey    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL, spaceKey string) *Client {
	return &Client{
		BaseURL:  baseURL,
		SpaceKey: spaceKey,
		Timeout:  10 * time.Second,
	}
}

// Page represents the API page model (partial).
type Page struct {
	ID      string `json:"id"`
	SpaceID string `json:"space_id"`
	Title   string `json:"title"`
	Version int    `json:"version"`
	URL     string `json:"url"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Publish upserts a page for the document and returns its external
// reference. Implements the generation engine's publisher interface.
func (c *Client) Publish(ctx context.Context, doc *docboard.GeneratedDocument) (*orchestrator.PublishResult, error) {
	body := map[string]any{
		"title":   doc.Title,
		"content": doc.Content,
		"labels":  []string{doc.DocumentType, "session:" + doc.SessionID},
	}
	if doc.Summary != "" {
		body["summary"] = doc.Summary
	}

	var resp Page
	if err := c.do(ctx, http.MethodPut, c.spacePath("pages"), body, &resp); err != nil {
		return nil, err
	}
	return &orchestrator.PublishResult{PageID: resp.ID, URL: resp.URL}, nil
}

// GetPage fetches a page by id.
func (c *Client) GetPage(ctx context.Context, pageID string) (Page, error) {
	var resp Page
	endpoint := c.spacePath(fmt.Sprintf("pages/%s", url.PathEscape(pageID)))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// DeletePage removes a page by id.
func (c *Client) DeletePage(ctx context.Context, pageID string) error {
	endpoint := c.spacePath(fmt.Sprintf("pages/%s", url.PathEscape(pageID)))
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) spacePath(p string) string {
	space := url.PathEscape(c.SpaceKey)
	return fmt.Sprintf("v1/spaces/%s/%s", space, strings.TrimLeft(p, "/"))
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
