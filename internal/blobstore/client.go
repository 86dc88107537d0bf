package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// Client communicates with the blob store HTTP API. Uploaded objects are
// durable and dereferenceable at the URL returned by Put.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	waitAttempts uint
	waitDelay    time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		waitAttempts: 10,
		waitDelay:    500 * time.Millisecond,
	}
}

type putResponse struct {
	URL string `json:"url"`
}

// Put uploads an object and returns its durable URL.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(key), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("put object %s: status %d: %s", key, resp.StatusCode, string(body))
	}

	var pr putResponse
	if err := json.Unmarshal(body, &pr); err == nil && pr.URL != "" {
		return pr.URL, nil
	}
	// Stores that return no body serve the object at its canonical path.
	return c.objectURL(key), nil
}

// Exists checks whether an object is dereferenceable yet.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.objectURL(key), nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("head object: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("head object %s: status %d", key, resp.StatusCode)
	}
}

// WaitFor blocks until an uploaded object becomes dereferenceable.
// Some stores replicate asynchronously after a successful Put.
func (c *Client) WaitFor(ctx context.Context, key string) error {
	err := retry.Do(
		func() error {
			ok, err := c.Exists(ctx, key)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("object %s not yet visible", key)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.waitAttempts),
		retry.Delay(c.waitDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("wait for object: %w", err)
	}
	return nil
}

// Get downloads an object.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("object %s not found", key)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get object %s: status %d", key, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 256<<20))
}

func (c *Client) objectURL(key string) string {
	return c.baseURL + "/objects/" + key
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
