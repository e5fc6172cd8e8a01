package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client fetches uploaded objects from the upload provider's public
// bucket. Objects are addressed by key under a fixed base URL; there
// is no SDK surface, just a GET.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxBytes   int64
}

func New(baseURL string, maxBytes int64) *Client {
	if maxBytes <= 0 {
		maxBytes = 4 << 20
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxBytes:   maxBytes,
	}
}

// ObjectURL returns the public URL for a storage key.
func (c *Client) ObjectURL(key string) string {
	return c.baseURL + "/" + url.PathEscape(key)
}

// Fetch downloads the object bytes for the given key.
func (c *Client) Fetch(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ObjectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("build storage request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch object failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch object status %d for key %q", resp.StatusCode, key)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read object body failed: %w", err)
	}
	if int64(len(b)) > c.maxBytes {
		return nil, fmt.Errorf("object %q exceeds %d bytes", key, c.maxBytes)
	}
	return b, nil
}
