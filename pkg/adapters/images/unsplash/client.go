// Package unsplash searches photos on the Unsplash API.
package unsplash

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public Unsplash API.
const DefaultBaseURL = "https://api.unsplash.com"

const searchPath = "/search/photos"

// Client implements ports.ImageSearcher
type Client struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Unsplash client. An empty baseURL selects the public API.
func NewClient(accessKey, baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if accessKey == "" {
		return nil, fmt.Errorf("unsplash access key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		accessKey:  accessKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Search returns up to count regular-size image URLs for query.
func (c *Client) Search(ctx context.Context, query string, count int) ([]string, error) {
	target, err := url.Parse(c.baseURL + searchPath)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	params := target.Query()
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(count))
	target.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash returned status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("unsplash returned invalid JSON")
	}

	urls := make([]string, 0, count)
	for _, u := range gjson.GetBytes(body, "results.#.urls.regular").Array() {
		if s := u.String(); s != "" {
			urls = append(urls, s)
		}
	}

	c.logger.Debug("image search completed",
		zap.String("query", query),
		zap.Int("results", len(urls)))

	return urls, nil
}
