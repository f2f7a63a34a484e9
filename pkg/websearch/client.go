package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps the Google Custom Search JSON API.
type Client struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
}

type ResultItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Items []ResultItem `json:"items"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewClient(apiKey, engineID string) *Client {
	return &Client{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  "https://www.googleapis.com/customsearch/v1",
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Search returns up to limit results for the query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]ResultItem, error) {
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search error: status %d, body: %s", res.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("search error: %s", parsed.Error.Message)
	}

	return parsed.Items, nil
}

// FormatResults renders results as plain text for LLM consumption.
func FormatResults(items []ResultItem) string {
	if len(items) == 0 {
		return "No search results found."
	}

	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, item.Title, item.Snippet, item.Link)
	}
	return strings.TrimSpace(b.String())
}
