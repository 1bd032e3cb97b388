package papersearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://api.exa.ai"
	categoryPaper   = "research paper"
	defaultNumMatch = 10
)

// Paper is one academic search hit.
type Paper struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
	Summary       string `json:"summary"`
}

// Client talks to an Exa-compatible neural search API, filtered to the
// research-paper category.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests and self-hosted deployments.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// --- Wire structs ---

type searchRequest struct {
	Query      string          `json:"query"`
	Type       string          `json:"type"`
	Category   string          `json:"category"`
	NumResults int             `json:"numResults"`
	Contents   searchContents  `json:"contents"`
}

type searchContents struct {
	Summary bool `json:"summary"`
}

type searchResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"publishedDate"`
	Summary       string `json:"summary"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Search runs one category-filtered search and returns up to numResults
// papers. The query is trimmed before sending; a zero numResults falls back
// to the API default of 10.
func (c *Client) Search(ctx context.Context, query string, numResults int) ([]Paper, error) {
	if numResults <= 0 {
		numResults = defaultNumMatch
	}

	payload := searchRequest{
		Query:      strings.TrimSpace(query),
		Type:       "auto",
		Category:   categoryPaper,
		NumResults: numResults,
		Contents:   searchContents{Summary: true},
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/search", bytes.NewBuffer(payloadJson))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paper search request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paper search error: status %d, body: %s", res.StatusCode, string(resBody))
	}

	var searchRes searchResponse
	if err := json.Unmarshal(resBody, &searchRes); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	papers := make([]Paper, 0, len(searchRes.Results))
	for _, r := range searchRes.Results {
		papers = append(papers, Paper{
			Title:         r.Title,
			URL:           r.URL,
			PublishedDate: r.PublishedDate,
			Summary:       r.Summary,
		})
	}
	return papers, nil
}
