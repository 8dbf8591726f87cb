// Package search provides the web-search capability used by the
// research path. The contract is deliberately thin: a free-text query
// in, a block of unstructured snippet text out. No pagination, no
// retry.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Searcher retrieves text context for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// DuckDuckGoSearcher scrapes the DuckDuckGo HTML endpoint.
type DuckDuckGoSearcher struct {
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// NewDuckDuckGoSearcher creates a searcher with sensible defaults.
func NewDuckDuckGoSearcher() *DuckDuckGoSearcher {
	return &DuckDuckGoSearcher{
		baseURL:    "https://html.duckduckgo.com/html/",
		maxResults: 5,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewDuckDuckGoSearcherWithBaseURL overrides the endpoint, used in tests.
func NewDuckDuckGoSearcherWithBaseURL(baseURL string) *DuckDuckGoSearcher {
	s := NewDuckDuckGoSearcher()
	s.baseURL = baseURL
	return s
}

// Result is one search hit.
type Result struct {
	Title   string
	Snippet string
}

// Search fetches the result page for the query and returns the top
// snippets joined into one context block.
func (s *DuckDuckGoSearcher) Search(ctx context.Context, query string) (string, error) {
	endpoint := s.baseURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "focusbuddy/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read search response: %w", err)
	}

	results, err := parseResults(string(body), s.maxResults)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no results for query %q", query)
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Title)
		if r.Snippet != "" {
			sb.WriteString(r.Snippet)
			sb.WriteString("\n")
		}
		if i < len(results)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// parseResults walks the result page and extracts title/snippet pairs.
func parseResults(page string, max int) ([]Result, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= max {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				results = append(results, Result{Title: collapse(textContent(n))})
			case hasClass(n, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = collapse(textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
