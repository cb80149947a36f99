package automation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aurix-ai/aurix/internal/models"
	"github.com/sirupsen/logrus"
)

const webUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// WebClient performs searches against the DuckDuckGo HTML endpoint and
// scrapes page text.
type WebClient struct {
	httpClient *http.Client
	searchURL  string
	maxResults int
	logger     *logrus.Logger
}

// NewWebClient creates a web actions client
func NewWebClient(timeout time.Duration, maxResults int, logger *logrus.Logger) *WebClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebClient{
		httpClient: &http.Client{Timeout: timeout},
		searchURL:  "https://html.duckduckgo.com/html/",
		maxResults: maxResults,
		logger:     logger,
	}
}

// Search queries DuckDuckGo and returns up to maxResults hits
func (w *WebClient) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	reqURL := fmt.Sprintf("%s?q=%s", w.searchURL, url.QueryEscape(query))
	doc, err := w.fetchDocument(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var results []models.SearchResult
	doc.Find(".result__body").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(results) >= w.maxResults {
			return false
		}

		title := strings.TrimSpace(sel.Find(".result__title").Text())
		link := strings.TrimSpace(sel.Find(".result__url").Text())
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())

		if title != "" && link != "" {
			results = append(results, models.SearchResult{
				Title:   title,
				Link:    link,
				Snippet: snippet,
			})
		}
		return true
	})

	w.logger.WithFields(logrus.Fields{
		"query":   query,
		"results": len(results),
	}).Debug("Web search completed")

	return results, nil
}

// Scrape downloads a page and returns its visible text
func (w *WebClient) Scrape(ctx context.Context, pageURL string) (string, error) {
	doc, err := w.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find("body").Each(func(i int, sel *goquery.Selection) {
		parts = append(parts, sel.Text())
	})

	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return text, nil
}

// QuickAnswer returns the first search snippet for a query, or "" when no
// answer is available
func (w *WebClient) QuickAnswer(ctx context.Context, query string) (string, error) {
	results, err := w.Search(ctx, query)
	if err != nil {
		return "", err
	}
	for _, r := range results {
		if r.Snippet != "" {
			return r.Snippet, nil
		}
	}
	return "", nil
}

func (w *WebClient) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
