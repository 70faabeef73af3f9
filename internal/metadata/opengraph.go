package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxPageBytes = 2 * 1024 * 1024

// OpenGraphCollector scrapes og: meta tags from any http(s) page.
type OpenGraphCollector struct {
	client *http.Client
}

// NewOpenGraphCollector returns a scraper using client.
func NewOpenGraphCollector(client *http.Client) *OpenGraphCollector {
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenGraphCollector{client: client}
}

// Matches accepts every URL; this collector is the fallback.
func (s *OpenGraphCollector) Matches(*url.URL) bool {
	return true
}

// Collect fetches the page and reads its OpenGraph tags, falling back to
// <title> and the description meta tag.
func (s *OpenGraphCollector) Collect(ctx context.Context, u *url.URL) (*Preview, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AlgoraveShare/1.0)")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	preview := &Preview{
		URL:         u.String(),
		Provider:    metaContent(doc, `meta[property="og:site_name"]`),
		Title:       metaContent(doc, `meta[property="og:title"]`),
		Description: metaContent(doc, `meta[property="og:description"]`),
		Image:       metaContent(doc, `meta[property="og:image"]`),
	}
	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if preview.Description == "" {
		preview.Description = metaContent(doc, `meta[name="description"]`)
	}
	if preview.Provider == "" {
		preview.Provider = strings.TrimPrefix(u.Hostname(), "www.")
	}
	if preview.Title == "" {
		return nil, fmt.Errorf("no title found at %s", u.String())
	}
	return preview, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
