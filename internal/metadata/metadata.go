package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Its-donkey/algorave-share/logging"
)

// ErrInvalidURL is returned when the preview target is not an absolute
// http(s) URL.
var ErrInvalidURL = errors.New("metadata: invalid url")

// Preview is the link card shown next to a submitted YouTube or project link.
type Preview struct {
	URL         string `json:"url"`
	Provider    string `json:"provider"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Author      string `json:"author,omitempty"`
}

// Collector fetches a preview for the URLs it recognises.
type Collector interface {
	Matches(u *url.URL) bool
	Collect(ctx context.Context, u *url.URL) (*Preview, error)
}

// Service tries each collector in order until one produces a preview.
type Service struct {
	collectors []Collector
	logger     *logging.Logger
}

// NewService builds the default collector chain: YouTube first, then the
// generic OpenGraph scraper. An empty youtubeAPIKey disables the Data API and
// YouTube links are scraped like any other page. A nil httpClient means
// NewClient, which only reaches public addresses.
func NewService(httpClient *http.Client, logger *logging.Logger, youtubeAPIKey string) *Service {
	if httpClient == nil {
		httpClient = NewClient(10 * time.Second)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return NewServiceWith(logger,
		NewYouTubeCollector(httpClient, logger, youtubeAPIKey),
		NewOpenGraphCollector(httpClient),
	)
}

// NewServiceWith builds a service from an explicit collector chain.
func NewServiceWith(logger *logging.Logger, collectors ...Collector) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{collectors: collectors, logger: logger}
}

// Fetch retrieves a preview for rawURL.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	var lastErr error
	for _, collector := range s.collectors {
		if !collector.Matches(u) {
			continue
		}
		preview, err := collector.Collect(ctx, u)
		if err == nil && preview != nil {
			return preview, nil
		}
		if err != nil {
			s.logger.Warn("metadata", "collector failed", map[string]any{
				"url":   u.String(),
				"error": err.Error(),
			})
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no metadata collector matched url %q", u.String())
}
