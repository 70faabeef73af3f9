package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Its-donkey/algorave-share/logging"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// YouTubeCollector previews YouTube video links. With an API key it asks the
// Data API for the video snippet; without one it scrapes the watch page.
type YouTubeCollector struct {
	client   *http.Client
	logger   *logging.Logger
	apiKey   string
	fallback *OpenGraphCollector
}

// NewYouTubeCollector builds a collector. apiKey may be empty.
func NewYouTubeCollector(client *http.Client, logger *logging.Logger, apiKey string) *YouTubeCollector {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &YouTubeCollector{
		client:   client,
		logger:   logger,
		apiKey:   strings.TrimSpace(apiKey),
		fallback: NewOpenGraphCollector(client),
	}
}

// Matches returns true for youtube.com and youtu.be hosts.
func (s *YouTubeCollector) Matches(u *url.URL) bool {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return true
	}
	return false
}

// Collect fetches the preview for a video link.
func (s *YouTubeCollector) Collect(ctx context.Context, u *url.URL) (*Preview, error) {
	id := VideoID(u)
	if id == "" {
		return nil, fmt.Errorf("unable to extract video id from url %q", u.String())
	}
	if s.apiKey == "" {
		preview, err := s.fallback.Collect(ctx, u)
		if err != nil {
			return nil, err
		}
		preview.Provider = "YouTube"
		return preview, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	base := s.client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	keyed := &http.Client{Transport: &transport.APIKey{Key: s.apiKey, Transport: base}}
	service, err := youtube.NewService(ctx, option.WithHTTPClient(keyed))
	if err != nil {
		s.logger.Error("metadata", "error creating YouTube service", err, map[string]any{"url": u.String()})
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	videos, err := service.Videos.List([]string{"snippet"}).Id(id).Context(ctx).Do()
	if err != nil {
		s.logger.Error("metadata", "YouTube API call failed", err, map[string]any{"video_id": id})
		return nil, fmt.Errorf("youtube videos.list: %w", err)
	}
	if len(videos.Items) == 0 || videos.Items[0].Snippet == nil {
		return nil, fmt.Errorf("no video found for id %q", id)
	}

	snippet := videos.Items[0].Snippet
	preview := &Preview{
		URL:         "https://www.youtube.com/watch?v=" + id,
		Provider:    "YouTube",
		Title:       snippet.Title,
		Description: snippet.Description,
		Author:      snippet.ChannelTitle,
	}
	if t := snippet.Thumbnails; t != nil {
		switch {
		case t.High != nil:
			preview.Image = t.High.Url
		case t.Default != nil:
			preview.Image = t.Default.Url
		}
	}
	return preview, nil
}

// VideoID extracts the 11 character video ID from the common YouTube link
// shapes: watch?v=, youtu.be/, /shorts/, /embed/ and /live/.
func VideoID(u *url.URL) string {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.Trim(u.Path, "/")
	var candidate string
	switch {
	case host == "youtu.be":
		candidate, _, _ = strings.Cut(path, "/")
	case path == "watch":
		candidate = u.Query().Get("v")
	default:
		for _, prefix := range []string{"shorts/", "embed/", "live/"} {
			if rest, ok := strings.CutPrefix(path, prefix); ok {
				candidate, _, _ = strings.Cut(rest, "/")
				break
			}
		}
	}
	if !videoIDPattern.MatchString(candidate) {
		return ""
	}
	return candidate
}
