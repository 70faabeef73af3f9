package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates that the requested entity does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict indicates a unique constraint (username, email) was violated.
	ErrConflict = errors.New("store: conflict")
)

// Project is a shared live-coded piece, either finished or a before/after pair.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Software    string    `json:"software"`
	Type        string    `json:"type"`
	Code        string    `json:"code,omitempty"`
	CodeBefore  string    `json:"codeBefore,omitempty"`
	CodeAfter   string    `json:"codeAfter,omitempty"`
	AudioFile   string    `json:"audioFile,omitempty"`
	YouTubeLink string    `json:"youtubeLink,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Snippet is a short reusable pattern.
type Snippet struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Software    string    `json:"software"`
	Code        string    `json:"code"`
	AudioFile   string    `json:"audioFile,omitempty"`
	YouTubeLink string    `json:"youtubeLink,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// User is a registered account. PasswordHash is never serialised.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	PortfolioURL string    `json:"portfolioUrl,omitempty"`
	MastodonURL  string    `json:"mastodonUrl,omitempty"`
	BlueskyURL   string    `json:"blueskyUrl,omitempty"`
	LinkedinURL  string    `json:"linkedinUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TagCount reports how many projects and snippets use a tag.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ListFilter narrows project and snippet listings.
type ListFilter struct {
	Software string
	Tag      string
	Limit    int
}

func (f ListFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return 50
	case f.Limit > 200:
		return 200
	default:
		return f.Limit
	}
}

// Store defines persistence operations for shared content.
type Store interface {
	EnsureSchema(ctx context.Context) error
	CreateProject(ctx context.Context, project Project) (Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	ListProjects(ctx context.Context, filter ListFilter) ([]Project, error)
	CreateSnippet(ctx context.Context, snippet Snippet) (Snippet, error)
	ListSnippets(ctx context.Context, filter ListFilter) ([]Snippet, error)
	CreateUser(ctx context.Context, user User) (User, error)
	ListTags(ctx context.Context) ([]TagCount, error)
}
