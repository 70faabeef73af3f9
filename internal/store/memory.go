package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore provides an in-memory implementation of Store for tests and
// local development without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	projects []Project
	snippets []Snippet
	users    []User
	now      func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema satisfies the Store interface. No-op for memory store.
func (m *MemoryStore) EnsureSchema(context.Context) error {
	return nil
}

// CreateProject stores a project, assigning an ID and timestamp.
func (m *MemoryStore) CreateProject(_ context.Context, project Project) (Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	project.CreatedAt = m.now()
	project.Tags = slices.Clone(project.Tags)
	m.projects = append(m.projects, project)
	return project, nil
}

// GetProject returns the project with id or ErrNotFound.
func (m *MemoryStore) GetProject(_ context.Context, id string) (Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, project := range m.projects {
		if project.ID == strings.TrimSpace(id) {
			return project, nil
		}
	}
	return Project{}, ErrNotFound
}

// ListProjects returns the newest projects first.
func (m *MemoryStore) ListProjects(_ context.Context, filter ListFilter) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Project, 0, len(m.projects))
	for i := len(m.projects) - 1; i >= 0 && len(out) < filter.limit(); i-- {
		p := m.projects[i]
		if matches(filter, p.Software, p.Tags) {
			out = append(out, p)
		}
	}
	return out, nil
}

// CreateSnippet stores a snippet, assigning an ID and timestamp.
func (m *MemoryStore) CreateSnippet(_ context.Context, snippet Snippet) (Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snippet.ID == "" {
		snippet.ID = uuid.NewString()
	}
	snippet.CreatedAt = m.now()
	snippet.Tags = slices.Clone(snippet.Tags)
	m.snippets = append(m.snippets, snippet)
	return snippet, nil
}

// ListSnippets returns the newest snippets first.
func (m *MemoryStore) ListSnippets(_ context.Context, filter ListFilter) ([]Snippet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Snippet, 0, len(m.snippets))
	for i := len(m.snippets) - 1; i >= 0 && len(out) < filter.limit(); i-- {
		s := m.snippets[i]
		if matches(filter, s.Software, s.Tags) {
			out = append(out, s)
		}
	}
	return out, nil
}

// CreateUser stores a user. Usernames and emails are unique, case-insensitively.
func (m *MemoryStore) CreateUser(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return User{}, ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = m.now()
	m.users = append(m.users, user)
	return user, nil
}

// ListTags counts tag usage across projects and snippets, most used first.
func (m *MemoryStore) ListTags(context.Context) ([]TagCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, p := range m.projects {
		for _, tag := range p.Tags {
			counts[tag]++
		}
	}
	for _, s := range m.snippets {
		for _, tag := range s.Tags {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, TagCount{Name: name, Count: count})
	}
	sortTags(out)
	return out, nil
}

func matches(filter ListFilter, software string, tags []string) bool {
	if filter.Software != "" && !strings.EqualFold(filter.Software, software) {
		return false
	}
	if filter.Tag != "" && !slices.Contains(tags, filter.Tag) {
		return false
	}
	return true
}

func sortTags(tags []TagCount) {
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
}
