package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresStore persists shared content in a PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the content tables when they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	software     TEXT NOT NULL,
	project_type TEXT NOT NULL,
	code         TEXT NOT NULL DEFAULT '',
	code_before  TEXT NOT NULL DEFAULT '',
	code_after   TEXT NOT NULL DEFAULT '',
	audio_file   TEXT NOT NULL DEFAULT '',
	youtube_link TEXT NOT NULL DEFAULT '',
	tags         TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS snippets (
	id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	software     TEXT NOT NULL DEFAULT '',
	code         TEXT NOT NULL,
	audio_file   TEXT NOT NULL DEFAULT '',
	youtube_link TEXT NOT NULL DEFAULT '',
	tags         TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	username      TEXT NOT NULL,
	email         TEXT NOT NULL,
	password_hash BYTEA NOT NULL,
	portfolio_url TEXT NOT NULL DEFAULT '',
	mastodon_url  TEXT NOT NULL DEFAULT '',
	bluesky_url   TEXT NOT NULL DEFAULT '',
	linkedin_url  TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (lower(username));
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

const projectColumns = `id::text, name, description, software, project_type, code, code_before, code_after, audio_file, youtube_link, tags, created_at`

// CreateProject inserts a project and returns it with its generated ID.
func (s *PostgresStore) CreateProject(ctx context.Context, project Project) (Project, error) {
	query := `
INSERT INTO projects (name, description, software, project_type, code, code_before, code_after, audio_file, youtube_link, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + projectColumns
	row := s.pool.QueryRow(ctx, query,
		project.Name, project.Description, project.Software, project.Type,
		project.Code, project.CodeBefore, project.CodeAfter,
		project.AudioFile, project.YouTubeLink, nonNil(project.Tags))
	return scanProject(row)
}

// GetProject fetches a single project by ID.
func (s *PostgresStore) GetProject(ctx context.Context, id string) (Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id::text = $1`
	project, err := scanProject(s.pool.QueryRow(ctx, query, strings.TrimSpace(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	return project, err
}

// ListProjects returns the newest projects first.
func (s *PostgresStore) ListProjects(ctx context.Context, filter ListFilter) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
WHERE ($1 = '' OR lower(software) = lower($1)) AND ($2 = '' OR $2 = ANY(tags))
ORDER BY created_at DESC LIMIT $3`
	rows, err := s.pool.Query(ctx, query, filter.Software, filter.Tag, filter.limit())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

const snippetColumns = `id::text, title, description, software, code, audio_file, youtube_link, tags, created_at`

// CreateSnippet inserts a snippet and returns it with its generated ID.
func (s *PostgresStore) CreateSnippet(ctx context.Context, snippet Snippet) (Snippet, error) {
	query := `
INSERT INTO snippets (title, description, software, code, audio_file, youtube_link, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + snippetColumns
	row := s.pool.QueryRow(ctx, query,
		snippet.Title, snippet.Description, snippet.Software, snippet.Code,
		snippet.AudioFile, snippet.YouTubeLink, nonNil(snippet.Tags))
	return scanSnippet(row)
}

// ListSnippets returns the newest snippets first.
func (s *PostgresStore) ListSnippets(ctx context.Context, filter ListFilter) ([]Snippet, error) {
	query := `SELECT ` + snippetColumns + ` FROM snippets
WHERE ($1 = '' OR lower(software) = lower($1)) AND ($2 = '' OR $2 = ANY(tags))
ORDER BY created_at DESC LIMIT $3`
	rows, err := s.pool.Query(ctx, query, filter.Software, filter.Tag, filter.limit())
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]Snippet, 0)
	for rows.Next() {
		snippet, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, snippet)
	}
	return snippets, rows.Err()
}

// CreateUser inserts a user, mapping unique violations to ErrConflict.
func (s *PostgresStore) CreateUser(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (username, email, password_hash, portfolio_url, mastodon_url, bluesky_url, linkedin_url)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text, created_at`
	err := s.pool.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.PortfolioURL, user.MastodonURL, user.BlueskyURL, user.LinkedinURL,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// ListTags counts tag usage across projects and snippets, most used first.
func (s *PostgresStore) ListTags(ctx context.Context) ([]TagCount, error) {
	const query = `
SELECT tag, count(*) FROM (
	SELECT unnest(tags) AS tag FROM projects
	UNION ALL
	SELECT unnest(tags) AS tag FROM snippets
) t
GROUP BY tag
ORDER BY count(*) DESC, tag ASC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]TagCount, 0)
	for rows.Next() {
		var tag TagCount
		if err := rows.Scan(&tag.Name, &tag.Count); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Software, &p.Type,
		&p.Code, &p.CodeBefore, &p.CodeAfter, &p.AudioFile, &p.YouTubeLink, &p.Tags, &p.CreatedAt)
	return p, err
}

func scanSnippet(row pgx.Row) (Snippet, error) {
	var s Snippet
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Software, &s.Code,
		&s.AudioFile, &s.YouTubeLink, &s.Tags, &s.CreatedAt)
	return s, err
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
