package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryStoreProjects(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	first, err := store.CreateProject(ctx, Project{Name: "Acid", Software: "tidal", Type: "finished", Tags: []string{"acid"}})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	second, err := store.CreateProject(ctx, Project{Name: "Drums", Software: "strudel", Type: "finished", Tags: []string{"drums", "acid"}})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", first.ID, second.ID)
	}

	got, err := store.GetProject(ctx, first.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if diff := cmp.Diff(first, got); diff != "" {
		t.Fatalf("project mismatch (-want +got):\n%s", diff)
	}

	all, _ := store.ListProjects(ctx, ListFilter{})
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}
	tidal, _ := store.ListProjects(ctx, ListFilter{Software: "TIDAL"})
	if len(tidal) != 1 || tidal[0].ID != first.ID {
		t.Fatalf("software filter mismatch: %+v", tidal)
	}
	drums, _ := store.ListProjects(ctx, ListFilter{Tag: "drums"})
	if len(drums) != 1 || drums[0].ID != second.ID {
		t.Fatalf("tag filter mismatch: %+v", drums)
	}
	limited, _ := store.ListProjects(ctx, ListFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}

	if _, err := store.GetProject(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreTagsCountAcrossContent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.CreateProject(ctx, Project{Name: "A", Tags: []string{"acid", "techno"}})
	store.CreateSnippet(ctx, Snippet{Title: "B", Code: "d1 $ s \"bd\"", Tags: []string{"acid"}})
	store.CreateSnippet(ctx, Snippet{Title: "C", Code: "s(\"hh\")", Tags: []string{"ambient"}})

	tags, err := store.ListTags(ctx)
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	want := []TagCount{{Name: "acid", Count: 2}, {Name: "ambient", Count: 1}, {Name: "techno", Count: 1}}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreUserConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if _, err := store.CreateUser(ctx, User{Username: "coder", Email: "coder@example.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := store.CreateUser(ctx, User{Username: "CODER", Email: "other@example.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected username conflict, got %v", err)
	}
	if _, err := store.CreateUser(ctx, User{Username: "other", Email: "Coder@Example.com"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected email conflict, got %v", err)
	}
}
