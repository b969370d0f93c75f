package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestRegistry(t *testing.T) *SQLiteRegistry {
	t.Helper()
	r, err := NewSQLiteRegistry(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("failed to open test registry: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func videoPost(id string) *Post {
	return &Post{
		ID:    id,
		Title: "Demo",
		File: FileDescriptor{
			MediaType: MediaTypeVideo,
			MediaID:   "BAACAgIAAxkBAAM",
			Info:      FileInfo{Size: 1024, Duration: 42, ThumbID: "AAMCAgADGQE"},
		},
		PostedBy: 7598595878,
		PostedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Views:    0,
	}
}

func TestCreateGet_RoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	want := videoPost("1700000000abc123")
	if err := r.Create(ctx, want); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := r.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestCreate_OptionalFieldsOmitted(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	// A document with no size reported by the transport.
	post := &Post{
		ID:    "1700000000doc001",
		Title: "Untitled",
		File: FileDescriptor{
			MediaType: MediaTypeDocument,
			MediaID:   "BQACAgIAAxkBAAN",
		},
		PostedBy: 7598595878,
		PostedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := r.Create(ctx, post); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := r.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.File.Info != (FileInfo{}) {
		t.Errorf("expected empty file info, got %+v", got.File.Info)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	post := videoPost("1700000000dup001")
	if err := r.Create(ctx, post); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := r.Create(ctx, post)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetTitle(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	post := videoPost("1700000000ttl001")
	if err := r.Create(ctx, post); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := r.SetTitle(ctx, post.ID, "Renamed"); err != nil {
		t.Fatalf("SetTitle failed: %v", err)
	}

	got, err := r.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("expected title Renamed, got %q", got.Title)
	}

	// Only the title changes.
	if got.File != post.File || got.PostedBy != post.PostedBy || got.Views != post.Views {
		t.Errorf("SetTitle modified fields other than title: %+v", got)
	}
}

func TestSetTitle_Idempotent(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	post := videoPost("1700000000idm001")
	if err := r.Create(ctx, post); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := r.SetTitle(ctx, post.ID, "Same Title"); err != nil {
			t.Fatalf("SetTitle #%d failed: %v", i+1, err)
		}
	}

	got, err := r.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Same Title" {
		t.Errorf("expected title 'Same Title', got %q", got.Title)
	}
}

func TestSetTitle_NotFound(t *testing.T) {
	r := newTestRegistry(t)

	err := r.SetTitle(context.Background(), "nonexistent", "New Title")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
