// Package store provides durable storage for post records. Each post pairs
// one archived media item with a title and the public identifier embedded in
// its deep link.
//
// Two backends implement PostRegistry: DynamoDB (the hosted deployment) and
// SQLite (single-binary local deployment). Both store the same layout: a
// "posts" collection keyed by id with fields title, file.media_type,
// file.media_id, file.file_info.{size,duration,thumb_id}, posted_by,
// posted_at (ISO-8601 UTC), and views. Optional file_info keys are omitted
// entirely when the transport did not supply them, never stored as nulls.
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by PostRegistry implementations.
var (
	// ErrNotFound is returned when no post exists for the given ID.
	ErrNotFound = errors.New("post not found")

	// ErrAlreadyExists is returned when creating a post whose ID is already
	// present. The ID generator makes this practically impossible, but the
	// contract stays defensive.
	ErrAlreadyExists = errors.New("post already exists")
)

// MediaType classifies the stored media reference.
type MediaType string

const (
	MediaTypePhoto    MediaType = "photo"
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
)

// FileInfo carries the optional transport metadata for a media reference.
// Zero values mean the transport did not supply the field.
type FileInfo struct {
	// Size is the media size in bytes.
	Size int64

	// Duration is the video length in seconds. Video only.
	Duration int

	// ThumbID is the opaque thumbnail reference. Video only.
	ThumbID string
}

// FileDescriptor identifies the media behind a post. It is set exactly once
// at creation and never modified.
type FileDescriptor struct {
	MediaType MediaType
	MediaID   string
	Info      FileInfo
}

// Post is the durable record behind one issued deep link. Title is the only
// field mutated after creation, and only via full-value replace.
type Post struct {
	ID       string
	Title    string
	File     FileDescriptor
	PostedBy int64
	PostedAt time.Time
	Views    int64
}

// PostRegistry is the persistence interface for post records. Each method
// round-trips to the durable store; there is no in-process caching. Per-record
// operations are atomic at the store level.
type PostRegistry interface {
	// Create inserts a new post. Returns ErrAlreadyExists if the ID is
	// already present.
	Create(ctx context.Context, post *Post) error

	// Get retrieves a post by ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Post, error)

	// SetTitle replaces the title of an existing post, leaving every other
	// field untouched. Returns ErrNotFound when the ID is absent.
	SetTitle(ctx context.Context, id, title string) error
}
