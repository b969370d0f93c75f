package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRegistry implements PostRegistry using a local SQLite database.
type SQLiteRegistry struct {
	db *sql.DB
}

// Compile-time interface check.
var _ PostRegistry = (*SQLiteRegistry)(nil)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS posts (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		media_type TEXT NOT NULL,
		media_id   TEXT NOT NULL,
		file_info  TEXT NOT NULL,
		posted_by  INTEGER NOT NULL,
		posted_at  TEXT NOT NULL,
		views      INTEGER NOT NULL
	)`

// NewSQLiteRegistry opens (or creates) the database at the given path,
// ensures the posts table exists, and returns a new SQLiteRegistry. The
// caller should call Close when the registry is no longer needed.
func NewSQLiteRegistry(path string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create posts table: %w", err)
	}

	return &SQLiteRegistry{db: db}, nil
}

// Close closes the underlying database connection.
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

// sqliteFileInfo is the JSON shape of the file_info column. Keys the
// transport did not supply are omitted.
type sqliteFileInfo struct {
	Size     int64  `json:"size,omitempty"`
	Duration int    `json:"duration,omitempty"`
	ThumbID  string `json:"thumb_id,omitempty"`
}

func (r *SQLiteRegistry) Create(ctx context.Context, post *Post) error {
	info, err := json.Marshal(sqliteFileInfo{
		Size:     post.File.Info.Size,
		Duration: post.File.Info.Duration,
		ThumbID:  post.File.Info.ThumbID,
	})
	if err != nil {
		return fmt.Errorf("marshal file_info for post %s: %w", post.ID, err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, media_type, media_id, file_info, posted_by, posted_at, views)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		post.ID,
		post.Title,
		string(post.File.MediaType),
		post.File.MediaID,
		string(info),
		post.PostedBy,
		post.PostedAt.UTC().Format(time.RFC3339),
		post.Views,
	)
	if err != nil {
		return fmt.Errorf("insert post %s: %w", post.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert post %s: %w", post.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("create post %s: %w", post.ID, ErrAlreadyExists)
	}
	return nil
}

func (r *SQLiteRegistry) Get(ctx context.Context, id string) (*Post, error) {
	var (
		post     Post
		mediaTyp string
		infoRaw  string
		postedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, media_type, media_id, file_info, posted_by, posted_at, views
		FROM posts WHERE id = ?`, id,
	).Scan(
		&post.ID,
		&post.Title,
		&mediaTyp,
		&post.File.MediaID,
		&infoRaw,
		&post.PostedBy,
		&postedAt,
		&post.Views,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query post %s: %w", id, err)
	}

	var info sqliteFileInfo
	if err := json.Unmarshal([]byte(infoRaw), &info); err != nil {
		return nil, fmt.Errorf("unmarshal file_info for post %s: %w", id, err)
	}

	post.File.MediaType = MediaType(mediaTyp)
	post.File.Info = FileInfo{Size: info.Size, Duration: info.Duration, ThumbID: info.ThumbID}

	post.PostedAt, err = time.Parse(time.RFC3339, postedAt)
	if err != nil {
		return nil, fmt.Errorf("parse posted_at for post %s: %w", id, err)
	}

	return &post, nil
}

func (r *SQLiteRegistry) SetTitle(ctx context.Context, id, title string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE posts SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("update title for post %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update title for post %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("set title for post %s: %w", id, ErrNotFound)
	}
	return nil
}
