package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/mdkhasimgs/tera-upload/internal/ident"
	"github.com/mdkhasimgs/tera-upload/internal/links"
	"github.com/mdkhasimgs/tera-upload/internal/metrics"
	"github.com/mdkhasimgs/tera-upload/internal/store"
)

// ErrUnsupportedMedia is returned when an inbound attachment is none of
// photo, video, or document. No record is created in that case.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// defaultTitle is stored when the operator supplies no caption.
const defaultTitle = "Untitled"

// Mirror is the best-effort archive destination for ingested media. A Mirror
// failure is logged and discarded by the pipeline; it never unwinds the
// already-committed registry write.
type Mirror interface {
	Mirror(fd store.FileDescriptor, title string) error
}

// Pipeline turns an inbound media message into a durable post record and a
// public deep link.
type Pipeline struct {
	registry    store.PostRegistry
	mirror      Mirror
	botUsername string
	operatorID  int64

	newID func() string
	now   func() time.Time
}

// NewPipeline creates an ingestion pipeline issuing links that resolve via
// the given public bot username.
func NewPipeline(registry store.PostRegistry, mirror Mirror, botUsername string, operatorID int64) *Pipeline {
	return &Pipeline{
		registry:    registry,
		mirror:      mirror,
		botUsername: botUsername,
		operatorID:  operatorID,
		newID:       ident.New,
		now:         time.Now,
	}
}

// Ingest classifies the message's attachment, persists a post record, mirrors
// the media to the archive chat, and returns the public deep link.
//
// ErrUnsupportedMedia is the only caller-visible rejection; a registry write
// failure fails the whole call and no link is issued. A mirror failure is
// logged and swallowed — link durability takes priority over archival
// completeness.
func (p *Pipeline) Ingest(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	fd, ok := classify(msg)
	if !ok {
		return "", ErrUnsupportedMedia
	}

	title := strings.TrimSpace(msg.Caption)
	if title == "" {
		title = defaultTitle
	}

	post := &store.Post{
		ID:       p.newID(),
		Title:    title,
		File:     fd,
		PostedBy: p.operatorID,
		PostedAt: p.now().UTC(),
		Views:    0,
	}

	if err := p.registry.Create(ctx, post); err != nil {
		return "", fmt.Errorf("persist post: %w", err)
	}

	if err := p.mirror.Mirror(fd, title); err != nil {
		log.Warn().Err(err).Str("postId", post.ID).Msg("Archive mirror failed")
	}

	log.Info().
		Str("postId", post.ID).
		Str("mediaType", string(fd.MediaType)).
		Msg("Post saved")

	metrics.New("TeraUpload").
		Dimension("Component", "ingest").
		Count("PostsIngested").
		Property("postId", post.ID).
		Property("mediaType", string(fd.MediaType)).
		Flush()

	return links.Make(p.botUsername, post.ID), nil
}

// classify maps the populated attachment field of a message onto a file
// descriptor. Exactly one of photo, video, or document is expected; anything
// else is rejected. Optional metadata the transport did not supply stays at
// its zero value and is omitted by the store layer.
func classify(msg *tgbotapi.Message) (store.FileDescriptor, bool) {
	switch {
	case len(msg.Photo) > 0:
		largest := largestPhoto(msg.Photo)
		return store.FileDescriptor{
			MediaType: store.MediaTypePhoto,
			MediaID:   largest.FileID,
			Info:      store.FileInfo{Size: int64(largest.FileSize)},
		}, true

	case msg.Video != nil:
		v := msg.Video
		info := store.FileInfo{
			Size:     int64(v.FileSize),
			Duration: v.Duration,
		}
		if v.Thumbnail != nil {
			info.ThumbID = v.Thumbnail.FileID
		}
		return store.FileDescriptor{
			MediaType: store.MediaTypeVideo,
			MediaID:   v.FileID,
			Info:      info,
		}, true

	case msg.Document != nil:
		d := msg.Document
		return store.FileDescriptor{
			MediaType: store.MediaTypeDocument,
			MediaID:   d.FileID,
			Info:      store.FileInfo{Size: int64(d.FileSize)},
		}, true
	}

	return store.FileDescriptor{}, false
}

// largestPhoto picks the highest-resolution variant of a photo. The Bot API
// sends one PhotoSize per resolution; the canonical media reference is the
// largest one.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
