// Package bot contains the inbound message handling for the uploader bot:
// the authorization gate, the media ingestion pipeline, the batch title
// editor, and the router that dispatches Telegram updates between them.
package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Sender delivers plain-text replies to a chat.
type Sender interface {
	SendText(chatID int64, text string) error
}

// Router dispatches inbound updates: commands first, then text belonging to
// an active edit session, then media into the ingestion pipeline. Every path
// runs behind the authorization gate.
type Router struct {
	gate     *Gate
	pipeline *Pipeline
	editor   *Editor
	sender   Sender
}

// NewRouter wires the update dispatch.
func NewRouter(gate *Gate, pipeline *Pipeline, editor *Editor, sender Sender) *Router {
	return &Router{
		gate:     gate,
		pipeline: pipeline,
		editor:   editor,
		sender:   sender,
	}
}

// HandleUpdate processes one inbound Telegram update. Handler errors are
// logged and answered with a reply where appropriate; they never propagate to
// the transport.
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		if !r.gate.Allow(msg.From.ID) {
			log.Warn().Int64("userId", msg.From.ID).Str("command", msg.Command()).Msg("Unauthorized command")
			r.reply(chatID, "You are not authorized to use this bot.")
			return
		}
		r.handleCommand(chatID, msg.Command())
		return
	}

	// Non-command traffic from anyone but the operator is dropped silently.
	if !r.gate.Allow(msg.From.ID) {
		log.Debug().Int64("userId", msg.From.ID).Msg("Dropped update from unauthorized sender")
		return
	}

	if msg.Text != "" {
		for _, text := range r.editor.HandleText(ctx, chatID, msg.Text) {
			r.reply(chatID, text)
		}
		return
	}

	r.handleMedia(ctx, chatID, msg)
}

func (r *Router) handleCommand(chatID int64, command string) {
	switch command {
	case "start":
		r.reply(chatID, "Send me photos/videos/documents one by one.\nEach file will get its own link via the main bot.")
	case "change_title":
		r.reply(chatID, r.editor.Begin(chatID))
	case "cancel":
		r.reply(chatID, r.editor.Cancel(chatID))
	default:
		r.reply(chatID, "Unknown command.")
	}
}

func (r *Router) handleMedia(ctx context.Context, chatID int64, msg *tgbotapi.Message) {
	link, err := r.pipeline.Ingest(ctx, msg)
	switch {
	case errors.Is(err, ErrUnsupportedMedia):
		r.reply(chatID, "Unsupported media type.")
	case err != nil:
		log.Error().Err(err).Int64("chatId", chatID).Msg("Ingest failed")
		r.reply(chatID, "Failed to save the post. Try again later.")
	default:
		r.reply(chatID, "Post saved!\nLink: "+link)
	}
}

func (r *Router) reply(chatID int64, text string) {
	if err := r.sender.SendText(chatID, text); err != nil {
		log.Error().Err(err).Int64("chatId", chatID).Msg("Failed to send reply")
	}
}
