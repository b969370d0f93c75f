// Package telegram wraps the outbound Bot API calls the service issues:
// plain-text replies to the operator and the best-effort archive mirror.
package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mdkhasimgs/tera-upload/internal/store"
)

// Client sends messages through a single bot identity. The archive target is
// either a channel username ("@channel") or a numeric chat ID.
type Client struct {
	api             *tgbotapi.BotAPI
	archiveUsername string
	archiveChatID   int64
}

// New creates a Client that mirrors media to the given archive chat.
func New(api *tgbotapi.BotAPI, archiveChat string) (*Client, error) {
	c := &Client{api: api}
	if strings.HasPrefix(archiveChat, "@") {
		c.archiveUsername = archiveChat
		return c, nil
	}

	id, err := strconv.ParseInt(archiveChat, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("archive chat %q is neither @username nor a chat ID: %w", archiveChat, err)
	}
	c.archiveChatID = id
	return c, nil
}

// SendText sends a plain-text reply to the given chat.
func (c *Client) SendText(chatID int64, text string) error {
	if _, err := c.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send text to chat %d: %w", chatID, err)
	}
	return nil
}

// Mirror forwards the media behind a file descriptor to the archive chat with
// the post title as caption. The mirrored copy is sent with protected content
// so it cannot be re-saved or forwarded out of the channel.
func (c *Client) Mirror(fd store.FileDescriptor, title string) error {
	var msg tgbotapi.Chattable

	switch fd.MediaType {
	case store.MediaTypePhoto:
		cfg := tgbotapi.NewPhoto(c.archiveChatID, tgbotapi.FileID(fd.MediaID))
		cfg.ChannelUsername = c.archiveUsername
		cfg.Caption = title
		cfg.ProtectContent = true
		msg = cfg

	case store.MediaTypeVideo:
		cfg := tgbotapi.NewVideo(c.archiveChatID, tgbotapi.FileID(fd.MediaID))
		cfg.ChannelUsername = c.archiveUsername
		cfg.Caption = title
		cfg.SupportsStreaming = true
		cfg.ProtectContent = true
		msg = cfg

	case store.MediaTypeDocument:
		cfg := tgbotapi.NewDocument(c.archiveChatID, tgbotapi.FileID(fd.MediaID))
		cfg.ChannelUsername = c.archiveUsername
		cfg.Caption = title
		cfg.ProtectContent = true
		msg = cfg

	default:
		return fmt.Errorf("cannot mirror media type %q", fd.MediaType)
	}

	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("mirror %s to archive: %w", fd.MediaType, err)
	}
	return nil
}
