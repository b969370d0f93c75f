package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mdkhasimgs/tera-upload/internal/links"
	"github.com/mdkhasimgs/tera-upload/internal/metrics"
	"github.com/mdkhasimgs/tera-upload/internal/store"
)

// editorState is the conversation state of one chat's title-edit session.
type editorState int

const (
	// stateCollecting awaits the list of links to edit.
	stateCollecting editorState = iota
	// stateEditing awaits the next title for targets[cursor].
	stateEditing
)

// target is one resolved post in the edit queue.
type target struct {
	id    string
	title string
}

// session tracks one chat's in-flight batch edit. Sessions live in memory
// only: a process restart silently discards them, and no expiry timeout is
// applied — an abandoned session occupies memory until cancelled or
// completed. Cursor advancement assumes in-order delivery of the chat's
// messages; a duplicate delivery would consume a title prompt twice.
type session struct {
	state   editorState
	targets []target
	cursor  int
}

// Editor walks the operator through retitling a batch of previously issued
// links, one title per link, in the order the links were supplied.
type Editor struct {
	registry    store.PostRegistry
	botUsername string

	mu       sync.Mutex
	sessions map[int64]*session
}

// NewEditor creates a batch title editor backed by the given registry.
func NewEditor(registry store.PostRegistry, botUsername string) *Editor {
	return &Editor{
		registry:    registry,
		botUsername: botUsername,
		sessions:    make(map[int64]*session),
	}
}

// Active reports whether the chat has an in-flight edit session.
func (e *Editor) Active(chatID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[chatID]
	return ok
}

// Begin starts a new edit session for the chat and returns the prompt for the
// link list. Any previous session for the chat is discarded.
func (e *Editor) Begin(chatID int64) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessions[chatID] = &session{state: stateCollecting}
	log.Debug().Int64("chatId", chatID).Msg("Title edit session started")

	return "Send the generated links (one per line) whose titles you want to change:"
}

// Cancel discards the chat's edit session, if any, with no further writes.
func (e *Editor) Cancel(chatID int64) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[chatID]; !ok {
		return "No title edit in progress."
	}
	delete(e.sessions, chatID)
	log.Debug().Int64("chatId", chatID).Msg("Title edit session cancelled")
	return "Title change process cancelled."
}

// HandleText feeds one text message into the chat's session and returns the
// replies to send, in order. With no active session the operator is told to
// restart the flow.
func (e *Editor) HandleText(ctx context.Context, chatID int64, text string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[chatID]
	if !ok {
		return []string{"No title edit in progress. Send /change_title to start."}
	}

	switch s.state {
	case stateCollecting:
		return e.collectLinks(ctx, chatID, s, text)
	case stateEditing:
		return e.applyTitle(ctx, chatID, s, text)
	}
	return nil
}

// collectLinks resolves each line of the operator's message to a post.
// Lines that do not parse and ids that do not resolve are silently dropped;
// only the aggregate empty outcome is reported, and that ends the session.
func (e *Editor) collectLinks(ctx context.Context, chatID int64, s *session, text string) []string {
	for _, line := range strings.Split(text, "\n") {
		id, ok := links.ExtractID(line)
		if !ok {
			continue
		}

		post, err := e.registry.Get(ctx, id)
		if err != nil {
			log.Debug().Err(err).Str("postId", id).Msg("Link skipped during collection")
			continue
		}
		s.targets = append(s.targets, target{id: post.ID, title: post.Title})
	}

	if len(s.targets) == 0 {
		delete(e.sessions, chatID)
		return []string{"No valid links found. Send /change_title to try again."}
	}

	s.state = stateEditing
	s.cursor = 0

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d post(s):\n", len(s.targets))
	for i, t := range s.targets {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.title)
	}
	return []string{
		strings.TrimRight(b.String(), "\n"),
		"Send the new title for post 1:",
	}
}

// applyTitle replaces the title of the target under the cursor. A registry
// failure is reported but the cursor still advances — failures are per-item,
// never fatal to the batch.
func (e *Editor) applyTitle(ctx context.Context, chatID int64, s *session, text string) []string {
	t := s.targets[s.cursor]
	newTitle := strings.TrimSpace(text)

	var replies []string
	if err := e.registry.SetTitle(ctx, t.id, newTitle); err != nil {
		log.Error().Err(err).Str("postId", t.id).Msg("Title update failed")
		replies = append(replies, fmt.Sprintf("Failed to update the title for post %d. Continuing.", s.cursor+1))
	} else {
		replies = append(replies, fmt.Sprintf("Title updated.\nLink: %s\nNew title: %s",
			links.Make(e.botUsername, t.id), newTitle))

		metrics.New("TeraUpload").
			Dimension("Component", "editor").
			Count("TitlesEdited").
			Property("postId", t.id).
			Flush()
	}

	s.cursor++
	if s.cursor < len(s.targets) {
		replies = append(replies, fmt.Sprintf("Send the new title for post %d:", s.cursor+1))
		return replies
	}

	delete(e.sessions, chatID)
	log.Info().Int64("chatId", chatID).Int("targets", len(s.targets)).Msg("Title edit session completed")
	return append(replies, "All titles processed.")
}
