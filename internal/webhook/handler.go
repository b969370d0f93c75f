// Package webhook provides the HTTP handler that receives Telegram update
// notifications.
//
// Telegram POSTs one JSON-encoded Update per request. When a secret token is
// configured (via setWebhook's secret_token parameter), Telegram echoes it in
// the X-Telegram-Bot-Api-Secret-Token header and the handler rejects requests
// that do not carry it.
//
// Reference: https://core.telegram.org/bots/api#setwebhook
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxBodySize is the maximum allowed request body size (1 MB). A single
// Telegram update stays far under this limit.
const maxBodySize = 1 << 20 // 1 MB

// secretTokenHeader is the header Telegram uses to echo the webhook secret.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler consumes decoded Telegram updates.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Handler handles Telegram webhook notifications.
type Handler struct {
	router UpdateHandler
	secret string
}

// NewHandler creates a webhook handler dispatching to the given router.
// secret may be empty, in which case the secret-token header is not checked.
func NewHandler(router UpdateHandler, secret string) *Handler {
	return &Handler{
		router: router,
		secret: secret,
	}
}

// ServeHTTP decodes one Telegram update and dispatches it. The update is
// processed before responding so Telegram retries delivery if the process
// dies mid-handling.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.secret != "" {
		token := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
			log.Warn().Msg("Webhook request with missing or invalid secret token")
			http.Error(w, "invalid secret token", http.StatusForbidden)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Error().Err(err).Msg("Webhook: failed to read body")
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Warn().Err(err).Msg("Webhook: malformed update payload")
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	log.Debug().
		Str("requestId", requestID).
		Int("updateId", update.UpdateID).
		Msg("Webhook update received")

	h.router.HandleUpdate(r.Context(), update)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
