package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const testSecret = "my_test_secret_token"

// recordingHandler captures updates dispatched by the webhook handler.
type recordingHandler struct {
	updates []tgbotapi.Update
}

func (r *recordingHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	r.updates = append(r.updates, update)
}

const updatePayload = `{"update_id":42,"message":{"message_id":1,"from":{"id":7598595878,"is_bot":false,"first_name":"Op"},"chat":{"id":7598595878,"type":"private"},"date":1717243200,"text":"hello"}}`

func TestWebhook_DispatchesUpdate(t *testing.T) {
	rec := &recordingHandler{}
	h := NewHandler(rec, "")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(updatePayload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if len(rec.updates) != 1 {
		t.Fatalf("expected 1 dispatched update, got %d", len(rec.updates))
	}
	if rec.updates[0].UpdateID != 42 {
		t.Errorf("expected update ID 42, got %d", rec.updates[0].UpdateID)
	}
	if rec.updates[0].Message == nil || rec.updates[0].Message.Text != "hello" {
		t.Errorf("message not decoded: %+v", rec.updates[0].Message)
	}
}

func TestWebhook_ValidSecret(t *testing.T) {
	rec := &recordingHandler{}
	h := NewHandler(rec, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(updatePayload))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", testSecret)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if len(rec.updates) != 1 {
		t.Errorf("expected 1 dispatched update, got %d", len(rec.updates))
	}
}

func TestWebhook_InvalidSecret(t *testing.T) {
	rec := &recordingHandler{}
	h := NewHandler(rec, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(updatePayload))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "wrong_token")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
	if len(rec.updates) != 0 {
		t.Errorf("expected no dispatched updates, got %d", len(rec.updates))
	}
}

func TestWebhook_MissingSecret(t *testing.T) {
	rec := &recordingHandler{}
	h := NewHandler(rec, testSecret)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(updatePayload))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
}

func TestWebhook_MalformedBody(t *testing.T) {
	rec := &recordingHandler{}
	h := NewHandler(rec, "")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
	if len(rec.updates) != 0 {
		t.Errorf("expected no dispatched updates, got %d", len(rec.updates))
	}
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	h := NewHandler(&recordingHandler{}, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}
