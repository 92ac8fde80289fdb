package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dugout/internal/dispatcher"
	"dugout/internal/models"
	"dugout/internal/parser"
	"dugout/internal/store"
)

type stubSender struct {
	sent []string
}

func (s *stubSender) Send(_ context.Context, text string) error {
	s.sent = append(s.sent, text)
	return nil
}

type stubTimeline struct{}

func (stubTimeline) Snapshot(context.Context) ([]models.Event, error) {
	date := time.Now().AddDate(0, 0, 3)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	gt := models.GameTime{Known: true, Hour: 17, Minute: 30, Raw: "5:30 PM"}
	return []models.Event{{
		ID:          models.EventID(day, gt, "Miller Field"),
		Date:        day,
		Time:        gt,
		Location:    "Miller Field",
		Venue:       models.VenueHome,
		Roles:       models.RequiredRoles(models.VenueHome),
		Assignments: map[models.Role]string{},
	}}, nil
}

type noopRoster struct{}

func (noopRoster) UpdateAssignment(context.Context, time.Time, models.Role, string) error {
	return nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *stubSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mods, err := store.NewFileStore(t.TempDir() + "/mods.json")
	if err != nil {
		t.Fatalf("moderator store: %v", err)
	}
	sender := &stubSender{}
	h := &WebhookHandler{
		Parser: parser.New("PirateBot", "Pirates"),
		Dispatcher: &dispatcher.Dispatcher{
			Timeline:    stubTimeline{},
			Roster:      noopRoster{},
			Moderators:  mods,
			TeamName:    "Pirates",
			TeamEmoji:   "🏴‍☠️",
			BotName:     "PirateBot",
			AdminUserID: "admin-1",
		},
		Sender: sender,
		Logger: zap.NewNop(),
	}

	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	h.Register(engine)
	(&HealthHandler{}).Register(engine)
	return engine, sender
}

func post(t *testing.T, engine *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestWebhookRepliesToQuery(t *testing.T) {
	engine, sender := newTestEngine(t)

	w := post(t, engine, `{"text": "@PirateBot next game", "sender_type": "user", "name": "Dana", "user_id": "u1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0], "Miller Field") {
		t.Fatalf("reply missing game info: %q", sender.sent[0])
	}
}

func TestWebhookIgnoresBots(t *testing.T) {
	engine, sender := newTestEngine(t)

	w := post(t, engine, `{"text": "@PirateBot next game", "sender_type": "bot", "name": "PirateBot"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("bot message should be ignored, got %d replies", len(sender.sent))
	}
}

func TestWebhookIgnoresUnaddressed(t *testing.T) {
	engine, sender := newTestEngine(t)

	w := post(t, engine, `{"text": "great game everyone", "sender_type": "user", "name": "Dana", "user_id": "u1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("unaddressed chatter should be ignored, got %d replies", len(sender.sent))
	}
}

func TestWebhookBadPayload(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := post(t, engine, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestWebhookRequestIDHeader(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := post(t, engine, `{"text": "hi", "sender_type": "user", "user_id": "u1"}`)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", w.Code)
	}
}
