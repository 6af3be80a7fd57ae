package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/staceybot/stacey/internal/bot"
	"github.com/staceybot/stacey/internal/calling"
	"github.com/staceybot/stacey/internal/conversation"
)

type noopCompleter struct{}

func (noopCompleter) Complete(ctx context.Context, model, prompt, token string) (string, error) {
	return "an answer", nil
}

type noopCallService struct{}

func (noopCallService) Create(ctx context.Context, users []calling.Identity) (*calling.Call, error) {
	return &calling.Call{ID: "call-1"}, nil
}

func (noopCallService) CreateForMeeting(ctx context.Context, chatInfo calling.ChatInfo, meetingInfo calling.MeetingInfo) (*calling.Call, error) {
	return &calling.Call{ID: "call-1"}, nil
}

func (noopCallService) Transfer(ctx context.Context, callID string, target calling.Identity) error {
	return nil
}

func (noopCallService) InviteParticipant(ctx context.Context, callID string, targets []calling.IdentitySet) error {
	return nil
}

func (noopCallService) Record(ctx context.Context, callID, promptID string) error { return nil }
func (noopCallService) HangUp(ctx context.Context, callID string) error           { return nil }

type noopMeetingService struct{}

func (noopMeetingService) Create(ctx context.Context, subject string, participantIDs []string) (*calling.OnlineMeeting, error) {
	return &calling.OnlineMeeting{}, nil
}

type noopChatService struct{}

func (noopChatService) InstallApp(ctx context.Context, threadID, appID string) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	orch := calling.NewOrchestrator(noopCallService{}, noopMeetingService{}, noopChatService{}, calling.NewRegistry(0), nil, nil, "app", slog.Default())
	router := bot.NewRouter(conversation.NewStore(), noopCompleter{}, orch, "model", "tok", slog.Default())
	return NewServer(0, router)
}

func TestMessages_TextTurn(t *testing.T) {
	s := newTestServer(t)

	body := `{"conversation":{"id":"c1"},"text":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var reply outboundActivity
	if err := json.NewDecoder(rec.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Type != "message" {
		t.Errorf("expected message type, got %q", reply.Type)
	}
	if !strings.Contains(reply.Text, "Stacey") {
		t.Errorf("expected greeting, got %q", reply.Text)
	}
}

func TestMessages_InvokeTurn(t *testing.T) {
	s := newTestServer(t)

	body := `{"conversation":{"id":"c1"},"value":{"type":"hangup","callId":"call-1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var reply outboundActivity
	if err := json.NewDecoder(rec.Body).Decode(&reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Text != "The call has ended." {
		t.Errorf("unexpected reply: %q", reply.Text)
	}
}

func TestMessages_BadRequests(t *testing.T) {
	s := newTestServer(t)

	for name, body := range map[string]string{
		"malformed json":  `{"conversation":`,
		"no conversation": `{"text":"hi"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stacey/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var status map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status["agent"] != "stacey" {
		t.Errorf("unexpected status payload: %v", status)
	}
}
