package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/staceybot/stacey/internal/calling"
)

func TestNewIncidentEvent(t *testing.T) {
	started := time.Date(2025, 11, 3, 14, 30, 0, 0, time.UTC)
	details := calling.IncidentDetails{
		CallID:       "call-5",
		Subject:      "db outage",
		Participants: []calling.Identity{{ID: "a"}, {ID: "b"}},
		ChatInfo:     calling.ChatInfo{ThreadID: "19:chat"},
		StartTime:    started,
	}

	evt := newIncidentEvent(details)

	if evt.CallID != "call-5" {
		t.Errorf("expected call id call-5, got %q", evt.CallID)
	}
	if evt.Subject != "db outage" {
		t.Errorf("expected subject, got %q", evt.Subject)
	}
	if evt.Participants != 2 {
		t.Errorf("expected 2 participants, got %d", evt.Participants)
	}
	if evt.ThreadID != "19:chat" {
		t.Errorf("expected thread id, got %q", evt.ThreadID)
	}
	if evt.StartedAt != "2025-11-03T14:30:00Z" {
		t.Errorf("expected RFC3339 start time, got %q", evt.StartedAt)
	}
}

func TestIncidentEvent_WireShape(t *testing.T) {
	raw := `{
		"call_id": "call-5",
		"subject": "db outage",
		"participants": 2,
		"thread_id": "19:chat",
		"started_at": "2025-11-03T14:30:00Z"
	}`

	var evt IncidentEvent
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		t.Fatalf("failed to parse IncidentEvent: %v", err)
	}
	if evt.CallID != "call-5" {
		t.Errorf("expected call_id 'call-5', got '%s'", evt.CallID)
	}
	if evt.Participants != 2 {
		t.Errorf("expected 2 participants, got %d", evt.Participants)
	}
}
