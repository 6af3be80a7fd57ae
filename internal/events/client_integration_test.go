//go:build integration

package events

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_TurnRoundTrip(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	logger := slog.Default()

	client, err := NewClient(natsURL, "", logger)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	err = client.SubscribeTurns(func(data []byte) any {
		return map[string]string{"text": "pong"}
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	nc, err := nats.Connect(natsURL)
	if err != nil {
		t.Fatalf("raw connect failed: %v", err)
	}
	defer nc.Close()

	msg, err := nc.Request(SubjectTurnInbound, []byte(`{"conversationId":"c1","text":"ping"}`), 5*time.Second)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var reply map[string]string
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		t.Fatalf("failed to parse reply: %v", err)
	}
	if reply["text"] != "pong" {
		t.Errorf("expected pong reply, got %v", reply)
	}
}
