package calling

import (
	"testing"
	"time"
)

func TestRegistry_SetGet(t *testing.T) {
	r := NewRegistry(0)
	details := IncidentDetails{CallID: "call-1", Subject: "outage", StartTime: time.Now()}
	r.Set("call-1", details)

	got, ok := r.Get("call-1")
	if !ok {
		t.Fatal("expected hit for stored incident")
	}
	if got.Subject != "outage" {
		t.Errorf("unexpected subject: %q", got.Subject)
	}
}

func TestRegistry_MissIsNotAnError(t *testing.T) {
	r := NewRegistry(0)
	if _, ok := r.Get("unknown"); ok {
		t.Error("expected miss for unknown call id")
	}
}

func TestRegistry_Overwrite(t *testing.T) {
	r := NewRegistry(0)
	r.Set("call-1", IncidentDetails{Subject: "first"})
	r.Set("call-1", IncidentDetails{Subject: "second"})

	got, _ := r.Get("call-1")
	if got.Subject != "second" {
		t.Errorf("expected unconditional overwrite, got %q", got.Subject)
	}
}

func TestRegistry_TTLExpiry(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	r.Set("call-1", IncidentDetails{Subject: "gone soon"})

	time.Sleep(30 * time.Millisecond)
	if _, ok := r.Get("call-1"); ok {
		t.Error("expected entry to expire after TTL")
	}
}
