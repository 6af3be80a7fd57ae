package calling

import "testing"

func TestParseJoinURL(t *testing.T) {
	chatInfo, meetingInfo, err := ParseJoinURL(testJoinURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chatInfo.ThreadID != "19:meeting_abc@thread.v2" {
		t.Errorf("unexpected thread id: %q", chatInfo.ThreadID)
	}
	if chatInfo.MessageID != "0" {
		t.Errorf("expected message id 0, got %q", chatInfo.MessageID)
	}
	if got := meetingInfo.Organizer.User.ID; got != "b3b7a6d1-0000-0000-0000-000000000002" {
		t.Errorf("unexpected organizer id: %q", got)
	}
	if got := meetingInfo.Organizer.User.TenantID; got != "e6e29a54-0000-0000-0000-000000000001" {
		t.Errorf("unexpected tenant id: %q", got)
	}
}

func TestParseJoinURL_MissingSegment(t *testing.T) {
	_, _, err := ParseJoinURL("https://teams.microsoft.com/l/other/19%3ax%40thread.v2/0")
	if err == nil {
		t.Fatal("expected error for url without meetup-join segment")
	}
}

func TestParseJoinURL_MissingContext(t *testing.T) {
	_, _, err := ParseJoinURL("https://teams.microsoft.com/l/meetup-join/19%3ax%40thread.v2/0")
	if err == nil {
		t.Fatal("expected error for url without context parameter")
	}
}

func TestParseJoinURL_NoOrganizer(t *testing.T) {
	_, _, err := ParseJoinURL("https://teams.microsoft.com/l/meetup-join/19%3ax%40thread.v2/0?context=%7b%22Tid%22%3a%22t%22%7d")
	if err == nil {
		t.Fatal("expected error for context without organizer id")
	}
}
