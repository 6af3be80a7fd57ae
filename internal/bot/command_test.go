package bot

import "testing"

func TestParseText_ContainmentPriority(t *testing.T) {
	cases := []struct {
		input string
		want  Command
	}{
		{"settextcontext here is some context", CommandSetTextContext},
		{"please settextcontext for me", CommandSetTextContext},
		// settextcontext wins even when answerme is also present.
		{"settextcontext and then answerme something", CommandSetTextContext},
		{"deletetextcontext", CommandDeleteTextContext},
		{"could you deletetextcontext now", CommandDeleteTextContext},
		{"setdocumentcontext the q3 report", CommandSetDocumentContext},
		{"setmeetingcontext", CommandSetMeetingContext},
		{"answerme what is the capital of france", CommandAnswer},
		{"playrecordprompt", CommandPlayRecordPrompt},
		{"hangup", CommandHangUp},
		{"joinscheduledmeeting", CommandJoinScheduledMeeting},
		{"hi", CommandGreeting},
		// Exact-match commands inside longer text fall through to echo.
		{"please hangup now", CommandEcho},
		{"hi there", CommandEcho},
		{"what's the weather", CommandEcho},
		{"", CommandEcho},
	}
	for _, tc := range cases {
		if got := ParseText(tc.input); got != tc.want {
			t.Errorf("ParseText(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"  HangUp  ", "hangup"},
		{"<at>Stacey</at> hangup", "hangup"},
		{"<at>Stacey Bot</at>  AnswerMe what now", "answerme what now"},
		{"plain text", "plain text"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.raw); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestParseInvoke(t *testing.T) {
	cmd, payload := ParseInvoke([]byte(`{"type":"HangUp","callId":"call-7"}`))
	if cmd != CommandHangUp {
		t.Errorf("expected hangup, got %s", cmd)
	}
	if payload.CallID != "call-7" {
		t.Errorf("expected call id, got %q", payload.CallID)
	}

	cmd, _ = ParseInvoke([]byte(`{"type":"createincident","incidentName":"db down","peoplePicker":"a,b"}`))
	if cmd != CommandCreateIncident {
		t.Errorf("expected createincident, got %s", cmd)
	}
}

func TestParseInvoke_MissingOrMalformed(t *testing.T) {
	for name, value := range map[string][]byte{
		"nil value":    nil,
		"empty object": []byte(`{}`),
		"no type":      []byte(`{"callId":"x"}`),
		"bad json":     []byte(`{"type":`),
		"alien type":   []byte(`{"type":"reboot"}`),
	} {
		if cmd, _ := ParseInvoke(value); cmd != CommandUnknown {
			t.Errorf("%s: expected unknown, got %s", name, cmd)
		}
	}
}

func TestParticipants(t *testing.T) {
	p := InvokePayload{PeoplePicker: "a, b ,c"}
	got := p.Participants()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("unexpected participants: %v", got)
	}

	if got := (InvokePayload{}).Participants(); got != nil {
		t.Errorf("expected nil for empty picker, got %v", got)
	}
}
