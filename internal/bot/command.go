package bot

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Command is the canonical classification of one inbound turn.
type Command string

const (
	CommandSetTextContext       Command = "settextcontext"
	CommandDeleteTextContext    Command = "deletetextcontext"
	CommandSetDocumentContext   Command = "setdocumentcontext"
	CommandSetMeetingContext    Command = "setmeetingcontext"
	CommandAnswer               Command = "answerme"
	CommandPlayRecordPrompt     Command = "playrecordprompt"
	CommandHangUp               Command = "hangup"
	CommandJoinScheduledMeeting Command = "joinscheduledmeeting"
	CommandGreeting             Command = "hi"
	CommandCreateCall           Command = "create"
	CommandTransfer             Command = "transfer"
	CommandInvite               Command = "invite"
	CommandCreateIncident       Command = "createincident"
	CommandEcho                 Command = "echo"
	CommandUnknown              Command = "unknown"
)

var mentionTags = regexp.MustCompile(`<at>[^<]*</at>`)

// Normalize prepares raw message text for classification: directed
// mentions removed, surrounding space trimmed, lower-cased.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(mentionTags.ReplaceAllString(raw, "")))
}

// ParseText classifies normalized message text. The first five checks
// use substring containment in a fixed priority order, so an input
// containing "settextcontext" anywhere resolves to that command even if
// it also contains "answerme". Everything else is matched exactly;
// unmatched text is echoed back.
func ParseText(input string) Command {
	switch {
	case strings.Contains(input, string(CommandSetTextContext)):
		return CommandSetTextContext
	case strings.Contains(input, string(CommandDeleteTextContext)):
		return CommandDeleteTextContext
	case strings.Contains(input, string(CommandSetDocumentContext)):
		return CommandSetDocumentContext
	case strings.Contains(input, string(CommandSetMeetingContext)):
		return CommandSetMeetingContext
	case strings.Contains(input, string(CommandAnswer)):
		return CommandAnswer
	}

	switch input {
	case string(CommandPlayRecordPrompt):
		return CommandPlayRecordPrompt
	case string(CommandHangUp):
		return CommandHangUp
	case string(CommandJoinScheduledMeeting):
		return CommandJoinScheduledMeeting
	case string(CommandGreeting):
		return CommandGreeting
	default:
		return CommandEcho
	}
}

// InvokePayload is the decoded shape of a structured invoke value.
// Unknown or malformed payloads classify as CommandUnknown instead of
// failing on missing keys.
type InvokePayload struct {
	Type         string `json:"type"`
	CallID       string `json:"callId"`
	PeoplePicker string `json:"peoplePicker"`
	IncidentName string `json:"incidentName"`
}

// Participants splits the people-picker value, a comma-separated list
// of directory ids.
func (p InvokePayload) Participants() []string {
	if p.PeoplePicker == "" {
		return nil
	}
	parts := strings.Split(p.PeoplePicker, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseInvoke decodes a structured invoke value and classifies its type
// field.
func ParseInvoke(value []byte) (Command, InvokePayload) {
	var payload InvokePayload
	if len(value) == 0 {
		return CommandUnknown, payload
	}
	if err := json.Unmarshal(value, &payload); err != nil {
		return CommandUnknown, payload
	}

	switch strings.ToLower(payload.Type) {
	case string(CommandPlayRecordPrompt):
		return CommandPlayRecordPrompt, payload
	case string(CommandHangUp):
		return CommandHangUp, payload
	case string(CommandJoinScheduledMeeting):
		return CommandJoinScheduledMeeting, payload
	case string(CommandCreateCall):
		return CommandCreateCall, payload
	case string(CommandTransfer):
		return CommandTransfer, payload
	case string(CommandInvite):
		return CommandInvite, payload
	case string(CommandCreateIncident):
		return CommandCreateIncident, payload
	default:
		return CommandUnknown, payload
	}
}
