package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/staceybot/stacey/internal/calling"
	"github.com/staceybot/stacey/internal/conversation"
)

// Turn is one inbound event from the transport: either free text or a
// structured invoke value, plus the host's channel-specific data.
type Turn struct {
	ConversationID string          `json:"conversationId"`
	Text           string          `json:"text"`
	Value          json.RawMessage `json:"value,omitempty"`
	ChannelData    json.RawMessage `json:"channelData,omitempty"`
}

// Reply is the payload handed back to the transport. Every routed turn
// produces one.
type Reply struct {
	Text string `json:"text"`
}

// Completer is the blocking completion surface the router needs.
type Completer interface {
	Complete(ctx context.Context, model, prompt, token string) (string, error)
}

const (
	ackTextContextSet     = "Text context is set. Proceed with your query either by text or call."
	ackTextContextDeleted = "Text context is deleted"
	ackDocumentContextSet = "Document context is set. Proceed with your query either by text or call."
	ackMeetingContextSet  = "Meeting context is set. Proceed with your query either by text or call."
	msgMeetingNotFound    = "Meeting not found. Are you calling this from a meeting chat?"
	msgUnknownInvoke      = "Sorry, I didn't understand that."

	recordPromptURI = "audio/please-record-your-message.wav"
)

// Router normalizes inbound turns into commands and dispatches them.
// It is the single failure boundary: downstream errors are logged and
// converted into a reply, never propagated to the transport.
type Router struct {
	contexts     *conversation.Store
	completer    Completer
	orchestrator *calling.Orchestrator
	model        string
	token        string
	logger       *slog.Logger
}

func NewRouter(contexts *conversation.Store, completer Completer, orchestrator *calling.Orchestrator, model, token string, logger *slog.Logger) *Router {
	return &Router{
		contexts:     contexts,
		completer:    completer,
		orchestrator: orchestrator,
		model:        model,
		token:        token,
		logger:       logger,
	}
}

// Route classifies and handles one turn.
func (r *Router) Route(ctx context.Context, turn Turn) Reply {
	if turn.Text == "" {
		cmd, payload := ParseInvoke(turn.Value)
		return r.dispatch(ctx, turn, cmd, string(cmd), payload)
	}

	input := Normalize(turn.Text)
	return r.dispatch(ctx, turn, ParseText(input), input, InvokePayload{})
}

func (r *Router) dispatch(ctx context.Context, turn Turn, cmd Command, input string, payload InvokePayload) Reply {
	convID := turn.ConversationID

	switch cmd {
	case CommandSetTextContext:
		r.contexts.SetFreeText(convID, input)
		return Reply{Text: ackTextContextSet}

	case CommandDeleteTextContext:
		r.contexts.ClearFreeText(convID)
		return Reply{Text: ackTextContextDeleted}

	case CommandSetDocumentContext:
		r.contexts.SetDocument(convID, input)
		return Reply{Text: ackDocumentContextSet}

	case CommandSetMeetingContext:
		r.contexts.SetMeeting(convID, transcriptArgument(input))
		return Reply{Text: ackMeetingContextSet}

	case CommandAnswer:
		r.contexts.SetQuery(convID, input)
		prompt := r.contexts.Compose(convID)
		answer, err := r.completer.Complete(ctx, r.model, prompt, r.token)
		r.contexts.ClearQuery(convID)
		if err != nil {
			return r.fail(cmd, err)
		}
		return Reply{Text: answer}

	case CommandPlayRecordPrompt:
		msg, err := r.orchestrator.Record(ctx, payload.CallID, recordPromptURI)
		if err != nil {
			return r.fail(cmd, err)
		}
		return Reply{Text: msg}

	case CommandHangUp:
		msg, err := r.orchestrator.HangUp(ctx, payload.CallID)
		if err != nil {
			return r.fail(cmd, err)
		}
		return Reply{Text: msg}

	case CommandJoinScheduledMeeting:
		return r.joinScheduledMeeting(ctx, turn)

	case CommandGreeting:
		return Reply{Text: greeting(meetingHosted(turn.ChannelData))}

	case CommandCreateCall:
		call, err := r.orchestrator.CreateCall(ctx, payload.Participants())
		if err != nil {
			return r.fail(cmd, err)
		}
		r.logger.Info("call created from invoke", "call_id", call.ID)
		return Reply{Text: "Working on that, you can close this dialog now."}

	case CommandTransfer:
		msg, err := r.orchestrator.Transfer(ctx, payload.CallID, calling.Identity{ID: payload.PeoplePicker})
		if err != nil {
			return r.fail(cmd, err)
		}
		return Reply{Text: msg}

	case CommandInvite:
		msg, err := r.orchestrator.InviteParticipant(ctx, payload.CallID, calling.Identity{ID: payload.PeoplePicker})
		if err != nil {
			return r.fail(cmd, err)
		}
		return Reply{Text: msg}

	case CommandCreateIncident:
		if payload.IncidentName == "" {
			return Reply{Text: msgUnknownInvoke}
		}
		msg, err := r.orchestrator.CreateIncidentCall(ctx, payload.IncidentName, payload.Participants())
		if err != nil {
			return r.fail(cmd, err)
		}
		return Reply{Text: msg}

	case CommandEcho:
		return Reply{Text: input}

	default:
		return Reply{Text: msgUnknownInvoke}
	}
}

func (r *Router) joinScheduledMeeting(ctx context.Context, turn Turn) Reply {
	meeting := gjson.GetBytes(turn.ChannelData, "meeting")
	if !meeting.Exists() {
		return Reply{Text: msgMeetingNotFound}
	}

	organizerID := meeting.Get("organizerId").String()
	tenantID := gjson.GetBytes(turn.ChannelData, "tenant.id").String()
	if organizerID == "" {
		return Reply{Text: msgMeetingNotFound}
	}

	call, err := r.orchestrator.JoinScheduledMeeting(ctx, turn.ConversationID, organizerID, tenantID)
	if err != nil {
		return r.fail(CommandJoinScheduledMeeting, err)
	}
	return Reply{Text: fmt.Sprintf("Joined the scheduled meeting. Call id: %s", call.ID)}
}

// fail converts a downstream error into a user-visible reply. The turn
// always completes with a reply; raw faults stop here.
func (r *Router) fail(cmd Command, err error) Reply {
	r.logger.Error("command failed", "command", string(cmd), "error", err)
	return Reply{Text: fmt.Sprintf("Something went wrong \U0001F616. %s", err.Error())}
}

// transcriptArgument returns the text after the setmeetingcontext
// keyword, if any; the store substitutes its sample transcript when the
// command carries no transcript of its own.
func transcriptArgument(input string) string {
	_, after, found := strings.Cut(input, string(CommandSetMeetingContext))
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}

func meetingHosted(channelData []byte) bool {
	return gjson.GetBytes(channelData, "meeting").Exists()
}

func greeting(inMeeting bool) string {
	if inMeeting {
		return "Hi, I'm Stacey! I can join this meeting for you: say joinscheduledmeeting. Once on a call I can playrecordprompt or hangup."
	}
	return "Hi, I'm Stacey! Set context with settextcontext, setdocumentcontext or setmeetingcontext, then ask me anything with answerme. I can also create calls and incident calls."
}
