package calling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// MessageCallNotFound is the single user-facing outcome for every way a
// call can fail to resolve.
const MessageCallNotFound = "That call is not found. It may have already ended, or never started."

// Publisher receives a notification after each successful incident
// creation. Optional; a nil publisher skips the event.
type Publisher interface {
	IncidentCreated(details IncidentDetails) error
}

// Orchestrator wraps the calling backend with the not-found guard and
// composes the multi-step incident-call creation.
type Orchestrator struct {
	calls     CallService
	meetings  OnlineMeetingService
	chats     ChatService
	registry  *Registry
	notifier  Notifier
	publisher Publisher
	appID     string
	logger    *slog.Logger
}

func NewOrchestrator(calls CallService, meetings OnlineMeetingService, chats ChatService, registry *Registry, notifier Notifier, publisher Publisher, appID string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		calls:     calls,
		meetings:  meetings,
		chats:     chats,
		registry:  registry,
		notifier:  notifier,
		publisher: publisher,
		appID:     appID,
		logger:    logger,
	}
}

// withCall applies the not-found guard: a missing call id or a
// not-found failure from the backend both yield MessageCallNotFound
// without surfacing a raw fault. Other errors propagate.
func (o *Orchestrator) withCall(callID string, op func(callID string) error, success string) (string, error) {
	if callID == "" {
		return MessageCallNotFound, nil
	}
	if err := op(callID); err != nil {
		if errors.Is(err, ErrCallNotFound) {
			return MessageCallNotFound, nil
		}
		return "", err
	}
	return success, nil
}

func (o *Orchestrator) Transfer(ctx context.Context, callID string, target Identity) (string, error) {
	return o.withCall(callID, func(id string) error {
		return o.calls.Transfer(ctx, id, target)
	}, "Transferring the call.")
}

func (o *Orchestrator) InviteParticipant(ctx context.Context, callID string, target Identity) (string, error) {
	return o.withCall(callID, func(id string) error {
		return o.calls.InviteParticipant(ctx, id, []IdentitySet{{User: target}})
	}, "Invited the participant to the call.")
}

func (o *Orchestrator) Record(ctx context.Context, callID, promptID string) (string, error) {
	return o.withCall(callID, func(id string) error {
		return o.calls.Record(ctx, id, promptID)
	}, "Playing the record prompt.")
}

func (o *Orchestrator) HangUp(ctx context.Context, callID string) (string, error) {
	return o.withCall(callID, func(id string) error {
		return o.calls.HangUp(ctx, id)
	}, "The call has ended.")
}

// CreateCall starts an ad-hoc call with the given directory users.
// Participant ids must be well-formed GUIDs; a bad id fails before the
// backend is touched.
func (o *Orchestrator) CreateCall(ctx context.Context, participantIDs []string) (*Call, error) {
	users, err := identities(participantIDs)
	if err != nil {
		return nil, err
	}
	call, err := o.calls.Create(ctx, users)
	if err != nil {
		return nil, fmt.Errorf("create call: %w", err)
	}
	o.logger.Info("call created", "call_id", call.ID, "participants", len(users))
	return call, nil
}

// JoinScheduledMeeting joins the bot to the meeting hosted in the given
// chat thread, on behalf of its organizer.
func (o *Orchestrator) JoinScheduledMeeting(ctx context.Context, threadID, organizerID, tenantID string) (*Call, error) {
	chatInfo := ChatInfo{ThreadID: threadID, MessageID: "0"}
	meetingInfo := MeetingInfo{Organizer: IdentitySet{User: Identity{ID: organizerID, TenantID: tenantID}}}

	call, err := o.calls.CreateForMeeting(ctx, chatInfo, meetingInfo)
	if err != nil {
		return nil, fmt.Errorf("join scheduled meeting: %w", err)
	}
	o.logger.Info("joined scheduled meeting", "call_id", call.ID, "thread_id", threadID)
	return call, nil
}

// CreateIncidentCall runs the incident sequence: online meeting, join
// metadata, call, app install, registry write, chat notification. A
// failure short-circuits the remaining steps; resources created by
// earlier steps are left in place (no compensation).
func (o *Orchestrator) CreateIncidentCall(ctx context.Context, subject string, participantIDs []string) (string, error) {
	participants, err := identities(participantIDs)
	if err != nil {
		return "", err
	}

	meeting, err := o.meetings.Create(ctx, subject, participantIDs)
	if err != nil {
		return "", fmt.Errorf("create online meeting: %w", err)
	}

	chatInfo, meetingInfo, err := ParseJoinURL(meeting.JoinWebURL)
	if err != nil {
		return "", fmt.Errorf("parse meeting join info: %w", err)
	}

	call, err := o.calls.CreateForMeeting(ctx, meeting.ChatInfo, meetingInfo)
	if err != nil {
		return "", fmt.Errorf("create incident call: %w", err)
	}

	if err := o.chats.InstallApp(ctx, call.ChatInfo.ThreadID, o.appID); err != nil {
		return "", fmt.Errorf("install app in incident chat: %w", err)
	}

	details := IncidentDetails{
		CallID:       call.ID,
		Subject:      subject,
		Participants: participants,
		ChatInfo:     meeting.ChatInfo,
		MeetingInfo:  meetingInfo,
		StartTime:    time.Now().UTC(),
	}
	o.registry.Set(call.ID, details)

	// chatInfo from the join URL carries the meeting thread to notify.
	if o.notifier != nil {
		if err := o.notifier.NotifyIncident(ctx, chatInfo.ThreadID, details); err != nil {
			return "", fmt.Errorf("notify incident chat: %w", err)
		}
	}

	if o.publisher != nil {
		if err := o.publisher.IncidentCreated(details); err != nil {
			o.logger.Warn("failed to publish incident event", "call_id", call.ID, "error", err)
		}
	}

	o.logger.Info("incident call created", "call_id", call.ID, "subject", subject)
	return "Created incident call successfully.", nil
}

// Incident looks up the incident recorded for a call id.
func (o *Orchestrator) Incident(callID string) (IncidentDetails, bool) {
	return o.registry.Get(callID)
}

func identities(ids []string) ([]Identity, error) {
	users := make([]Identity, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid participant id %q: %w", id, err)
		}
		users = append(users, Identity{ID: id})
	}
	return users, nil
}
