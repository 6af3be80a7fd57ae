package calling

import (
	"context"
	"errors"
	"time"
)

// ErrCallNotFound reports that the backend no longer resolves the call:
// it ended, was transferred away, or never started. The orchestrator
// collapses all three into one user-facing message.
var ErrCallNotFound = errors.New("call not found")

// Identity references a directory user.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	TenantID    string `json:"tenantId,omitempty"`
}

// IdentitySet wraps an Identity the way the calling backend expects
// participant references.
type IdentitySet struct {
	User Identity `json:"user"`
}

// ChatInfo references the chat thread a call is anchored to.
type ChatInfo struct {
	ThreadID  string `json:"threadId"`
	MessageID string `json:"messageId"`
}

// MeetingInfo carries the organizer context needed to join an
// organizer-hosted online meeting.
type MeetingInfo struct {
	Organizer IdentitySet `json:"organizer"`
}

// Call is the backend's handle for an active call. ID is opaque and is
// the key for every subsequent operation.
type Call struct {
	ID       string   `json:"id"`
	ChatInfo ChatInfo `json:"chatInfo"`
}

// OnlineMeeting is the result of creating an online meeting.
type OnlineMeeting struct {
	JoinWebURL string   `json:"joinWebUrl"`
	ChatInfo   ChatInfo `json:"chatInfo"`
}

// IncidentDetails records one incident call. Written once at creation
// and never mutated.
type IncidentDetails struct {
	CallID       string
	Subject      string
	Participants []Identity
	ChatInfo     ChatInfo
	MeetingInfo  MeetingInfo
	StartTime    time.Time
}

// CallService is the calling backend surface the orchestrator drives.
type CallService interface {
	Create(ctx context.Context, users []Identity) (*Call, error)
	CreateForMeeting(ctx context.Context, chatInfo ChatInfo, meetingInfo MeetingInfo) (*Call, error)
	Transfer(ctx context.Context, callID string, target Identity) error
	InviteParticipant(ctx context.Context, callID string, targets []IdentitySet) error
	Record(ctx context.Context, callID string, promptID string) error
	HangUp(ctx context.Context, callID string) error
}

// OnlineMeetingService creates online meetings for incident calls.
type OnlineMeetingService interface {
	Create(ctx context.Context, subject string, participantIDs []string) (*OnlineMeeting, error)
}

// ChatService installs the calling app into a meeting chat so the bot
// can be addressed there.
type ChatService interface {
	InstallApp(ctx context.Context, threadID, appID string) error
}

// Notifier posts a message into a chat thread. The card/layout side is
// the transport layer's business.
type Notifier interface {
	NotifyIncident(ctx context.Context, threadID string, details IncidentDetails) error
}
