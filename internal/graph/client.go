// Package graph implements the calling, online-meeting, and chat
// service contracts against a Graph-style REST backend.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/staceybot/stacey/internal/calling"
)

// Client implements calling.CallService, calling.OnlineMeetingService,
// and calling.ChatService over HTTP. The bearer token is assumed valid;
// acquisition and refresh live outside this module.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type callRequest struct {
	Targets     []calling.IdentitySet `json:"targets,omitempty"`
	ChatInfo    *calling.ChatInfo     `json:"chatInfo,omitempty"`
	MeetingInfo *calling.MeetingInfo  `json:"meetingInfo,omitempty"`
}

type transferRequest struct {
	TransferTarget calling.IdentitySet `json:"transferTarget"`
}

type inviteRequest struct {
	Participants []calling.IdentitySet `json:"participants"`
}

type playPromptRequest struct {
	Prompts []mediaPrompt `json:"prompts"`
}

type mediaPrompt struct {
	ODataType string `json:"@odata.type"`
	MediaInfo struct {
		URI string `json:"uri"`
	} `json:"mediaInfo"`
}

type meetingRequest struct {
	Subject        string   `json:"subject"`
	ParticipantIDs []string `json:"participantIds"`
}

type installAppRequest struct {
	AppID string `json:"teamsAppId"`
}

func (c *Client) Create(ctx context.Context, users []calling.Identity) (*calling.Call, error) {
	targets := make([]calling.IdentitySet, len(users))
	for i, u := range users {
		targets[i] = calling.IdentitySet{User: u}
	}

	var call calling.Call
	if err := c.post(ctx, "/communications/calls", callRequest{Targets: targets}, &call); err != nil {
		return nil, fmt.Errorf("create call: %w", err)
	}
	return &call, nil
}

func (c *Client) CreateForMeeting(ctx context.Context, chatInfo calling.ChatInfo, meetingInfo calling.MeetingInfo) (*calling.Call, error) {
	var call calling.Call
	req := callRequest{ChatInfo: &chatInfo, MeetingInfo: &meetingInfo}
	if err := c.post(ctx, "/communications/calls", req, &call); err != nil {
		return nil, fmt.Errorf("create meeting call: %w", err)
	}
	return &call, nil
}

func (c *Client) Transfer(ctx context.Context, callID string, target calling.Identity) error {
	path := fmt.Sprintf("/communications/calls/%s/transfer", callID)
	req := transferRequest{TransferTarget: calling.IdentitySet{User: target}}
	if err := c.post(ctx, path, req, nil); err != nil {
		return fmt.Errorf("transfer call %s: %w", callID, err)
	}
	return nil
}

func (c *Client) InviteParticipant(ctx context.Context, callID string, targets []calling.IdentitySet) error {
	path := fmt.Sprintf("/communications/calls/%s/participants/invite", callID)
	if err := c.post(ctx, path, inviteRequest{Participants: targets}, nil); err != nil {
		return fmt.Errorf("invite to call %s: %w", callID, err)
	}
	return nil
}

func (c *Client) Record(ctx context.Context, callID, promptID string) error {
	path := fmt.Sprintf("/communications/calls/%s/playPrompt", callID)
	var p mediaPrompt
	p.ODataType = "#microsoft.graph.mediaPrompt"
	p.MediaInfo.URI = promptID
	if err := c.post(ctx, path, playPromptRequest{Prompts: []mediaPrompt{p}}, nil); err != nil {
		return fmt.Errorf("play prompt on call %s: %w", callID, err)
	}
	return nil
}

func (c *Client) HangUp(ctx context.Context, callID string) error {
	path := fmt.Sprintf("/communications/calls/%s", callID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("hang up call %s: %w", callID, err)
	}
	return nil
}

// Meetings exposes the online-meeting facet under its own method set,
// since CallService.Create and OnlineMeetingService.Create collide on
// one receiver.
func (c *Client) Meetings() calling.OnlineMeetingService {
	return meetingService{c}
}

type meetingService struct {
	c *Client
}

func (m meetingService) Create(ctx context.Context, subject string, participantIDs []string) (*calling.OnlineMeeting, error) {
	return m.c.CreateMeeting(ctx, subject, participantIDs)
}

func (c *Client) CreateMeeting(ctx context.Context, subject string, participantIDs []string) (*calling.OnlineMeeting, error) {
	var meeting calling.OnlineMeeting
	req := meetingRequest{Subject: subject, ParticipantIDs: participantIDs}
	if err := c.post(ctx, "/me/onlineMeetings", req, &meeting); err != nil {
		return nil, fmt.Errorf("create online meeting: %w", err)
	}
	return &meeting, nil
}

func (c *Client) InstallApp(ctx context.Context, threadID, appID string) error {
	path := fmt.Sprintf("/chats/%s/installedApps", threadID)
	if err := c.post(ctx, path, installAppRequest{AppID: appID}, nil); err != nil {
		return fmt.Errorf("install app in chat %s: %w", threadID, err)
	}
	return nil
}

type chatMessage struct {
	Body struct {
		Content string `json:"content"`
	} `json:"body"`
}

// NotifyIncident posts the incident summary into the meeting chat as
// plain text. Card rendering is the transport layer's business.
func (c *Client) NotifyIncident(ctx context.Context, threadID string, details calling.IncidentDetails) error {
	var msg chatMessage
	msg.Body.Content = fmt.Sprintf("Incident %q started at %s. Join the call to participate.",
		details.Subject, details.StartTime.Format(time.RFC1123))

	path := fmt.Sprintf("/chats/%s/messages", threadID)
	if err := c.post(ctx, path, msg, nil); err != nil {
		return fmt.Errorf("post incident message to %s: %w", threadID, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("client-request-id", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Warn("graph target not found", "method", method, "path", path)
		return calling.ErrCallNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("graph returned %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
