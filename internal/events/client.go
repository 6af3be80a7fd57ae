package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/staceybot/stacey/internal/calling"
)

const (
	// SubjectTurnInbound delivers turn events from transports that speak
	// NATS instead of the HTTP webhook.
	SubjectTurnInbound = "stacey.turn.inbound"
	// SubjectTurnReply receives replies for inbound turns that carry no
	// reply subject of their own.
	SubjectTurnReply = "stacey.turn.reply"
	// SubjectIncidentCreated announces each successful incident call.
	SubjectIncidentCreated = "stacey.incident.created"
)

// IncidentEvent is the payload published on SubjectIncidentCreated.
type IncidentEvent struct {
	CallID       string `json:"call_id"`
	Subject      string `json:"subject"`
	Participants int    `json:"participants"`
	ThreadID     string `json:"thread_id"`
	StartedAt    string `json:"started_at"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// SubscribeTurns routes each inbound turn event through the handler and
// publishes the reply to the message's reply subject, falling back to
// SubjectTurnReply for fire-and-forget publishers.
func (c *Client) SubscribeTurns(handler func(data []byte) any) error {
	sub, err := c.conn.Subscribe(SubjectTurnInbound, func(msg *nats.Msg) {
		reply := handler(msg.Data)
		payload, err := json.Marshal(reply)
		if err != nil {
			c.logger.Error("marshal turn reply", "error", err)
			return
		}
		subject := msg.Reply
		if subject == "" {
			subject = SubjectTurnReply
		}
		if err := c.conn.Publish(subject, payload); err != nil {
			c.logger.Error("publish turn reply", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectTurnInbound, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", SubjectTurnInbound)
	return nil
}

// IncidentCreated satisfies the orchestrator's publisher contract.
func (c *Client) IncidentCreated(details calling.IncidentDetails) error {
	return c.Publish(SubjectIncidentCreated, newIncidentEvent(details))
}

func newIncidentEvent(details calling.IncidentDetails) IncidentEvent {
	return IncidentEvent{
		CallID:       details.CallID,
		Subject:      details.Subject,
		Participants: len(details.Participants),
		ThreadID:     details.ChatInfo.ThreadID,
		StartedAt:    details.StartTime.UTC().Format(time.RFC3339),
	}
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
