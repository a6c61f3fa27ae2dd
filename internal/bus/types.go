package bus

import "time"

// InboundMessage is a message arriving from a channel transport.
type InboundMessage struct {
	Channel   string
	ChatID    string
	SenderID  string
	Text      string
	Media     []string
	Timestamp time.Time
}

// OutboundMessage is a message to deliver to a channel transport. Channel
// and ChatID together reconstruct the session key "<channel>:<chat id>"
// that cron, workflow and heartbeat jobs use as their reply_to target.
type OutboundMessage struct {
	Channel string
	ChatID  string
	Text    string
}

// MessageHandler processes an inbound message for a given channel.
type MessageHandler func(msg InboundMessage) error

// Event is a runtime event broadcast to subscribers (job started,
// workflow completed, etc). Kind identifies the event type; Payload
// carries event-specific data.
type Event struct {
	Kind    string
	Payload map[string]any
}

// EventHandler receives broadcast events. Implementations must not block.
type EventHandler func(event Event)
