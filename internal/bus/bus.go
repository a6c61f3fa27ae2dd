package bus

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultDedupeTTL     = 20 * time.Minute
	defaultDedupeMaxSize = 5000
)

// MessageBus routes messages between channels and the agent runtime,
// and broadcasts events to registered subscribers. Inbound messages pass
// through a dedupe cache and, once enabled, a debouncer before reaching
// ConsumeInbound, guarding against a channel transport redelivering the
// same update or a user's rapid-fire consecutive messages triggering
// multiple agent runs.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage

	// Channel message handlers (channel name → handler)
	handlers  map[string]MessageHandler
	handlerMu sync.RWMutex

	// Event subscribers (subscriber ID → handler)
	subscribers map[string]EventHandler
	subMu       sync.RWMutex

	dedupe    *DedupeCache
	debouncer *InboundDebouncer
}

func New() *MessageBus {
	mb := &MessageBus{
		inbound:     make(chan InboundMessage, 100),
		outbound:    make(chan OutboundMessage, 100),
		handlers:    make(map[string]MessageHandler),
		subscribers: make(map[string]EventHandler),
		dedupe:      NewDedupeCache(defaultDedupeTTL, defaultDedupeMaxSize),
	}
	return mb
}

// EnableDebounce buffers rapid consecutive messages from the same
// sender and merges them into one before they reach ConsumeInbound.
// Must be called before any PublishInbound call.
func (mb *MessageBus) EnableDebounce(debounceMs time.Duration) {
	mb.debouncer = NewInboundDebouncer(debounceMs, func(msg InboundMessage) {
		mb.inbound <- msg
	})
}

// dedupeKey fingerprints an inbound message for duplicate detection:
// same sender, same text, within the dedupe TTL window.
func dedupeKey(msg InboundMessage) string {
	return fmt.Sprintf("%s:%s:%s:%s", msg.Channel, msg.ChatID, msg.SenderID, msg.Text)
}

// PublishInbound queues an inbound message from a channel, dropping
// exact duplicates seen within the dedupe window and, if debouncing is
// enabled, buffering rapid consecutive messages from the same sender.
func (mb *MessageBus) PublishInbound(msg InboundMessage) {
	if mb.dedupe != nil && mb.dedupe.IsDuplicate(dedupeKey(msg)) {
		return
	}
	if mb.debouncer != nil {
		mb.debouncer.Push(msg)
		return
	}
	mb.inbound <- msg
}

// ConsumeInbound blocks until an inbound message is available or ctx is cancelled.
func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg := <-mb.inbound:
		return msg, true
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

// PublishOutbound queues an outbound message to a channel.
func (mb *MessageBus) PublishOutbound(msg OutboundMessage) {
	mb.outbound <- msg
}

// SubscribeOutbound blocks until an outbound message is available or ctx is cancelled.
func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg := <-mb.outbound:
		return msg, true
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

// RegisterHandler registers a message handler for a channel.
func (mb *MessageBus) RegisterHandler(channel string, handler MessageHandler) {
	mb.handlerMu.Lock()
	defer mb.handlerMu.Unlock()
	mb.handlers[channel] = handler
}

// GetHandler returns the message handler for a channel.
func (mb *MessageBus) GetHandler(channel string) (MessageHandler, bool) {
	mb.handlerMu.RLock()
	defer mb.handlerMu.RUnlock()
	handler, ok := mb.handlers[channel]
	return handler, ok
}

// Subscribe registers an event subscriber under id; pass the same id to Unsubscribe.
func (mb *MessageBus) Subscribe(id string, handler EventHandler) {
	mb.subMu.Lock()
	defer mb.subMu.Unlock()
	mb.subscribers[id] = handler
}

// Unsubscribe removes an event subscriber.
func (mb *MessageBus) Unsubscribe(id string) {
	mb.subMu.Lock()
	defer mb.subMu.Unlock()
	delete(mb.subscribers, id)
}

// Broadcast sends an event to all subscribers (non-blocking per subscriber).
func (mb *MessageBus) Broadcast(event Event) {
	mb.subMu.RLock()
	defer mb.subMu.RUnlock()
	for _, handler := range mb.subscribers {
		handler(event) // handlers should be non-blocking
	}
}

// Close shuts down the message bus, flushing any buffered debounced
// messages first.
func (mb *MessageBus) Close() {
	if mb.debouncer != nil {
		mb.debouncer.Stop()
	}
	close(mb.inbound)
	close(mb.outbound)
}
