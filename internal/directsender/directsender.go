// Package directsender delivers messages directly to a channel given a
// session key, bypassing the agent entirely. The Telegram/Discord/Slack
// API calls themselves are made by the Uploader registered per channel.
package directsender

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/5unnykum4r/grip/internal/coreerrors"
)

// Uploader is a channel-specific transport able to send text and files.
type Uploader interface {
	SendMessage(ctx context.Context, chatID, text string) error
	SendFile(ctx context.Context, chatID, path, caption string) error
	Close() error
}

// Tokens holds per-channel credentials. A missing/empty token for a
// channel means that channel is not configured.
type Tokens struct {
	Telegram string
	Discord  string
	Slack    string
}

// Sender parses a session key of the form "{telegram|discord|slack}:<id>"
// and dispatches to the matching channel uploader.
type Sender struct {
	tokens    Tokens
	uploaders map[string]Uploader
}

// New returns a Sender with the given tokens. Uploaders are registered
// via RegisterUploader once the HTTP clients for configured channels
// are constructed.
func New(tokens Tokens) *Sender {
	return &Sender{tokens: tokens, uploaders: make(map[string]Uploader)}
}

// RegisterUploader wires a channel-specific uploader implementation.
func (s *Sender) RegisterUploader(channel string, uploader Uploader) {
	s.uploaders[channel] = uploader
}

func (s *Sender) tokenFor(channel string) string {
	switch channel {
	case "telegram":
		return s.tokens.Telegram
	case "discord":
		return s.tokens.Discord
	case "slack":
		return s.tokens.Slack
	default:
		return ""
	}
}

func (s *Sender) parseSessionKey(sessionKey string) (channel, id string, ok bool) {
	channel, id, found := strings.Cut(sessionKey, ":")
	if !found || channel == "" || id == "" {
		return "", "", false
	}
	switch channel {
	case "telegram", "discord", "slack":
		return channel, id, true
	default:
		return "", "", false
	}
}

// SendMessage parses sessionKey and dispatches text to the resolved
// channel uploader. Malformed session keys or missing tokens log a
// warning and return without error (matching the fire-and-forget
// semantics of the rest of the bus).
func (s *Sender) SendMessage(ctx context.Context, sessionKey, text string) {
	channel, chatID, ok := s.parseSessionKey(sessionKey)
	if !ok {
		slog.Warn("directsender: session key is not channel:id", "session_key", sessionKey)
		return
	}
	if s.tokenFor(channel) == "" {
		slog.Warn("directsender: no token configured for channel", "channel", channel)
		return
	}
	uploader, ok := s.uploaders[channel]
	if !ok {
		slog.Warn("directsender: no uploader registered for channel", "channel", channel)
		return
	}
	if err := uploader.SendMessage(ctx, chatID, text); err != nil {
		slog.Error("directsender: send message failed", "channel", channel,
			"error", fmt.Errorf("%w: %v", coreerrors.ErrTransportFailure, err))
	}
}

// SendFile parses sessionKey and dispatches a file upload to the
// resolved channel uploader.
func (s *Sender) SendFile(ctx context.Context, sessionKey, path, caption string) {
	channel, chatID, ok := s.parseSessionKey(sessionKey)
	if !ok {
		slog.Warn("directsender: session key is not channel:id", "session_key", sessionKey)
		return
	}
	if s.tokenFor(channel) == "" {
		slog.Warn("directsender: no token configured for channel", "channel", channel)
		return
	}
	uploader, ok := s.uploaders[channel]
	if !ok {
		slog.Warn("directsender: no uploader registered for channel", "channel", channel)
		return
	}
	if err := uploader.SendFile(ctx, chatID, path, caption); err != nil {
		slog.Error("directsender: send file failed", "channel", channel,
			"error", fmt.Errorf("%w: %v", coreerrors.ErrTransportFailure, err))
	}
}

// Close releases every registered uploader's underlying HTTP client.
func (s *Sender) Close() error {
	var firstErr error
	for channel, uploader := range s.uploaders {
		if err := uploader.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s uploader: %w", channel, err)
		}
	}
	return firstErr
}
