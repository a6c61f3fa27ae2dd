// Package discord adapts a Discord bot session into the direct-sender
// Uploader interface.
package discord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
)

// Uploader sends messages and files to a Discord channel on behalf of
// a direct-sender session. chatID is the Discord channel ID.
type Uploader struct {
	session *discordgo.Session
}

// NewUploader opens a Discord session from a bot token.
func NewUploader(token string) (*Uploader, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("opening discord session: %w", err)
	}
	return &Uploader{session: session}, nil
}

func (u *Uploader) SendMessage(ctx context.Context, chatID, text string) error {
	_, err := u.session.ChannelMessageSend(chatID, text)
	return err
}

func (u *Uploader) SendFile(ctx context.Context, chatID, path, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	send := &discordgo.MessageSend{
		Content: caption,
		Files:   []*discordgo.File{{Name: filepath.Base(path), Reader: f}},
	}
	_, err = u.session.ChannelMessageSendComplex(chatID, send)
	return err
}

func (u *Uploader) Close() error {
	return u.session.Close()
}
