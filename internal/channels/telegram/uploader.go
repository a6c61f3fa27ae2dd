// Package telegram adapts a Telegram bot into the direct-sender
// Uploader interface.
package telegram

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Uploader sends messages and files to a Telegram chat on behalf of a
// direct-sender session. chatID is parsed from the session ID on every
// call since a single bot serves many chats.
type Uploader struct {
	bot *telego.Bot
}

// NewUploader creates a Telegram uploader from a bot token.
func NewUploader(token string) (*Uploader, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Uploader{bot: bot}, nil
}

func (u *Uploader) SendMessage(ctx context.Context, chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing telegram chat id %q: %w", chatID, err)
	}
	_, err = u.bot.SendMessage(ctx, tu.Message(tu.ID(id), text))
	return err
}

func (u *Uploader) SendFile(ctx context.Context, chatID, path, caption string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing telegram chat id %q: %w", chatID, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc := tu.Document(tu.ID(id), tu.File(f))
	if caption != "" {
		doc = doc.WithCaption(caption)
	}
	_, err = u.bot.SendDocument(ctx, doc)
	return err
}

// Close is a no-op: the uploader only issues outbound API calls and
// holds no long-polling connection to tear down.
func (u *Uploader) Close() error {
	return nil
}
