// Package slack adapts a Slack bot client into the direct-sender
// Uploader interface.
package slack

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/slack-go/slack"
)

// Uploader sends messages and files to a Slack channel on behalf of a
// direct-sender session. chatID is the Slack channel ID.
type Uploader struct {
	client *slack.Client
}

// NewUploader creates a Slack uploader from a bot token.
func NewUploader(token string) *Uploader {
	return &Uploader{client: slack.New(token)}
}

func (u *Uploader) SendMessage(ctx context.Context, chatID, text string) error {
	_, _, err := u.client.PostMessageContext(ctx, chatID, slack.MsgOptionText(text, false))
	return err
}

func (u *Uploader) SendFile(ctx context.Context, chatID, path, caption string) error {
	_, err := u.client.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Channel:        chatID,
		File:           path,
		Filename:       filepath.Base(path),
		InitialComment: caption,
	})
	if err != nil {
		return fmt.Errorf("uploading %s to slack: %w", path, err)
	}
	return nil
}

// Close is a no-op: the Slack web API client holds no persistent
// connection to tear down.
func (u *Uploader) Close() error {
	return nil
}
