// Package slack posts report lifecycle events to a Slack channel.
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/hangar/internal/notify"
)

// maxRetries is the max number of retries for rate-limited API calls.
const maxRetries = 3

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Channel implements notify.Notifier for a Slack channel.
type Channel struct {
	client    slackClient
	channelID string
}

// Opts holds parameters for creating a Slack Channel.
type Opts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Channel.
func New(opts Opts) (*Channel, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &Channel{client: client, channelID: opts.ChannelID}, nil
}

// Notify posts evt as a message with one attachment.
func (c *Channel) Notify(ctx context.Context, evt notify.Event) error {
	options := buildMessageOptions(evt)
	err := retryOnRateLimit(ctx, func() error {
		_, _, postErr := c.client.PostMessageContext(ctx, c.channelID, options...)
		return postErr
	})
	if err != nil {
		return fmt.Errorf("slack: post %s: %w", evt.Kind, err)
	}
	return nil
}

// buildMessageOptions translates an event into Slack MsgOptions.
func buildMessageOptions(evt notify.Event) []slackapi.MsgOption {
	return []slackapi.MsgOption{
		slackapi.MsgOptionText(evt.Title, false),
		slackapi.MsgOptionAttachments(eventToAttachment(evt)),
	}
}

func eventToAttachment(evt notify.Event) slackapi.Attachment {
	att := slackapi.Attachment{
		Title:    evt.Title,
		Text:     evt.Body,
		Color:    evt.Color,
		Fallback: evt.Title,
		Footer:   string(evt.Kind),
	}
	if !evt.At.IsZero() {
		att.Ts = json.Number(strconv.FormatInt(evt.At.Unix(), 10))
	}
	for _, f := range evt.Fields {
		att.Fields = append(att.Fields, slackapi.AttachmentField{
			Title: f.Name,
			Value: f.Value,
			Short: f.Short,
		})
	}
	return att
}

// retryOnRateLimit calls fn and retries with backoff on Slack rate limit errors.
// It respects context cancellation and the RetryAfter duration from Slack.
func retryOnRateLimit(ctx context.Context, fn func() error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		var rle *slackapi.RateLimitedError
		if !errors.As(err, &rle) {
			return err
		}
		if attempt == maxRetries {
			return err
		}

		wait := rle.RetryAfter
		if wait <= 0 {
			wait = time.Duration(math.Pow(2, float64(attempt))) * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil // unreachable
}
