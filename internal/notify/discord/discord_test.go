package discord

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/hangar/internal/notify"
)

// --- Mock session ---

type mockSession struct {
	mu        sync.Mutex
	sent      []sentMessage
	failCount int // number of 429s before succeeding
	sendErr   error
}

type sentMessage struct {
	channelID string
	data      *discordgo.MessageSend
}

func (m *mockSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCount > 0 {
		m.failCount--
		return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
	}
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, sentMessage{channelID: channelID, data: data})
	return &discordgo.Message{ID: "M1", ChannelID: channelID}, nil
}

func newTestChannel(t *testing.T, sess *mockSession) *Channel {
	t.Helper()
	c, err := New(Opts{Session: sess, ChannelID: "C_OPS"})
	if err != nil {
		t.Fatal(err)
	}
	c.baseBackoff = time.Millisecond
	c.maxBackoff = 5 * time.Millisecond
	return c
}

func sampleEvent() notify.Event {
	return notify.Event{
		Kind:    notify.KindRejected,
		PirepID: "pirep-1",
		Title:   "Report pirep-1 rejected",
		Body:    "Flight VMS100 KJFK-KBOS was rejected",
		Color:   "#d00000",
		Fields:  []notify.Field{{Name: "Pilot", Value: "7", Short: true}},
		At:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "C1"}); err == nil {
		t.Error("expected error without token or session")
	}
	if _, err := New(Opts{Session: &mockSession{}}); err == nil {
		t.Error("expected error without channel")
	}
	if _, err := New(Opts{BotToken: "token", ChannelID: "C1"}); err != nil {
		t.Errorf("New with token: %v", err)
	}
}

func TestNotify_SendsEmbed(t *testing.T) {
	sess := &mockSession{}
	c := newTestChannel(t, sess)

	if err := c.Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sess.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sess.sent))
	}
	msg := sess.sent[0]
	if msg.channelID != "C_OPS" {
		t.Errorf("channel = %q", msg.channelID)
	}
	if len(msg.data.Embeds) != 1 || msg.data.Embeds[0].Title != "Report pirep-1 rejected" {
		t.Errorf("embeds = %+v", msg.data.Embeds)
	}
}

func TestNotify_RateLimitRetry(t *testing.T) {
	sess := &mockSession{failCount: 2}
	c := newTestChannel(t, sess)

	if err := c.Notify(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sess.sent) != 1 {
		t.Errorf("sent = %d, want 1", len(sess.sent))
	}
}

func TestNotify_RateLimitExhausted(t *testing.T) {
	sess := &mockSession{failCount: maxRetries + 1}
	c := newTestChannel(t, sess)

	if err := c.Notify(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestNotify_OtherErrorNotRetried(t *testing.T) {
	sess := &mockSession{sendErr: errors.New("missing access")}
	c := newTestChannel(t, sess)

	if err := c.Notify(context.Background(), sampleEvent()); err == nil {
		t.Fatal("expected error")
	}
}

func TestEventToEmbed(t *testing.T) {
	embed := eventToEmbed(sampleEvent())
	if embed.Description != "Flight VMS100 KJFK-KBOS was rejected" {
		t.Errorf("description = %q", embed.Description)
	}
	if embed.Color != 0xd00000 {
		t.Errorf("color = %d, want %d", embed.Color, 0xd00000)
	}
	if embed.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("timestamp = %q", embed.Timestamp)
	}
	if embed.Footer == nil || embed.Footer.Text != "pirep.rejected" {
		t.Errorf("footer = %+v", embed.Footer)
	}
	if len(embed.Fields) != 1 || !embed.Fields[0].Inline {
		t.Errorf("fields = %+v", embed.Fields)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"#36a64f", 0x36a64f},
		{"36A64F", 0x36a64f},
		{"#fff", 0xfff},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseHexColor(tt.in); got != tt.want {
			t.Errorf("parseHexColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}
