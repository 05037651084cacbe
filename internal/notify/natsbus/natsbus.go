// Package natsbus publishes report lifecycle events to NATS as msgpack
// payloads so other services can follow the review flow.
package natsbus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zulandar/hangar/internal/notify"
)

// DefaultSubject is the subject prefix used when none is configured.
const DefaultSubject = "hangar.pireps"

// publisher abstracts the nats.Conn methods we use, enabling test mocks.
type publisher interface {
	Publish(subj string, data []byte) error
}

// Message is the wire form of a lifecycle event.
type Message struct {
	Kind       string    `msgpack:"kind"`
	PirepID    string    `msgpack:"pirep_id"`
	PilotID    uint      `msgpack:"pilot_id"`
	Recipients []uint    `msgpack:"recipients,omitempty"`
	Title      string    `msgpack:"title"`
	Body       string    `msgpack:"body"`
	At         time.Time `msgpack:"at"`
}

// Bus implements notify.Notifier over a NATS connection.
type Bus struct {
	pub     publisher
	conn    *nats.Conn // nil when a mock publisher is injected
	subject string
}

// Opts holds parameters for creating a Bus.
type Opts struct {
	URL     string
	Subject string
	// For testing: inject a mock publisher instead of dialing NATS.
	Publisher publisher
}

// New connects to NATS, or wraps the injected publisher.
func New(opts Opts) (*Bus, error) {
	subject := opts.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	if opts.Publisher != nil {
		return &Bus{pub: opts.Publisher, subject: subject}, nil
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("natsbus: url is required")
	}
	nc, err := nats.Connect(opts.URL,
		nats.Name("hangar"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("natsbus: connect %s: %w", opts.URL, err)
	}
	return &Bus{pub: nc, conn: nc, subject: subject}, nil
}

// Subject returns the subject an event of kind is published on, e.g.
// "hangar.pireps.accepted".
func (b *Bus) Subject(kind notify.Kind) string {
	return b.subject + "." + strings.TrimPrefix(string(kind), "pirep.")
}

// Notify publishes evt.
func (b *Bus) Notify(ctx context.Context, evt notify.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(evt)
	if err != nil {
		return err
	}
	if err := b.pub.Publish(b.Subject(evt.Kind), data); err != nil {
		return fmt.Errorf("natsbus: publish %s: %w", evt.Kind, err)
	}
	return nil
}

// Close drains the connection, flushing pending publishes.
func (b *Bus) Close() error {
	if b.conn == nil {
		return nil
	}
	if err := b.conn.Drain(); err != nil {
		return fmt.Errorf("natsbus: drain: %w", err)
	}
	return nil
}

// Encode renders evt in its wire form.
func Encode(evt notify.Event) ([]byte, error) {
	data, err := msgpack.Marshal(Message{
		Kind:       string(evt.Kind),
		PirepID:    evt.PirepID,
		PilotID:    evt.PilotID,
		Recipients: evt.Recipients,
		Title:      evt.Title,
		Body:       evt.Body,
		At:         evt.At,
	})
	if err != nil {
		return nil, fmt.Errorf("natsbus: encode %s: %w", evt.Kind, err)
	}
	return data, nil
}

// Decode parses a wire message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("natsbus: decode: %w", err)
	}
	return m, nil
}
