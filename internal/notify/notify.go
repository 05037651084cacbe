// Package notify dispatches report lifecycle events to pilots and admins.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/zulandar/hangar/internal/models"
)

// Kind identifies a lifecycle event.
type Kind string

const (
	KindSubmitted Kind = "pirep.submitted"
	KindAccepted  Kind = "pirep.accepted"
	KindRejected  Kind = "pirep.rejected"
)

// Event is a lifecycle notification. Recipients are pilot IDs; channels that
// post to a shared room ignore them.
type Event struct {
	Kind       Kind
	PirepID    string
	PilotID    uint
	Recipients []uint
	Title      string
	Body       string
	Color      string // sidebar color hint, e.g. "#36a64f"
	Fields     []Field
	At         time.Time
}

// Field is a key-value pair rendered next to the event body.
type Field struct {
	Name  string
	Value string
	Short bool
}

// Notifier delivers events to one channel.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, evt Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, evt Event) error { return f(ctx, evt) }

// Submitted builds the event sent to admins when a pilot submits a report.
func Submitted(p *models.Pirep, admins []uint, at time.Time) Event {
	return Event{
		Kind:       KindSubmitted,
		PirepID:    p.ID,
		PilotID:    p.PilotID,
		Recipients: admins,
		Title:      fmt.Sprintf("Report %s submitted", p.ID),
		Body:       fmt.Sprintf("%s %s-%s is waiting for review", flightLabel(p), p.DptAirportID, p.ArrAirportID),
		Color:      "#439fe0",
		Fields:     reportFields(p),
		At:         at,
	}
}

// Accepted builds the event sent to the pilot when their report is accepted.
func Accepted(p *models.Pirep, at time.Time) Event {
	return Event{
		Kind:       KindAccepted,
		PirepID:    p.ID,
		PilotID:    p.PilotID,
		Recipients: []uint{p.PilotID},
		Title:      fmt.Sprintf("Report %s accepted", p.ID),
		Body:       fmt.Sprintf("%s %s-%s was accepted", flightLabel(p), p.DptAirportID, p.ArrAirportID),
		Color:      "#36a64f",
		Fields:     reportFields(p),
		At:         at,
	}
}

// Rejected builds the event sent to the pilot when their report is rejected.
func Rejected(p *models.Pirep, at time.Time) Event {
	return Event{
		Kind:       KindRejected,
		PirepID:    p.ID,
		PilotID:    p.PilotID,
		Recipients: []uint{p.PilotID},
		Title:      fmt.Sprintf("Report %s rejected", p.ID),
		Body:       fmt.Sprintf("%s %s-%s was rejected", flightLabel(p), p.DptAirportID, p.ArrAirportID),
		Color:      "#d00000",
		Fields:     reportFields(p),
		At:         at,
	}
}

func flightLabel(p *models.Pirep) string {
	if p.FlightNumber == "" {
		return "Flight"
	}
	return "Flight " + p.FlightNumber
}

func reportFields(p *models.Pirep) []Field {
	return []Field{
		{Name: "Pilot", Value: fmt.Sprintf("%d", p.PilotID), Short: true},
		{Name: "Flight time", Value: fmt.Sprintf("%dh %02dm", p.FlightTime/60, p.FlightTime%60), Short: true},
		{Name: "Route", Value: p.DptAirportID + " - " + p.ArrAirportID, Short: true},
	}
}
