package models

import (
	"reflect"
	"testing"
)

func TestPirepState_Valid(t *testing.T) {
	for _, s := range PirepStates {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false", s)
		}
	}
	for _, s := range []PirepState{"", "PENDING", "filed", "approved"} {
		if s.Valid() {
			t.Errorf("%q.Valid() = true, want false", s)
		}
	}
}

func TestPirepState_Active(t *testing.T) {
	tests := []struct {
		state PirepState
		want  bool
	}{
		{PirepPending, true},
		{PirepInProgress, true},
		{PirepPendingAccept, true},
		{PirepAccepted, false},
		{PirepRejected, false},
		{PirepCancelled, false},
		{PirepDeleted, false},
	}
	for _, tt := range tests {
		if got := tt.state.Active(); got != tt.want {
			t.Errorf("%q.Active() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestPirep_Fields(t *testing.T) {
	typ := reflect.TypeOf(Pirep{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "size:32")
	assertGormTag(t, typ, "PilotID", "not null")
	assertGormTag(t, typ, "PilotID", "index")
	assertGormTag(t, typ, "FlightID", "size:32")
	assertGormTag(t, typ, "Route", "type:text")
	assertGormTag(t, typ, "State", "default:pending")
	assertGormTag(t, typ, "State", "index")
	assertGormTag(t, typ, "CreatedAt", "index")

	assertFieldType(t, typ, "AircraftID", "*uint")
	assertFieldType(t, typ, "FlightID", "*string")
	assertFieldType(t, typ, "FlightTime", "int")
	assertFieldType(t, typ, "Distance", "float64")
	assertFieldType(t, typ, "State", "models.PirepState")
	assertFieldType(t, typ, "SubmittedAt", "*time.Time")
	assertGormTag(t, typ, "Acars", "foreignKey:PirepID")
}

func TestAcars_Fields(t *testing.T) {
	typ := reflect.TypeOf(Acars{})

	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "PirepID", "idx_acars_pirep_type")
	assertGormTag(t, typ, "Type", "idx_acars_pirep_type")
	assertGormTag(t, typ, "Order", "column:seq")

	assertFieldType(t, typ, "Type", "models.AcarsType")
	assertFieldType(t, typ, "SimTime", "*time.Time")

	if got := (Acars{}).TableName(); got != "acars" {
		t.Errorf("TableName() = %q, want acars", got)
	}
}

func TestPilot_Fields(t *testing.T) {
	typ := reflect.TypeOf(Pilot{})

	assertGormTag(t, typ, "Email", "uniqueIndex")
	assertGormTag(t, typ, "Role", "default:pilot")
	assertGormTag(t, typ, "State", "default:active")
	assertGormTag(t, typ, "LastPirepID", "size:32")
	assertGormTag(t, typ, "Rank", "foreignKey:RankID")

	assertFieldType(t, typ, "RankID", "*uint")
	assertFieldType(t, typ, "LastPirepID", "*string")
	assertFieldType(t, typ, "State", "models.PilotState")
}

func TestBid_UniquePilotFlight(t *testing.T) {
	typ := reflect.TypeOf(Bid{})

	assertGormTag(t, typ, "PilotID", "uniqueIndex:idx_bid_pilot_flight")
	assertGormTag(t, typ, "FlightID", "uniqueIndex:idx_bid_pilot_flight")
}
