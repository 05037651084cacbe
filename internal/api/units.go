package api

import (
	"math"
	"time"

	"github.com/zulandar/hangar/internal/models"
)

const (
	kmPerNmi  = 1.852
	miPerNmi  = 1.150779
	kgPerLbs  = 0.45359237
	precision = 100
)

// Distance is a nautical-mile value shown in every supported unit.
type Distance struct {
	Nmi float64 `json:"nmi"`
	Km  float64 `json:"km"`
	Mi  float64 `json:"mi"`
}

// Fuel is a pound value shown in every supported unit.
type Fuel struct {
	Lbs float64 `json:"lbs"`
	Kg  float64 `json:"kg"`
}

func round(v float64) float64 {
	return math.Round(v*precision) / precision
}

// NewDistance converts nautical miles.
func NewDistance(nmi float64) Distance {
	return Distance{Nmi: round(nmi), Km: round(nmi * kmPerNmi), Mi: round(nmi * miPerNmi)}
}

// NewFuel converts pounds.
func NewFuel(lbs float64) Fuel {
	return Fuel{Lbs: round(lbs), Kg: round(lbs * kgPerLbs)}
}

// ReportView is the API representation of a report.
type ReportView struct {
	ID              string            `json:"id"`
	PilotID         uint              `json:"pilot_id"`
	AirlineID       uint              `json:"airline_id"`
	AircraftID      *uint             `json:"aircraft_id,omitempty"`
	FlightID        *string           `json:"flight_id,omitempty"`
	FlightNumber    string            `json:"flight_number"`
	DptAirportID    string            `json:"dpt_airport_id"`
	ArrAirportID    string            `json:"arr_airport_id"`
	FlightTime      int               `json:"flight_time"`
	Distance        Distance          `json:"distance"`
	PlannedDistance Distance          `json:"planned_distance"`
	FuelUsed        Fuel              `json:"fuel_used"`
	Route           string            `json:"route"`
	Notes           string            `json:"notes,omitempty"`
	State           models.PirepState `json:"state"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func reportView(p *models.Pirep) ReportView {
	return ReportView{
		ID:              p.ID,
		PilotID:         p.PilotID,
		AirlineID:       p.AirlineID,
		AircraftID:      p.AircraftID,
		FlightID:        p.FlightID,
		FlightNumber:    p.FlightNumber,
		DptAirportID:    p.DptAirportID,
		ArrAirportID:    p.ArrAirportID,
		FlightTime:      p.FlightTime,
		Distance:        NewDistance(p.Distance),
		PlannedDistance: NewDistance(p.PlannedDistance),
		FuelUsed:        NewFuel(p.FuelUsed),
		Route:           p.Route,
		Notes:           p.Notes,
		State:           p.State,
		SubmittedAt:     p.SubmittedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func reportViews(ps []models.Pirep) []ReportView {
	out := make([]ReportView, len(ps))
	for i := range ps {
		out[i] = reportView(&ps[i])
	}
	return out
}
