package pirep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/hangar/internal/acars"
	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/models"
	"github.com/zulandar/hangar/internal/notify"
	"github.com/zulandar/hangar/internal/pilot"
	"gorm.io/gorm"
)

// CreateOpts holds optional parameters for Create.
type CreateOpts struct {
	// Start creates the report IN_PROGRESS (a prefile) instead of PENDING.
	Start bool
}

// Create validates and persists a new report together with its planned
// route. The report's ID, state and timestamps are filled in.
func (s *Service) Create(ctx context.Context, p *models.Pirep, opts CreateOpts) (*models.Pirep, error) {
	if err := validateNew(p); err != nil {
		return nil, err
	}
	if opts.Start {
		p.State = models.PirepInProgress
	} else if p.State == "" {
		p.State = models.PirepPending
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, p); err != nil {
			return err
		}
		if p.ID == "" {
			id, err := generateUniqueID(tx)
			if err != nil {
				return err
			}
			p.ID = id
		}
		now := s.now()
		p.CreatedAt = now
		p.UpdatedAt = now

		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("pirep: create: %w", err)
		}
		if p.Route != "" {
			if err := acars.ReplaceRoute(tx, p.ID, acars.ParseRoute(p.Route)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("report created", "pirep", p.ID, "pilot", p.PilotID, "state", p.State)
	return p, nil
}

func validateNew(p *models.Pirep) error {
	if p == nil {
		return fmt.Errorf("pirep: report is required: %w", apperr.ErrValidation)
	}
	if p.PilotID == 0 {
		return fmt.Errorf("pirep: pilot is required: %w", apperr.ErrValidation)
	}
	if p.AirlineID == 0 {
		return fmt.Errorf("pirep: airline is required: %w", apperr.ErrValidation)
	}
	if p.FlightTime < 0 {
		return fmt.Errorf("pirep: flight time %d is negative: %w", p.FlightTime, apperr.ErrValidation)
	}
	if p.Distance < 0 || p.PlannedDistance < 0 || p.FuelUsed < 0 {
		return fmt.Errorf("pirep: distance and fuel must not be negative: %w", apperr.ErrValidation)
	}
	if p.State != "" && p.State != models.PirepPending && p.State != models.PirepInProgress {
		if !p.State.Valid() {
			return fmt.Errorf("pirep: unknown state %q: %w", p.State, apperr.ErrValidation)
		}
		return fmt.Errorf("pirep: new reports start pending or in progress, not %q: %w", p.State, apperr.ErrValidation)
	}
	return nil
}

// checkReferences makes sure every referenced row exists and copies flight
// details onto the report where it left them blank.
func checkReferences(tx *gorm.DB, p *models.Pirep) error {
	exists := func(model interface{}, id interface{}) (bool, error) {
		var n int64
		if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}

	checks := []struct {
		name  string
		model interface{}
		id    interface{}
		skip  bool
	}{
		{"pilot", &models.Pilot{}, p.PilotID, false},
		{"airline", &models.Airline{}, p.AirlineID, false},
		{"aircraft", &models.Aircraft{}, derefUint(p.AircraftID), p.AircraftID == nil},
	}
	for _, c := range checks {
		if c.skip {
			continue
		}
		ok, err := exists(c.model, c.id)
		if err != nil {
			return fmt.Errorf("pirep: check %s %v: %w", c.name, c.id, err)
		}
		if !ok {
			return fmt.Errorf("pirep: %s %v does not exist: %w", c.name, c.id, apperr.ErrValidation)
		}
	}

	if p.FlightID == nil {
		return nil
	}
	var flight models.Flight
	if err := tx.Where("id = ?", *p.FlightID).First(&flight).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("pirep: flight %s does not exist: %w", *p.FlightID, apperr.ErrValidation)
		}
		return fmt.Errorf("pirep: check flight %s: %w", *p.FlightID, err)
	}
	if p.FlightNumber == "" {
		p.FlightNumber = flight.FlightNumber
	}
	if p.DptAirportID == "" {
		p.DptAirportID = flight.DptAirportID
	}
	if p.ArrAirportID == "" {
		p.ArrAirportID = flight.ArrAirportID
	}
	return nil
}

func derefUint(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}

// File marks a report as being flown. A PENDING report moves to
// IN_PROGRESS; an IN_PROGRESS report stays. A pilot on leave is returned to
// active duty in the same transaction.
func (s *Service) File(ctx context.Context, id string) (*models.Pirep, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var out *models.Pirep
	var returned bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockReport(tx, id)
		if err != nil {
			return err
		}
		switch p.State {
		case models.PirepPending:
			if _, err := s.transition(tx, p, models.PirepInProgress); err != nil {
				return err
			}
		case models.PirepInProgress:
		default:
			return &apperr.TransitionError{ID: p.ID, From: string(p.State), To: string(models.PirepInProgress)}
		}

		returned, err = pilot.ReturnFromLeave(tx, p.PilotID)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if returned {
		s.log.Info("pilot returned from leave", "pilot", out.PilotID, "pirep", out.ID)
	}
	return out, nil
}

// Submit hands a report in for review. Admins are notified, and the report
// is accepted on the spot when the pilot's rank allows it and no other open
// report of theirs falls within the duplicate window; otherwise it waits in
// PENDING_ACCEPT.
func (s *Service) Submit(ctx context.Context, id string) (*models.Pirep, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	policy := s.RankPolicy()
	window := s.Settings().DuplicateWindow()

	var out *models.Pirep
	var events []notify.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockReport(tx, id)
		if err != nil {
			return err
		}
		if p.State != models.PirepPending && p.State != models.PirepInProgress {
			return &apperr.TransitionError{ID: p.ID, From: string(p.State), To: string(models.PirepPendingAccept)}
		}

		now := s.now()
		p.SubmittedAt = &now
		if err := tx.Model(&models.Pirep{}).Where("id = ?", p.ID).Update("submitted_at", now).Error; err != nil {
			return fmt.Errorf("pirep: stamp %s submitted: %w", p.ID, err)
		}

		admins, err := pilot.Admins(tx)
		if err != nil {
			return err
		}
		adminIDs := make([]uint, len(admins))
		for i, a := range admins {
			adminIDs[i] = a.ID
		}
		events = append(events, notify.Submitted(p, adminIDs, now))

		owner, err := pilot.Get(tx, p.PilotID)
		if err != nil {
			return err
		}
		changed, err := pilot.SyncRank(tx, owner, policy)
		if err != nil {
			return err
		}
		if changed {
			s.log.Info("pilot rank resynced", "pilot", owner.ID)
		}
		target := models.PirepPendingAccept
		if policy.AutoAccept(*owner) {
			dup, err := openDuplicate(tx, p, window, now)
			if err != nil {
				return err
			}
			if dup == nil {
				target = models.PirepAccepted
			} else {
				s.log.Info("auto-accept skipped, duplicate open", "pirep", p.ID, "duplicate", dup.ID)
			}
		}

		evts, err := s.transition(tx, p, target)
		if err != nil {
			return err
		}
		events = append(events, evts...)
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("report submitted", "pirep", out.ID, "state", out.State)
	s.dispatch(ctx, events)
	return out, nil
}

// openDuplicate returns another open report by the same pilot created
// within window of now, or nil.
func openDuplicate(tx *gorm.DB, p *models.Pirep, window time.Duration, now time.Time) (*models.Pirep, error) {
	if window <= 0 {
		return nil, nil
	}
	var dup models.Pirep
	err := tx.Where("pilot_id = ? AND id <> ? AND created_at >= ? AND state IN ?",
		p.PilotID, p.ID, now.Add(-window), openStates).
		Order("created_at DESC, id DESC").First(&dup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pirep: duplicate check for %s: %w", p.ID, err)
	}
	return &dup, nil
}

// FindDuplicate returns the most recent report by the same pilot created
// within the duplicate window and no later than p. The report itself counts,
// so a freshly created report is its own duplicate. A report older than the
// window matches nothing.
func (s *Service) FindDuplicate(ctx context.Context, p *models.Pirep) (*models.Pirep, error) {
	now := s.now()
	window := s.Settings().DuplicateWindow()
	cutoff := now.Add(-window)

	if window <= 0 || (!p.CreatedAt.IsZero() && p.CreatedAt.Before(cutoff)) {
		return nil, fmt.Errorf("pirep: no duplicate for pilot %d: %w", p.PilotID, apperr.ErrNotFound)
	}

	ref := p.CreatedAt
	if ref.IsZero() {
		ref = now
	}
	q := s.db.WithContext(ctx).Where("pilot_id = ? AND created_at >= ?", p.PilotID, cutoff)
	if p.ID != "" {
		q = q.Where("(created_at < ? OR (created_at = ? AND id <= ?))", ref, ref, p.ID)
	} else {
		q = q.Where("created_at <= ?", ref)
	}

	var dup models.Pirep
	err := q.Order("created_at DESC, id DESC").First(&dup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("pirep: no duplicate for pilot %d: %w", p.PilotID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("pirep: find duplicate for pilot %d: %w", p.PilotID, err)
	}
	return &dup, nil
}
