package pirep

import (
	"context"
	"fmt"

	"github.com/zulandar/hangar/internal/acars"
	"github.com/zulandar/hangar/internal/aircraft"
	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/bid"
	"github.com/zulandar/hangar/internal/models"
	"github.com/zulandar/hangar/internal/notify"
	"github.com/zulandar/hangar/internal/pilot"
	"github.com/zulandar/hangar/internal/rank"
	"gorm.io/gorm"
)

// ChangeState moves a report to state to and applies the side effects of
// entering and leaving ACCEPTED, REJECTED and CANCELLED. Moving to the
// current state is a no-op. Disallowed moves return a *apperr.TransitionError.
func (s *Service) ChangeState(ctx context.Context, id string, to models.PirepState) (*models.Pirep, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("pirep: unknown state %q: %w", to, apperr.ErrValidation)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	var out *models.Pirep
	var events []notify.Event
	var from models.PirepState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockReport(tx, id)
		if err != nil {
			return err
		}
		from = p.State
		events, err = s.transition(tx, p, to)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if from != to {
		s.log.Info("report state changed", "pirep", id, "from", from, "to", to)
	}
	s.dispatch(ctx, events)
	return out, nil
}

// Accept moves a report to ACCEPTED.
func (s *Service) Accept(ctx context.Context, id string) (*models.Pirep, error) {
	return s.ChangeState(ctx, id, models.PirepAccepted)
}

// Reject moves a report to REJECTED.
func (s *Service) Reject(ctx context.Context, id string) (*models.Pirep, error) {
	return s.ChangeState(ctx, id, models.PirepRejected)
}

// Cancel moves a report to CANCELLED, discarding its ACARS data.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Pirep, error) {
	return s.ChangeState(ctx, id, models.PirepCancelled)
}

// transition applies one state change to a locked report inside tx and
// returns the events to send once tx commits.
func (s *Service) transition(tx *gorm.DB, p *models.Pirep, to models.PirepState) ([]notify.Event, error) {
	from := p.State
	if from == to {
		return nil, nil
	}
	if !isValidTransition(from, to) {
		return nil, &apperr.TransitionError{ID: p.ID, From: string(from), To: string(to)}
	}

	settings := s.Settings()
	policy := s.RankPolicy()

	if from == models.PirepAccepted {
		if err := s.applyStats(tx, p, -1, policy); err != nil {
			return nil, err
		}
	}

	switch to {
	case models.PirepAccepted:
		if err := s.applyStats(tx, p, 1, policy); err != nil {
			return nil, err
		}
		if _, err := bid.Reconcile(tx, p, settings.Pireps.RemoveBidOnAccept); err != nil {
			return nil, err
		}
	case models.PirepCancelled:
		if _, err := acars.DeleteAll(tx, p.ID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	if err := tx.Model(&models.Pirep{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"state":      to,
		"updated_at": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("pirep: set %s %s: %w", p.ID, to, err)
	}
	p.State = to
	p.UpdatedAt = now

	switch to {
	case models.PirepAccepted:
		return []notify.Event{notify.Accepted(p, now)}, nil
	case models.PirepRejected:
		return []notify.Event{notify.Rejected(p, now)}, nil
	}
	return nil, nil
}

// applyStats adds or removes the report's contribution to its pilot and
// aircraft.
func (s *Service) applyStats(tx *gorm.DB, p *models.Pirep, sign int, policy rank.Policy) error {
	if _, err := pilot.Apply(tx, p.PilotID, p, sign, policy); err != nil {
		return err
	}
	if p.AircraftID != nil {
		if _, err := aircraft.Apply(tx, *p.AircraftID, p, sign); err != nil {
			return err
		}
	}
	return nil
}
