package pirep

import (
	"context"
	"fmt"

	"github.com/zulandar/hangar/internal/acars"
	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
)

// SaveRoute rebuilds the stored route entries from the report's route
// string, replacing any earlier sequence.
func (s *Service) SaveRoute(ctx context.Context, id string) ([]string, error) {
	return s.replaceRoute(ctx, id, nil)
}

// UpdateRoute stores a new route string on the report and replaces its
// route entries to match.
func (s *Service) UpdateRoute(ctx context.Context, id, route string) ([]string, error) {
	return s.replaceRoute(ctx, id, &route)
}

func (s *Service) replaceRoute(ctx context.Context, id string, route *string) ([]string, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var points []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockReport(tx, id)
		if err != nil {
			return err
		}
		if p.State == models.PirepCancelled || p.State == models.PirepDeleted {
			return fmt.Errorf("pirep: %s is %s: %w", p.ID, p.State, apperr.ErrInactiveReport)
		}
		if route != nil {
			p.Route = *route
			if err := tx.Model(&models.Pirep{}).Where("id = ?", p.ID).Update("route", p.Route).Error; err != nil {
				return fmt.Errorf("pirep: update route of %s: %w", p.ID, err)
			}
		}
		points = acars.ParseRoute(p.Route)
		return acars.ReplaceRoute(tx, p.ID, points)
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// Route returns the report's stored route in order.
func (s *Service) Route(ctx context.Context, id string) ([]string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return acars.Route(s.db.WithContext(ctx), id)
}

// PostPositions appends position updates to the report's track. Reports
// that are accepted, rejected, cancelled or deleted take no more updates.
func (s *Service) PostPositions(ctx context.Context, id string, positions []acars.Position) ([]models.Acars, error) {
	var rows []models.Acars
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockReport(tx, id)
		if err != nil {
			return err
		}
		if !p.State.Active() {
			return fmt.Errorf("pirep: %s is %s: %w", p.ID, p.State, apperr.ErrInactiveReport)
		}
		if len(positions) == 0 {
			return fmt.Errorf("pirep: no positions given: %w", apperr.ErrValidation)
		}
		rows, err = acars.AddPositions(tx, p.ID, positions)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Positions returns the report's position track in arrival order.
func (s *Service) Positions(ctx context.Context, id string) ([]models.Acars, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return acars.Positions(s.db.WithContext(ctx), id)
}
