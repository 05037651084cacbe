package pirep

import (
	"context"
	"errors"
	"fmt"

	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
)

// Get retrieves a report by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Pirep, error) {
	var p models.Pirep
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pirep: %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("pirep: get %s: %w", id, err)
	}
	return &p, nil
}

// ListFilters specifies filters for List.
type ListFilters struct {
	PilotID uint
	State   models.PirepState
	Limit   int
}

// List returns reports matching the filters, newest first. Cancelled and
// deleted reports are hidden unless State asks for them.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]models.Pirep, error) {
	if filters.State != "" && !filters.State.Valid() {
		return nil, fmt.Errorf("pirep: unknown state %q: %w", filters.State, apperr.ErrValidation)
	}

	q := s.db.WithContext(ctx).Model(&models.Pirep{})
	if filters.PilotID != 0 {
		q = q.Where("pilot_id = ?", filters.PilotID)
	}
	if filters.State != "" {
		q = q.Where("state = ?", filters.State)
	} else {
		q = q.Where("state NOT IN ?", []models.PirepState{models.PirepCancelled, models.PirepDeleted})
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit)
	}

	var out []models.Pirep
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("pirep: list: %w", err)
	}
	return out, nil
}
