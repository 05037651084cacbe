// Package pirep implements the flight report lifecycle: creation, filing,
// submission, review transitions and route/track storage. Every transition
// updates pilot, aircraft and bid state in the same transaction as the
// report, and notifications go out only after commit.
package pirep

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/models"
	"github.com/zulandar/hangar/internal/notify"
	"github.com/zulandar/hangar/internal/rank"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service runs report lifecycle operations against one database.
type Service struct {
	db       *gorm.DB
	ranks    rank.Table
	notifier notify.Notifier
	log      *slog.Logger
	now      func() time.Time
	locks    keyedMutex

	mu       sync.RWMutex
	settings config.Settings
}

// Opts configures a Service.
type Opts struct {
	DB       *gorm.DB
	Settings config.Settings
	Ranks    rank.Table
	Notifier notify.Notifier // nil disables notifications
	Logger   *slog.Logger
	Clock    func() time.Time // defaults to time.Now
}

// New returns a Service.
func New(opts Opts) (*Service, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("pirep: db is required")
	}
	s := &Service{
		db:       opts.DB,
		ranks:    opts.Ranks,
		notifier: opts.Notifier,
		log:      opts.Logger,
		settings: opts.Settings,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	s.now = func() time.Time { return clock().UTC() }
	return s, nil
}

// Settings returns the settings currently in effect.
func (s *Service) Settings() config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings replaces the settings used by later operations.
func (s *Service) SetSettings(settings config.Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// RankPolicy returns the rank policy derived from the current settings.
func (s *Service) RankPolicy() rank.Policy {
	return rank.Policy{Table: s.ranks, CountTransferHours: s.Settings().Pilots.CountTransferHours}
}

// DB returns the service's database handle.
func (s *Service) DB() *gorm.DB { return s.db }

// dispatch sends events after commit. Failures are logged only.
func (s *Service) dispatch(ctx context.Context, events []notify.Event) {
	if s.notifier == nil {
		return
	}
	for _, evt := range events {
		if err := s.notifier.Notify(ctx, evt); err != nil {
			s.log.Error("notification failed", "kind", evt.Kind, "pirep", evt.PirepID, "err", err)
		}
	}
}

// lockReport loads a report with an exclusive row lock inside tx.
func lockReport(tx *gorm.DB, id string) (*models.Pirep, error) {
	var p models.Pirep
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pirep: %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("pirep: lock %s: %w", id, err)
	}
	return &p, nil
}

// GenerateID returns a report ID of the form "pirep-" + 8 hex chars.
func GenerateID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("pirep: generate ID: %w", err)
	}
	return "pirep-" + hex.EncodeToString(b), nil
}

func generateUniqueID(db *gorm.DB) (string, error) {
	for i := 0; i < 3; i++ {
		id, err := GenerateID()
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.Pirep{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("pirep: check ID uniqueness: %w", err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("pirep: failed to generate unique ID after retries")
}
