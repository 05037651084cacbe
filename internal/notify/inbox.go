package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
)

// Inbox stores one notification row per recipient.
type Inbox struct {
	db *gorm.DB
}

// NewInbox returns an Inbox writing to db.
func NewInbox(db *gorm.DB) *Inbox {
	return &Inbox{db: db}
}

// Notify persists evt for every recipient.
func (i *Inbox) Notify(ctx context.Context, evt Event) error {
	if len(evt.Recipients) == 0 {
		return nil
	}
	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	rows := make([]models.Notification, 0, len(evt.Recipients))
	for _, pilotID := range evt.Recipients {
		rows = append(rows, models.Notification{
			PilotID:   pilotID,
			Kind:      string(evt.Kind),
			PirepID:   evt.PirepID,
			Title:     evt.Title,
			Body:      evt.Body,
			CreatedAt: at,
		})
	}
	if err := i.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("notify: inbox %s: %w", evt.Kind, err)
	}
	return nil
}

// List returns a pilot's notifications, newest first. With unreadOnly set,
// read notifications are skipped.
func List(db *gorm.DB, pilotID uint, unreadOnly bool) ([]models.Notification, error) {
	q := db.Where("pilot_id = ?", pilotID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var out []models.Notification
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("notify: list for pilot %d: %w", pilotID, err)
	}
	return out, nil
}

// MarkRead stamps a notification as read.
func MarkRead(db *gorm.DB, id uint, at time.Time) error {
	result := db.Model(&models.Notification{}).Where("id = ? AND read_at IS NULL", id).Update("read_at", at)
	if result.Error != nil {
		return fmt.Errorf("notify: mark %d read: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		var n int64
		if err := db.Model(&models.Notification{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("notify: mark %d read: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("notify: notification %d: %w", id, apperr.ErrNotFound)
		}
	}
	return nil
}
