package pilot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zulandar/hangar/internal/models"
	"github.com/zulandar/hangar/internal/rank"
	"gorm.io/gorm"
)

// Apply adds (sign = +1) or removes (sign = -1) one report's contribution to
// the pilot's statistics and re-evaluates rank. Only additions move the
// pilot's current airport and last-report pointer, and only when no accepted
// report of theirs was created after this one.
func Apply(tx *gorm.DB, pilotID uint, pirep *models.Pirep, sign int, policy rank.Policy) (*models.Pilot, error) {
	if sign != 1 && sign != -1 {
		return nil, fmt.Errorf("pilot: sign must be +1 or -1, got %d", sign)
	}

	p, err := lockForUpdate(tx, pilotID)
	if err != nil {
		return nil, err
	}

	p.Flights += sign
	p.FlightTime += sign * pirep.FlightTime
	if sign > 0 {
		newer, err := hasNewerAccepted(tx, pilotID, pirep)
		if err != nil {
			return nil, err
		}
		if !newer {
			if pirep.ArrAirportID != "" {
				p.CurrAirportID = pirep.ArrAirportID
			}
			id := pirep.ID
			p.LastPirepID = &id
		}
	}
	p.RankID = policy.Assign(*p)

	if err := tx.Model(&models.Pilot{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"flights":         p.Flights,
		"flight_time":     p.FlightTime,
		"curr_airport_id": p.CurrAirportID,
		"last_pirep_id":   p.LastPirepID,
		"rank_id":         p.RankID,
	}).Error; err != nil {
		return nil, fmt.Errorf("pilot: update stats of %d: %w", p.ID, err)
	}
	return p, nil
}

// hasNewerAccepted reports whether the pilot has another accepted report
// ordered after pirep by creation time, ties broken by ID.
func hasNewerAccepted(tx *gorm.DB, pilotID uint, pirep *models.Pirep) (bool, error) {
	var n int64
	err := tx.Model(&models.Pirep{}).
		Where("pilot_id = ? AND state = ? AND id <> ?", pilotID, models.PirepAccepted, pirep.ID).
		Where("(created_at > ? OR (created_at = ? AND id > ?))", pirep.CreatedAt, pirep.CreatedAt, pirep.ID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("pilot: newer reports of %d: %w", pilotID, err)
	}
	return n > 0, nil
}

// SyncRank stores the rank the pilot's credited time earns when it differs
// from the stored one. It reports whether the rank changed.
func SyncRank(tx *gorm.DB, p *models.Pilot, policy rank.Policy) (bool, error) {
	assigned := policy.Assign(*p)
	if sameRank(assigned, p.RankID) {
		return false, nil
	}
	if err := tx.Model(&models.Pilot{}).Where("id = ?", p.ID).Update("rank_id", assigned).Error; err != nil {
		return false, fmt.Errorf("pilot: sync rank of %d: %w", p.ID, err)
	}
	p.RankID = assigned
	return true, nil
}

func sameRank(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Recalculate rebuilds a pilot's statistics from their accepted reports.
func Recalculate(db *gorm.DB, pilotID uint, policy rank.Policy) (*models.Pilot, error) {
	var result *models.Pilot
	err := db.Transaction(func(tx *gorm.DB) error {
		p, err := lockForUpdate(tx, pilotID)
		if err != nil {
			return err
		}

		var totals struct {
			Flights    int
			FlightTime int
		}
		if err := tx.Model(&models.Pirep{}).
			Select("COUNT(*) AS flights, COALESCE(SUM(flight_time), 0) AS flight_time").
			Where("pilot_id = ? AND state = ?", pilotID, models.PirepAccepted).
			Scan(&totals).Error; err != nil {
			return fmt.Errorf("pilot: sum reports of %d: %w", pilotID, err)
		}
		p.Flights = totals.Flights
		p.FlightTime = totals.FlightTime

		var last models.Pirep
		err = tx.Where("pilot_id = ? AND state = ?", pilotID, models.PirepAccepted).
			Order("created_at DESC, id DESC").First(&last).Error
		switch {
		case err == nil:
			id := last.ID
			p.LastPirepID = &id
			if last.ArrAirportID != "" {
				p.CurrAirportID = last.ArrAirportID
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			p.LastPirepID = nil
		default:
			return fmt.Errorf("pilot: latest report of %d: %w", pilotID, err)
		}
		p.RankID = policy.Assign(*p)

		if err := tx.Model(&models.Pilot{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"flights":         p.Flights,
			"flight_time":     p.FlightTime,
			"curr_airport_id": p.CurrAirportID,
			"last_pirep_id":   p.LastPirepID,
			"rank_id":         p.RankID,
		}).Error; err != nil {
			return fmt.Errorf("pilot: save stats of %d: %w", p.ID, err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BatchResult summarises a batch recalculation.
type BatchResult struct {
	Updated int
	Failed  int
}

// RecalculateAll rebuilds every pilot's statistics. A failure on one pilot is
// logged and skipped.
func RecalculateAll(db *gorm.DB, policy rank.Policy, log *slog.Logger) (BatchResult, error) {
	var ids []uint
	if err := db.Model(&models.Pilot{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return BatchResult{}, fmt.Errorf("pilot: list pilots: %w", err)
	}

	var res BatchResult
	for _, id := range ids {
		if _, err := Recalculate(db, id, policy); err != nil {
			res.Failed++
			log.Error("pilot recalculation failed", "pilot", id, "err", err)
			continue
		}
		res.Updated++
	}
	log.Info("pilot recalculation finished", "updated", res.Updated, "failed", res.Failed)
	return res, nil
}
