// Package rank assigns pilot ranks from credited flight time.
package rank

import (
	"fmt"
	"sort"

	"github.com/zulandar/hangar/internal/models"
	"gorm.io/gorm"
)

// Table is an ordered rank table, lowest threshold first.
type Table struct {
	ranks []models.Rank
}

// NewTable sorts ranks by hours, breaking ties by ID, and returns the table.
func NewTable(ranks []models.Rank) Table {
	sorted := make([]models.Rank, len(ranks))
	copy(sorted, ranks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Hours != sorted[j].Hours {
			return sorted[i].Hours < sorted[j].Hours
		}
		return sorted[i].ID < sorted[j].ID
	})
	return Table{ranks: sorted}
}

// Load reads the rank table from the database.
func Load(db *gorm.DB) (Table, error) {
	var ranks []models.Rank
	if err := db.Find(&ranks).Error; err != nil {
		return Table{}, fmt.Errorf("rank: load: %w", err)
	}
	return NewTable(ranks), nil
}

// Len returns the number of ranks in the table.
func (t Table) Len() int { return len(t.ranks) }

// Ranks returns a copy of the ordered ranks.
func (t Table) Ranks() []models.Rank {
	out := make([]models.Rank, len(t.ranks))
	copy(out, t.ranks)
	return out
}

// For returns the highest rank whose threshold is met by minutes of credited
// time. ok is false when the table is empty or no threshold is met.
func (t Table) For(minutes int) (r models.Rank, ok bool) {
	for _, candidate := range t.ranks {
		if candidate.Hours*60 > minutes {
			break
		}
		r, ok = candidate, true
	}
	return r, ok
}

// Policy decides how flight time is credited toward rank.
type Policy struct {
	Table              Table
	CountTransferHours bool
}

// Credited returns the minutes that count toward the pilot's rank.
func (p Policy) Credited(pilot models.Pilot) int {
	minutes := pilot.FlightTime
	if p.CountTransferHours {
		minutes += pilot.TransferTime
	}
	return minutes
}

// Assign returns the rank ID the pilot's credited time earns, or nil when
// no threshold is met.
func (p Policy) Assign(pilot models.Pilot) *uint {
	r, ok := p.Table.For(p.Credited(pilot))
	if !ok {
		return nil
	}
	id := r.ID
	return &id
}

// AutoAccept reports whether the rank earned by the pilot's credited time
// skips manual review. The stored rank is not consulted.
func (p Policy) AutoAccept(pilot models.Pilot) bool {
	r, ok := p.Table.For(p.Credited(pilot))
	return ok && r.AutoAccept
}
