package setting

import (
	"errors"
	"testing"

	"github.com/zulandar/hangar/internal/apperr"
	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/dbtest"
	"github.com/zulandar/hangar/internal/models"
)

func defaults() config.Settings {
	return config.Settings{
		Pireps: config.PirepSettings{DuplicateCheckTime: config.DefaultDuplicateCheckTime},
	}
}

func TestLoad_NoRowsReturnsBase(t *testing.T) {
	db := dbtest.Open(t)
	got, err := Load(db, defaults())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != defaults() {
		t.Errorf("Load = %+v, want defaults", got)
	}
}

func TestStoreThenLoad(t *testing.T) {
	db := dbtest.Open(t)
	if err := Store(db, config.KeyDuplicateCheckTime, "30"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := Store(db, config.KeyRemoveBidOnAccept, "true"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	// Overwrite.
	if err := Store(db, config.KeyDuplicateCheckTime, "15"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := Load(db, defaults())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Pireps.DuplicateCheckTime != 15 {
		t.Errorf("DuplicateCheckTime = %d, want 15", got.Pireps.DuplicateCheckTime)
	}
	if !got.Pireps.RemoveBidOnAccept {
		t.Error("RemoveBidOnAccept = false, want true")
	}
	if got.Pilots.CountTransferHours {
		t.Error("CountTransferHours should keep its default")
	}

	rows, err := List(db)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("List = %d rows, want 2", len(rows))
	}
}

func TestStore_RejectsBadValues(t *testing.T) {
	db := dbtest.Open(t)
	tests := []struct {
		key, value string
	}{
		{config.KeyDuplicateCheckTime, "soon"},
		{config.KeyDuplicateCheckTime, "-1"},
		{config.KeyCountTransferHours, "maybe"},
		{"pireps.unknown", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			if err := Store(db, tt.key, tt.value); !errors.Is(err, apperr.ErrConfiguration) {
				t.Errorf("error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestLoad_MalformedStoredValue(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.Create(t, db, &models.Setting{Key: config.KeyRemoveBidOnAccept, Value: "sometimes"})

	got, err := Load(db, defaults())
	if !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
	if got != defaults() {
		t.Errorf("Load returned %+v on error, want base", got)
	}
}

func TestLoad_IgnoresUnknownKeys(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.Create(t, db, &models.Setting{Key: "legacy.flag", Value: "x"})
	if _, err := Load(db, defaults()); err != nil {
		t.Errorf("Load: %v", err)
	}
}
