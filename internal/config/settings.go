package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/zulandar/hangar/internal/apperr"
)

// Setting keys understood by the lifecycle engine.
const (
	KeyDuplicateCheckTime = "pireps.duplicate_check_time"
	KeyRemoveBidOnAccept  = "pireps.remove_bid_on_accept"
	KeyCountTransferHours = "pilots.count_transfer_hours"
)

// DefaultDuplicateCheckTime is the duplicate window in minutes.
const DefaultDuplicateCheckTime = 10

// Settings are the operational switches read by the lifecycle engine. They
// are passed explicitly to the engine rather than looked up globally.
type Settings struct {
	Pireps PirepSettings `yaml:"pireps"`
	Pilots PilotSettings `yaml:"pilots"`
}

// PirepSettings controls report processing.
type PirepSettings struct {
	DuplicateCheckTime int  `yaml:"duplicate_check_time"` // minutes
	RemoveBidOnAccept  bool `yaml:"remove_bid_on_accept"`
}

// PilotSettings controls pilot statistics.
type PilotSettings struct {
	CountTransferHours bool `yaml:"count_transfer_hours"`
}

// DuplicateWindow returns the duplicate check window as a duration.
func (s Settings) DuplicateWindow() time.Duration {
	return time.Duration(s.Pireps.DuplicateCheckTime) * time.Minute
}

// Keys returns every recognised setting key in sorted order.
func Keys() []string {
	keys := []string{KeyDuplicateCheckTime, KeyRemoveBidOnAccept, KeyCountTransferHours}
	sort.Strings(keys)
	return keys
}

// Values renders the settings as key/value strings for storage.
func (s Settings) Values() map[string]string {
	return map[string]string{
		KeyDuplicateCheckTime: strconv.Itoa(s.Pireps.DuplicateCheckTime),
		KeyRemoveBidOnAccept:  strconv.FormatBool(s.Pireps.RemoveBidOnAccept),
		KeyCountTransferHours: strconv.FormatBool(s.Pilots.CountTransferHours),
	}
}

// Set parses value and assigns it to key. Unknown keys and malformed values
// are configuration errors.
func (s *Settings) Set(key, value string) error {
	switch key {
	case KeyDuplicateCheckTime:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("config: %s = %q: want a non-negative integer: %w", key, value, apperr.ErrConfiguration)
		}
		s.Pireps.DuplicateCheckTime = n
	case KeyRemoveBidOnAccept:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s = %q: want a boolean: %w", key, value, apperr.ErrConfiguration)
		}
		s.Pireps.RemoveBidOnAccept = b
	case KeyCountTransferHours:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s = %q: want a boolean: %w", key, value, apperr.ErrConfiguration)
		}
		s.Pilots.CountTransferHours = b
	default:
		return fmt.Errorf("config: unknown setting %q: %w", key, apperr.ErrConfiguration)
	}
	return nil
}
