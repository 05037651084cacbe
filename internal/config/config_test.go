package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/hangar/internal/apperr"
)

const fullYAML = `
database:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  name: hangar_prod
  user: hangar
  password: secret

api:
  port: 9090

log:
  level: debug
  dir: /var/log/hangar

settings:
  pireps:
    duplicate_check_time: 60
    remove_bid_on_accept: true
  pilots:
    count_transfer_hours: true

ranks:
  - name: Cadet
    hours: 0
  - name: First Officer
    hours: 10
    auto_accept: true

notify:
  timeout: 5s
  slack:
    bot_token: xoxb-test
    channel_id: C123
  discord:
    bot_token: abc
    channel_id: "456"
  nats:
    url: nats://127.0.0.1:4222

maintenance:
  schedule: "30 2 * * *"
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Database.Host != "10.0.0.5" || cfg.Database.Port != 3307 {
		t.Errorf("Database = %s:%d, want 10.0.0.5:3307", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.Name != "hangar_prod" {
		t.Errorf("Database.Name = %q, want hangar_prod", cfg.Database.Name)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Dir != "/var/log/hangar" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Settings.Pireps.DuplicateCheckTime != 60 {
		t.Errorf("DuplicateCheckTime = %d, want 60", cfg.Settings.Pireps.DuplicateCheckTime)
	}
	if !cfg.Settings.Pireps.RemoveBidOnAccept {
		t.Error("RemoveBidOnAccept = false, want true")
	}
	if !cfg.Settings.Pilots.CountTransferHours {
		t.Error("CountTransferHours = false, want true")
	}
	if len(cfg.Ranks) != 2 {
		t.Fatalf("len(Ranks) = %d, want 2", len(cfg.Ranks))
	}
	if cfg.Ranks[1].Name != "First Officer" || cfg.Ranks[1].Hours != 10 || !cfg.Ranks[1].AutoAccept {
		t.Errorf("Ranks[1] = %+v", cfg.Ranks[1])
	}
	if cfg.Notify.Timeout != 5*time.Second {
		t.Errorf("Notify.Timeout = %v, want 5s", cfg.Notify.Timeout)
	}
	if cfg.Notify.NATS.Subject != "hangar.pireps" {
		t.Errorf("NATS.Subject = %q, want default hangar.pireps", cfg.Notify.NATS.Subject)
	}
	if cfg.Maintenance.Schedule != "30 2 * * *" {
		t.Errorf("Maintenance.Schedule = %q", cfg.Maintenance.Schedule)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != "hangar.db" {
		t.Errorf("Database.Path = %q, want hangar.db", cfg.Database.Path)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Settings.Pireps.DuplicateCheckTime != DefaultDuplicateCheckTime {
		t.Errorf("DuplicateCheckTime = %d, want %d", cfg.Settings.Pireps.DuplicateCheckTime, DefaultDuplicateCheckTime)
	}
	if cfg.Settings.Pireps.RemoveBidOnAccept || cfg.Settings.Pilots.CountTransferHours {
		t.Errorf("boolean settings should default to false: %+v", cfg.Settings)
	}
	if cfg.Notify.Timeout != 10*time.Second {
		t.Errorf("Notify.Timeout = %v, want 10s", cfg.Notify.Timeout)
	}
	if cfg.Notify.NATS.Subject != "" {
		t.Errorf("NATS.Subject = %q, want empty without url", cfg.Notify.NATS.Subject)
	}
	if cfg.Maintenance.Schedule != "0 3 * * *" {
		t.Errorf("Maintenance.Schedule = %q, want 0 3 * * *", cfg.Maintenance.Schedule)
	}
}

func TestParse_PostgresDefaultPort(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  driver: postgres\n  user: hangar\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown driver", "database:\n  driver: oracle\n", "database.driver"},
		{"mysql without user", "database:\n  driver: mysql\n", "database.user is required"},
		{"bad log level", "log:\n  level: loud\n", "log.level"},
		{"negative window", "settings:\n  pireps:\n    duplicate_check_time: -5\n", "duplicate_check_time must not be negative"},
		{"rank without name", "ranks:\n  - hours: 3\n", "ranks[0].name is required"},
		{"duplicate rank", "ranks:\n  - name: A\n  - name: A\n", "is duplicated"},
		{"slack without channel", "notify:\n  slack:\n    bot_token: x\n", "notify.slack.channel_id"},
		{"discord without channel", "notify:\n  discord:\n    bot_token: x\n", "notify.discord.channel_id"},
		{"bad schedule", "maintenance:\n  schedule: every day\n", "maintenance.schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParse_ScheduleOff(t *testing.T) {
	cfg, err := Parse([]byte("maintenance:\n  schedule: \"off\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Maintenance.Schedule != "off" {
		t.Errorf("Schedule = %q, want off", cfg.Maintenance.Schedule)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("database: [unterminated"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %q, want config: parse prefix", err.Error())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hangar.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.User != "hangar" {
		t.Errorf("Database.User = %q, want hangar", cfg.Database.User)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSettings_Set(t *testing.T) {
	var s Settings
	if err := s.Set(KeyDuplicateCheckTime, "45"); err != nil {
		t.Fatalf("Set duplicate time: %v", err)
	}
	if err := s.Set(KeyRemoveBidOnAccept, "true"); err != nil {
		t.Fatalf("Set remove bid: %v", err)
	}
	if err := s.Set(KeyCountTransferHours, "1"); err != nil {
		t.Fatalf("Set transfer hours: %v", err)
	}
	if s.Pireps.DuplicateCheckTime != 45 || !s.Pireps.RemoveBidOnAccept || !s.Pilots.CountTransferHours {
		t.Errorf("Settings = %+v", s)
	}
	if s.DuplicateWindow() != 45*time.Minute {
		t.Errorf("DuplicateWindow() = %v, want 45m", s.DuplicateWindow())
	}
}

func TestSettings_SetMalformed(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{KeyDuplicateCheckTime, "soon"},
		{KeyDuplicateCheckTime, "-1"},
		{KeyRemoveBidOnAccept, "maybe"},
		{KeyCountTransferHours, ""},
		{"pireps.unknown", "1"},
	}
	for _, tt := range tests {
		var s Settings
		err := s.Set(tt.key, tt.value)
		if !errors.Is(err, apperr.ErrConfiguration) {
			t.Errorf("Set(%q, %q) error = %v, want ErrConfiguration", tt.key, tt.value, err)
		}
	}
}

func TestSettings_ValuesRoundTrip(t *testing.T) {
	want := Settings{
		Pireps: PirepSettings{DuplicateCheckTime: 30, RemoveBidOnAccept: true},
		Pilots: PilotSettings{CountTransferHours: false},
	}
	var got Settings
	for k, v := range want.Values() {
		if err := got.Set(k, v); err != nil {
			t.Fatalf("Set(%q, %q): %v", k, v, err)
		}
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
	if len(Keys()) != len(want.Values()) {
		t.Errorf("Keys() has %d entries, Values() has %d", len(Keys()), len(want.Values()))
	}
}
