package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"budgetcycle/internal/core"
)

// Settings is the persisted period configuration.
type Settings struct {
	Type       core.PeriodType `toml:"type" json:"type"`
	AnchorDate string          `toml:"anchor_date" json:"anchor_date"`
}

// DefaultSettings is a monthly cycle anchored on the first of the month
// containing now.
func DefaultSettings(now time.Time) Settings {
	y, m, _ := now.Date()
	return Settings{
		Type:       core.Monthly,
		AnchorDate: core.NewDate(y, int(m), 1).ISO(),
	}
}

// DefaultSettingsPath is settings.toml in the user config directory, or in
// the working directory when that cannot be resolved.
func DefaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "budgetcycle.toml"
	}
	return filepath.Join(dir, "budgetcycle", "settings.toml")
}

func (s Settings) Validate() error {
	if _, err := core.ParsePeriodType(string(s.Type)); err != nil {
		return err
	}
	if _, err := core.ParseDate(s.AnchorDate); err != nil {
		return fmt.Errorf("anchor_date: %w", err)
	}
	return nil
}

// Anchor returns the parsed anchor date.
func (s Settings) Anchor() (core.Date, error) {
	return core.ParseDate(s.AnchorDate)
}

// LoadSettings reads path. A missing file yields DefaultSettings; missing
// keys are filled from the defaults.
func LoadSettings(path string, now time.Time) (Settings, error) {
	defaults := DefaultSettings(now)

	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults, nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	if s.Type == "" {
		s.Type = defaults.Type
	}
	if s.AnchorDate == "" {
		s.AnchorDate = defaults.AnchorDate
	}

	pt, err := core.ParsePeriodType(string(s.Type))
	if err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	s.Type = pt
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

func SaveSettings(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create settings file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
