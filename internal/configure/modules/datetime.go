package modules

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"droidseed/internal/adb"
	"droidseed/internal/configure"
)

// DateTime pins the device clock, timezone, and time-format settings.
type DateTime struct {
	base
	now func() time.Time
}

type dateTimeConfig struct {
	DisableAutoSettings  *bool           `json:"disable_auto_settings"`
	Use24HourFormat      *bool           `json:"use_24_hour_format"`
	Timezone             string          `json:"timezone"`
	DateTime             json.RawMessage `json:"datetime"`
	UseRandomDateTime    bool            `json:"use_random_datetime"`
	RandomWindowSizeDays *int            `json:"random_window_size_days"`
	RandomWindowCenter   string          `json:"random_window_center"`
}

type dateTimeComponents struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

func NewDateTime(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &DateTime{base: newBase("datetime", env, raw), now: time.Now}
}

func (m *DateTime) Name() string { return "datetime" }

func (m *DateTime) Configure() error {
	var cfg dateTimeConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()

	if boolDefault(cfg.DisableAutoSettings, true) {
		if err := dev.PutSetting(adb.NamespaceGlobal, "auto_time", "0"); err != nil {
			return err
		}
		if err := dev.PutSetting(adb.NamespaceGlobal, "auto_time_zone", "0"); err != nil {
			return err
		}
		m.log.Info().Msg("disabled automatic date, time, and timezone")
	}

	if boolDefault(cfg.Use24HourFormat, true) {
		if err := dev.PutSetting(adb.NamespaceSystem, "time_12_24", "24"); err != nil {
			return err
		}
	}

	if cfg.Timezone != "" {
		if err := dev.SetTimezone(cfg.Timezone); err != nil {
			return err
		}
		m.log.Info().Str("timezone", cfg.Timezone).Msg("timezone set")
	}

	switch {
	case len(cfg.DateTime) > 0:
		target, err := parseClockTarget(cfg.DateTime)
		if err != nil {
			return err
		}
		if err := dev.SetDate(target); err != nil {
			return err
		}
		m.log.Info().Time("clock", target).Msg("clock set")
	case cfg.UseRandomDateTime:
		target, err := m.randomClock(cfg)
		if err != nil {
			return err
		}
		if err := dev.SetDate(target); err != nil {
			return err
		}
		m.log.Info().Time("clock", target).Msg("random clock set")
	}
	return nil
}

// parseClockTarget accepts either an ISO-8601 string or a components object.
func parseClockTarget(raw json.RawMessage) (time.Time, error) {
	var iso string
	if err := json.Unmarshal(raw, &iso); err == nil {
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, iso); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable datetime %q", iso)
	}

	var c dateTimeComponents
	if err := json.Unmarshal(raw, &c); err != nil {
		return time.Time{}, fmt.Errorf("datetime must be a string or components object: %w", err)
	}
	if c.Year == 0 || c.Month == 0 || c.Day == 0 {
		return time.Time{}, fmt.Errorf("datetime components need year, month, and day")
	}
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, 0, time.Local), nil
}

// randomClock picks a uniform instant inside the configured window.
func (m *DateTime) randomClock(cfg dateTimeConfig) (time.Time, error) {
	window := time.Duration(intDefault(cfg.RandomWindowSizeDays, 14)) * 24 * time.Hour
	center := m.now()
	if cfg.RandomWindowCenter != "" {
		parsed, err := parseClockTarget(json.RawMessage(`"` + cfg.RandomWindowCenter + `"`))
		if err != nil {
			return time.Time{}, err
		}
		center = parsed
	}
	if window <= 0 {
		return center, nil
	}
	offset := time.Duration(rand.Int63n(int64(window))) - window/2
	return center.Add(offset), nil
}
