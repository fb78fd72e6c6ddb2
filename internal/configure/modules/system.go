package modules

import (
	"encoding/json"
	"fmt"
	"strings"

	"droidseed/internal/adb"
	"droidseed/internal/configure"
)

// System flips device-wide settings: brightness, radios, clipboard, and the
// final foreground state. It runs last in the catalog so nothing after it
// disturbs the screen.
type System struct {
	base
}

type systemConfig struct {
	Brightness   string  `json:"brightness"`
	Wifi         string  `json:"wifi"`
	Bluetooth    string  `json:"bluetooth"`
	Clipboard    *string `json:"clipboard"`
	AirplaneMode string  `json:"airplane_mode"`
	CloseAllApps bool    `json:"close_all_apps"`
	OpenApp      string  `json:"open_app"`
}

func NewSystem(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &System{newBase("system", env, raw)}
}

func (m *System) Name() string { return "system" }

func (m *System) Configure() error {
	var cfg systemConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()

	if cfg.Brightness != "" {
		if err := m.setBrightness(cfg.Brightness); err != nil {
			m.log.Error().Err(err).Msg("brightness failed")
		}
	}
	if cfg.Wifi != "" {
		if err := dev.SetWifi(cfg.Wifi); err != nil {
			m.log.Error().Err(err).Msg("wifi toggle failed")
		} else {
			m.verifyToggle("wifi_on", cfg.Wifi)
		}
	}
	if cfg.Bluetooth != "" {
		if err := dev.SetBluetooth(cfg.Bluetooth); err != nil {
			m.log.Error().Err(err).Msg("bluetooth toggle failed")
		}
	}
	if cfg.Clipboard != nil {
		if err := dev.SetClipboard(*cfg.Clipboard); err != nil {
			m.log.Error().Err(err).Msg("clipboard failed")
		}
	}
	if cfg.AirplaneMode != "" {
		if err := dev.SetAirplaneMode(cfg.AirplaneMode); err != nil {
			m.log.Error().Err(err).Msg("airplane mode failed")
		}
	}

	if cfg.CloseAllApps {
		if err := dev.CloseRecents(); err != nil {
			m.log.Error().Err(err).Msg("close recents failed")
		}
	}
	if cfg.OpenApp != "" {
		if err := dev.LaunchApp(cfg.OpenApp); err != nil {
			m.log.Error().Err(err).Str("app", cfg.OpenApp).Msg("open app failed")
		}
	} else if cfg.CloseAllApps {
		if err := dev.PressHome(); err != nil {
			m.log.Error().Err(err).Msg("home press failed")
		}
	}

	m.log.Info().Msg("system configuration completed")
	return nil
}

// setBrightness accepts only the two calibration extremes: 255 for max,
// 1 for min, with auto-brightness turned off first.
func (m *System) setBrightness(level string) error {
	var value string
	switch level {
	case "max":
		value = "255"
	case "min":
		value = "1"
	default:
		return fmt.Errorf("invalid brightness %q, want max or min", level)
	}
	dev := m.dev()
	if err := dev.PutSetting(adb.NamespaceSystem, "screen_brightness_mode", "0"); err != nil {
		return err
	}
	if err := dev.PutSetting(adb.NamespaceSystem, "screen_brightness", value); err != nil {
		return err
	}

	got, err := dev.GetSetting(adb.NamespaceSystem, "screen_brightness")
	if err == nil && strings.TrimSpace(got) != value {
		m.log.Warn().Str("want", value).Str("got", got).Msg("brightness readback mismatch")
	}
	return nil
}

func (m *System) verifyToggle(key, want string) {
	got, err := m.dev().GetSetting(adb.NamespaceGlobal, key)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("toggle readback failed")
		return
	}
	got = strings.TrimSpace(got)
	// wifi_on reports 2 while a scan-only mode is active; both count as on.
	on := got == "1" || got == "2"
	if (want == "on") != on {
		m.log.Warn().Str("key", key).Str("want", want).Str("got", got).Msg("toggle readback mismatch")
	}
}
