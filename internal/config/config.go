// Package config loads the declarative run configuration and the optional
// device profile.
//
// Ownership boundary:
// - run configuration file parsing (JSON, comments tolerated)
// - device profile parsing (TOML) and flag/profile/default precedence
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
)

var (
	ErrNotFound = errors.New("config: file not found")
	ErrParse    = errors.New("config: parse failed")
)

// Run is the declarative device-state configuration: one fragment per module
// key. Loaded once and treated as immutable for the duration of a run.
type Run struct {
	Modules map[string]json.RawMessage
	Path    string
}

// LoadRun reads and parses the run configuration. Top-level keys identify
// modules; values are module-specific objects decoded later by each
// configurator.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	modules := make(map[string]json.RawMessage)
	if err := json.Unmarshal(jsonc.ToJSON(data), &modules); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return &Run{Modules: modules, Path: path}, nil
}

// Fragment returns the raw fragment for key, if present.
func (r *Run) Fragment(key string) (json.RawMessage, bool) {
	frag, ok := r.Modules[key]
	return frag, ok
}

// Keys returns every module key present in the configuration.
func (r *Run) Keys() []string {
	keys := make([]string, 0, len(r.Modules))
	for k := range r.Modules {
		keys = append(keys, k)
	}
	return keys
}

// Profile carries device-addressing defaults. Flags override profile values,
// which override built-in defaults.
type Profile struct {
	ConsolePort  int    `toml:"console_port"`
	GRPCPort     int    `toml:"grpc_port"`
	ADBPath      string `toml:"adb_path"`
	DeviceSerial string `toml:"device_serial"`

	SSH SSHProfile `toml:"ssh"`
}

// SSHProfile configures the remote-host runner for tethered lab devices.
type SSHProfile struct {
	Host           string `toml:"host"`
	Port           string `toml:"port"`
	User           string `toml:"user"`
	KeyPath        string `toml:"key_path"`
	KnownHostsPath string `toml:"known_hosts_path"`
	Insecure       bool   `toml:"insecure_skip_host_key_checking"`
}

func DefaultProfile() Profile {
	return Profile{
		ConsolePort: 5554,
		GRPCPort:    8554,
	}
}

// LoadProfile reads a TOML device profile and fills unset fields from
// defaults.
func LoadProfile(path string) (Profile, error) {
	cfg := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return cfg, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if cfg.ConsolePort == 0 {
		cfg.ConsolePort = 5554
	}
	if cfg.GRPCPort == 0 {
		cfg.GRPCPort = 8554
	}
	if err := ValidateProfile(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func ValidateProfile(cfg Profile) error {
	if cfg.ConsolePort <= 0 || cfg.ConsolePort > 65535 {
		return fmt.Errorf("profile console_port out of range: %d", cfg.ConsolePort)
	}
	if cfg.GRPCPort <= 0 || cfg.GRPCPort > 65535 {
		return fmt.Errorf("profile grpc_port out of range: %d", cfg.GRPCPort)
	}
	if cfg.SSH.Host != "" {
		if strings.TrimSpace(cfg.SSH.User) == "" {
			return fmt.Errorf("profile ssh.user required when ssh.host is set")
		}
		if strings.TrimSpace(cfg.SSH.KeyPath) == "" {
			return fmt.Errorf("profile ssh.key_path required when ssh.host is set")
		}
	}
	return nil
}

// Flags carries the CLI overrides for a device profile. Nil or empty fields
// mean the flag was not set.
type Flags struct {
	ConsolePort  *int
	GRPCPort     *int
	ADBPath      string
	DeviceSerial string
}

// MergeFlags resolves the final profile: a set flag beats the profile value,
// which beats the built-in default.
func MergeFlags(profile Profile, flags Flags) Profile {
	if flags.ConsolePort != nil {
		profile.ConsolePort = *flags.ConsolePort
	}
	if flags.GRPCPort != nil {
		profile.GRPCPort = *flags.GRPCPort
	}
	if flags.ADBPath != "" {
		profile.ADBPath = flags.ADBPath
	}
	if flags.DeviceSerial != "" {
		profile.DeviceSerial = flags.DeviceSerial
	}
	if profile.ConsolePort == 0 {
		profile.ConsolePort = 5554
	}
	if profile.GRPCPort == 0 {
		profile.GRPCPort = 8554
	}
	return profile
}

// Serial resolves the device serial: explicit serial wins, otherwise the
// emulator serial derived from the console port.
func (p Profile) Serial() string {
	if s := strings.TrimSpace(p.DeviceSerial); s != "" {
		return s
	}
	return fmt.Sprintf("emulator-%d", p.ConsolePort)
}

// IsPhysicalDevice reports whether the target is a physical device rather
// than an emulator.
func (p Profile) IsPhysicalDevice() bool {
	s := strings.TrimSpace(p.DeviceSerial)
	return s != "" && !strings.HasPrefix(s, "emulator-")
}
