package adb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoDevice     = errors.New("adb: no device available")
	ErrShellFailed  = errors.New("adb: shell command failed")
	ErrPushFailed   = errors.New("adb: push failed")
	ErrNoSuchEntry  = errors.New("adb: no such file or directory")
	ErrAppMissing   = errors.New("adb: app not installed")
	ErrWaitExceeded = errors.New("adb: wait budget exceeded")
)

// Settings namespaces understood by `settings get/put`.
const (
	NamespaceSystem = "system"
	NamespaceGlobal = "global"
	NamespaceSecure = "secure"
)

// Options configure the Device controller.
type Options struct {
	Runner  CommandRunner
	Path    string // adb binary path; DefaultPath() when empty
	Serial  string // device serial; emulator-<console port> for emulators
	Backoff BackoffConfig
}

// Device is the canonical controller for one attached device. All remote
// state mutation in this repository goes through it.
type Device struct {
	runner  CommandRunner
	path    string
	serial  string
	backoff BackoffConfig
	log     zerolog.Logger
}

func NewDevice(opts Options) *Device {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		path = DefaultPath()
	}
	backoff := opts.Backoff
	if backoff.InitialDelay <= 0 {
		backoff = DefaultBackoff()
	}
	return &Device{
		runner:  runner,
		path:    path,
		serial:  strings.TrimSpace(opts.Serial),
		backoff: backoff,
		log:     log.With().Str("component", "adb").Str("serial", opts.Serial).Logger(),
	}
}

// DefaultPath returns the platform-specific SDK location of the adb binary.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "adb"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library/Android/sdk/platform-tools/adb")
	case "windows":
		return filepath.Join(home, "AppData/Local/Android/Sdk/platform-tools/adb.exe")
	default:
		return filepath.Join(home, "Android/Sdk/platform-tools/adb")
	}
}

func (d *Device) Serial() string { return d.serial }

// run invokes the adb binary with the device serial prepended.
func (d *Device) run(args ...string) (string, error) {
	full := args
	if d.serial != "" {
		full = append([]string{"-s", d.serial}, args...)
	}
	stdout, stderr, exit, err := d.runner.Run(d.path, full...)
	out := strings.TrimSpace(string(stdout))
	if err != nil {
		return out, fmt.Errorf("%w: args=%q exit=%d stderr=%q: %v",
			ErrShellFailed, strings.Join(args, " "), exit, strings.TrimSpace(string(stderr)), err)
	}
	return out, nil
}

// Shell runs a ready shell command string on the device.
func (d *Device) Shell(cmd string) (string, error) {
	d.log.Trace().Str("cmd", cmd).Msg("shell")
	return d.run("shell", cmd)
}

// Devices returns the raw `adb devices` listing.
func (d *Device) Devices() (string, error) {
	stdout, stderr, exit, err := d.runner.Run(d.path, "devices")
	if err != nil {
		return "", fmt.Errorf("adb devices failed exit=%d stderr=%q: %w", exit, strings.TrimSpace(string(stderr)), err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// SetRoot restarts adbd with root permissions. Failure is non-fatal on
// production builds and is reported as an error for the caller to log.
func (d *Device) SetRoot() error {
	_, err := d.run("root")
	return err
}

// ExecuteSQL runs one statement against a SQLite database file on the device.
func (d *Device) ExecuteSQL(dbPath, stmt string) error {
	_, err := d.Shell(fmt.Sprintf("sqlite3 %s %s", dbPath, Quote(stmt)))
	return err
}

// QuerySQL runs a query and returns sqlite3's raw line output.
func (d *Device) QuerySQL(dbPath, query string) (string, error) {
	return d.Shell(fmt.Sprintf("sqlite3 %s %s", dbPath, Quote(query)))
}

// FileExists reports whether path names an existing file or directory.
func (d *Device) FileExists(path string) (bool, error) {
	out, err := d.Shell(fmt.Sprintf("ls %s 2>/dev/null || echo __absent__", path))
	if err != nil {
		return false, err
	}
	return !strings.Contains(out, "__absent__") && !strings.Contains(out, "No such file"), nil
}

// DirectoryExists reports whether path is an existing directory.
func (d *Device) DirectoryExists(path string) (bool, error) {
	out, err := d.Shell(fmt.Sprintf("[ -d %s ] && echo yes || echo no", path))
	if err != nil {
		return false, err
	}
	return strings.Contains(out, "yes"), nil
}

func (d *Device) Mkdir(path string) error {
	_, err := d.Shell(fmt.Sprintf("mkdir -p %s", path))
	return err
}

// ClearDirectory removes the directory's contents, leaving the directory in
// place. Clearing an empty or missing directory is a no-op.
func (d *Device) ClearDirectory(path string) error {
	if _, err := d.Shell(fmt.Sprintf("rm -rf %s/*", path)); err != nil {
		return err
	}
	return d.Mkdir(path)
}

// RemoveMatching deletes files under dir matching the given glob patterns.
func (d *Device) RemoveMatching(dir string, patterns ...string) error {
	if len(patterns) == 0 {
		return nil
	}
	targets := make([]string, 0, len(patterns))
	for _, p := range patterns {
		targets = append(targets, dir+"/"+p)
	}
	_, err := d.Shell("rm -f " + strings.Join(targets, " "))
	return err
}

// WriteFile writes content to a device path, creating parent directories.
func (d *Device) WriteFile(path, content string) error {
	if err := d.Mkdir(filepath.Dir(path)); err != nil {
		return err
	}
	_, err := d.Shell(fmt.Sprintf("printf '%%s' %s > %s", Quote(content), path))
	return err
}

// PushFile copies a host file onto the device.
func (d *Device) PushFile(local, remote string) error {
	if _, err := d.run("push", local, remote); err != nil {
		return fmt.Errorf("%w: %s -> %s: %v", ErrPushFailed, local, remote, err)
	}
	return nil
}

// CopyFile copies a file between two device paths.
func (d *Device) CopyFile(src, dst string) error {
	_, err := d.Shell(fmt.Sprintf("cp %s %s", src, dst))
	return err
}

// ReadFile returns the contents of a device file.
func (d *Device) ReadFile(path string) (string, error) {
	return d.Shell("cat " + path)
}

// ListPackages returns all installed package identifiers.
func (d *Device) ListPackages() ([]string, error) {
	out, err := d.Shell("pm list packages")
	if err != nil {
		return nil, err
	}
	var packages []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(line, "package:"); ok {
			packages = append(packages, name)
		}
	}
	return packages, nil
}

// IsInstalled reports whether a package is present on the device.
func (d *Device) IsInstalled(pkg string) (bool, error) {
	packages, err := d.ListPackages()
	if err != nil {
		return false, err
	}
	for _, p := range packages {
		if p == pkg {
			return true, nil
		}
	}
	return false, nil
}

// LaunchApp starts a package's launcher activity.
func (d *Device) LaunchApp(pkg string) error {
	_, err := d.Shell(fmt.Sprintf("monkey -p %s -c android.intent.category.LAUNCHER 1", pkg))
	return err
}

// CloseApp force-stops a package.
func (d *Device) CloseApp(pkg string) error {
	_, err := d.Shell("am force-stop " + pkg)
	return err
}

// ClearAppData wipes a package's private data.
func (d *Device) ClearAppData(pkg string) error {
	_, err := d.Shell("pm clear " + pkg)
	return err
}

// KeyEvent injects a single key press by keycode name.
func (d *Device) KeyEvent(code string) error {
	_, err := d.Shell("input keyevent " + code)
	return err
}

func (d *Device) PressHome() error {
	return d.KeyEvent("KEYCODE_HOME")
}

// CloseRecents kills background apps and returns to the home screen.
func (d *Device) CloseRecents() error {
	if _, err := d.Shell("am kill-all"); err != nil {
		return err
	}
	return d.PressHome()
}

func (d *Device) GetSetting(namespace, key string) (string, error) {
	return d.Shell(fmt.Sprintf("settings get %s %s", namespace, key))
}

func (d *Device) PutSetting(namespace, key, value string) error {
	_, err := d.Shell(fmt.Sprintf("settings put %s %s %s", namespace, key, Quote(value)))
	return err
}

// BroadcastIntent sends an intent broadcast, optionally with a data URI.
func (d *Device) BroadcastIntent(action, dataURI string) error {
	cmd := "am broadcast -a " + action
	if dataURI != "" {
		cmd += " -d " + dataURI
	}
	_, err := d.Shell(cmd)
	return err
}

// StartActivity issues `am start` with raw intent arguments.
func (d *Device) StartActivity(args ...string) error {
	_, err := d.Shell("am start " + strings.Join(args, " "))
	return err
}

// ContentDelete deletes rows behind a content provider URI.
func (d *Device) ContentDelete(uri string) error {
	_, err := d.Shell("content delete --uri " + uri)
	return err
}

// GetProp reads a system property value.
func (d *Device) GetProp(name string) (string, error) {
	return d.Shell("getprop " + name)
}

// MediaScan asks the media store to index path.
func (d *Device) MediaScan(path string) error {
	return d.BroadcastIntent("android.intent.action.MEDIA_SCANNER_SCAN_FILE", "file://"+path)
}

func (d *Device) GrantPermission(pkg, permission string) error {
	_, err := d.Shell(fmt.Sprintf("pm grant %s %s", pkg, permission))
	return err
}

// SendSMS injects an incoming SMS through the emulator console.
func (d *Device) SendSMS(number, text string) error {
	_, err := d.run("emu", "sms", "send", number, text)
	return err
}

// SetDate sets the device clock. Android's date command takes MMDDhhmmYY.SS.
func (d *Device) SetDate(t time.Time) error {
	_, err := d.Shell("date " + t.Format("0102150406.05"))
	return err
}

// SetTimezone sets the persisted timezone via the alarm service.
func (d *Device) SetTimezone(tz string) error {
	_, err := d.Shell("service call alarm 3 s16 " + Quote(tz))
	return err
}

// SetClipboard replaces the clipboard contents.
func (d *Device) SetClipboard(text string) error {
	_, err := d.Shell("am broadcast -a clipper.set -e text " + Quote(text))
	return err
}

// SetWifi toggles Wi-Fi; state is "on" or "off".
func (d *Device) SetWifi(state string) error {
	verb, err := svcVerb(state)
	if err != nil {
		return err
	}
	_, err = d.Shell("svc wifi " + verb)
	return err
}

// SetBluetooth toggles Bluetooth; state is "on" or "off".
func (d *Device) SetBluetooth(state string) error {
	verb, err := svcVerb(state)
	if err != nil {
		return err
	}
	_, err = d.Shell("svc bluetooth " + verb)
	return err
}

// SetAirplaneMode toggles airplane mode; state is "on" or "off".
func (d *Device) SetAirplaneMode(state string) error {
	verb, err := svcVerb(state)
	if err != nil {
		return err
	}
	_, err = d.Shell("cmd connectivity airplane-mode " + verb)
	return err
}

func svcVerb(state string) (string, error) {
	switch state {
	case "on":
		return "enable", nil
	case "off":
		return "disable", nil
	default:
		return "", fmt.Errorf("adb: invalid toggle state %q, want on or off", state)
	}
}

// WaitForDirectory polls until path exists or the wait budget runs out.
func (d *Device) WaitForDirectory(path string) error {
	return WaitFor(d.backoff, func() (bool, error) {
		return d.DirectoryExists(path)
	})
}

// SettleAfterLaunch gives a freshly launched app its warm-up window. There is
// no observable readiness signal for arbitrary apps, so this polls the
// package's running state with the same backoff budget as other waits.
func (d *Device) SettleAfterLaunch(pkg string) error {
	return WaitFor(d.backoff, func() (bool, error) {
		out, err := d.Shell("pidof " + pkg)
		if err != nil {
			return false, nil
		}
		return strings.TrimSpace(out) != "", nil
	})
}
