package configure

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"droidseed/internal/adb"
	"droidseed/internal/testutil/testlog"
)

type fakeRunner struct {
	calls   []string
	outputs map[string]string
	fail    map[string]bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: make(map[string]string), fail: make(map[string]bool)}
}

func (f *fakeRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	for pattern, out := range f.outputs {
		if strings.Contains(call, pattern) {
			if f.fail[pattern] {
				return nil, []byte(out), 1, fmt.Errorf("exit status 1")
			}
			return []byte(out), nil, 0, nil
		}
	}
	return nil, nil, 0, nil
}

func (f *fakeRunner) called(pattern string) bool {
	for _, call := range f.calls {
		if strings.Contains(call, pattern) {
			return true
		}
	}
	return false
}

func testDevice(runner adb.CommandRunner) *adb.Device {
	return adb.NewDevice(adb.Options{
		Runner: runner,
		Path:   "adb",
		Serial: "emulator-5554",
		Backoff: adb.BackoffConfig{
			InitialDelay: 1,
			MaxDelay:     1,
			Multiplier:   1,
			MaxAttempts:  2,
		},
	})
}

func TestEnsureAppReadyUnknownKey(t *testing.T) {
	testlog.Start(t)
	err := EnsureAppReady("fridge", testDevice(newFakeRunner()))
	if !errors.Is(err, ErrUnknownApp) {
		t.Fatalf("expected ErrUnknownApp, got %v", err)
	}
}

func TestEnsureAppReadyMissingPackage(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:com.android.settings\n"
	err := EnsureAppReady("tasks", testDevice(runner))
	if !errors.Is(err, ErrAppNotReady) {
		t.Fatalf("expected ErrAppNotReady, got %v", err)
	}
}

func TestEnsureAppReadyLaunchCycle(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:org.tasks\n"
	runner.outputs["pidof"] = "1234\n"
	if err := EnsureAppReady("tasks", testDevice(runner)); err != nil {
		t.Fatalf("ensure ready: %v", err)
	}
	for _, pattern := range []string{"root", "monkey -p org.tasks", "keyevent KEYCODE_HOME"} {
		if !runner.called(pattern) {
			t.Fatalf("missing %q in calls: %v", pattern, runner.calls)
		}
	}
}

func TestEnsureAppReadyToleratesLaunchFailure(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:org.tasks\n"
	runner.outputs["monkey"] = "injection failed"
	runner.fail["monkey"] = true
	if err := EnsureAppReady("tasks", testDevice(runner)); err != nil {
		t.Fatalf("launch failure should not fail readiness: %v", err)
	}
}

func TestClearTableAndCountRows(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["SELECT COUNT"] = "7\n"
	dev := testDevice(runner)

	if err := ClearTable(dev, "/data/db", "events"); err != nil {
		t.Fatalf("clear table: %v", err)
	}
	if !runner.called("DELETE FROM events;") {
		t.Fatalf("missing delete: %v", runner.calls)
	}
	n, err := CountRows(dev, "/data/db", "events")
	if err != nil || n != 7 {
		t.Fatalf("count rows: n=%d err=%v", n, err)
	}
}

func TestParseDateTimeLayouts(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		date, clock string
		want        time.Time
	}{
		{"2024-10-15", "14:30", time.Date(2024, 10, 15, 14, 30, 0, 0, time.UTC)},
		{"October 15 2024", "", time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)},
		{"10/15/2024", "08:05", time.Date(2024, 10, 15, 8, 5, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseDateTime(c.date, c.clock)
		if err != nil {
			t.Fatalf("parse %q: %v", c.date, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("parse %q: got=%v want=%v", c.date, got, c.want)
		}
	}

	if _, err := ParseDateTime("15.10.2024", ""); !errors.Is(err, ErrBadDateValue) {
		t.Fatalf("expected ErrBadDateValue, got %v", err)
	}
}
