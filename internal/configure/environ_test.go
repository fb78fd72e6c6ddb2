package configure

import (
	"errors"
	"testing"
	"time"

	"droidseed/internal/adb"
	"droidseed/internal/testutil/testlog"
)

type baseEnvHandle struct{ dev *adb.Device }

func (h *baseEnvHandle) BaseEnv() *adb.Device { return h.dev }

type controllerHandle struct{ dev *adb.Device }

func (h *controllerHandle) Controller() *adb.Device { return h.dev }

type richHandle struct{ dev *adb.Device }

func (h *richHandle) BaseEnv() *adb.Device { return h.dev }

func (h *richHandle) WriteMP3(remotePath, title, artist string, duration time.Duration) error {
	return nil
}

func (h *richHandle) WriteImage(remotePath, text string) error { return nil }

func TestResolveEnvironmentShapes(t *testing.T) {
	testlog.Start(t)
	dev := testDevice(newFakeRunner())

	for name, handle := range map[string]any{
		"base-env":   &baseEnvHandle{dev: dev},
		"controller": &controllerHandle{dev: dev},
		"bare":       dev,
	} {
		env, err := ResolveEnvironment(handle)
		if err != nil {
			t.Fatalf("%s: resolve: %v", name, err)
		}
		if env.Controller != dev {
			t.Fatalf("%s: wrong controller", name)
		}
	}
}

func TestResolveEnvironmentMediaCapability(t *testing.T) {
	testlog.Start(t)
	dev := testDevice(newFakeRunner())

	env, err := ResolveEnvironment(&richHandle{dev: dev})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if env.Media == nil {
		t.Fatalf("media capability not detected")
	}

	env, err = ResolveEnvironment(&baseEnvHandle{dev: dev})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if env.Media != nil {
		t.Fatalf("media capability invented")
	}
}

func TestResolveEnvironmentRejections(t *testing.T) {
	testlog.Start(t)

	if _, err := ResolveEnvironment(nil); !errors.Is(err, ErrEnvironmentNotReady) {
		t.Fatalf("nil handle: %v", err)
	}
	if _, err := ResolveEnvironment("not a handle"); !errors.Is(err, ErrEnvironmentNotReady) {
		t.Fatalf("unsupported handle: %v", err)
	}
	if _, err := ResolveEnvironment(&baseEnvHandle{}); !errors.Is(err, ErrEnvironmentNotReady) {
		t.Fatalf("missing controller: %v", err)
	}
}
