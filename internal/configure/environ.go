package configure

import (
	"errors"
	"fmt"

	"droidseed/internal/adb"
)

var ErrEnvironmentNotReady = errors.New("configure: environment not ready")

// Environment is the canonical handle every configurator receives. Controller
// is always set after resolution; Media is optional and only modules that
// synthesize host-side media care about it.
type Environment struct {
	Controller *adb.Device
	Media      MediaWriter
}

// BaseEnvHolder is the newer environment shape: a wrapper exposing its base
// controller.
type BaseEnvHolder interface {
	BaseEnv() *adb.Device
}

// ControllerHolder is the older environment shape.
type ControllerHolder interface {
	Controller() *adb.Device
}

// ResolveEnvironment normalizes the three handle shapes callers construct: a
// base-controller wrapper, a controller wrapper, or a bare controller. The
// wrapper, when present, is also probed for the media capability.
func ResolveEnvironment(v any) (Environment, error) {
	if v == nil {
		return Environment{}, fmt.Errorf("%w: nil environment", ErrEnvironmentNotReady)
	}

	var env Environment
	switch h := v.(type) {
	case BaseEnvHolder:
		env.Controller = h.BaseEnv()
	case ControllerHolder:
		env.Controller = h.Controller()
	case *adb.Device:
		env.Controller = h
	default:
		return Environment{}, fmt.Errorf("%w: unsupported environment type %T", ErrEnvironmentNotReady, v)
	}

	if env.Controller == nil {
		return Environment{}, fmt.Errorf("%w: handle has no controller", ErrEnvironmentNotReady)
	}
	if media, ok := v.(MediaWriter); ok {
		env.Media = media
	}
	return env, nil
}
