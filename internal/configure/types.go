package configure

import (
	"encoding/json"
	"time"
)

// Configurator is a unit that mutates one target subsystem's state according
// to its configuration fragment. Configure returning nil means the module
// succeeded; partial per-item failures inside the lifecycle are absorbed and
// logged, not returned.
type Configurator interface {
	Name() string
	Configure() error
}

// Factory builds a configurator bound to an environment and a raw fragment.
type Factory func(env Environment, fragment json.RawMessage) Configurator

// Entry pairs a module key with its factory. The orchestrator walks entries
// in catalog order; the order is the concurrency-control discipline, so it
// is fixed by hand rather than derived.
type Entry struct {
	Key string
	New Factory
}

// MediaWriter is the optional rich capability for modules that synthesize
// media on the host before pushing it (music stubs, gallery images). It is
// supplied by the surrounding device-control layer.
type MediaWriter interface {
	WriteMP3(remotePath, title, artist string, duration time.Duration) error
	WriteImage(remotePath, text string) error
}
