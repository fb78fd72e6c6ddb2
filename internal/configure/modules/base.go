package modules

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"droidseed/internal/adb"
	"droidseed/internal/configure"
)

// base carries what every configurator needs: the resolved environment, the
// raw config fragment, and a named sub-logger.
type base struct {
	env configure.Environment
	raw json.RawMessage
	log zerolog.Logger
}

func newBase(name string, env configure.Environment, raw json.RawMessage) base {
	return base{
		env: env,
		raw: raw,
		log: log.With().Str("module", name).Logger(),
	}
}

func (b *base) dev() *adb.Device { return b.env.Controller }

// decode unmarshals the fragment into v. An empty fragment leaves v at its
// zero value so modules run with their defaults.
func (b *base) decode(v any) error {
	if len(b.raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(b.raw, v); err != nil {
		return fmt.Errorf("decode fragment: %w", err)
	}
	return nil
}

// boolDefault resolves an optional flag whose absence means def.
func boolDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// intDefault resolves an optional count whose absence means def. An explicit
// zero stays zero.
func intDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
