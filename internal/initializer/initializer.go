// Package initializer walks the module catalog against a run configuration
// and aggregates per-module outcomes into a single verdict.
//
// Ownership boundary:
// - environment bring-up at the start of a run
// - catalog walk order and per-module failure isolation
// - the attempted/succeeded report
package initializer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"droidseed/internal/config"
	"droidseed/internal/configure"
)

var (
	ErrUnknownModule = errors.New("initializer: unknown module key")
	ErrModulePanic   = errors.New("initializer: module panicked")
)

// Initializer drives one configuration run. The raw environment handle is
// resolved at Run time so that bring-up failure is observable in the report
// rather than at construction.
type Initializer struct {
	run     *config.Run
	handle  any
	catalog []configure.Entry
	log     zerolog.Logger
}

func New(run *config.Run, handle any, catalog []configure.Entry) *Initializer {
	return &Initializer{
		run:     run,
		handle:  handle,
		catalog: catalog,
		log:     log.With().Str("component", "initializer").Logger(),
	}
}

// Report is the outcome of one run. Err is set only for environment
// bring-up failure, which aborts before any module is attempted.
type Report struct {
	Attempted int
	Succeeded int
	Err       error
}

// OK reports the overall verdict: the environment came up and every
// attempted module succeeded.
func (r Report) OK() bool {
	return r.Err == nil && r.Attempted == r.Succeeded
}

// Run resolves the environment and walks the catalog in its fixed order,
// executing each module whose key appears in the configuration. A module
// failure is logged and counted; it never stops the walk. Configuration keys
// the catalog does not know are warned about and counted as attempted and
// succeeded without running anything, which keeps a typo from failing an
// otherwise clean run at the cost of hiding it from the verdict.
func (i *Initializer) Run() Report {
	env, err := configure.ResolveEnvironment(i.handle)
	if err != nil {
		i.log.Error().Err(err).Msg("environment bring-up failed")
		return Report{Err: err}
	}

	var report Report
	known := make(map[string]bool, len(i.catalog))
	for _, entry := range i.catalog {
		known[entry.Key] = true
		fragment, ok := i.run.Fragment(entry.Key)
		if !ok {
			continue
		}
		report.Attempted++

		started := time.Now()
		if err := i.runOne(entry, env, fragment); err != nil {
			i.log.Error().Err(err).Str("module", entry.Key).
				Dur("elapsed", time.Since(started)).Msg("module failed")
			continue
		}
		report.Succeeded++
		i.log.Info().Str("module", entry.Key).
			Dur("elapsed", time.Since(started)).Msg("module configured")
	}

	for _, key := range i.unknownKeys(known) {
		i.log.Warn().Str("key", key).Msg("unrecognized configuration key, nothing ran")
		report.Attempted++
		report.Succeeded++
	}

	i.log.Info().Int("attempted", report.Attempted).Int("succeeded", report.Succeeded).
		Bool("ok", report.OK()).Msg("run finished")
	return report
}

// RunModule executes a single module by key, for tooling and debugging.
func (i *Initializer) RunModule(key string) error {
	env, err := configure.ResolveEnvironment(i.handle)
	if err != nil {
		return err
	}
	for _, entry := range i.catalog {
		if entry.Key != key {
			continue
		}
		fragment, _ := i.run.Fragment(key)
		return i.runOne(entry, env, fragment)
	}
	return fmt.Errorf("%w: %q", ErrUnknownModule, key)
}

// runOne contains a module invocation: a panic inside a configurator is
// converted to an error at this boundary so the walk can continue.
func (i *Initializer) runOne(entry configure.Entry, env configure.Environment, fragment json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrModulePanic, entry.Key, r)
		}
	}()
	return entry.New(env, fragment).Configure()
}

func (i *Initializer) unknownKeys(known map[string]bool) []string {
	var unknown []string
	for _, key := range i.run.Keys() {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}
