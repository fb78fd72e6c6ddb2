package initializer

import (
	"encoding/json"
	"errors"
	"testing"

	"droidseed/internal/adb"
	"droidseed/internal/config"
	"droidseed/internal/configure"
	"droidseed/internal/testutil/testlog"
)

type nopRunner struct{}

func (nopRunner) Run(string, ...string) ([]byte, []byte, int32, error) {
	return nil, nil, 0, nil
}

type testHandle struct {
	dev *adb.Device
}

func (h testHandle) Controller() *adb.Device { return h.dev }

func newHandle() testHandle {
	return testHandle{dev: adb.NewDevice(adb.Options{Runner: nopRunner{}, Path: "adb"})}
}

// scripted is a configurator whose outcome is fixed at construction.
type scripted struct {
	key   string
	fail  bool
	boom  bool
	trace *[]string
}

func (s *scripted) Name() string { return s.key }

func (s *scripted) Configure() error {
	*s.trace = append(*s.trace, s.key)
	if s.boom {
		panic("scripted panic")
	}
	if s.fail {
		return errors.New("scripted failure")
	}
	return nil
}

func scriptedCatalog(trace *[]string, keys ...string) []configure.Entry {
	entries := make([]configure.Entry, 0, len(keys))
	for _, key := range keys {
		key := key
		entries = append(entries, configure.Entry{
			Key: key,
			New: func(env configure.Environment, fragment json.RawMessage) configure.Configurator {
				mod := &scripted{key: key, trace: trace}
				if len(fragment) > 0 {
					var cfg struct {
						Fail  bool `json:"fail"`
						Panic bool `json:"panic"`
					}
					if err := json.Unmarshal(fragment, &cfg); err == nil {
						mod.fail, mod.boom = cfg.Fail, cfg.Panic
					}
				}
				return mod
			},
		})
	}
	return entries
}

func runConfig(keys map[string]string) *config.Run {
	modules := make(map[string]json.RawMessage, len(keys))
	for k, v := range keys {
		modules[k] = json.RawMessage(v)
	}
	return &config.Run{Modules: modules}
}

func TestRunAllPresentModulesSucceed(t *testing.T) {
	testlog.Start(t)
	var trace []string
	catalog := scriptedCatalog(&trace, "alpha", "beta", "gamma")
	run := runConfig(map[string]string{"alpha": `{}`, "gamma": `{}`})

	report := New(run, newHandle(), catalog).Run()
	if !report.OK() {
		t.Fatalf("expected ok verdict: %+v", report)
	}
	if report.Attempted != 2 || report.Succeeded != 2 {
		t.Fatalf("counts: %+v", report)
	}
	if len(trace) != 2 || trace[0] != "alpha" || trace[1] != "gamma" {
		t.Fatalf("catalog order not respected: %v", trace)
	}
}

func TestRunIsolatesModuleFailure(t *testing.T) {
	testlog.Start(t)
	var trace []string
	catalog := scriptedCatalog(&trace, "alpha", "beta", "gamma")
	run := runConfig(map[string]string{
		"alpha": `{}`,
		"beta":  `{"fail": true}`,
		"gamma": `{}`,
	})

	report := New(run, newHandle(), catalog).Run()
	if report.OK() {
		t.Fatalf("expected failed verdict: %+v", report)
	}
	if report.Attempted != 3 || report.Succeeded != 2 {
		t.Fatalf("counts: %+v", report)
	}
	if len(trace) != 3 {
		t.Fatalf("failure stopped the walk: %v", trace)
	}
}

func TestRunRecoversModulePanic(t *testing.T) {
	testlog.Start(t)
	var trace []string
	catalog := scriptedCatalog(&trace, "alpha", "beta")
	run := runConfig(map[string]string{
		"alpha": `{"panic": true}`,
		"beta":  `{}`,
	})

	report := New(run, newHandle(), catalog).Run()
	if report.Attempted != 2 || report.Succeeded != 1 {
		t.Fatalf("counts: %+v", report)
	}
	if len(trace) != 2 || trace[1] != "beta" {
		t.Fatalf("panic stopped the walk: %v", trace)
	}
}

func TestRunEnvironmentFailureAttemptsNothing(t *testing.T) {
	testlog.Start(t)
	var trace []string
	catalog := scriptedCatalog(&trace, "alpha")
	run := runConfig(map[string]string{"alpha": `{}`})

	report := New(run, nil, catalog).Run()
	if report.OK() {
		t.Fatalf("expected failed verdict: %+v", report)
	}
	if report.Attempted != 0 || report.Succeeded != 0 {
		t.Fatalf("counts: %+v", report)
	}
	if !errors.Is(report.Err, configure.ErrEnvironmentNotReady) {
		t.Fatalf("err: %v", report.Err)
	}
	if len(trace) != 0 {
		t.Fatalf("modules ran without an environment: %v", trace)
	}
}

func TestRunUnknownKeyCountsAsPhantomSuccess(t *testing.T) {
	testlog.Start(t)
	var trace []string
	catalog := scriptedCatalog(&trace, "alpha")
	run := runConfig(map[string]string{
		"alpha":          `{}`,
		"unknown_module": `{}`,
	})

	report := New(run, newHandle(), catalog).Run()
	if !report.OK() {
		t.Fatalf("expected ok verdict: %+v", report)
	}
	if report.Attempted != 2 || report.Succeeded != 2 {
		t.Fatalf("unknown key should count both ways: %+v", report)
	}
	if len(trace) != 1 {
		t.Fatalf("unknown key must not execute anything: %v", trace)
	}
}

func TestRunModule(t *testing.T) {
	testlog.Start(t)
	var trace []string
	catalog := scriptedCatalog(&trace, "alpha", "beta")
	run := runConfig(map[string]string{"beta": `{"fail": true}`})

	init := New(run, newHandle(), catalog)
	if err := init.RunModule("alpha"); err != nil {
		t.Fatalf("alpha: %v", err)
	}
	if err := init.RunModule("beta"); err == nil {
		t.Fatalf("beta should surface its failure")
	}
	if err := init.RunModule("nope"); !errors.Is(err, ErrUnknownModule) {
		t.Fatalf("unknown module: %v", err)
	}
}
