package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"droidseed/internal/adb"
	"droidseed/internal/config"
	"droidseed/internal/configure"
	"droidseed/internal/configure/modules"
	"droidseed/internal/initializer"
	"droidseed/internal/logging"
)

func main() {
	var (
		configPath  = pflag.String("config", "", "run configuration file (JSON, comments allowed)")
		profilePath = pflag.String("device-profile", "", "device profile file (TOML)")
		consolePort = pflag.Int("console-port", 5554, "emulator console port")
		grpcPort    = pflag.Int("grpc-port", 8554, "emulator gRPC port")
		adbPath     = pflag.String("adb-path", "", "adb binary path, SDK default when empty")
		serial      = pflag.String("device-serial", "", "device serial, overrides the console-port serial")
		onlyModule  = pflag.String("module", "", "run a single module by key instead of the full catalog")
		emuSetup    = pflag.Bool("emulator-setup", false, "prepare a freshly booted emulator before configuring")
		logLevel    = pflag.String("log-level", "", "trace, debug, info, warn, or error")
	)
	pflag.Parse()

	logging.ConfigureRuntime()
	if lvl, ok := logging.ParseLevel(*logLevel); ok {
		zerolog.SetGlobalLevel(lvl)
	}

	if *configPath == "" {
		log.Fatal().Msg("--config is required")
	}

	profile := config.DefaultProfile()
	if *profilePath != "" {
		loaded, err := config.LoadProfile(*profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("device profile load failed")
		}
		profile = loaded
	}
	overrides := config.Flags{ADBPath: *adbPath, DeviceSerial: *serial}
	if pflag.CommandLine.Changed("console-port") {
		overrides.ConsolePort = consolePort
	}
	if pflag.CommandLine.Changed("grpc-port") {
		overrides.GRPCPort = grpcPort
	}
	profile = config.MergeFlags(profile, overrides)
	if err := config.ValidateProfile(profile); err != nil {
		log.Fatal().Err(err).Msg("invalid device profile")
	}

	run, err := config.LoadRun(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("run configuration load failed")
	}
	log.Info().Str("path", run.Path).Int("modules", len(run.Modules)).Msg("loaded run configuration")

	device := adb.NewDevice(adb.Options{
		Runner:  buildRunner(profile),
		Path:    profile.ADBPath,
		Serial:  profile.Serial(),
		Backoff: adb.DefaultBackoff(),
	})

	if !profile.IsPhysicalDevice() {
		ensureEmulatorVisible(device, profile.Serial())
	}
	if *emuSetup {
		prepareEmulator(device)
	}

	driver := initializer.New(run, device, modules.Catalog())

	if *onlyModule != "" {
		if err := driver.RunModule(*onlyModule); err != nil {
			log.Fatal().Err(err).Str("module", *onlyModule).Msg("module run failed")
		}
		log.Info().Str("module", *onlyModule).Msg("module run finished")
		return
	}

	report := driver.Run()
	if !report.OK() {
		log.Error().Int("attempted", report.Attempted).Int("succeeded", report.Succeeded).
			Msg("device configuration failed")
		os.Exit(1)
	}
	log.Info().Int("modules", report.Succeeded).Msg("device configured")
}

func buildRunner(profile config.Profile) adb.CommandRunner {
	if profile.SSH.Host == "" {
		return adb.ExecRunner{}
	}
	log.Info().Str("host", profile.SSH.Host).Msg("using ssh runner")
	return adb.SSHRunner{
		Host:                        profile.SSH.Host,
		Port:                        profile.SSH.Port,
		User:                        profile.SSH.User,
		KeyPath:                     profile.SSH.KeyPath,
		KnownHostsPath:              profile.SSH.KnownHostsPath,
		InsecureSkipHostKeyChecking: profile.SSH.Insecure,
		Timeout:                     30 * time.Second,
	}
}

// prepareEmulator readies a freshly booted image: root escalation for the
// database writes and a wait for shared storage to mount.
func prepareEmulator(device *adb.Device) {
	if err := device.SetRoot(); err != nil {
		log.Warn().Err(err).Msg("root escalation failed")
	}
	if err := device.WaitForDirectory(configure.StorageRoot); err != nil {
		log.Fatal().Err(err).Msg("shared storage never mounted")
	}
}

// ensureEmulatorVisible fails fast when the target emulator is not attached,
// before any module mutates state against a dead serial.
func ensureEmulatorVisible(device *adb.Device, serial string) {
	out, err := device.Devices()
	if err != nil {
		log.Fatal().Err(err).Msg("adb devices failed")
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == serial && fields[1] == "device" {
			return
		}
	}
	log.Fatal().Str("serial", serial).Msg("emulator not attached or not ready")
}
