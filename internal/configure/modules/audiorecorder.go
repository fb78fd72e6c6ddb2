package modules

import (
	"encoding/json"

	"droidseed/internal/configure"
)

// AudioRecorder manages the recorder app's on-disk recordings.
type AudioRecorder struct {
	base
}

type audioRecorderConfig struct {
	ClearRecordings bool `json:"clear_recordings"`
}

func NewAudioRecorder(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &AudioRecorder{newBase("audio_recorder", env, raw)}
}

func (m *AudioRecorder) Name() string { return "audio_recorder" }

func (m *AudioRecorder) Configure() error {
	var cfg audioRecorderConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["audio_recorder"]

	installed, err := dev.IsInstalled(app.Package)
	if err != nil {
		return err
	}
	if !installed {
		return configure.ErrAppNotReady
	}
	if err := dev.SetRoot(); err != nil {
		m.log.Warn().Err(err).Msg("root escalation failed")
	}

	if cfg.ClearRecordings {
		exists, err := dev.DirectoryExists(app.DataPath)
		if err != nil {
			return err
		}
		if !exists {
			m.log.Info().Str("path", app.DataPath).Msg("records directory missing, creating")
			return dev.Mkdir(app.DataPath)
		}
		if err := dev.RemoveMatching(app.DataPath, "*.m4a", "*.wav", "*.3gp"); err != nil {
			return err
		}
		m.log.Info().Msg("cleared recordings")
	}
	return nil
}
