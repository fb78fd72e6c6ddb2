package modules

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"path"

	"droidseed/internal/configure"
)

// Files shapes arbitrary shared-storage layout: clearing, creating, and
// populating directories relative to the storage root.
type Files struct {
	base
}

type filesConfig struct {
	ClearFolders      []string    `json:"clear_folders"`
	CreateFolders     []string    `json:"create_folders"`
	AddFiles          []fileEntry `json:"add_files"`
	CopyFiles         []fileCopy  `json:"copy_files"`
	AddRandomFiles    bool        `json:"add_random_files"`
	RandomFileCount   *int        `json:"random_file_count"`
	RandomFileFolders []string    `json:"random_file_folders"`
}

type fileEntry struct {
	Name    string `json:"name"`
	Folder  string `json:"folder"`
	Content string `json:"content"`
}

type fileCopy struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func NewFiles(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Files{newBase("files", env, raw)}
}

func (m *Files) Name() string { return "files" }

func (m *Files) Configure() error {
	var cfg filesConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()

	if err := dev.SetRoot(); err != nil {
		m.log.Warn().Err(err).Msg("root escalation failed")
	}

	for _, folder := range cfg.ClearFolders {
		full := path.Join(configure.StorageRoot, folder)
		exists, err := dev.DirectoryExists(full)
		if err != nil {
			m.log.Error().Err(err).Str("path", full).Msg("folder check failed")
			continue
		}
		if !exists {
			m.log.Warn().Str("path", full).Msg("folder missing, creating")
			if err := dev.Mkdir(full); err != nil {
				m.log.Error().Err(err).Str("path", full).Msg("create failed")
			}
			continue
		}
		if err := dev.ClearDirectory(full); err != nil {
			m.log.Error().Err(err).Str("path", full).Msg("clear failed")
		}
	}

	for _, folder := range cfg.CreateFolders {
		full := path.Join(configure.StorageRoot, folder)
		if err := dev.Mkdir(full); err != nil {
			m.log.Error().Err(err).Str("path", full).Msg("create failed")
		}
	}

	for _, f := range cfg.AddFiles {
		if f.Name == "" {
			continue
		}
		full := path.Join(configure.StorageRoot, f.Folder, f.Name)
		if err := dev.WriteFile(full, f.Content); err != nil {
			m.log.Error().Err(err).Str("path", full).Msg("write failed")
			continue
		}
		m.log.Info().Str("path", full).Msg("file created")
	}

	for _, c := range cfg.CopyFiles {
		if c.Source == "" || c.Destination == "" {
			continue
		}
		src := path.Join(configure.StorageRoot, c.Source)
		dst := path.Join(configure.StorageRoot, c.Destination)
		if err := dev.Mkdir(path.Dir(dst)); err != nil {
			m.log.Error().Err(err).Str("path", dst).Msg("destination mkdir failed")
			continue
		}
		if err := dev.CopyFile(src, dst); err != nil {
			m.log.Error().Err(err).Str("src", src).Str("dst", dst).Msg("copy failed")
		}
	}

	if cfg.AddRandomFiles {
		m.addRandom(cfg)
	}
	return nil
}

var randomFileExtensions = []string{".txt", ".md", ".log", ".csv", ".json"}

const randomContentAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func (m *Files) addRandom(cfg filesConfig) {
	count := intDefault(cfg.RandomFileCount, 5)
	folders := cfg.RandomFileFolders
	if len(folders) == 0 {
		folders = []string{"Download", "Documents", "Pictures"}
	}
	for i := 0; i < count; i++ {
		folder := path.Join(configure.StorageRoot, folders[rand.Intn(len(folders))])
		if err := m.dev().Mkdir(folder); err != nil {
			m.log.Error().Err(err).Str("path", folder).Msg("folder create failed")
			continue
		}
		name := fmt.Sprintf("random_file_%d%s", i+1, randomFileExtensions[rand.Intn(len(randomFileExtensions))])
		content := make([]byte, 100)
		for j := range content {
			content[j] = randomContentAlphabet[rand.Intn(len(randomContentAlphabet))]
		}
		if err := m.dev().WriteFile(path.Join(folder, name), string(content)); err != nil {
			m.log.Error().Err(err).Str("name", name).Msg("random file failed")
		}
	}
	m.log.Info().Int("files", count).Msg("random files added")
}
