package modules

import (
	"encoding/json"
	"os"
	"path"

	"droidseed/internal/configure"
)

// Gallery populates DCIM with images: text renders need the media
// capability, host images are pushed directly.
type Gallery struct {
	base
}

type galleryConfig struct {
	ClearImages bool         `json:"clear_images"`
	AddImages   []imageEntry `json:"add_images"`
}

type imageEntry struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Text     string `json:"text"`
	Src      string `json:"src"`
}

func NewGallery(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Gallery{newBase("gallery", env, raw)}
}

func (m *Gallery) Name() string { return "gallery" }

func (m *Gallery) Configure() error {
	var cfg galleryConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()

	if cfg.ClearImages {
		if err := dev.ClearDirectory(configure.DCIMDirectory); err != nil {
			return err
		}
		m.log.Info().Msg("cleared gallery images")
	}

	added := 0
	for _, img := range cfg.AddImages {
		if img.Filename == "" {
			m.log.Warn().Msg("skipping image without filename")
			continue
		}
		if err := m.addImage(img); err != nil {
			m.log.Error().Err(err).Str("filename", img.Filename).Msg("add image failed")
			continue
		}
		added++
	}

	if added > 0 {
		for _, dir := range []string{configure.DCIMDirectory, configure.PicturesDirectory} {
			if err := dev.MediaScan(dir); err != nil {
				m.log.Warn().Err(err).Str("path", dir).Msg("media scan failed")
			}
		}
		m.log.Info().Int("images", added).Msg("gallery images added")
	}
	return nil
}

func (m *Gallery) addImage(img imageEntry) error {
	dev := m.dev()
	dir := img.Path
	if dir == "" {
		dir = configure.DCIMDirectory
	}
	if err := dev.Mkdir(dir); err != nil {
		return err
	}
	remote := path.Join(dir, img.Filename)

	switch {
	case img.Text != "":
		if m.env.Media == nil {
			m.log.Warn().Str("filename", img.Filename).Msg("no media writer, skipping text image")
			return nil
		}
		return m.env.Media.WriteImage(remote, img.Text)
	case img.Src != "":
		if _, err := os.Stat(img.Src); err != nil {
			return err
		}
		return dev.PushFile(img.Src, remote)
	default:
		m.log.Warn().Str("filename", img.Filename).Msg("image needs text or src, skipping")
		return nil
	}
}
