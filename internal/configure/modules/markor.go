package modules

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"

	"droidseed/internal/configure"
)

// Markor manages markdown notes under the app's Documents directory.
type Markor struct {
	base
	now func() time.Time
}

type markorConfig struct {
	ClearNotes      bool           `json:"clear_notes"`
	AddFolders      []markorFolder `json:"add_folders"`
	AddNotes        []markorNote   `json:"add_notes"`
	AddRandomNotes  bool           `json:"add_random_notes"`
	RandomNoteCount *int           `json:"random_note_count"`
}

type markorFolder struct {
	Title string `json:"title"`
}

type markorNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Folder  string `json:"folder"`
}

func NewMarkor(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Markor{base: newBase("markor", env, raw), now: time.Now}
}

func (m *Markor) Name() string { return "markor" }

func (m *Markor) Configure() error {
	var cfg markorConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["markor"]

	installed, err := dev.IsInstalled(app.Package)
	if err != nil {
		return err
	}
	if !installed {
		return configure.ErrAppNotReady
	}
	if err := dev.Mkdir(app.DataPath); err != nil {
		return err
	}
	if err := dev.WaitForDirectory(app.DataPath); err != nil {
		return err
	}

	if cfg.ClearNotes {
		if err := dev.ClearDirectory(app.DataPath); err != nil {
			return err
		}
		m.log.Info().Msg("cleared notes and folders")
	}

	for _, f := range cfg.AddFolders {
		if f.Title == "" {
			continue
		}
		if err := dev.Mkdir(path.Join(app.DataPath, f.Title)); err != nil {
			m.log.Error().Err(err).Str("folder", f.Title).Msg("create folder failed")
		}
	}

	added := 0
	for _, n := range cfg.AddNotes {
		if n.Title == "" {
			continue
		}
		if err := m.writeNote(n); err != nil {
			m.log.Error().Err(err).Str("title", n.Title).Msg("create note failed")
			continue
		}
		added++
	}
	if added > 0 {
		m.log.Info().Int("notes", added).Msg("notes added")
	}

	if cfg.AddRandomNotes {
		m.addRandom(intDefault(cfg.RandomNoteCount, 5))
	}
	return nil
}

func (m *Markor) writeNote(n markorNote) error {
	app := configure.Apps["markor"]
	title := n.Title
	if !strings.HasSuffix(title, ".md") && !strings.HasSuffix(title, ".txt") {
		title += ".md"
	}
	dir := app.DataPath
	if n.Folder != "" {
		dir = path.Join(dir, n.Folder)
		if err := m.dev().Mkdir(dir); err != nil {
			return err
		}
	}
	return m.dev().WriteFile(path.Join(dir, title), n.Content)
}

var randomNoteTitles = []string{
	"Meeting Notes", "Project Ideas", "Shopping List",
	"Travel Plans", "Books to Read", "Recipes", "Daily Journal",
}

func (m *Markor) addRandom(count int) {
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s %d", randomNoteTitles[rand.Intn(len(randomNoteTitles))], i+1)
		content := fmt.Sprintf("# %s\n\nThis is a sample note created on %s.\n\n"+
			"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
			name, m.now().Format("2006-01-02"))
		if err := m.writeNote(markorNote{Title: name + ".md", Content: content}); err != nil {
			m.log.Error().Err(err).Str("title", name).Msg("random note failed")
		}
	}
	m.log.Info().Int("notes", count).Msg("random notes added")
}
