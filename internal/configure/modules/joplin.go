package modules

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"droidseed/internal/configure"
)

// Joplin seeds notebooks and notes. Every note is mirrored into the
// notes_normalized table so in-app search finds it.
type Joplin struct {
	base
	now func() time.Time
}

type joplinConfig struct {
	ClearNotes bool           `json:"clear_notes"`
	AddFolders []joplinFolder `json:"add_folders"`
	AddNotes   []joplinNote   `json:"add_notes"`
}

type joplinFolder struct {
	Title string `json:"title"`
}

type joplinNote struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	Folder        string `json:"folder"`
	IsTodo        bool   `json:"is_todo"`
	TodoCompleted bool   `json:"todo_completed"`
}

func NewJoplin(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Joplin{base: newBase("joplin", env, raw), now: time.Now}
}

func (m *Joplin) Name() string { return "joplin" }

func (m *Joplin) Configure() error {
	var cfg joplinConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["joplin"]

	if err := configure.EnsureAppReady("joplin", dev); err != nil {
		return err
	}

	if cfg.ClearNotes {
		for _, table := range []string{"folders", "notes", "notes_normalized"} {
			if err := configure.ClearTable(dev, app.DBPath, table); err != nil {
				return err
			}
		}
		if err := dev.CloseApp(app.Package); err != nil {
			m.log.Warn().Err(err).Msg("close after clear failed")
		}
		m.log.Info().Msg("cleared notes and folders")
	}

	folders := m.addFolders(cfg.AddFolders)
	m.addNotes(cfg.AddNotes, folders)

	if err := dev.LaunchApp(app.Package); err != nil {
		m.log.Warn().Err(err).Msg("joplin relaunch failed")
	}
	return nil
}

// addFolders creates the configured notebooks and returns title -> id.
func (m *Joplin) addFolders(folders []joplinFolder) map[string]string {
	mapping := make(map[string]string)
	for _, f := range folders {
		if f.Title == "" {
			continue
		}
		id, err := m.insertFolder(f.Title)
		if err != nil {
			m.log.Error().Err(err).Str("folder", f.Title).Msg("add folder failed")
			continue
		}
		mapping[f.Title] = id
		m.log.Info().Str("folder", f.Title).Msg("folder added")
	}
	return mapping
}

func (m *Joplin) insertFolder(title string) (string, error) {
	app := configure.Apps["joplin"]
	id := newJoplinID()
	stamp := m.now().UnixMilli()
	stmt := configure.InsertStatement("folders",
		[]string{"id", "title", "created_time", "updated_time",
			"user_created_time", "user_updated_time", "parent_id"},
		[]any{id, title, stamp, stamp, stamp, stamp, ""})
	if err := m.dev().ExecuteSQL(app.DBPath, stmt); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Joplin) addNotes(notes []joplinNote, folders map[string]string) {
	app := configure.Apps["joplin"]
	added := 0

	for _, n := range notes {
		parentID := ""
		if n.Folder != "" {
			id, ok := folders[n.Folder]
			if !ok {
				// The note names a notebook that was not configured; create
				// it on the fly.
				created, err := m.insertFolder(n.Folder)
				if err != nil {
					m.log.Error().Err(err).Str("folder", n.Folder).Msg("implicit folder failed")
				} else {
					folders[n.Folder] = created
					id = created
				}
			}
			parentID = id
		}

		id := n.ID
		if id == "" {
			id = newJoplinID()
		}
		title := n.Title
		if title == "" {
			title = "Untitled"
		}
		stamp := m.now().UnixMilli()
		isTodo := boolToInt(n.IsTodo)

		stmt := configure.InsertStatement("notes",
			[]string{"id", "title", "body", "parent_id", "created_time", "updated_time",
				"is_todo", "todo_completed", "user_created_time", "user_updated_time",
				"markup_language"},
			[]any{id, title, n.Body, parentID, stamp, stamp,
				isTodo, boolToInt(n.TodoCompleted), stamp, stamp,
				1}) // markup_language 1 is Markdown
		if err := m.dev().ExecuteSQL(app.DBPath, stmt); err != nil {
			m.log.Error().Err(err).Str("title", title).Msg("add note failed")
			continue
		}

		normalized := configure.InsertStatement("notes_normalized",
			[]string{"id", "title", "body", "parent_id", "is_todo",
				"user_created_time", "user_updated_time"},
			[]any{id, title, n.Body, parentID, isTodo, stamp, stamp})
		if err := m.dev().ExecuteSQL(app.DBPath, normalized); err != nil {
			m.log.Warn().Err(err).Str("title", title).Msg("search index row failed")
		}
		added++
	}
	if added > 0 {
		m.log.Info().Int("notes", added).Msg("notes added")
	}
}

// newJoplinID matches the app's 32-char lowercase hex identifiers.
func newJoplinID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
