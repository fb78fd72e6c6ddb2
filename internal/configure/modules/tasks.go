package modules

import (
	"encoding/json"
	"math/big"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"droidseed/internal/configure"
)

// Tasks seeds the org.tasks database. Its schema carries an "order" column,
// which is why inserts go through the shared statement builder.
type Tasks struct {
	base
	now func() time.Time
}

type tasksConfig struct {
	ClearTasks          bool        `json:"clear_tasks"`
	AddTasks            []taskEntry `json:"add_tasks"`
	AddRandomTasks      bool        `json:"add_random_tasks"`
	AddRandomTasksCount int         `json:"add_random_tasks_count"`
}

type taskEntry struct {
	Title         string `json:"title"`
	Importance    *int   `json:"importance"`
	Notes         string `json:"notes"`
	DueDate       string `json:"due_date"`
	DueTime       string `json:"due_time"`
	HideUntilDate string `json:"hide_until_date"`
	HideUntilTime string `json:"hide_until_time"`
	Completed     bool   `json:"completed"`
	CompletedDate string `json:"completed_date"`
	CompletedTime string `json:"completed_time"`
}

func NewTasks(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Tasks{base: newBase("tasks", env, raw), now: time.Now}
}

func (m *Tasks) Name() string { return "tasks" }

func (m *Tasks) Configure() error {
	var cfg tasksConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["tasks"]

	if err := configure.EnsureAppReady("tasks", dev); err != nil {
		return err
	}

	if cfg.ClearTasks {
		if err := configure.ClearTable(dev, app.DBPath, app.Table); err != nil {
			return err
		}
		if n, err := configure.CountRows(dev, app.DBPath, app.Table); err == nil {
			m.log.Info().Int("remaining", n).Msg("cleared tasks")
		}
	}

	added := 0
	for _, t := range cfg.AddTasks {
		if t.Title == "" {
			m.log.Warn().Msg("skipping task with empty title")
			continue
		}
		if err := m.insert(t); err != nil {
			m.log.Error().Err(err).Str("title", t.Title).Msg("add task failed")
			continue
		}
		added++
	}
	if added > 0 {
		m.log.Info().Int("tasks", added).Msg("tasks added")
	}

	if cfg.AddRandomTasks {
		m.addRandom(cfg.AddRandomTasksCount)
	}

	// Force-stop so the task list re-reads the database on next open.
	if err := dev.CloseApp(app.Package); err != nil {
		m.log.Warn().Err(err).Msg("task app restart failed")
	}
	return nil
}

// stamp converts a config date/time pair to unix milliseconds; zero means
// unset, matching the app's convention.
func (m *Tasks) stamp(date, clock string) int64 {
	if date == "" {
		return 0
	}
	t, err := configure.ParseDateTime(date, clock)
	if err != nil {
		m.log.Warn().Str("date", date).Msg("unparseable date, using current time")
		return m.now().UnixMilli()
	}
	return t.UnixMilli()
}

func (m *Tasks) insert(t taskEntry) error {
	due := m.stamp(t.DueDate, t.DueTime)
	hideUntil := m.stamp(t.HideUntilDate, t.HideUntilTime)

	var completed int64
	if t.Completed {
		completed = m.stamp(t.CompletedDate, t.CompletedTime)
		if completed == 0 {
			completed = m.now().UnixMilli()
		}
	}

	created := m.now().UnixMilli()
	if due > 0 {
		created = due - 7*24*time.Hour.Milliseconds()
	}

	importance := 2
	if t.Importance != nil {
		importance = *t.Importance
	}

	var notes any
	if t.Notes != "" {
		notes = t.Notes
	}

	return m.insertRow(t.Title, importance, due, hideUntil, completed, created, notes)
}

func (m *Tasks) insertRow(title string, importance int, due, hideUntil, completed, created int64, notes any) error {
	app := configure.Apps["tasks"]
	stmt := configure.InsertStatement(app.Table,
		[]string{
			"title", "importance", "dueDate", "hideUntil", "created", "modified",
			"completed", "deleted", "notes", "estimatedSeconds", "elapsedSeconds",
			"timerStart", "notificationFlags", "lastNotified", "snoozeTime",
			"recurrence", "repeat_from", "calendarUri", "remoteId", "collapsed",
			"parent", "order", "read_only",
		},
		[]any{
			title, importance, due, hideUntil, created, created,
			completed, 0, notes, 0, 0,
			0, 0, 0, 0,
			nil, 0, nil, remoteTaskID(), 0,
			0, nil, 0,
		})
	return m.dev().ExecuteSQL(app.DBPath, stmt)
}

// remoteTaskID mimics the app's own sync identifiers: the decimal rendering
// of a random 128-bit UUID.
func remoteTaskID() string {
	id := uuid.New()
	return new(big.Int).SetBytes(id[:]).String()
}

var randomTaskTitles = map[string]string{
	"Grocery Shopping":              "Don't forget milk, eggs, and bread. Also need to pick up snacks for the kids.",
	"Finish Project Proposal":       "Deadline is Friday. Need to finalize budget and timeline sections.",
	"Schedule Dentist Appointment":  "Teeth cleaning overdue. Call Dr. Smith's office.",
	"Water Plants":                  "Check moisture level before watering. Fertilize succulents.",
	"Meal Prep for the Week":        "Make a grocery list based on planned meals. Cook chicken and chop veggies on Sunday.",
	"Call Grandma":                  "Catch up on family news. Ask for her famous cookie recipe.",
	"Change Air Filter":             "Last changed 3 months ago. Buy a new filter at the hardware store.",
	"Organize Closet":               "Donate old clothes and shoes. Put winter clothes in storage.",
	"Submit Expense Report":         "Deadline is Wednesday. Attach receipts for all purchases.",
	"Reply to Emails":               "Inbox is overflowing. Prioritize urgent messages.",
	"Clean Out Fridge":              "Check expiration dates and discard old food. Wipe down shelves.",
	"Back Up Computer Files":        "Use external hard drive or cloud storage. Schedule regular backups.",
	"Take Dog to the Vet":           "Annual checkup and vaccinations due.",
	"Create Budget for Next Month":  "Track income and expenses. Set savings goals.",
	"Research Vacation Destinations": "Looking for beach destinations with family-friendly activities.",
}

func (m *Tasks) addRandom(count int) {
	titles := make([]string, 0, len(randomTaskTitles))
	for t := range randomTaskTitles {
		titles = append(titles, t)
	}

	added := 0
	for i := 0; i < count; i++ {
		title := titles[rand.Intn(len(titles))]

		due := m.now().AddDate(0, 0, rand.Intn(30)+1)
		due = time.Date(due.Year(), due.Month(), due.Day(),
			rand.Intn(9)+9, []int{0, 15, 30, 45}[rand.Intn(4)], 0, 0, due.Location())
		dueTS := due.UnixMilli()

		var hideUntil int64
		if rand.Intn(2) == 0 {
			hideUntil = m.now().AddDate(0, 0, rand.Intn(7)).UnixMilli()
		}
		var completed int64
		if rand.Float64() < 0.3 {
			completed = m.now().AddDate(0, 0, -(rand.Intn(7) + 1)).UnixMilli()
		}
		created := dueTS - 7*24*time.Hour.Milliseconds()

		err := m.insertRow(title, rand.Intn(4), dueTS, hideUntil, completed, created,
			randomTaskTitles[title])
		if err != nil {
			m.log.Error().Err(err).Str("title", title).Msg("random task failed")
			continue
		}
		added++
	}
	m.log.Info().Int("tasks", added).Msg("random tasks added")
}
