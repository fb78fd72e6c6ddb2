package modules

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"droidseed/internal/configure"
)

// Calendar seeds Simple Calendar Pro's events table.
type Calendar struct {
	base
	now func() time.Time
}

type calendarConfig struct {
	ClearEvents      bool            `json:"clear_events"`
	AddEvents        []calendarEvent `json:"add_events"`
	AddRandomEvents  bool            `json:"add_random_events"`
	RandomEventCount *int            `json:"random_event_count"`
}

type calendarEvent struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Location       string          `json:"location"`
	StartTime      json.RawMessage `json:"start_time"`
	EndTime        json.RawMessage `json:"end_time"`
	DurationMins   *int            `json:"duration_mins"`
	RepeatInterval string          `json:"repeat_interval"`
	DayOfWeek      int             `json:"day_of_week"`
}

func NewCalendar(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Calendar{base: newBase("calendar", env, raw), now: time.Now}
}

func (m *Calendar) Name() string { return "calendar" }

func (m *Calendar) Configure() error {
	var cfg calendarConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["calendar"]

	if err := configure.EnsureAppReady("calendar", dev); err != nil {
		return err
	}
	for _, perm := range []string{"android.permission.READ_CALENDAR", "android.permission.WRITE_CALENDAR"} {
		if err := dev.GrantPermission(app.Package, perm); err != nil {
			m.log.Warn().Err(err).Str("permission", perm).Msg("grant failed")
		}
	}

	if cfg.ClearEvents {
		if err := configure.ClearTable(dev, app.DBPath, app.Table); err != nil {
			return err
		}
		m.log.Info().Msg("cleared calendar events")
	}

	added := 0
	for i, ev := range cfg.AddEvents {
		if err := m.addEvent(ev); err != nil {
			m.log.Error().Err(err).Int("index", i+1).Str("title", ev.Title).Msg("add event failed")
			continue
		}
		added++
	}
	if added > 0 {
		m.log.Info().Int("events", added).Msg("events added")
	}

	if cfg.AddRandomEvents {
		m.addRandomEvents(intDefault(cfg.RandomEventCount, 10))
	}

	// Relaunch so the widget and month view pick up the new rows.
	if err := dev.LaunchApp(app.Package); err != nil {
		m.log.Warn().Err(err).Msg("calendar relaunch failed")
	}
	return nil
}

const (
	repeatIntervalDaily  = 24 * 60 * 60
	repeatIntervalWeekly = 7 * 24 * 60 * 60
)

// WeeklyRepeatRule returns Simple Calendar's weekday bitmask, Monday=1
// through Sunday=7.
func WeeklyRepeatRule(dayOfWeek int) int {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return 0
	}
	return 1 << (dayOfWeek - 1)
}

func (m *Calendar) addEvent(ev calendarEvent) error {
	if ev.Title == "" || len(ev.StartTime) == 0 {
		return fmt.Errorf("event needs title and start_time")
	}
	start, err := parseEpochOrISO(ev.StartTime)
	if err != nil {
		return fmt.Errorf("start_time: %w", err)
	}

	var end int64
	switch {
	case len(ev.EndTime) > 0:
		end, err = parseEpochOrISO(ev.EndTime)
		if err != nil {
			return fmt.Errorf("end_time: %w", err)
		}
	default:
		end = start + int64(intDefault(ev.DurationMins, 30))*60
	}

	interval, rule := 0, 0
	switch ev.RepeatInterval {
	case "weekly":
		if rule = WeeklyRepeatRule(ev.DayOfWeek); rule > 0 {
			interval = repeatIntervalWeekly
		}
	case "daily":
		interval = repeatIntervalDaily
	}

	return m.insertEvent(start, end, ev.Title, ev.Location, ev.Description, interval, rule)
}

// insertEvent writes one row with the full Simple Calendar column set. The
// reminder columns use -1 to mean unset; event_type 1 is the default
// "Regular event" category.
func (m *Calendar) insertEvent(start, end int64, title, location, description string, interval, rule int) error {
	stmt := configure.InsertStatement(configure.Apps["calendar"].Table,
		[]string{
			"start_ts", "end_ts", "title", "location", "description",
			"reminder_1_minutes", "reminder_2_minutes", "reminder_3_minutes",
			"reminder_1_type", "reminder_2_type", "reminder_3_type",
			"repeat_interval", "repeat_rule", "repeat_limit",
			"repetition_exceptions", "attendees", "import_id", "time_zone",
			"flags", "event_type", "parent_id", "last_updated", "source",
			"availability", "color", "type",
		},
		[]any{
			start, end, title, location, description,
			-1, -1, -1,
			0, 0, 0,
			interval, rule, 0,
			"[]", "", "", "",
			0, 1, 0, 0, "imported-ics",
			0, 0, 0,
		})
	return m.dev().ExecuteSQL(configure.Apps["calendar"].DBPath, stmt)
}

var randomEventTitles = []string{
	"Team Standup", "Dentist Appointment", "Gym Session", "Project Review",
	"Lunch with Sam", "Pick up dry cleaning", "Budget Planning", "Book Club",
	"Car Service", "Quarterly Planning",
}

func (m *Calendar) addRandomEvents(count int) {
	added := 0
	for i := 0; i < count; i++ {
		start := m.now().Add(time.Duration(rand.Intn(30*24)) * time.Hour).Truncate(time.Hour)
		duration := time.Duration(rand.Intn(4)+1) * 30 * time.Minute
		title := randomEventTitles[rand.Intn(len(randomEventTitles))]
		if err := m.insertEvent(start.Unix(), start.Add(duration).Unix(), title, "", "", 0, 0); err != nil {
			m.log.Error().Err(err).Str("title", title).Msg("random event failed")
			continue
		}
		added++
	}
	m.log.Info().Int("events", added).Msg("random events added")
}

// parseEpochOrISO accepts a unix-seconds number or an ISO-8601 string.
func parseEpochOrISO(raw json.RawMessage) (int64, error) {
	var epoch int64
	if err := json.Unmarshal(raw, &epoch); err == nil {
		return epoch, nil
	}
	var iso string
	if err := json.Unmarshal(raw, &iso); err != nil {
		return 0, fmt.Errorf("want unix seconds or ISO string, got %s", raw)
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, iso, time.Local); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unparseable time %q", iso)
}
