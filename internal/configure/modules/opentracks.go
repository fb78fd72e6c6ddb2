package modules

import (
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"droidseed/internal/configure"
)

// OpenTracks seeds activity-tracker records. Start times are interpreted in
// the device's timezone so the in-app day grouping matches the config.
type OpenTracks struct {
	base
	now func() time.Time
}

type openTracksConfig struct {
	ClearActivities     bool            `json:"clear_activities"`
	AddActivities       []activityEntry `json:"add_activities"`
	AddRandomActivities bool            `json:"add_random_activities"`
	RandomActivityCount *int            `json:"random_activity_count"`
}

type activityEntry struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	StartDate     string  `json:"start_date"`
	StartTime     string  `json:"start_time"`
	DurationMins  float64 `json:"duration_mins"`
	Distance      float64 `json:"distance"`
	ElevationGain float64 `json:"elevation_gain"`
	ElevationLoss float64 `json:"elevation_loss"`
}

func NewOpenTracks(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &OpenTracks{base: newBase("opentracks", env, raw), now: time.Now}
}

func (m *OpenTracks) Name() string { return "opentracks" }

func (m *OpenTracks) Configure() error {
	var cfg openTracksConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["opentracks"]

	installed, err := dev.IsInstalled(app.Package)
	if err != nil {
		return err
	}
	if !installed {
		return configure.ErrAppNotReady
	}

	if cfg.ClearActivities {
		if err := configure.ClearTable(dev, app.DBPath, app.Table); err != nil {
			return err
		}
		m.log.Info().Msg("cleared activity records")
	}

	loc := m.deviceLocation()

	added := 0
	for _, a := range cfg.AddActivities {
		if err := m.addActivity(a, loc); err != nil {
			m.log.Error().Err(err).Str("name", a.Name).Msg("add activity failed")
			continue
		}
		added++
	}
	if added > 0 {
		m.log.Info().Int("activities", added).Msg("activities added")
	}

	if cfg.AddRandomActivities {
		m.addRandom(intDefault(cfg.RandomActivityCount, 5), loc)
	}
	return nil
}

// deviceLocation resolves the device's persisted timezone, defaulting to UTC
// when the property is unset or unknown to the host zone database.
func (m *OpenTracks) deviceLocation() *time.Location {
	tz, err := m.dev().GetProp("persist.sys.timezone")
	if err != nil || strings.TrimSpace(tz) == "" {
		m.log.Warn().Err(err).Msg("device timezone unavailable, using UTC")
		return time.UTC
	}
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		m.log.Warn().Str("timezone", tz).Msg("unknown device timezone, using UTC")
		return time.UTC
	}
	return loc
}

func (m *OpenTracks) addActivity(a activityEntry, loc *time.Location) error {
	category := a.Category
	if category == "" {
		category = "running"
	}
	description := a.Description
	if description == "" {
		description = a.Name + " activity"
	}

	var start time.Time
	if a.StartDate != "" {
		parsed, err := configure.ParseDateTime(a.StartDate, defaultClock(a.StartTime))
		if err != nil {
			return err
		}
		start = time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
			parsed.Hour(), parsed.Minute(), 0, 0, loc)
	} else {
		start = m.now().In(loc)
	}

	duration := time.Duration(a.DurationMins * float64(time.Minute))
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	return m.insertTrack(a.Name, description, category, start, duration,
		a.Distance, a.ElevationGain, a.ElevationLoss)
}

func (m *OpenTracks) insertTrack(name, description, category string, start time.Time,
	duration time.Duration, distance, gain, loss float64) error {

	startMS := start.UnixMilli()
	totalMS := duration.Milliseconds()
	var avgSpeed float64
	if totalMS > 0 {
		avgSpeed = distance / duration.Seconds()
	}
	_, offsetSeconds := start.Zone()

	app := configure.Apps["opentracks"]
	stmt := configure.InsertStatement(app.Table,
		[]string{"name", "description", "category", "activity_type",
			"starttime", "stoptime", "totaldistance",
			"totaltime", "movingtime",
			"avgspeed", "avgmovingspeed",
			"elevationgain", "elevationloss",
			"uuid", "starttime_offset", "icon"},
		[]any{name, description, category, category,
			startMS, startMS + totalMS, distance,
			totalMS, totalMS,
			avgSpeed, avgSpeed,
			gain, loss,
			uuid.NewString(), offsetSeconds, "activity_" + category})
	return m.dev().ExecuteSQL(app.DBPath, stmt)
}

var randomActivityNames = map[string][]string{
	"Running":  {"Morning Run", "Night Run", "Marathon Training", "Interval Run"},
	"Cycling":  {"Bike Commute", "Mountain Biking", "Road Cycling", "Leisure Cycling"},
	"Walking":  {"Stroll", "Brisk Walking", "Hiking", "City Walk"},
	"Swimming": {"Freestyle", "Breaststroke", "Backstroke", "Medley"},
	"Fitness":  {"Strength Training", "HIIT Workout", "Cardio", "Yoga"},
}

func randomDistanceMeters(category string) float64 {
	switch category {
	case "Running":
		return 1000 + rand.Float64()*14000
	case "Cycling":
		return 5000 + rand.Float64()*45000
	case "Walking":
		return 500 + rand.Float64()*7500
	case "Swimming":
		return 100 + rand.Float64()*2900
	default:
		return 1000 + rand.Float64()*9000
	}
}

func (m *OpenTracks) addRandom(count int, loc *time.Location) {
	categories := make([]string, 0, len(randomActivityNames))
	for c := range randomActivityNames {
		categories = append(categories, c)
	}

	added := 0
	for i := 0; i < count; i++ {
		category := categories[rand.Intn(len(categories))]
		names := randomActivityNames[category]
		name := names[rand.Intn(len(names))]

		start := m.now().In(loc).Add(-time.Duration(rand.Intn(30*24*60)) * time.Minute)
		duration := time.Duration(rand.Intn(165)+15) * time.Minute

		err := m.insertTrack(name, "Random "+name+" activity", category, start, duration,
			randomDistanceMeters(category), rand.Float64()*500, rand.Float64()*500)
		if err != nil {
			m.log.Error().Err(err).Str("name", name).Msg("random activity failed")
			continue
		}
		added++
	}
	m.log.Info().Int("activities", added).Msg("random activities added")
}

func defaultClock(clock string) string {
	if clock == "" {
		return "00:00"
	}
	return clock
}
