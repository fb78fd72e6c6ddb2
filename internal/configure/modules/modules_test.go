package modules

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"droidseed/internal/adb"
	"droidseed/internal/configure"
	"droidseed/internal/testutil/testlog"
)

type fakeRunner struct {
	calls   []string
	outputs map[string]string
	fail    map[string]bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: make(map[string]string), fail: make(map[string]bool)}
}

func (f *fakeRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	for pattern, out := range f.outputs {
		if strings.Contains(call, pattern) {
			if f.fail[pattern] {
				return nil, []byte(out), 1, fmt.Errorf("exit status 1")
			}
			return []byte(out), nil, 0, nil
		}
	}
	return nil, nil, 0, nil
}

func (f *fakeRunner) called(pattern string) bool {
	for _, call := range f.calls {
		if strings.Contains(call, pattern) {
			return true
		}
	}
	return false
}

func (f *fakeRunner) find(pattern string) string {
	for _, call := range f.calls {
		if strings.Contains(call, pattern) {
			return call
		}
	}
	return ""
}

func testEnv(runner adb.CommandRunner) configure.Environment {
	dev := adb.NewDevice(adb.Options{
		Runner: runner,
		Path:   "adb",
		Serial: "emulator-5554",
		Backoff: adb.BackoffConfig{
			InitialDelay: 1,
			MaxDelay:     1,
			Multiplier:   1,
			MaxAttempts:  2,
		},
	})
	return configure.Environment{Controller: dev}
}

func TestCatalogOrder(t *testing.T) {
	testlog.Start(t)
	want := []string{
		"datetime", "contacts", "sms", "calendar", "recipe", "tasks",
		"expense", "music", "joplin", "osmand", "audio_recorder", "markor",
		"files", "opentracks", "gallery", "system",
	}
	entries := Catalog()
	if len(entries) != len(want) {
		t.Fatalf("catalog size: got=%d want=%d", len(entries), len(want))
	}
	for i, entry := range entries {
		if entry.Key != want[i] {
			t.Fatalf("catalog[%d]: got=%q want=%q", i, entry.Key, want[i])
		}
		if entry.New == nil {
			t.Fatalf("catalog[%d] %q has nil factory", i, entry.Key)
		}
	}
}

func TestDateTimeDefaultsAndExplicitClock(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	env := testEnv(runner)

	mod := NewDateTime(env, json.RawMessage(`{
		"timezone": "Europe/Berlin",
		"datetime": "2024-01-02T09:30:15"
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}

	for _, pattern := range []string{
		"settings put global auto_time '0'",
		"settings put global auto_time_zone '0'",
		"settings put system time_12_24 '24'",
		"service call alarm 3 s16 'Europe/Berlin'",
		"date 0102093024.15",
	} {
		if !runner.called(pattern) {
			t.Fatalf("missing %q in calls: %v", pattern, runner.calls)
		}
	}
}

func TestDateTimeComponentsObject(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	mod := NewDateTime(testEnv(runner), json.RawMessage(`{
		"disable_auto_settings": false,
		"use_24_hour_format": false,
		"datetime": {"year": 2023, "month": 10, "day": 15, "hour": 14, "minute": 30}
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if runner.called("auto_time") {
		t.Fatalf("auto settings should stay untouched: %v", runner.calls)
	}
	if !runner.called("date 1015143023.00") {
		t.Fatalf("component clock not applied: %v", runner.calls)
	}
}

func TestContactsClearAndAdd(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pidof"] = "42\n"
	runner.outputs["content query --uri content://contacts/phones"] = "Row: 0 display_name=Alice, number=555-0100\n"

	mod := NewContacts(testEnv(runner), json.RawMessage(`{
		"clear_contacts": true,
		"add_contacts": [{"name": "Alice", "number": "555-0100"}],
		"verify_contacts": true
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !runner.called("pm clear com.android.providers.contacts") {
		t.Fatalf("contacts not cleared: %v", runner.calls)
	}
	insert := runner.find("android.intent.action.INSERT")
	if insert == "" || !strings.Contains(insert, "Alice") || !strings.Contains(insert, "555-0100") {
		t.Fatalf("insert intent missing fields: %q", insert)
	}
	if !runner.called("input keyevent KEYCODE_ENTER") {
		t.Fatalf("save keypress missing: %v", runner.calls)
	}
}

func TestSMSClearAndSentInsert(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	mod := NewSMS(testEnv(runner), json.RawMessage(`{
		"clear_messages": true,
		"add_messages": [
			{"number": "+1 (555) 123-4567", "text": "it's done", "is_received": false}
		]
	}`)).(*SMS)
	mod.now = func() time.Time { return time.UnixMilli(1700000000000) }

	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	for _, table := range []string{"sms", "threads", "mms", "canonical_addresses"} {
		if !runner.called("DELETE FROM " + table + ";") {
			t.Fatalf("missing clear for %s: %v", table, runner.calls)
		}
	}
	insert := runner.find("INSERT INTO sms")
	if insert == "" {
		t.Fatalf("sent message not inserted: %v", runner.calls)
	}
	for _, want := range []string{"+15551234567", ",1700000000000,", ",1,2)"} {
		if !strings.Contains(insert, want) {
			t.Fatalf("insert missing %q: %q", want, insert)
		}
	}
	if runner.called("emu sms send") {
		t.Fatalf("sent message should not use emulator console: %v", runner.calls)
	}
}

func TestSMSReceivedUsesConsole(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	mod := NewSMS(testEnv(runner), json.RawMessage(`{
		"add_messages": [{"number": "5550001111", "text": "hello"}]
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !runner.called("emu sms send 5550001111 hello") {
		t.Fatalf("received message should use console: %v", runner.calls)
	}
	if !runner.called("android.provider.Telephony.SMS_RECEIVED") {
		t.Fatalf("missing refresh broadcast: %v", runner.calls)
	}
}

func TestCalendarWeeklyRepeatRule(t *testing.T) {
	testlog.Start(t)
	cases := map[int]int{1: 1, 2: 2, 3: 4, 7: 64, 0: 0, 8: 0}
	for day, want := range cases {
		if got := WeeklyRepeatRule(day); got != want {
			t.Fatalf("WeeklyRepeatRule(%d)=%d want %d", day, got, want)
		}
	}
}

func TestCalendarEventInsert(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:com.simplemobiletools.calendar.pro\n"
	runner.outputs["pidof"] = "321\n"

	mod := NewCalendar(testEnv(runner), json.RawMessage(`{
		"add_events": [{
			"title": "Standup",
			"start_time": 1700000000,
			"duration_mins": 15,
			"repeat_interval": "weekly",
			"day_of_week": 3
		}]
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	insert := runner.find("INSERT INTO events")
	if insert == "" {
		t.Fatalf("event not inserted: %v", runner.calls)
	}
	if !strings.Contains(insert, "(1700000000,1700000900,") || !strings.Contains(insert, "Standup") {
		t.Fatalf("start/end not derived from duration: %q", insert)
	}
	if !strings.Contains(insert, fmt.Sprintf("%d,4,0", 7*24*60*60)) {
		t.Fatalf("weekly interval and rule missing: %q", insert)
	}
}

func TestTasksInsertQuotesOrderColumn(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:org.tasks\n"
	runner.outputs["pidof"] = "99\n"
	runner.outputs["SELECT COUNT"] = "0\n"

	mod := NewTasks(testEnv(runner), json.RawMessage(`{
		"clear_tasks": true,
		"add_tasks": [{"title": "Water plants", "due_date": "2024-10-15", "due_time": "09:00"}]
	}`)).(*Tasks)
	mod.now = func() time.Time { return time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC) }

	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	insert := runner.find("INSERT INTO tasks")
	if insert == "" {
		t.Fatalf("task not inserted: %v", runner.calls)
	}
	if !strings.Contains(insert, `"[order]"`) {
		t.Fatalf("order column not bracket-quoted: %q", insert)
	}
	if !strings.Contains(insert, "Water plants") {
		t.Fatalf("title missing: %q", insert)
	}
	// due is 2024-10-15 09:00 UTC; created and modified trail it by 7 days.
	if !strings.Contains(insert, ",1728982800000,0,1728378000000,1728378000000,") {
		t.Fatalf("created not derived from due: %q", insert)
	}
	if !runner.called("am force-stop org.tasks") {
		t.Fatalf("task app not restarted: %v", runner.calls)
	}
}

func TestIntDefaultHonorsExplicitZero(t *testing.T) {
	testlog.Start(t)
	zero := 0
	if got := intDefault(nil, 10); got != 10 {
		t.Fatalf("absent count: got=%d want=10", got)
	}
	if got := intDefault(&zero, 10); got != 0 {
		t.Fatalf("explicit zero: got=%d want=0", got)
	}
}

func TestCalendarExplicitZeroRandomCount(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:com.simplemobiletools.calendar.pro\n"
	runner.outputs["pidof"] = "321\n"

	mod := NewCalendar(testEnv(runner), json.RawMessage(`{
		"add_random_events": true,
		"random_event_count": 0
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if runner.called("INSERT INTO events") {
		t.Fatalf("zero count must insert nothing: %v", runner.calls)
	}
}

func TestTasksMissingAppFails(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:com.android.settings\n"
	mod := NewTasks(testEnv(runner), json.RawMessage(`{"clear_tasks": true}`))
	if err := mod.Configure(); err == nil {
		t.Fatalf("expected failure for missing app")
	}
}

func TestExpenseDollarsToCents(t *testing.T) {
	testlog.Start(t)
	cases := map[string]int64{"35.79": 3579, "0.1": 10, "100": 10000, "": 0}
	for in, want := range cases {
		got, err := dollarsToCents(in)
		if err != nil {
			t.Fatalf("dollarsToCents(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("dollarsToCents(%q)=%d want %d", in, got, want)
		}
	}
	if _, err := dollarsToCents("abc"); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestExpenseInsertConvertsAmount(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:com.arduia.expense\n"
	runner.outputs["pidof"] = "7\n"

	mod := NewExpense(testEnv(runner), json.RawMessage(`{
		"add_expenses": [{"name": "Dinner", "amount": "42.50", "created_date": 1700000000000}]
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	insert := runner.find("INSERT INTO expense")
	if insert == "" {
		t.Fatalf("expense not inserted: %v", runner.calls)
	}
	if !strings.Contains(insert, ",4250,1,") || !strings.Contains(insert, "Dinner") {
		t.Fatalf("amount not converted to cents: %q", insert)
	}
}

func TestJoplinNoteMirroredIntoSearchIndex(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:net.cozic.joplin\n"
	runner.outputs["pidof"] = "11\n"

	mod := NewJoplin(testEnv(runner), json.RawMessage(`{
		"add_folders": [{"title": "Work"}],
		"add_notes": [{"title": "Minutes", "body": "agenda", "folder": "Work"}]
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !runner.called("INSERT INTO folders") {
		t.Fatalf("folder not inserted: %v", runner.calls)
	}
	if !runner.called("INSERT INTO notes ") {
		t.Fatalf("note not inserted: %v", runner.calls)
	}
	if !runner.called("INSERT INTO notes_normalized") {
		t.Fatalf("search index row missing: %v", runner.calls)
	}
}

func TestGallerySkipsTextImagesWithoutMediaWriter(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	mod := NewGallery(testEnv(runner), json.RawMessage(`{
		"clear_images": true,
		"add_images": [{"filename": "note.png", "text": "hello"}]
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure should tolerate missing media writer: %v", err)
	}
	if !runner.called("rm -rf /storage/emulated/0/DCIM/*") {
		t.Fatalf("gallery not cleared: %v", runner.calls)
	}
}

func TestSystemBrightnessValidation(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["settings get system screen_brightness"] = "255\n"
	mod := NewSystem(testEnv(runner), json.RawMessage(`{"brightness": "max"}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !runner.called("settings put system screen_brightness_mode '0'") {
		t.Fatalf("auto-brightness not disabled: %v", runner.calls)
	}
	if !runner.called("settings put system screen_brightness '255'") {
		t.Fatalf("brightness not applied: %v", runner.calls)
	}
}

func TestOsmAndFavoriteWritesGPX(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["pm list packages"] = "package:net.osmand\n"
	runner.outputs["pidof"] = "5\n"
	runner.outputs["ls /data/media/0/Android/data/net.osmand/files/favorites/favorites.gpx"] = "__absent__"

	mod := NewOsmAnd(testEnv(runner), json.RawMessage(`{
		"add_favorites": [{"name": "Schaan, Liechtenstein"}]
	}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	write := runner.find("favorites.gpx")
	if write == "" {
		t.Fatalf("favorites file not written: %v", runner.calls)
	}
	written := runner.find("printf")
	if !strings.Contains(written, "47.1663432") || !strings.Contains(written, "Schaan") {
		t.Fatalf("waypoint coordinates missing: %q", written)
	}
}

func TestFilesClearCreatesMissingFolder(t *testing.T) {
	testlog.Start(t)
	runner := newFakeRunner()
	runner.outputs["[ -d /storage/emulated/0/Download ]"] = "no"
	mod := NewFiles(testEnv(runner), json.RawMessage(`{"clear_folders": ["Download"]}`))
	if err := mod.Configure(); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if !runner.called("mkdir -p /storage/emulated/0/Download") {
		t.Fatalf("missing folder not created: %v", runner.calls)
	}
	if runner.called("rm -rf /storage/emulated/0/Download/*") {
		t.Fatalf("missing folder should not be cleared: %v", runner.calls)
	}
}
