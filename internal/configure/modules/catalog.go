package modules

import "droidseed/internal/configure"

// Catalog returns the configurators in execution order. The order encodes
// real dependencies: the clock is set before anything that derives
// timestamps, app data before media scans, and system toggles run last so
// nothing later re-launches an app.
func Catalog() []configure.Entry {
	return []configure.Entry{
		{Key: "datetime", New: NewDateTime},
		{Key: "contacts", New: NewContacts},
		{Key: "sms", New: NewSMS},
		{Key: "calendar", New: NewCalendar},
		{Key: "recipe", New: NewRecipe},
		{Key: "tasks", New: NewTasks},
		{Key: "expense", New: NewExpense},
		{Key: "music", New: NewMusic},
		{Key: "joplin", New: NewJoplin},
		{Key: "osmand", New: NewOsmAnd},
		{Key: "audio_recorder", New: NewAudioRecorder},
		{Key: "markor", New: NewMarkor},
		{Key: "files", New: NewFiles},
		{Key: "opentracks", New: NewOpenTracks},
		{Key: "gallery", New: NewGallery},
		{Key: "system", New: NewSystem},
	}
}
