package configure

// AppInfo identifies one target application and where its state lives.
type AppInfo struct {
	Package     string
	DisplayName string
	DBPath      string
	Table       string
	DataPath    string
}

// Shared storage roots on the device.
const (
	StorageRoot        = "/storage/emulated/0"
	MusicDirectory     = StorageRoot + "/Music"
	DocumentsDirectory = StorageRoot + "/Documents"
	DownloadsDirectory = StorageRoot + "/Download"
	PicturesDirectory  = StorageRoot + "/Pictures"
	DCIMDirectory      = StorageRoot + "/DCIM"

	TelephonyDBPath = "/data/data/com.android.providers.telephony/databases/mmssms.db"
	CalendarDBPath  = "/data/data/com.simplemobiletools.calendar.pro/databases/events.db"
)

// Apps is the catalog of known target applications, keyed by module key.
var Apps = map[string]AppInfo{
	"datetime": {
		Package:     "com.android.settings",
		DisplayName: "Settings",
	},
	"contacts": {
		Package:     "com.android.contacts",
		DisplayName: "Contacts",
	},
	"sms": {
		Package:     "com.android.messaging",
		DisplayName: "Messages",
		DBPath:      TelephonyDBPath,
	},
	"calendar": {
		Package:     "com.simplemobiletools.calendar.pro",
		DisplayName: "Simple Calendar Pro",
		DBPath:      CalendarDBPath,
		Table:       "events",
	},
	"recipe": {
		Package:     "com.flauschcode.broccoli",
		DisplayName: "Broccoli",
		DBPath:      "/data/data/com.flauschcode.broccoli/databases/broccoli",
		Table:       "recipes",
	},
	"tasks": {
		Package:     "org.tasks",
		DisplayName: "Tasks",
		DBPath:      "/data/data/org.tasks/databases/database",
		Table:       "tasks",
	},
	"expense": {
		Package:     "com.arduia.expense",
		DisplayName: "Pro Expense",
		DBPath:      "/data/data/com.arduia.expense/databases/accounting.db",
		Table:       "expense",
	},
	"music": {
		Package:     "code.name.monkey.retromusic",
		DisplayName: "Retro Music",
		DBPath:      "/data/data/code.name.monkey.retromusic/databases/playlist.db",
		DataPath:    MusicDirectory,
	},
	"joplin": {
		Package:     "net.cozic.joplin",
		DisplayName: "Joplin",
		DBPath:      "/data/data/net.cozic.joplin/databases/joplin.sqlite",
	},
	"osmand": {
		Package:     "net.osmand",
		DisplayName: "OsmAnd",
		DataPath:    "/data/media/0/Android/data/net.osmand/files",
	},
	"audio_recorder": {
		Package:     "com.dimowner.audiorecorder",
		DisplayName: "Audio Recorder",
		DataPath:    StorageRoot + "/Android/data/com.dimowner.audiorecorder/files/Music/records",
	},
	"markor": {
		Package:     "net.gsantner.markor",
		DisplayName: "Markor",
		DataPath:    DocumentsDirectory + "/Markor",
	},
	"files": {
		DataPath: StorageRoot,
	},
	"opentracks": {
		Package:     "de.dennisguse.opentracks",
		DisplayName: "Activity Tracker",
		DBPath:      "/data/data/de.dennisguse.opentracks/databases/database.db",
		Table:       "tracks",
	},
	"gallery": {
		DataPath: DCIMDirectory,
	},
	"system": {
		Package:     "com.android.settings",
		DisplayName: "Settings",
	},
}
