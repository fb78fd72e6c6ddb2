package modules

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"droidseed/internal/configure"
)

// Music seeds Retro Music: MP3 stubs on shared storage, playlist rows, and
// the playback queue. Track synthesis needs the media capability; without it
// the file steps are skipped with a warning.
type Music struct {
	base
	now func() time.Time
}

const (
	playlistDBPath = "/data/data/code.name.monkey.retromusic/databases/playlist.db"
	playbackDBPath = "/data/data/code.name.monkey.retromusic/databases/music_playback_state.db"
)

type musicConfig struct {
	ClearMusic    bool            `json:"clear_music"`
	AddMusicFiles []musicTrack    `json:"add_music_files"`
	AddPlaylists  []musicPlaylist `json:"add_playlists"`
	SetQueue      []string        `json:"set_queue"`
}

type musicTrack struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	DurationMS int64  `json:"duration_ms"`
}

type musicPlaylist struct {
	Name  string   `json:"name"`
	Songs []string `json:"songs"`
}

func NewMusic(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &Music{base: newBase("music", env, raw), now: time.Now}
}

func (m *Music) Name() string { return "music" }

func (m *Music) Configure() error {
	var cfg musicConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["music"]

	if err := configure.EnsureAppReady("music", dev); err != nil {
		return err
	}

	if cfg.ClearMusic {
		if err := dev.ClearDirectory(configure.MusicDirectory); err != nil {
			return err
		}
		for _, table := range []string{"PlaylistEntity", "SongEntity"} {
			if err := configure.ClearTable(dev, playlistDBPath, table); err != nil {
				m.log.Warn().Err(err).Str("table", table).Msg("playlist clear failed")
			}
		}
		m.log.Info().Msg("cleared music files and playlists")
	}

	if len(cfg.AddMusicFiles) > 0 {
		if m.env.Media == nil {
			m.log.Warn().Msg("no media writer available, skipping track synthesis")
		} else {
			m.addTracks(cfg.AddMusicFiles)
			if err := dev.MediaScan(configure.MusicDirectory); err != nil {
				m.log.Warn().Err(err).Msg("media scan failed")
			}
			if err := dev.CloseApp(app.Package); err != nil {
				m.log.Warn().Err(err).Msg("close after scan failed")
			}
		}
	}

	if len(cfg.AddPlaylists) > 0 {
		m.createPlaylists(cfg.AddPlaylists)
	}
	if len(cfg.SetQueue) > 0 {
		m.setQueue(cfg.SetQueue)
	}

	if err := dev.LaunchApp(app.Package); err != nil {
		m.log.Warn().Err(err).Msg("music app relaunch failed")
	}
	return nil
}

func (m *Music) addTracks(tracks []musicTrack) {
	added := 0
	for _, t := range tracks {
		name := t.Title
		if name == "" {
			name = fmt.Sprintf("music_%d", rand.Intn(1000)+1)
		}
		artist := t.Artist
		if artist == "" {
			artist = "Unknown Artist"
		}
		duration := time.Duration(t.DurationMS) * time.Millisecond
		if duration <= 0 {
			duration = time.Duration(rand.Intn(2*60*1000)+3*60*1000) * time.Millisecond
		}
		remote := configure.MusicDirectory + "/" + name + ".mp3"
		if err := m.env.Media.WriteMP3(remote, t.Title, artist, duration); err != nil {
			m.log.Error().Err(err).Str("title", name).Msg("track synthesis failed")
			continue
		}
		added++
	}
	m.log.Info().Int("tracks", added).Msg("music files added")
}

// createPlaylists writes PlaylistEntity and SongEntity rows, resolving song
// metadata from the media store when the track is already indexed.
func (m *Music) createPlaylists(playlists []musicPlaylist) {
	songInfo := m.songInfoMap()
	songKey := int64(10000)
	created := 0

	for _, p := range playlists {
		if p.Name == "" || len(p.Songs) == 0 {
			continue
		}
		playlistID := m.now().UnixMilli()
		stmt := configure.InsertStatement("PlaylistEntity",
			[]string{"playlist_id", "playlist_name"},
			[]any{playlistID, p.Name})
		if err := m.dev().ExecuteSQL(playlistDBPath, stmt); err != nil {
			m.log.Error().Err(err).Str("playlist", p.Name).Msg("playlist insert failed")
			continue
		}

		for i, song := range p.Songs {
			row := m.songRow(song, i, songInfo)
			stmt := configure.InsertStatement("SongEntity",
				[]string{"playlist_creator_id", "song_key", "id", "title", "track_number",
					"year", "duration", "data", "date_modified", "album_id", "album_name",
					"artist_id", "artist_name", "composer", "album_artist"},
				[]any{playlistID, songKey + int64(i), row.id, song, row.track,
					row.year, row.duration, row.data, row.dateModified, row.albumID, row.albumName,
					row.artistID, row.artistName, row.composer, row.albumArtist})
			if err := m.dev().ExecuteSQL(playlistDBPath, stmt); err != nil {
				m.log.Error().Err(err).Str("song", song).Msg("song insert failed")
			}
		}
		songKey += int64(len(p.Songs)) + 1000
		created++
		m.log.Info().Str("playlist", p.Name).Int("songs", len(p.Songs)).Msg("playlist created")
	}
	m.log.Info().Int("playlists", created).Msg("playlists created")
}

func (m *Music) setQueue(songs []string) {
	if err := configure.ClearTable(m.dev(), playbackDBPath, "playing_queue"); err != nil {
		m.log.Error().Err(err).Msg("queue clear failed")
		return
	}
	songInfo := m.songInfoMap()
	for i, song := range songs {
		row := m.songRow(song, i, songInfo)
		if row.id == int64(i+1) {
			row.id = int64(i + 1000)
		}
		stmt := configure.InsertStatement("playing_queue",
			[]string{"_id", "title", "track", "year", "duration", "_data", "date_modified",
				"album_id", "album", "artist_id", "artist", "composer", "album_artist"},
			[]any{row.id, song, row.track, row.year, row.duration, row.data, row.dateModified,
				row.albumID, row.albumName, row.artistID, row.artistName, row.composer, row.albumArtist})
		if err := m.dev().ExecuteSQL(playbackDBPath, stmt); err != nil {
			m.log.Error().Err(err).Str("song", song).Msg("queue insert failed")
		}
	}
	m.log.Info().Int("songs", len(songs)).Msg("playback queue set")
}

type songRow struct {
	id, track, year, duration int64
	data                      string
	dateModified              int64
	albumID                   int64
	albumName                 string
	artistID                  int64
	artistName                string
	composer, albumArtist     string
}

func (m *Music) songRow(title string, index int, info map[string]map[string]string) songRow {
	row := songRow{
		id:           int64(index + 1),
		track:        int64(index + 1),
		year:         2023,
		duration:     180000,
		data:         configure.MusicDirectory + "/" + title + ".mp3",
		dateModified: m.now().Unix(),
		albumID:      int64(index + 1),
		albumName:    "Unknown Album",
		artistID:     int64(index + 1),
		artistName:   "Unknown Artist",
	}
	known, ok := info[title]
	if !ok {
		return row
	}
	get := func(key string, fallback int64) int64 {
		var v int64
		if _, err := fmt.Sscanf(known[key], "%d", &v); err != nil {
			return fallback
		}
		return v
	}
	row.id = get("_id", row.id)
	row.duration = get("duration", row.duration)
	row.year = get("year", row.year)
	row.albumID = get("album_id", row.albumID)
	row.artistID = get("artist_id", row.artistID)
	if v := known["_data"]; v != "" {
		row.data = v
	}
	if v := known["album"]; v != "" {
		row.albumName = v
	}
	if v := known["artist"]; v != "" {
		row.artistName = v
	}
	return row
}

// songInfoMap parses `content query` output from the external audio media
// store into per-title attribute maps.
func (m *Music) songInfoMap() map[string]map[string]string {
	out, err := m.dev().Shell("content query --uri content://media/external/audio/media")
	if err != nil {
		m.log.Warn().Err(err).Msg("media store query failed")
		return nil
	}
	info := make(map[string]map[string]string)
	var current map[string]string
	var title string
	flush := func() {
		if title != "" && current != nil {
			info[title] = current
		}
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Row:") {
			flush()
			current, title = make(map[string]string), ""
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok || current == nil {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "title" {
			title = value
		}
		current[key] = value
	}
	flush()
	return info
}
