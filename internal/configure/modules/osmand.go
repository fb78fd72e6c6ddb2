package modules

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"path"

	"droidseed/internal/configure"
)

// OsmAnd manages the map app's favorite locations, which live in GPX files
// rather than a database.
type OsmAnd struct {
	base
}

const (
	osmandFiles         = "/data/media/0/Android/data/net.osmand/files"
	osmandLegacyFiles   = "/data/data/net.osmand/files"
	osmandFavoritesPath = osmandFiles + "/favorites/favorites.gpx"
	osmandLegacyFavPath = osmandLegacyFiles + "/favourites_bak.gpx"
	osmandBackupDirPath = osmandLegacyFiles + "/backup"
	gpxNamespace        = "http://www.topografix.com/GPX/1/1"
)

type osmandConfig struct {
	ClearFavorites bool             `json:"clear_favorites"`
	AddFavorites   []osmandFavorite `json:"add_favorites"`
}

type osmandFavorite struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

type gpxFile struct {
	XMLName   xml.Name      `xml:"gpx"`
	Version   string        `xml:"version,attr"`
	Creator   string        `xml:"creator,attr"`
	Namespace string        `xml:"xmlns,attr"`
	Waypoints []gpxWaypoint `xml:"wpt"`
}

type gpxWaypoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Name string  `xml:"name"`
	Desc string  `xml:"desc,omitempty"`
}

// preloadedLocations covers the Liechtenstein map that ships with the test
// image, so configs can name places without coordinates.
var preloadedLocations = map[string][2]float64{
	"Balzers, Liechtenstein":      {47.0688832, 9.5061564},
	"Bendern, Liechtenstein":      {47.2122151, 9.5062101},
	"Malbun, Liechtenstein":       {47.1026191, 9.6083057},
	"Nendeln, Liechtenstein":      {47.1973857, 9.5430636},
	"Oberplanken, Liechtenstein":  {47.1784977, 9.5450163},
	"Planken, Liechtenstein":      {47.1858882, 9.5452201},
	"Rotenboden, Liechtenstein":   {47.1275785, 9.5387131},
	"Ruggell, Liechtenstein":      {47.23976, 9.5262837},
	"Schaan, Liechtenstein":       {47.1663432, 9.5103085},
	"Schaanwald, Liechtenstein":   {47.2165476, 9.5699984},
	"Schönberg, Liechtenstein":    {47.1303814, 9.5930117},
	"Triesen, Liechtenstein":      {47.106997, 9.5274854},
}

func NewOsmAnd(env configure.Environment, raw json.RawMessage) configure.Configurator {
	return &OsmAnd{newBase("osmand", env, raw)}
}

func (m *OsmAnd) Name() string { return "osmand" }

func (m *OsmAnd) Configure() error {
	var cfg osmandConfig
	if err := m.decode(&cfg); err != nil {
		return err
	}
	dev := m.dev()
	app := configure.Apps["osmand"]

	if err := configure.EnsureAppReady("osmand", dev); err != nil {
		return err
	}
	// First launch creates the files tree; close before rewriting it.
	if err := dev.CloseApp(app.Package); err != nil {
		m.log.Warn().Err(err).Msg("close after init failed")
	}

	if cfg.ClearFavorites {
		if err := m.clearFavorites(); err != nil {
			return err
		}
	}

	for _, fav := range cfg.AddFavorites {
		lat, lon, err := resolveLocation(fav)
		if err != nil {
			m.log.Error().Err(err).Str("name", fav.Name).Msg("add favorite failed")
			continue
		}
		if err := m.addFavorite(fav.Name, lat, lon); err != nil {
			m.log.Error().Err(err).Str("name", fav.Name).Msg("add favorite failed")
			continue
		}
		m.log.Info().Str("name", fav.Name).Float64("lat", lat).Float64("lon", lon).Msg("favorite added")
	}
	return nil
}

func resolveLocation(fav osmandFavorite) (float64, float64, error) {
	if coords, ok := preloadedLocations[fav.Name]; ok && fav.Lat == nil && fav.Lon == nil {
		return coords[0], coords[1], nil
	}
	if fav.Lat == nil || fav.Lon == nil {
		return 0, 0, fmt.Errorf("missing coordinates")
	}
	return *fav.Lat, *fav.Lon, nil
}

func (m *OsmAnd) clearFavorites() error {
	dev := m.dev()
	if err := dev.ClearDirectory(osmandBackupDirPath); err != nil {
		m.log.Warn().Err(err).Msg("backup clear failed")
	}
	for _, p := range []string{osmandFavoritesPath, osmandLegacyFavPath} {
		exists, err := dev.FileExists(p)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		doc, err := m.readGPX(p)
		if err != nil {
			m.log.Warn().Err(err).Str("path", p).Msg("unreadable favorites file, rewriting")
			doc = emptyGPX()
		}
		doc.Waypoints = nil
		if err := m.writeGPX(p, doc); err != nil {
			return err
		}
		m.log.Info().Str("path", p).Msg("favorites cleared")
	}
	return nil
}

func (m *OsmAnd) addFavorite(name string, lat, lon float64) error {
	dev := m.dev()
	if err := dev.Mkdir(path.Dir(osmandFavoritesPath)); err != nil {
		return err
	}

	doc := emptyGPX()
	if exists, err := dev.FileExists(osmandFavoritesPath); err == nil && exists {
		if parsed, err := m.readGPX(osmandFavoritesPath); err == nil {
			doc = parsed
		}
	}
	doc.Waypoints = append(doc.Waypoints, gpxWaypoint{
		Lat:  lat,
		Lon:  lon,
		Name: name,
		Desc: "Favorite location: " + name,
	})
	return m.writeGPX(osmandFavoritesPath, doc)
}

func (m *OsmAnd) readGPX(remotePath string) (*gpxFile, error) {
	content, err := m.dev().ReadFile(remotePath)
	if err != nil {
		return nil, err
	}
	var doc gpxFile
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", remotePath, err)
	}
	return &doc, nil
}

func (m *OsmAnd) writeGPX(remotePath string, doc *gpxFile) error {
	payload, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return m.dev().WriteFile(remotePath, xml.Header+string(payload))
}

func emptyGPX() *gpxFile {
	return &gpxFile{Version: "1.1", Creator: "OsmAnd", Namespace: gpxNamespace}
}
