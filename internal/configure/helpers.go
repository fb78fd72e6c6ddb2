package configure

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"droidseed/internal/adb"
)

var (
	ErrUnknownApp   = errors.New("configure: unknown app key")
	ErrAppNotReady  = errors.New("configure: app not ready")
	ErrBadDateValue = errors.New("configure: unparseable date")
)

// EnsureAppReady verifies the target app for key is installed, escalates to
// root, and warms the app with a launch/settle/home cycle. Launch trouble is
// logged and tolerated; a missing package is not.
func EnsureAppReady(key string, d *adb.Device) error {
	info, ok := Apps[key]
	if !ok || info.Package == "" {
		return fmt.Errorf("%w: %q", ErrUnknownApp, key)
	}

	installed, err := d.IsInstalled(info.Package)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrAppNotReady, info.Package, err)
	}
	if !installed {
		return fmt.Errorf("%w: %s is not installed", ErrAppNotReady, info.Package)
	}

	if err := d.SetRoot(); err != nil {
		log.Warn().Err(err).Str("app", info.Package).Msg("root escalation failed")
	}

	if err := d.LaunchApp(info.Package); err != nil {
		log.Warn().Err(err).Str("app", info.Package).Msg("launch failed, continuing")
		return nil
	}
	if err := d.SettleAfterLaunch(info.Package); err != nil {
		log.Warn().Err(err).Str("app", info.Package).Msg("app did not settle")
	}
	if err := d.PressHome(); err != nil {
		log.Warn().Err(err).Msg("home press failed")
	}
	return nil
}

// ClearTable deletes every row from table in the named database.
func ClearTable(d *adb.Device, dbPath, table string) error {
	return d.ExecuteSQL(dbPath, fmt.Sprintf("DELETE FROM %s;", table))
}

// CountRows reports the current row count of table.
func CountRows(d *adb.Device, dbPath, table string) (int, error) {
	out, err := d.QuerySQL(dbPath, fmt.Sprintf("SELECT COUNT(*) FROM %s;", table))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("count for %s: %w", table, err)
	}
	return n, nil
}

var dateLayouts = []string{"2006-01-02", "January 2 2006", "01/02/2006"}

// ParseDateTime combines a date string in one of the accepted layouts with an
// HH:MM time-of-day. An empty timeStr means midnight.
func ParseDateTime(dateStr, timeStr string) (time.Time, error) {
	if timeStr == "" {
		timeStr = "00:00"
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout+" 15:04", dateStr+" "+timeStr)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDateValue, dateStr)
}
