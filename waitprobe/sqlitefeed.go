package waitprobe

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteFeed reads probe events from the database the external probe
// writes to. The probe owns the schema; this side only queries it.
type SQLiteFeed struct {
	*sql.DB

	path string
}

// NewSQLiteFeed opens the probe database at path.
func NewSQLiteFeed(path string) (*SQLiteFeed, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open probe database %s: %w", path, err)
	}

	return &SQLiteFeed{DB: db, path: path}, nil
}

// Events returns all events the probe recorded for cursorID.
func (f *SQLiteFeed) Events(cursorID int64) ([]Event, error) {
	rows, err := f.Query(
		"SELECT cursor_id, location_id, timing_us "+
			"FROM wait_events WHERE cursor_id = ?",
		cursorID,
	)
	if err != nil {
		return nil, fmt.Errorf("query probe events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.CursorID, &e.LocationID, &e.TimingMicros,
		); err != nil {
			return nil, fmt.Errorf("scan probe event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
