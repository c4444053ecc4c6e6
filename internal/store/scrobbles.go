package store

import (
	"fmt"
	"time"
)

const (
	scrobbleTimeFormat = "2006-01-02 15:04:05"
	dateFormat         = "2006-01-02"
)

// ItemCount is one row of a play-event aggregation: an item (song or album),
// how often it was played in the queried range, and when its most recent play
// in that range happened. LastPlayed carries the tie-break: of two items with
// equal counts, the one whose last play is older reached the count first.
type ItemCount struct {
	ItemID     int64
	PlayCount  int64
	LastPlayed string
}

// TopSongs counts scrobbles per song within [start, end] inclusive, ordered
// by count descending. Ties rank the song whose most recent scrobble is
// chronologically earliest first; song id is the final, stable tie-break.
func (s *Store) TopSongs(start, end time.Time, limit int) ([]ItemCount, error) {
	query := `
	SELECT s.id, COUNT(*), MAX(scr.scrobble_date)
	FROM Scrobble scr
	INNER JOIN Song s ON scr.song_id = s.id
	WHERE DATE(scr.scrobble_date) >= ? AND DATE(scr.scrobble_date) <= ?
	GROUP BY s.id
	ORDER BY COUNT(*) DESC, MAX(scr.scrobble_date) ASC, s.id ASC
	LIMIT ?
	`
	return s.queryItemCounts(query, start, end, limit)
}

// TopAlbums counts scrobbles per album within [start, end] inclusive. Plays
// are logged against songs; the album is reached through the song's album_id,
// and songs without an album are skipped.
func (s *Store) TopAlbums(start, end time.Time, limit int) ([]ItemCount, error) {
	query := `
	SELECT s.album_id, COUNT(*), MAX(scr.scrobble_date)
	FROM Scrobble scr
	INNER JOIN Song s ON scr.song_id = s.id
	WHERE DATE(scr.scrobble_date) >= ? AND DATE(scr.scrobble_date) <= ?
	AND s.album_id IS NOT NULL
	GROUP BY s.album_id
	ORDER BY COUNT(*) DESC, MAX(scr.scrobble_date) ASC, s.album_id ASC
	LIMIT ?
	`
	return s.queryItemCounts(query, start, end, limit)
}

func (s *Store) queryItemCounts(query string, start, end time.Time, limit int) ([]ItemCount, error) {
	rows, err := s.db.Query(query, start.Format(dateFormat), end.Format(dateFormat), limit)
	if err != nil {
		return nil, fmt.Errorf("querying play counts: %w", err)
	}
	defer rows.Close()

	var results []ItemCount
	for rows.Next() {
		var ic ItemCount
		if err := rows.Scan(&ic.ItemID, &ic.PlayCount, &ic.LastPlayed); err != nil {
			return nil, err
		}
		results = append(results, ic)
	}
	return results, rows.Err()
}

// WeeksWithScrobbles returns the distinct weekly period keys implied by the
// scrobble log, ascending. Uses strftime's %W numbering, which matches
// period.WeekKeyForDate.
func (s *Store) WeeksWithScrobbles() ([]string, error) {
	query := `
	SELECT DISTINCT strftime('%Y-W%W', scrobble_date)
	FROM Scrobble
	WHERE scrobble_date IS NOT NULL
	ORDER BY 1 ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying scrobble weeks: %w", err)
	}
	defer rows.Close()

	var weeks []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}
