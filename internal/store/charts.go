package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/isc-eagr/music-stats-sub000/internal/period"
)

// ChartType says what kind of item a chart ranks.
type ChartType string

const (
	SongChart  ChartType = "song"
	AlbumChart ChartType = "album"
)

// Chart is one published or draft ranking snapshot. Period dates are stored
// as "yyyy-mm-dd" strings, which also compare correctly as text.
type Chart struct {
	ID            int64
	Type          ChartType
	Kind          period.Kind
	PeriodKey     string
	StartDate     string
	EndDate       string
	Finalized     bool
	GeneratedDate string
}

// ChartEntry is one ranked slot within a chart. Exactly one of SongID or
// AlbumID is set, matching the owning chart's type; the other is zero.
type ChartEntry struct {
	ID        int64
	ChartID   int64
	Position  int
	SongID    int64
	AlbumID   int64
	PlayCount int64
}

// ItemID returns whichever item reference the entry carries.
func (e ChartEntry) ItemID() int64 {
	if e.SongID != 0 {
		return e.SongID
	}
	return e.AlbumID
}

// HistoryPoint is one appearance of an item across a chart lineage.
type HistoryPoint struct {
	PeriodKey string
	StartDate string
	EndDate   string
	Position  int
	PlayCount int64
}

const chartColumns = "id, chart_type, period_type, period_key, period_start_date, period_end_date, is_finalized, generated_date"

// GetChart looks up a chart by type, period kind, and period key.
func (s *Store) GetChart(t ChartType, kind period.Kind, key string) (*Chart, error) {
	row := s.db.QueryRow(
		"SELECT "+chartColumns+" FROM Chart WHERE chart_type = ? AND period_type = ? AND period_key = ?",
		string(t), string(kind), key)
	return scanChart(row)
}

// GetChartByID looks up a chart by its id.
func (s *Store) GetChartByID(id int64) (*Chart, error) {
	row := s.db.QueryRow("SELECT "+chartColumns+" FROM Chart WHERE id = ?", id)
	return scanChart(row)
}

// LatestChart returns the chart with the most recent period start date in the
// (type, kind) lineage.
func (s *Store) LatestChart(t ChartType, kind period.Kind) (*Chart, error) {
	row := s.db.QueryRow(
		"SELECT "+chartColumns+" FROM Chart WHERE chart_type = ? AND period_type = ? ORDER BY period_start_date DESC LIMIT 1",
		string(t), string(kind))
	return scanChart(row)
}

// PreviousChart returns the chart immediately before the given period key in
// its lineage, by period start date.
func (s *Store) PreviousChart(t ChartType, kind period.Kind, key string) (*Chart, error) {
	query := `
	SELECT ` + chartColumns + ` FROM Chart
	WHERE chart_type = ? AND period_type = ? AND period_start_date <
	  (SELECT period_start_date FROM Chart WHERE chart_type = ? AND period_type = ? AND period_key = ?)
	ORDER BY period_start_date DESC LIMIT 1
	`
	row := s.db.QueryRow(query, string(t), string(kind), string(t), string(kind), key)
	return scanChart(row)
}

// NextChart returns the chart immediately after the given period key in its
// lineage, by period start date.
func (s *Store) NextChart(t ChartType, kind period.Kind, key string) (*Chart, error) {
	query := `
	SELECT ` + chartColumns + ` FROM Chart
	WHERE chart_type = ? AND period_type = ? AND period_start_date >
	  (SELECT period_start_date FROM Chart WHERE chart_type = ? AND period_type = ? AND period_key = ?)
	ORDER BY period_start_date ASC LIMIT 1
	`
	row := s.db.QueryRow(query, string(t), string(kind), string(t), string(kind), key)
	return scanChart(row)
}

// ChartsAsc returns every chart in the (type, kind) lineage ordered by period
// start date ascending.
func (s *Store) ChartsAsc(t ChartType, kind period.Kind) ([]*Chart, error) {
	rows, err := s.db.Query(
		"SELECT "+chartColumns+" FROM Chart WHERE chart_type = ? AND period_type = ? ORDER BY period_start_date ASC",
		string(t), string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying charts: %w", err)
	}
	defer rows.Close()

	var charts []*Chart
	for rows.Next() {
		c, err := scanChart(rows)
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

// PeriodKeys returns the period keys that have a chart in the (type, kind)
// lineage, ordered by period start date ascending.
func (s *Store) PeriodKeys(t ChartType, kind period.Kind) ([]string, error) {
	return s.queryKeys(
		"SELECT period_key FROM Chart WHERE chart_type = ? AND period_type = ? ORDER BY period_start_date ASC",
		string(t), string(kind))
}

// FinalizedPeriodKeys returns the period keys that have at least one
// finalized chart of the given kind, ordered by period start date ascending.
func (s *Store) FinalizedPeriodKeys(kind period.Kind) ([]string, error) {
	return s.queryKeys(
		"SELECT DISTINCT period_key FROM Chart WHERE period_type = ? AND is_finalized = 1 ORDER BY period_start_date ASC",
		string(kind))
}

// AllPeriodKeys returns the period keys that have any chart (draft or
// finalized) of the given kind.
func (s *Store) AllPeriodKeys(kind period.Kind) ([]string, error) {
	return s.queryKeys(
		"SELECT DISTINCT period_key FROM Chart WHERE period_type = ? ORDER BY period_start_date ASC",
		string(kind))
}

func (s *Store) queryKeys(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying period keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CreateChartWithEntries inserts a chart row and its entries in one
// transaction, so a partially written chart is never observable. Entries may
// be empty (draft charts start without any).
func (s *Store) CreateChartWithEntries(chart *Chart, entries []ChartEntry) (*Chart, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
	INSERT INTO Chart (chart_type, period_type, period_key, period_start_date, period_end_date, is_finalized, generated_date)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(chart.Type), string(chart.Kind), chart.PeriodKey,
		chart.StartDate, chart.EndDate, chart.Finalized,
		time.Now().Format(scrobbleTimeFormat))
	if err != nil {
		return nil, fmt.Errorf("inserting chart %s/%s/%s: %w", chart.Type, chart.Kind, chart.PeriodKey, err)
	}

	chartID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("inserting chart: %w", err)
	}

	if err := insertEntries(tx, chartID, entries); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing chart: %w", err)
	}

	created := *chart
	created.ID = chartID
	return &created, nil
}

// Entries returns a chart's entries ordered by position.
func (s *Store) Entries(chartID int64) ([]ChartEntry, error) {
	rows, err := s.db.Query(`
	SELECT id, chart_id, position, song_id, album_id, play_count
	FROM ChartEntry WHERE chart_id = ? ORDER BY position ASC`, chartID)
	if err != nil {
		return nil, fmt.Errorf("querying entries for chart %d: %w", chartID, err)
	}
	defer rows.Close()

	var entries []ChartEntry
	for rows.Next() {
		var e ChartEntry
		var songID, albumID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.ChartID, &e.Position, &songID, &albumID, &e.PlayCount); err != nil {
			return nil, err
		}
		e.SongID = songID.Int64
		e.AlbumID = albumID.Int64
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountEntries counts a chart's entries.
func (s *Store) CountEntries(chartID int64) (int, error) {
	row := s.db.QueryRow("SELECT COUNT(*) FROM ChartEntry WHERE chart_id = ?", chartID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries for chart %d: %w", chartID, err)
	}
	return n, nil
}

// ReplaceEntries deletes a chart's entries and inserts the supplied set in
// one transaction.
func (s *Store) ReplaceEntries(chartID int64, entries []ChartEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM ChartEntry WHERE chart_id = ?", chartID); err != nil {
		return fmt.Errorf("deleting entries for chart %d: %w", chartID, err)
	}

	if err := insertEntries(tx, chartID, entries); err != nil {
		return err
	}

	return tx.Commit()
}

// FinalizePair flips both charts to finalized in one transaction; either
// both become final or neither does.
func (s *Store) FinalizePair(songChartID, albumChartID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range []int64{songChartID, albumChartID} {
		if _, err := tx.Exec("UPDATE Chart SET is_finalized = 1 WHERE id = ?", id); err != nil {
			return fmt.Errorf("finalizing chart %d: %w", id, err)
		}
	}

	return tx.Commit()
}

// EntryHistory returns every appearance of an item across the (type, kind)
// lineage, ordered by period start date ascending. Gaps are legal; only
// periods where the item actually charted are returned.
func (s *Store) EntryHistory(t ChartType, kind period.Kind, itemID int64) ([]HistoryPoint, error) {
	query := fmt.Sprintf(`
	SELECT c.period_key, c.period_start_date, c.period_end_date, ce.position, ce.play_count
	FROM ChartEntry ce
	INNER JOIN Chart c ON ce.chart_id = c.id
	WHERE ce.%s = ? AND c.chart_type = ? AND c.period_type = ?
	ORDER BY c.period_start_date ASC`, itemColumn(t))

	rows, err := s.db.Query(query, itemID, string(t), string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying entry history for %s %d: %w", t, itemID, err)
	}
	defer rows.Close()

	var history []HistoryPoint
	for rows.Next() {
		var h HistoryPoint
		if err := rows.Scan(&h.PeriodKey, &h.StartDate, &h.EndDate, &h.Position, &h.PlayCount); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func insertEntries(tx *sql.Tx, chartID int64, entries []ChartEntry) error {
	for _, e := range entries {
		_, err := tx.Exec(`
		INSERT INTO ChartEntry (chart_id, position, song_id, album_id, play_count)
		VALUES (?, ?, ?, ?, ?)`,
			chartID, e.Position, nullableID(e.SongID), nullableID(e.AlbumID), e.PlayCount)
		if err != nil {
			return fmt.Errorf("inserting entry at position %d: %w", e.Position, err)
		}
	}
	return nil
}

func itemColumn(t ChartType) string {
	if t == AlbumChart {
		return "album_id"
	}
	return "song_id"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChart(row rowScanner) (*Chart, error) {
	var c Chart
	var generated sql.NullString
	err := row.Scan(&c.ID, &c.Type, &c.Kind, &c.PeriodKey, &c.StartDate, &c.EndDate, &c.Finalized, &generated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chart: %w", err)
	}
	c.GeneratedDate = generated.String
	return &c, nil
}
