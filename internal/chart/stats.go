package chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/isc-eagr/music-stats-sub000/internal/period"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

// ReEntry is the LastPosition sentinel for an item returning to the chart
// after at least one week off it. A LastPosition of zero means the item is
// brand new to the chart; a positive value is its position last week.
const ReEntry = -1

// Stats derives comparative statistics from persisted chart entries. All
// methods are read-only; they replay an item's entry history in memory and
// never touch the scrobble log.
type Stats struct {
	store *store.Store
}

func NewStats(s *store.Store) *Stats {
	return &Stats{store: s}
}

// EntryStats is one chart entry augmented with movement data.
type EntryStats struct {
	Position  int
	SongID    int64
	AlbumID   int64
	Title     string
	Artist    string
	Album     string
	PlayCount int64

	// LastPosition is the item's position on the immediately preceding
	// chart, ReEntry (-1) for a re-entry, or 0 for a brand-new entry.
	LastPosition  int
	LastPlayCount int64

	PeakPosition int
	TimesAtPeak  int
	WeeksOnChart int
}

// ChartWithStats returns a weekly chart's entries augmented with last-week
// movement, re-entry flags, and peak/weeks-on-chart rollups.
func (s *Stats) ChartWithStats(t store.ChartType, periodKey string) ([]EntryStats, error) {
	chart, err := s.store.GetChart(t, period.Weekly, periodKey)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.Entries(chart.ID)
	if err != nil {
		return nil, err
	}

	prevKey := ""
	prevEntries := make(map[int64]store.ChartEntry)
	prev, err := s.store.PreviousChart(t, period.Weekly, periodKey)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		prevKey = prev.PeriodKey
		rows, err := s.store.Entries(prev.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range rows {
			prevEntries[e.ItemID()] = e
		}
	}

	result := make([]EntryStats, 0, len(entries))
	for _, e := range entries {
		es := EntryStats{
			Position:  e.Position,
			SongID:    e.SongID,
			AlbumID:   e.AlbumID,
			PlayCount: e.PlayCount,
		}
		if err := s.fillNames(t, &es); err != nil {
			return nil, err
		}

		itemID := e.ItemID()
		history, err := s.historyThrough(t, itemID, chart.StartDate)
		if err != nil {
			return nil, err
		}

		if last, ok := prevEntries[itemID]; ok {
			es.LastPosition = last.Position
			es.LastPlayCount = last.PlayCount
		} else if wasOnEarlierChart(history, chart.StartDate, prevKey) {
			es.LastPosition = ReEntry
		}

		if len(history) == 0 {
			es.PeakPosition = e.Position
			es.TimesAtPeak = 1
			es.WeeksOnChart = 1
		} else {
			es.PeakPosition, es.TimesAtPeak = peakOf(history)
			es.WeeksOnChart = len(history)
		}

		result = append(result, es)
	}

	return result, nil
}

// RunWeek is one period within an item's chart run: either a position or an
// off-chart gap.
type RunWeek struct {
	PeriodKey string
	Position  int
	OnChart   bool
	Current   bool
	DateRange string
}

// ChartRun is an item's full trajectory from its first appearance through a
// reference period, including the weeks it spent off the chart in between.
type ChartRun struct {
	ItemID int64
	Title  string
	Artist string

	Weeks []RunWeek

	WeeksAtTop1  int
	WeeksAtTop5  int
	WeeksAtTop10 int
	WeeksAtTop20 int

	TotalWeeksOnChart int
	PeakPosition      int
}

// Run reconstructs an item's chart run up to and including the given period.
// Returns ErrNotFound if the reference chart doesn't exist or the item has
// never charted by then.
func (s *Stats) Run(t store.ChartType, itemID int64, periodKey string) (*ChartRun, error) {
	charts, err := s.store.ChartsAsc(t, period.Weekly)
	if err != nil {
		return nil, err
	}

	history, err := s.store.EntryHistory(t, period.Weekly, itemID)
	if err != nil {
		return nil, err
	}
	positions := make(map[string]int, len(history))
	for _, h := range history {
		positions[h.PeriodKey] = h.Position
	}

	first, current := -1, -1
	for i, c := range charts {
		if _, ok := positions[c.PeriodKey]; ok && first == -1 {
			first = i
		}
		if c.PeriodKey == periodKey {
			current = i
		}
	}
	if first == -1 || current == -1 || first > current {
		return nil, store.ErrNotFound
	}

	run := &ChartRun{ItemID: itemID}
	if err := s.fillRunNames(t, run); err != nil {
		return nil, err
	}

	for i := first; i <= current; i++ {
		c := charts[i]
		pos, onChart := positions[c.PeriodKey]
		run.Weeks = append(run.Weeks, RunWeek{
			PeriodKey: c.PeriodKey,
			Position:  pos,
			OnChart:   onChart,
			Current:   c.PeriodKey == periodKey,
			DateRange: formatChartDates(c),
		})

		if !onChart {
			continue
		}
		run.TotalWeeksOnChart++
		if pos <= 1 {
			run.WeeksAtTop1++
		}
		if pos <= 5 {
			run.WeeksAtTop5++
		}
		if pos <= 10 {
			run.WeeksAtTop10++
		}
		if pos <= 20 {
			run.WeeksAtTop20++
		}
		if run.PeakPosition == 0 || pos < run.PeakPosition {
			run.PeakPosition = pos
		}
	}

	return run, nil
}

// ItemStats is the compact peak/weeks rollup shown on detail pages.
type ItemStats struct {
	TotalWeeks   int
	PeakPosition int
	WeeksAtPeak  int
}

// ItemWeeklyStats summarizes an item's complete weekly lineage. An item that
// never charted yields the zero value, not an error.
func (s *Stats) ItemWeeklyStats(t store.ChartType, itemID int64) (ItemStats, error) {
	history, err := s.store.EntryHistory(t, period.Weekly, itemID)
	if err != nil {
		return ItemStats{}, err
	}
	if len(history) == 0 {
		return ItemStats{}, nil
	}

	peak, atPeak := peakOf(history)
	return ItemStats{
		TotalWeeks:   len(history),
		PeakPosition: peak,
		WeeksAtPeak:  atPeak,
	}, nil
}

// ItemHistory is an item's cross-period rollup including when it debuted and
// when it first reached its eventual peak.
type ItemHistory struct {
	ItemID int64
	Title  string
	Artist string

	PeakPosition int
	WeeksAtPeak  int
	TotalWeeks   int

	DebutKey      string
	DebutDate     string
	FirstPeakKey  string
	FirstPeakDate string
}

// ItemChartHistory builds the full rollup for an item. Returns ErrNotFound
// for items that never charted.
func (s *Stats) ItemChartHistory(t store.ChartType, itemID int64) (*ItemHistory, error) {
	history, err := s.store.EntryHistory(t, period.Weekly, itemID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, store.ErrNotFound
	}

	peak, atPeak := peakOf(history)

	ih := &ItemHistory{
		ItemID:       itemID,
		PeakPosition: peak,
		WeeksAtPeak:  atPeak,
		TotalWeeks:   len(history),
		DebutKey:     history[0].PeriodKey,
		DebutDate:    formatHistoryDate(history[0].EndDate),
	}

	for _, h := range history {
		if h.Position == peak {
			ih.FirstPeakKey = h.PeriodKey
			ih.FirstPeakDate = formatHistoryDate(h.EndDate)
			break
		}
	}

	if t == store.AlbumChart {
		album, artist, err := s.store.AlbumDisplay(itemID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		ih.Title, ih.Artist = album, artist
	} else {
		song, artist, _, err := s.store.SongDisplay(itemID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		ih.Title, ih.Artist = song, artist
	}

	return ih, nil
}

// historyThrough returns the item's entry history clipped to charts whose
// period starts on or before the given date. Date strings compare correctly
// as text.
func (s *Stats) historyThrough(t store.ChartType, itemID int64, startDate string) ([]store.HistoryPoint, error) {
	history, err := s.store.EntryHistory(t, period.Weekly, itemID)
	if err != nil {
		return nil, err
	}
	clipped := history[:0:0]
	for _, h := range history {
		if h.StartDate <= startDate {
			clipped = append(clipped, h)
		}
	}
	return clipped, nil
}

// wasOnEarlierChart reports whether the history contains an appearance
// strictly before the current period, excluding the immediately preceding
// chart (the caller already knows the item wasn't on that one).
func wasOnEarlierChart(history []store.HistoryPoint, currentStart, prevKey string) bool {
	for _, h := range history {
		if h.StartDate < currentStart && h.PeriodKey != prevKey {
			return true
		}
	}
	return false
}

// peakOf scans an ordered history for the minimum position and how many
// entries sit at it.
func peakOf(history []store.HistoryPoint) (peak, timesAtPeak int) {
	for _, h := range history {
		switch {
		case peak == 0 || h.Position < peak:
			peak = h.Position
			timesAtPeak = 1
		case h.Position == peak:
			timesAtPeak++
		}
	}
	return peak, timesAtPeak
}

func (s *Stats) fillNames(t store.ChartType, es *EntryStats) error {
	if t == store.AlbumChart {
		album, artist, err := s.store.AlbumDisplay(es.AlbumID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("resolving album %d: %w", es.AlbumID, err)
		}
		es.Title, es.Artist = album, artist
		return nil
	}

	song, artist, album, err := s.store.SongDisplay(es.SongID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("resolving song %d: %w", es.SongID, err)
	}
	es.Title, es.Artist, es.Album = song, artist, album
	return nil
}

func (s *Stats) fillRunNames(t store.ChartType, run *ChartRun) error {
	if t == store.AlbumChart {
		album, artist, err := s.store.AlbumDisplay(run.ItemID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		run.Title, run.Artist = album, artist
		return nil
	}

	song, artist, _, err := s.store.SongDisplay(run.ItemID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	run.Title, run.Artist = song, artist
	return nil
}

func formatChartDates(c *store.Chart) string {
	start, err1 := time.Parse("2006-01-02", c.StartDate)
	end, err2 := time.Parse("2006-01-02", c.EndDate)
	if err1 != nil || err2 != nil {
		return c.StartDate + " - " + c.EndDate
	}
	return period.FormatRange(start, end)
}

func formatHistoryDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("02-Jan-2006")
}
