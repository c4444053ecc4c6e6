package chart

import (
	"errors"
	"testing"

	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

func TestChartWithStats_movement(t *testing.T) {
	s := createTestStore(t)
	stats := NewStats(s)

	steady := createSong(t, s, "Artist", "Album", "Steady")
	returning := createSong(t, s, "Artist", "Album", "Returning")
	debut := createSong(t, s, "Artist", "Album", "Debut")

	createWeeklyChart(t, s, store.SongChart, "2024-W10", []store.ChartEntry{
		songEntry(1, returning, 12),
		songEntry(5, steady, 6),
	})
	createWeeklyChart(t, s, store.SongChart, "2024-W11", []store.ChartEntry{
		songEntry(2, steady, 9),
	})
	createWeeklyChart(t, s, store.SongChart, "2024-W12", []store.ChartEntry{
		songEntry(1, debut, 15),
		songEntry(2, steady, 10),
		songEntry(3, returning, 8),
	})

	entries, err := stats.ChartWithStats(store.SongChart, "2024-W12")
	if err != nil {
		t.Fatalf("ChartWithStats: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	byID := make(map[int64]EntryStats)
	for _, e := range entries {
		byID[e.SongID] = e
	}

	d := byID[debut]
	if d.LastPosition != 0 {
		t.Errorf("debut LastPosition = %d, want 0", d.LastPosition)
	}
	if d.WeeksOnChart != 1 || d.PeakPosition != 1 {
		t.Errorf("debut weeks/peak = %d/%d, want 1/1", d.WeeksOnChart, d.PeakPosition)
	}

	st := byID[steady]
	if st.LastPosition != 2 || st.LastPlayCount != 9 {
		t.Errorf("steady last position/plays = %d/%d, want 2/9", st.LastPosition, st.LastPlayCount)
	}
	if st.PeakPosition != 2 || st.TimesAtPeak != 2 {
		t.Errorf("steady peak/timesAtPeak = %d/%d, want 2/2", st.PeakPosition, st.TimesAtPeak)
	}
	if st.WeeksOnChart != 3 {
		t.Errorf("steady WeeksOnChart = %d, want 3", st.WeeksOnChart)
	}

	r := byID[returning]
	if r.LastPosition != ReEntry {
		t.Errorf("returning LastPosition = %d, want %d (re-entry)", r.LastPosition, ReEntry)
	}
	if r.PeakPosition != 1 || r.WeeksOnChart != 2 {
		t.Errorf("returning peak/weeks = %d/%d, want 1/2", r.PeakPosition, r.WeeksOnChart)
	}
	if r.Title != "Returning" || r.Artist != "Artist" {
		t.Errorf("returning names = %q/%q", r.Title, r.Artist)
	}
}

func TestChartWithStats_statsIgnoreLaterWeeks(t *testing.T) {
	s := createTestStore(t)
	stats := NewStats(s)

	song := createSong(t, s, "Artist", "Album", "Song")
	createWeeklyChart(t, s, store.SongChart, "2024-W10", []store.ChartEntry{songEntry(4, song, 5)})
	createWeeklyChart(t, s, store.SongChart, "2024-W11", []store.ChartEntry{songEntry(1, song, 9)})

	entries, err := stats.ChartWithStats(store.SongChart, "2024-W10")
	if err != nil {
		t.Fatalf("ChartWithStats: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	// Viewed as of W10, the later number-one week doesn't exist yet.
	if entries[0].PeakPosition != 4 || entries[0].WeeksOnChart != 1 {
		t.Errorf("peak/weeks = %d/%d, want 4/1", entries[0].PeakPosition, entries[0].WeeksOnChart)
	}
}

func TestRun(t *testing.T) {
	s := createTestStore(t)
	stats := NewStats(s)

	song := createSong(t, s, "Artist", "Album", "Song")
	other := createSong(t, s, "Artist", "Album", "Other")

	createWeeklyChart(t, s, store.SongChart, "2024-W10", []store.ChartEntry{songEntry(1, song, 10)})
	createWeeklyChart(t, s, store.SongChart, "2024-W11", []store.ChartEntry{songEntry(1, other, 7)})
	createWeeklyChart(t, s, store.SongChart, "2024-W12", []store.ChartEntry{
		songEntry(4, other, 9),
		songEntry(8, song, 6),
	})

	run, err := stats.Run(store.SongChart, song, "2024-W12")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(run.Weeks) != 3 {
		t.Fatalf("got %d run weeks, want 3", len(run.Weeks))
	}
	if !run.Weeks[0].OnChart || run.Weeks[0].Position != 1 {
		t.Errorf("week 0 = %+v, want position 1", run.Weeks[0])
	}
	if run.Weeks[1].OnChart {
		t.Errorf("week 1 should be an off-chart gap: %+v", run.Weeks[1])
	}
	if !run.Weeks[2].Current || run.Weeks[2].Position != 8 {
		t.Errorf("week 2 = %+v, want current at position 8", run.Weeks[2])
	}

	if run.TotalWeeksOnChart != 2 {
		t.Errorf("TotalWeeksOnChart = %d, want 2", run.TotalWeeksOnChart)
	}
	if run.WeeksAtTop1 != 1 || run.WeeksAtTop5 != 1 || run.WeeksAtTop10 != 2 || run.WeeksAtTop20 != 2 {
		t.Errorf("top rollups = %d/%d/%d/%d, want 1/1/2/2",
			run.WeeksAtTop1, run.WeeksAtTop5, run.WeeksAtTop10, run.WeeksAtTop20)
	}
	if run.PeakPosition != 1 {
		t.Errorf("PeakPosition = %d, want 1", run.PeakPosition)
	}
	if run.Title != "Song" {
		t.Errorf("Title = %q, want Song", run.Title)
	}
}

func TestRun_neverCharted(t *testing.T) {
	s := createTestStore(t)
	stats := NewStats(s)

	song := createSong(t, s, "Artist", "Album", "Song")
	createWeeklyChart(t, s, store.SongChart, "2024-W10", nil)

	_, err := stats.Run(store.SongChart, song, "2024-W10")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestItemWeeklyStats(t *testing.T) {
	s := createTestStore(t)
	stats := NewStats(s)

	song := createSong(t, s, "Artist", "Album", "Song")
	createWeeklyChart(t, s, store.SongChart, "2024-W10", []store.ChartEntry{songEntry(5, song, 4)})
	createWeeklyChart(t, s, store.SongChart, "2024-W11", []store.ChartEntry{songEntry(2, song, 8)})
	createWeeklyChart(t, s, store.SongChart, "2024-W12", []store.ChartEntry{songEntry(2, song, 7)})

	got, err := stats.ItemWeeklyStats(store.SongChart, song)
	if err != nil {
		t.Fatalf("ItemWeeklyStats: %v", err)
	}
	want := ItemStats{TotalWeeks: 3, PeakPosition: 2, WeeksAtPeak: 2}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestItemWeeklyStats_neverCharted(t *testing.T) {
	s := createTestStore(t)
	stats := NewStats(s)

	song := createSong(t, s, "Artist", "Album", "Song")
	got, err := stats.ItemWeeklyStats(store.SongChart, song)
	if err != nil {
		t.Fatalf("ItemWeeklyStats: %v", err)
	}
	if got != (ItemStats{}) {
		t.Errorf("got %+v, want zero stats", got)
	}
}

func TestItemChartHistory(t *testing.T) {
	s := createTestStore(t)
	stats := NewStats(s)

	song := createSong(t, s, "Artist", "Album", "Song")
	createWeeklyChart(t, s, store.SongChart, "2024-W10", []store.ChartEntry{songEntry(5, song, 4)})
	createWeeklyChart(t, s, store.SongChart, "2024-W11", []store.ChartEntry{songEntry(2, song, 8)})
	createWeeklyChart(t, s, store.SongChart, "2024-W12", []store.ChartEntry{songEntry(2, song, 7)})

	ih, err := stats.ItemChartHistory(store.SongChart, song)
	if err != nil {
		t.Fatalf("ItemChartHistory: %v", err)
	}

	if ih.DebutKey != "2024-W10" {
		t.Errorf("DebutKey = %s, want 2024-W10", ih.DebutKey)
	}
	// W10 of 2024 ends Sunday March 10.
	if ih.DebutDate != "10-Mar-2024" {
		t.Errorf("DebutDate = %s, want 10-Mar-2024", ih.DebutDate)
	}
	if ih.FirstPeakKey != "2024-W11" {
		t.Errorf("FirstPeakKey = %s, want 2024-W11 (first week at peak)", ih.FirstPeakKey)
	}
	if ih.FirstPeakDate != "17-Mar-2024" {
		t.Errorf("FirstPeakDate = %s, want 17-Mar-2024", ih.FirstPeakDate)
	}
	if ih.PeakPosition != 2 || ih.WeeksAtPeak != 2 || ih.TotalWeeks != 3 {
		t.Errorf("peak/atPeak/total = %d/%d/%d, want 2/2/3", ih.PeakPosition, ih.WeeksAtPeak, ih.TotalWeeks)
	}
	if ih.Title != "Song" || ih.Artist != "Artist" {
		t.Errorf("names = %q/%q", ih.Title, ih.Artist)
	}
}

func TestItemChartHistory_neverCharted(t *testing.T) {
	s := createTestStore(t)
	stats := NewStats(s)

	song := createSong(t, s, "Artist", "Album", "Song")
	_, err := stats.ItemChartHistory(store.SongChart, song)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
