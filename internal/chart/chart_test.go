package chart

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/isc-eagr/music-stats-sub000/internal/period"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createSong(t *testing.T, s *store.Store, artist, album, title string) int64 {
	t.Helper()
	artistID, err := s.CreateArtist(artist)
	if err != nil {
		t.Fatalf("creating artist: %v", err)
	}
	var albumID int64
	if album != "" {
		albumID, err = s.CreateAlbum(artistID, album)
		if err != nil {
			t.Fatalf("creating album: %v", err)
		}
	}
	songID, err := s.CreateSong(artistID, albumID, title)
	if err != nil {
		t.Fatalf("creating song: %v", err)
	}
	return songID
}

func createAlbum(t *testing.T, s *store.Store, artist, album string) int64 {
	t.Helper()
	artistID, err := s.CreateArtist(artist)
	if err != nil {
		t.Fatalf("creating artist: %v", err)
	}
	albumID, err := s.CreateAlbum(artistID, album)
	if err != nil {
		t.Fatalf("creating album: %v", err)
	}
	return albumID
}

// scrobbleTimes spaces n plays a minute apart starting at base.
func scrobbleTimes(base time.Time, n int) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Minute)
	}
	return times
}

func addScrobbles(t *testing.T, s *store.Store, songID int64, times []time.Time) {
	t.Helper()
	if err := s.AddScrobbles(songID, times); err != nil {
		t.Fatalf("adding scrobbles: %v", err)
	}
}

func createWeeklyChart(t *testing.T, s *store.Store, ct store.ChartType, key string, entries []store.ChartEntry) *store.Chart {
	t.Helper()
	start, end, err := period.WeekRange(key)
	if err != nil {
		t.Fatalf("resolving week %s: %v", key, err)
	}
	c, err := s.CreateChartWithEntries(&store.Chart{
		Type:      ct,
		Kind:      period.Weekly,
		PeriodKey: key,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Finalized: true,
	}, entries)
	if err != nil {
		t.Fatalf("creating chart for %s: %v", key, err)
	}
	return c
}

func songEntry(position int, songID, playCount int64) store.ChartEntry {
	return store.ChartEntry{Position: position, SongID: songID, PlayCount: playCount}
}
