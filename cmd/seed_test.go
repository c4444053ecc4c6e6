package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

func TestSeedFromCsv(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	viper.Set("database", dbPath)
	t.Cleanup(func() { viper.Set("database", "") })

	csvPath := filepath.Join(dir, "scrobbles.csv")
	content := "Radiohead,OK Computer,Airbag,2024-03-05 10:00:00\n" +
		"Radiohead,OK Computer,Airbag,2024-03-05 11:00:00\n" +
		"Radiohead,,True Love Waits,2024-03-06 09:30:00\n"
	if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	if err := seedFromCsv(csvPath); err != nil {
		t.Fatalf("seedFromCsv: %v", err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer s.Close()

	start := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	songs, err := s.TopSongs(start, end, 10)
	if err != nil {
		t.Fatalf("TopSongs: %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("got %d songs, want 2", len(songs))
	}
	if songs[0].PlayCount != 2 {
		t.Errorf("top song has %d plays, want 2", songs[0].PlayCount)
	}

	albums, err := s.TopAlbums(start, end, 10)
	if err != nil {
		t.Fatalf("TopAlbums: %v", err)
	}
	// The albumless single stays off the album aggregation.
	if len(albums) != 1 || albums[0].PlayCount != 2 {
		t.Fatalf("got %+v, want one album with 2 plays", albums)
	}
}

func TestSeedFromCsv_badTimestamp(t *testing.T) {
	dir := t.TempDir()
	viper.Set("database", filepath.Join(dir, "test.db"))
	t.Cleanup(func() { viper.Set("database", "") })

	csvPath := filepath.Join(dir, "scrobbles.csv")
	if err := os.WriteFile(csvPath, []byte("A,B,C,yesterday\n"), 0644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	if err := seedFromCsv(csvPath); err == nil {
		t.Error("invalid timestamp accepted")
	}
}
