package chart

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/isc-eagr/music-stats-sub000/internal/period"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

// brokenWeekGen delegates to a real generator but always fails one week.
type brokenWeekGen struct {
	gen     *Generator
	failKey string
}

func (b *brokenWeekGen) GenerateBoth(periodKey string) error {
	if periodKey == b.failKey {
		return errors.New("simulated generation failure")
	}
	return b.gen.GenerateBoth(periodKey)
}

func waitForBackfill(t *testing.T, c *Coordinator, id string) Progress {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		p, ok := c.Progress(id)
		if !ok {
			t.Fatalf("session %s disappeared", id)
		}
		if p.Complete {
			return p
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("backfill did not finish in time")
	return Progress{}
}

func TestMissingCompletedWeeks(t *testing.T) {
	s := createTestStore(t)
	gen := NewGenerator(s, zerolog.Nop())
	c := NewCoordinator(s, gen, zerolog.Nop())

	song := createSong(t, s, "Artist", "Album", "Song")
	for _, base := range []time.Time{
		time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),  // 2024-W10
		time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC), // 2024-W11
		time.Date(2024, time.March, 19, 10, 0, 0, 0, time.UTC), // 2024-W12
	} {
		addScrobbles(t, s, song, scrobbleTimes(base, 2))
	}
	// A play in the current, unfinished week must stay out of the list.
	addScrobbles(t, s, song, []time.Time{time.Now()})

	if _, err := gen.Generate(store.SongChart, "2024-W11"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	missing, err := c.MissingCompletedWeeks()
	if err != nil {
		t.Fatalf("MissingCompletedWeeks: %v", err)
	}
	want := []string{"2024-W10", "2024-W12"}
	if len(missing) != len(want) {
		t.Fatalf("got %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("got %v, want %v", missing, want)
		}
	}
}

func TestMissingCompletedWeeks_skipsPartialLeadingWeek(t *testing.T) {
	s := createTestStore(t)
	gen := NewGenerator(s, zerolog.Nop())
	c := NewCoordinator(s, gen, zerolog.Nop())

	song := createSong(t, s, "Artist", "Album", "Song")
	// Jan 1-3, 2021 fall before that year's first Monday (Jan 4).
	addScrobbles(t, s, song, scrobbleTimes(time.Date(2021, time.January, 1, 10, 0, 0, 0, time.UTC), 3))

	missing, err := c.MissingCompletedWeeks()
	if err != nil {
		t.Fatalf("MissingCompletedWeeks: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("got %v, want no weeks (partial leading week excluded)", missing)
	}
}

func TestBackfill_skipsFailedWeeksAndFinishes(t *testing.T) {
	s := createTestStore(t)
	gen := NewGenerator(s, zerolog.Nop())
	c := NewCoordinator(s, &brokenWeekGen{gen: gen, failKey: "2024-W11"}, zerolog.Nop())

	song := createSong(t, s, "Artist", "Album", "Song")
	for _, base := range []time.Time{
		time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 19, 10, 0, 0, 0, time.UTC),
	} {
		addScrobbles(t, s, song, scrobbleTimes(base, 2))
	}

	id, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	p := waitForBackfill(t, c, id)
	if p.Total != 3 || p.Completed != 3 {
		t.Errorf("progress = %d/%d, want 3/3 (failed weeks still advance)", p.Completed, p.Total)
	}
	if p.Err == nil {
		t.Error("progress should record the failed week's error")
	}

	for _, week := range []string{"2024-W10", "2024-W12"} {
		if _, err := s.GetChart(store.SongChart, period.Weekly, week); err != nil {
			t.Errorf("chart for %s missing after backfill: %v", week, err)
		}
	}
	if _, err := s.GetChart(store.SongChart, period.Weekly, "2024-W11"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("failed week should have no chart, got err = %v", err)
	}
}

func TestBackfill_progressLifecycle(t *testing.T) {
	s := createTestStore(t)
	gen := NewGenerator(s, zerolog.Nop())
	c := NewCoordinator(s, gen, zerolog.Nop())

	if _, ok := c.Progress("no-such-session"); ok {
		t.Error("unknown session reported as present")
	}

	id, err := c.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	p := waitForBackfill(t, c, id)
	if p.Total != 0 || p.Err != nil {
		t.Errorf("empty backfill progress = %+v", p)
	}

	c.Cleanup(id)
	if _, ok := c.Progress(id); ok {
		t.Error("session still present after Cleanup")
	}
}
