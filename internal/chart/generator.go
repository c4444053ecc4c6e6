package chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/isc-eagr/music-stats-sub000/internal/period"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

// Generator computes automatic weekly charts from scrobble aggregates.
// Generation is idempotent per (type, period): an existing chart is returned
// untouched, so the generator is safe to call speculatively or retry blindly.
type Generator struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewGenerator(s *store.Store, log zerolog.Logger) *Generator {
	return &Generator{store: s, log: log, now: time.Now}
}

// Generate computes and persists the weekly chart of the given type for the
// period key. If the chart already exists it is returned unchanged, with no
// re-aggregation.
func (g *Generator) Generate(t store.ChartType, periodKey string) (*store.Chart, error) {
	existing, err := g.store.GetChart(t, period.Weekly, periodKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing chart: %w", err)
	}

	start, end, err := period.WeekRange(periodKey)
	if err != nil {
		return nil, err
	}

	counts, err := g.aggregate(t, start, end)
	if err != nil {
		return nil, fmt.Errorf("aggregating plays for %s: %w", periodKey, err)
	}

	entries := make([]store.ChartEntry, 0, len(counts))
	for i, c := range counts {
		e := store.ChartEntry{Position: i + 1, PlayCount: c.PlayCount}
		if t == store.AlbumChart {
			e.AlbumID = c.ItemID
		} else {
			e.SongID = c.ItemID
		}
		entries = append(entries, e)
	}

	chart := &store.Chart{
		Type:      t,
		Kind:      period.Weekly,
		PeriodKey: periodKey,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		// Weekly charts are final at creation: generation only happens
		// after the week is over.
		Finalized: true,
	}

	created, err := g.store.CreateChartWithEntries(chart, entries)
	if err != nil {
		return nil, fmt.Errorf("persisting %s chart for %s: %w", t, periodKey, err)
	}

	g.log.Info().
		Str("type", string(t)).
		Str("period", periodKey).
		Int("entries", len(entries)).
		Msg("generated weekly chart")

	return created, nil
}

// GenerateBoth generates the song and album charts for a week, refusing to
// run at all while the week is still in progress.
func (g *Generator) GenerateBoth(periodKey string) error {
	if err := g.checkComplete(periodKey); err != nil {
		return err
	}

	if _, err := g.Generate(store.SongChart, periodKey); err != nil {
		return err
	}
	if _, err := g.Generate(store.AlbumChart, periodKey); err != nil {
		return err
	}
	return nil
}

// GenerateOne is GenerateBoth limited to a single chart type.
func (g *Generator) GenerateOne(t store.ChartType, periodKey string) error {
	if err := g.checkComplete(periodKey); err != nil {
		return err
	}
	_, err := g.Generate(t, periodKey)
	return err
}

func (g *Generator) checkComplete(periodKey string) error {
	complete, err := period.IsComplete(period.Weekly, periodKey, g.now())
	if err != nil {
		return err
	}
	if !complete {
		_, end, _ := period.WeekRange(periodKey)
		return validationErrorf(
			"cannot generate chart for week %s: the week ends on %s; wait until after that date",
			periodKey, end.Format("2006-01-02"))
	}
	return nil
}

func (g *Generator) aggregate(t store.ChartType, start, end time.Time) ([]store.ItemCount, error) {
	if t == store.AlbumChart {
		return g.store.TopAlbums(start, end, TopAlbumsCount)
	}
	return g.store.TopSongs(start, end, TopSongsCount)
}
