package chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/isc-eagr/music-stats-sub000/internal/period"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

// Curator runs the manual workflow for seasonal and yearly charts, which are
// hand-ranked rather than derived from play counts. Charts move from draft to
// finalized exactly once; a finalized chart never becomes editable again.
type Curator struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewCurator(s *store.Store, log zerolog.Logger) *Curator {
	return &Curator{store: s, log: log, now: time.Now}
}

// CuratedEntry is one manually ranked slot submitted by a caller. Entries
// with a zero position or item id are skipped on save, so sparse forms can
// be submitted as-is.
type CuratedEntry struct {
	Position int
	ItemID   int64
}

// EnsureDraft idempotently creates (or fetches) both the song and album chart
// rows for a seasonal or yearly period. Drafts start with zero entries.
func (c *Curator) EnsureDraft(kind period.Kind, periodKey string) (song, album *store.Chart, err error) {
	if kind != period.Seasonal && kind != period.Yearly {
		return nil, nil, validationErrorf("drafts are only for seasonal or yearly charts, not %q", kind)
	}

	start, end, err := period.Range(kind, periodKey)
	if err != nil {
		return nil, nil, err
	}

	song, err = c.ensureDraftChart(store.SongChart, kind, periodKey, start, end)
	if err != nil {
		return nil, nil, err
	}
	album, err = c.ensureDraftChart(store.AlbumChart, kind, periodKey, start, end)
	if err != nil {
		return nil, nil, err
	}
	return song, album, nil
}

func (c *Curator) ensureDraftChart(t store.ChartType, kind period.Kind, key string, start, end time.Time) (*store.Chart, error) {
	existing, err := c.store.GetChart(t, kind, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing %s chart: %w", t, err)
	}

	created, err := c.store.CreateChartWithEntries(&store.Chart{
		Type:      t,
		Kind:      kind,
		PeriodKey: key,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("creating draft %s chart for %s: %w", t, key, err)
	}

	c.log.Info().Str("type", string(t)).Str("kind", string(kind)).Str("period", key).Msg("created draft chart")
	return created, nil
}

// SaveEntries replaces the full entry set of a draft chart. The call is
// rejected if the chart is finalized or if the same item appears twice;
// validation happens before any write.
func (c *Curator) SaveEntries(chartID int64, entries []CuratedEntry) error {
	chart, err := c.store.GetChartByID(chartID)
	if err != nil {
		return fmt.Errorf("loading chart %d: %w", chartID, err)
	}
	if chart.Finalized {
		return validationErrorf("chart %s (%s) is finalized and cannot be modified", chart.PeriodKey, chart.Type)
	}

	seen := make(map[int64]bool)
	rows := make([]store.ChartEntry, 0, len(entries))
	for _, e := range entries {
		if e.Position == 0 || e.ItemID == 0 {
			continue
		}
		if seen[e.ItemID] {
			return validationErrorf("duplicate %s id %d in submitted entries", chart.Type, e.ItemID)
		}
		seen[e.ItemID] = true

		// Curated charts do not derive from play counts.
		row := store.ChartEntry{Position: e.Position, PlayCount: 0}
		if chart.Type == store.AlbumChart {
			row.AlbumID = e.ItemID
		} else {
			row.SongID = e.ItemID
		}
		rows = append(rows, row)
	}

	if err := c.store.ReplaceEntries(chartID, rows); err != nil {
		return fmt.Errorf("replacing entries for chart %d: %w", chartID, err)
	}

	c.log.Info().Int64("chart", chartID).Int("entries", len(rows)).Msg("saved curated entries")
	return nil
}

// Finalize flips a period's song and album charts to finalized together.
// Both the period and the entry-count thresholds are checked first; if either
// chart falls short, neither is finalized.
func (c *Curator) Finalize(songChartID, albumChartID int64, kind period.Kind) error {
	songChart, err := c.store.GetChartByID(songChartID)
	if err != nil {
		return fmt.Errorf("loading song chart %d: %w", songChartID, err)
	}
	albumChart, err := c.store.GetChartByID(albumChartID)
	if err != nil {
		return fmt.Errorf("loading album chart %d: %w", albumChartID, err)
	}

	if songChart.PeriodKey != albumChart.PeriodKey {
		return validationErrorf("charts %d and %d belong to different periods (%s vs %s)",
			songChartID, albumChartID, songChart.PeriodKey, albumChart.PeriodKey)
	}

	periodKey := songChart.PeriodKey
	complete, err := period.IsComplete(kind, periodKey, c.now())
	if err != nil {
		return err
	}
	if !complete {
		return validationErrorf(
			"cannot finalize %s: the period ends on %s; wait until after that date",
			periodKey, songChart.EndDate)
	}

	requiredAlbums := SeasonalAlbumsCount
	if kind == period.Yearly {
		requiredAlbums = YearlyAlbumsCount
	}

	songCount, err := c.store.CountEntries(songChartID)
	if err != nil {
		return err
	}
	if songCount < SeasonalYearlySongsCount {
		return validationErrorf(
			"cannot finalize %s: song chart needs %d entries but has %d",
			periodKey, SeasonalYearlySongsCount, songCount)
	}

	albumCount, err := c.store.CountEntries(albumChartID)
	if err != nil {
		return err
	}
	if albumCount < requiredAlbums {
		return validationErrorf(
			"cannot finalize %s: album chart needs %d entries but has %d",
			periodKey, requiredAlbums, albumCount)
	}

	if err := c.store.FinalizePair(songChartID, albumChartID); err != nil {
		return fmt.Errorf("finalizing charts for %s: %w", periodKey, err)
	}

	c.log.Info().Str("kind", string(kind)).Str("period", periodKey).Msg("finalized charts")
	return nil
}
