package chart

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/isc-eagr/music-stats-sub000/internal/period"
	"github.com/isc-eagr/music-stats-sub000/internal/store"
)

type weeklyGenerator interface {
	GenerateBoth(periodKey string) error
}

// Progress is a snapshot of a running or finished backfill session.
type Progress struct {
	Total            int
	Completed        int
	CurrentPeriodKey string
	Complete         bool
	Err              error
}

// Coordinator fills in weekly charts for every completed week that has
// scrobbles but no chart yet. A backfill runs in the background and is polled
// by session id.
type Coordinator struct {
	store   *store.Store
	gen     weeklyGenerator
	log     zerolog.Logger
	now     func() time.Time
	limiter *rate.Limiter

	mu       sync.Mutex
	sessions map[string]*Progress
}

func NewCoordinator(s *store.Store, gen weeklyGenerator, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store: s,
		gen:   gen,
		log:   log,
		now:   time.Now,
		// Generation is all local SQLite work; the limiter just keeps a
		// large backfill from monopolizing the database file.
		limiter:  rate.NewLimiter(rate.Every(10*time.Millisecond), 1),
		sessions: make(map[string]*Progress),
	}
}

// MissingCompletedWeeks lists the weeks that have scrobbles but no song chart,
// oldest first. Weeks still in progress are excluded, as are leading partial
// weeks before a year's first Monday.
func (c *Coordinator) MissingCompletedWeeks() ([]string, error) {
	weeks, err := c.store.WeeksWithScrobbles()
	if err != nil {
		return nil, err
	}

	existing, err := c.store.PeriodKeys(store.SongChart, period.Weekly)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, k := range existing {
		have[k] = true
	}

	today := c.now()
	var missing []string
	for _, week := range weeks {
		if have[week] || strings.HasSuffix(week, "-W00") {
			continue
		}
		complete, err := period.IsComplete(period.Weekly, week, today)
		if err != nil || !complete {
			continue
		}
		missing = append(missing, week)
	}
	return missing, nil
}

// Start launches a backfill over all missing completed weeks and returns a
// session id for polling. Individual weeks that keep failing are logged and
// skipped; the session always runs to the end of the list.
func (c *Coordinator) Start() (string, error) {
	missing, err := c.MissingCompletedWeeks()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	c.mu.Lock()
	c.sessions[id] = &Progress{Total: len(missing)}
	c.mu.Unlock()

	go c.run(id, missing)
	return id, nil
}

func (c *Coordinator) run(id string, weeks []string) {
	for _, week := range weeks {
		c.setCurrent(id, week)
		if err := c.limiter.Wait(context.Background()); err != nil {
			c.log.Error().Err(err).Msg("backfill limiter wait failed")
		}

		err := retry.Do(
			func() error { return c.gen.GenerateBoth(week) },
			retry.Attempts(3),
			retry.Delay(100*time.Millisecond),
		)
		if err != nil {
			c.log.Error().Err(err).Str("period", week).Msg("backfill failed for week, skipping")
			c.recordErr(id, err)
		}
		c.advance(id)
	}
	c.finish(id)
	c.log.Info().Str("session", id).Int("weeks", len(weeks)).Msg("backfill finished")
}

// Progress returns a snapshot of the session. The second return is false for
// unknown or cleaned-up sessions.
func (c *Coordinator) Progress(id string) (Progress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.sessions[id]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// Cleanup drops a finished session's progress record.
func (c *Coordinator) Cleanup(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
}

func (c *Coordinator) setCurrent(id, week string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.sessions[id]; ok {
		p.CurrentPeriodKey = week
	}
}

func (c *Coordinator) recordErr(id string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.sessions[id]; ok {
		p.Err = err
	}
}

func (c *Coordinator) advance(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.sessions[id]; ok {
		p.Completed++
	}
}

func (c *Coordinator) finish(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.sessions[id]; ok {
		p.Complete = true
		p.CurrentPeriodKey = ""
	}
}
