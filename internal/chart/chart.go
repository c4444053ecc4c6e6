// Package chart turns the scrobble log into Billboard-style rankings: it
// generates weekly charts, tracks each item's trajectory across weeks, and
// runs the curation workflow for seasonal and yearly charts.
package chart

import "fmt"

// Chart sizes and finalization thresholds.
const (
	TopSongsCount  = 20
	TopAlbumsCount = 10

	SeasonalYearlySongsCount = 30
	SeasonalAlbumsCount      = 5
	YearlyAlbumsCount        = 10
)

// ValidationError marks an operation rejected on its inputs or timing, as
// opposed to a storage failure or a missing record.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
