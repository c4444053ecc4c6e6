// Package period maps chart period keys ("2024-W48", "2024-Winter", "2024")
// to concrete date ranges and back. All functions are pure; callers pass in
// "today" where a notion of the current date is needed.
//
// Week numbering follows SQLite's %W convention so that key derivation here
// and scrobble grouping in SQL always agree: week 01 starts on the year's
// first Monday, and the days before it (if any) are week 00.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Kind identifies the granularity of a chart period.
type Kind string

const (
	Weekly   Kind = "weekly"
	Seasonal Kind = "seasonal"
	Yearly   Kind = "yearly"
)

var (
	weekKeyPattern   = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)
	seasonKeyPattern = regexp.MustCompile(`^(\d{4})-(Winter|Spring|Summer|Fall)$`)
	yearKeyPattern   = regexp.MustCompile(`^\d{4}$`)
)

var seasons = []string{"Winter", "Spring", "Summer", "Fall"}

// KindOfKey infers the period kind from a key's shape.
func KindOfKey(key string) (Kind, error) {
	switch {
	case weekKeyPattern.MatchString(key):
		return Weekly, nil
	case seasonKeyPattern.MatchString(key):
		return Seasonal, nil
	case yearKeyPattern.MatchString(key):
		return Yearly, nil
	}
	return "", fmt.Errorf("unrecognized period key %q", key)
}

// Range resolves a period key to its inclusive [start, end] date range.
func Range(kind Kind, key string) (start time.Time, end time.Time, err error) {
	switch kind {
	case Weekly:
		return WeekRange(key)
	case Seasonal:
		return SeasonRange(key)
	case Yearly:
		return YearRange(key)
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown period kind %q", kind)
}

// WeekRange resolves a weekly key like "2024-W48".
//
// Week N spans firstMonday + (N-1)*7 days through six days later. Week 00
// spans Jan 1 through the day before the first Monday; in years where Jan 1
// is a Monday there is no week 00, and a W00 key resolves to week 01.
func WeekRange(key string) (time.Time, time.Time, error) {
	m := weekKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid weekly period key %q", key)
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])

	jan1 := date(year, time.January, 1)
	fm := firstMonday(year)

	if week == 0 {
		start := jan1
		end := fm.AddDate(0, 0, -1)
		if end.Before(start) {
			// Jan 1 is the first Monday: there is no week 00 this year.
			return fm, fm.AddDate(0, 0, 6), nil
		}
		return start, end, nil
	}

	start := fm.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6), nil
}

// SeasonRange resolves a seasonal key like "2024-Winter".
//
// Winter is named by the year it ends in: "2024-Winter" spans December 2023
// through the end of February 2024.
func SeasonRange(key string) (time.Time, time.Time, error) {
	m := seasonKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid seasonal period key %q", key)
	}
	year, _ := strconv.Atoi(m[1])

	switch m[2] {
	case "Winter":
		return date(year-1, time.December, 1), date(year, time.March, 1).AddDate(0, 0, -1), nil
	case "Spring":
		return date(year, time.March, 1), date(year, time.May, 31), nil
	case "Summer":
		return date(year, time.June, 1), date(year, time.August, 31), nil
	case "Fall":
		return date(year, time.September, 1), date(year, time.November, 30), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("invalid seasonal period key %q", key)
}

// YearRange resolves a yearly key like "2024".
func YearRange(key string) (time.Time, time.Time, error) {
	if !yearKeyPattern.MatchString(key) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid yearly period key %q", key)
	}
	year, _ := strconv.Atoi(key)
	return date(year, time.January, 1), date(year, time.December, 31), nil
}

// IsComplete reports whether the period has fully elapsed, i.e. today's date
// is strictly after the period's end date.
func IsComplete(kind Kind, key string, today time.Time) (bool, error) {
	_, end, err := Range(kind, key)
	if err != nil {
		return false, err
	}
	return truncate(today).After(end), nil
}

// KeyForDate derives the period key containing the given date.
func KeyForDate(kind Kind, d time.Time) (string, error) {
	switch kind {
	case Weekly:
		return WeekKeyForDate(d), nil
	case Seasonal:
		return SeasonKeyForDate(d), nil
	case Yearly:
		return strconv.Itoa(d.Year()), nil
	}
	return "", fmt.Errorf("unknown period kind %q", kind)
}

// WeekKeyForDate derives the weekly key containing the given date, using the
// same numbering as SQLite's strftime('%Y-W%W', ...). Days before the year's
// first Monday yield a W00 key.
func WeekKeyForDate(d time.Time) string {
	year := d.Year()
	fm := firstMonday(year)
	day := truncate(d)
	if day.Before(fm) {
		return fmt.Sprintf("%d-W00", year)
	}
	week := int(day.Sub(fm).Hours()/24)/7 + 1
	return fmt.Sprintf("%d-W%02d", year, week)
}

// CurrentWeekKey returns the key for the week containing today. Days that
// would fall into week 00 report the previous year's last week instead, since
// that week's date range already covers them for navigation purposes.
func CurrentWeekKey(today time.Time) string {
	year := today.Year()
	if truncate(today).Before(firstMonday(year)) {
		return lastWeekKeyOfYear(year - 1)
	}
	return WeekKeyForDate(today)
}

// NextWeekKey returns the key for the week following the given one.
func NextWeekKey(key string) (string, error) {
	_, end, err := WeekRange(key)
	if err != nil {
		return "", err
	}
	next := end.AddDate(0, 0, 1)
	if next.Before(firstMonday(next.Year())) {
		return lastWeekKeyOfYear(next.Year() - 1), nil
	}
	return WeekKeyForDate(next), nil
}

// SeasonKeyForDate derives the seasonal key containing the given date.
// December belongs to the following year's Winter.
func SeasonKeyForDate(d time.Time) string {
	year := d.Year()
	switch m := d.Month(); {
	case m == time.December:
		return fmt.Sprintf("%d-Winter", year+1)
	case m <= time.February:
		return fmt.Sprintf("%d-Winter", year)
	case m <= time.May:
		return fmt.Sprintf("%d-Spring", year)
	case m <= time.August:
		return fmt.Sprintf("%d-Summer", year)
	default:
		return fmt.Sprintf("%d-Fall", year)
	}
}

// CurrentSeasonKey returns the key for the season containing today.
func CurrentSeasonKey(today time.Time) string {
	return SeasonKeyForDate(today)
}

// PrevSeasonKey returns the season preceding the given one. The cycle runs
// Winter, Spring, Summer, Fall; stepping back from Winter lands on the
// previous year's Fall.
func PrevSeasonKey(key string) (string, error) {
	year, idx, err := parseSeasonKey(key)
	if err != nil {
		return "", err
	}
	if idx == 0 {
		return fmt.Sprintf("%d-Fall", year-1), nil
	}
	return fmt.Sprintf("%d-%s", year, seasons[idx-1]), nil
}

// NextSeasonKey returns the season following the given one. Stepping forward
// from Fall lands on the next year's Winter.
func NextSeasonKey(key string) (string, error) {
	year, idx, err := parseSeasonKey(key)
	if err != nil {
		return "", err
	}
	if idx == len(seasons)-1 {
		return fmt.Sprintf("%d-Winter", year+1), nil
	}
	return fmt.Sprintf("%d-%s", year, seasons[idx+1]), nil
}

// PrevYearKey returns the year preceding the given one.
func PrevYearKey(key string) (string, error) {
	year, err := parseYearKey(key)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(year - 1), nil
}

// NextYearKey returns the year following the given one.
func NextYearKey(key string) (string, error) {
	year, err := parseYearKey(key)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(year + 1), nil
}

// FormatKey renders a period key for display: "Week 45, 2024",
// "Winter 2024", "2024".
func FormatKey(kind Kind, key string) string {
	switch kind {
	case Weekly:
		if m := weekKeyPattern.FindStringSubmatch(key); m != nil {
			week, _ := strconv.Atoi(m[2])
			return fmt.Sprintf("Week %d, %s", week, m[1])
		}
	case Seasonal:
		if m := seasonKeyPattern.FindStringSubmatch(key); m != nil {
			return fmt.Sprintf("%s %s", m[2], m[1])
		}
	}
	return key
}

// FormatRange renders a date range for display, e.g. "Nov 25 - Dec 1, 2024".
// Ranges crossing a year boundary show the year on both sides.
func FormatRange(start, end time.Time) string {
	if start.Year() == end.Year() {
		return start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006")
	}
	return start.Format("Jan 2, 2006") + " - " + end.Format("Jan 2, 2006")
}

func parseSeasonKey(key string) (year int, idx int, err error) {
	m := seasonKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid seasonal period key %q", key)
	}
	year, _ = strconv.Atoi(m[1])
	for i, s := range seasons {
		if s == m[2] {
			return year, i, nil
		}
	}
	return 0, 0, fmt.Errorf("invalid seasonal period key %q", key)
}

func parseYearKey(key string) (int, error) {
	if !yearKeyPattern.MatchString(key) {
		return 0, fmt.Errorf("invalid yearly period key %q", key)
	}
	return strconv.Atoi(key)
}

func lastWeekKeyOfYear(year int) string {
	return WeekKeyForDate(date(year, time.December, 31))
}

func firstMonday(year int) time.Time {
	d := date(year, time.January, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func truncate(t time.Time) time.Time {
	return date(t.Year(), t.Month(), t.Day())
}
