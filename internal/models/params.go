package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinYear is the earliest year offered for a run.
const MinYear = 1980

// RunParams are the global inputs shared by every backtest and scan.
type RunParams struct {
	InitialAmount float64           `json:"initialAmount"`
	StartYear     int               `json:"startYear"`
	StartMonth    int               `json:"startMonth"`
	EndYear       int               `json:"endYear"`
	EndMonth      int               `json:"endMonth"`
	Rebalancing   RebalancingPeriod `json:"rebalancingPeriod"`
	Benchmark     string            `json:"benchmark"`
}

// DefaultRunParams starts in January of startYear and ends at now's month.
func DefaultRunParams(now time.Time, startYear int, amount float64, rebalancing RebalancingPeriod, benchmark string) RunParams {
	return RunParams{
		InitialAmount: amount,
		StartYear:     startYear,
		StartMonth:    1,
		EndYear:       now.Year(),
		EndMonth:      int(now.Month()),
		Rebalancing:   rebalancing,
		Benchmark:     NormalizeTicker(benchmark),
	}
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Start returns the first day of the start month.
func (p RunParams) Start() time.Time {
	return time.Date(p.StartYear, time.Month(p.StartMonth), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first day of the end month.
func (p RunParams) End() time.Time {
	return time.Date(p.EndYear, time.Month(p.EndMonth), 1, 0, 0, 0, 0, time.UTC)
}

// Validate checks the parameters against the calendar at now. All problems
// are joined into the returned error.
func (p RunParams) Validate(now time.Time) error {
	errs := p.rangeErrors(now)
	if !(p.InitialAmount > 0) {
		errs = append(errs, errors.New("initial amount must be positive"))
	}
	if !p.Rebalancing.Valid() {
		errs = append(errs, fmt.Errorf("unknown rebalancing period %q", p.Rebalancing))
	}
	return errors.Join(errs...)
}

// ValidateRange checks only the date range, which is all a scan uses.
func (p RunParams) ValidateRange(now time.Time) error {
	return errors.Join(p.rangeErrors(now)...)
}

func (p RunParams) rangeErrors(now time.Time) []error {
	var errs []error
	for _, m := range []struct {
		name  string
		month int
	}{{"start month", p.StartMonth}, {"end month", p.EndMonth}} {
		if m.month < 1 || m.month > 12 {
			errs = append(errs, fmt.Errorf("%s %d must be between 1 and 12", m.name, m.month))
		}
	}
	for _, y := range []struct {
		name string
		year int
	}{{"start year", p.StartYear}, {"end year", p.EndYear}} {
		if y.year < MinYear || y.year > now.Year() {
			errs = append(errs, fmt.Errorf("%s %d must be between %d and %d", y.name, y.year, MinYear, now.Year()))
		}
	}
	if len(errs) == 0 && p.Start().After(p.End()) {
		errs = append(errs, errors.New("start date is after end date"))
	}
	return errs
}

// YearOptions lists the selectable years, newest first.
func YearOptions(now time.Time) []int {
	years := make([]int, 0, now.Year()-MinYear+1)
	for y := now.Year(); y >= MinYear; y-- {
		years = append(years, y)
	}
	return years
}
