package workspace

import (
	"fmt"
	"slices"
	"sort"

	"github.com/bobmcallan/vire-backtest/internal/models"
)

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active result ordering.
type SortState struct {
	Key       models.MetricKey `json:"key"`
	Direction Direction        `json:"direction"`
}

// DefaultDirection is ascending for lower-is-better metrics, descending otherwise.
func DefaultDirection(key models.MetricKey) Direction {
	if key.LowerIsBetter() {
		return Ascending
	}
	return Descending
}

// Results holds the last scan rows in their current display order.
type Results struct {
	rows []models.ScanRow
	sort SortState
}

// NewResults starts empty, sorted by CAGR descending.
func NewResults() *Results {
	return &Results{sort: SortState{Key: models.MetricCAGR, Direction: Descending}}
}

// Rows returns the rows in display order.
func (r *Results) Rows() []models.ScanRow { return slices.Clone(r.rows) }

// Sort returns the active sort state.
func (r *Results) Sort() SortState { return r.sort }

// Load replaces the rows and orders them by the active key with its
// default direction.
func (r *Results) Load(rows []models.ScanRow) {
	r.rows = slices.Clone(rows)
	// the active key is always valid
	_ = r.SortBy(string(r.sort.Key), true)
}

// SortBy orders the rows by key. Repeating the active key flips the
// direction unless initial is set; a new key starts at its default
// direction. Failed rows always sort last.
func (r *Results) SortBy(key string, initial bool) error {
	k, err := models.ParseMetricKey(key)
	if err != nil {
		return invalid(ErrUnknownSortKey, "cannot sort by %q", key)
	}

	switch {
	case !initial && k == r.sort.Key:
		if r.sort.Direction == Ascending {
			r.sort.Direction = Descending
		} else {
			r.sort.Direction = Ascending
		}
	default:
		r.sort = SortState{Key: k, Direction: DefaultDirection(k)}
	}

	dir := r.sort.Direction
	sort.SliceStable(r.rows, func(i, j int) bool {
		return rowLess(r.rows[i], r.rows[j], k, dir)
	})
	return nil
}

// rowLess ranks successful rows with a value first, then successful rows
// without one, then failed rows. Only the first group follows dir.
func rowLess(a, b models.ScanRow, key models.MetricKey, dir Direction) bool {
	ra, rb := rank(a, key), rank(b, key)
	if ra != rb {
		return ra < rb
	}
	if ra != 0 {
		return false
	}
	va, vb := *a.Value(key), *b.Value(key)
	if dir == Ascending {
		return va < vb
	}
	return va > vb
}

func rank(r models.ScanRow, key models.MetricKey) int {
	switch {
	case r.Failed():
		return 2
	case r.Value(key) == nil:
		return 1
	}
	return 0
}

func (s SortState) String() string {
	return fmt.Sprintf("%s %s", s.Key, s.Direction)
}
