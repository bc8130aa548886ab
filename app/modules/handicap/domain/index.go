package handicapdomain

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"
)

// BestCountTable maps the number of differentials in the window to how many
// of the lowest are averaged.
type BestCountTable map[int]int

// DefaultBestCountTable is the table used by the cap-aware calculator.
func DefaultBestCountTable() BestCountTable {
	return BestCountTable{
		3: 1, 4: 1, 5: 1,
		6: 2, 7: 2, 8: 2,
		9: 3, 10: 3, 11: 3,
		12: 4, 13: 4, 14: 4,
		15: 5, 16: 5,
		17: 6, 18: 6,
		19: 7,
		20: 8,
	}
}

// Count returns the number of differentials to average for a window of size n.
// Windows larger than the table use the largest entry.
func (t BestCountTable) Count(n int) int {
	if c, ok := t[n]; ok {
		return c
	}
	largest, count := 0, 0
	for size, c := range t {
		if size > largest {
			largest, count = size, c
		}
	}
	if n > largest {
		return count
	}
	return 0
}

// Validate checks that every entry uses at least one and at most size differentials.
func (t BestCountTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty best-count table", ErrValidation)
	}
	for size, c := range t {
		if size <= 0 || c <= 0 || c > size {
			return fmt.Errorf("%w: best-count entry %d->%d", ErrValidation, size, c)
		}
	}
	return nil
}

// Entry is one differential in a player's history.
type Entry struct {
	Date         time.Time
	Differential float64
}

// CapKind records which WHS cap, if any, limited an index.
type CapKind string

const (
	CapNone CapKind = "none"
	CapSoft CapKind = "soft"
	CapHard CapKind = "hard"
)

const (
	softCapThreshold = 3.0
	hardCapThreshold = 5.0
)

// IndexResult is the outcome of an index computation.
type IndexResult struct {
	// Value is the published index. When Computed is false it is the prior
	// index the caller supplied.
	Value       float64
	Raw         float64
	LowIndex    float64
	HasLowIndex bool
	Cap         CapKind
	Computed    bool
	// Scores is the window size and Used how many of those were averaged.
	Scores int
	Used   int
}

// Direction describes how an index moved.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionSame Direction = "same"
)

// IndexChange compares the index with and without the most recent round.
type IndexChange struct {
	Current   IndexResult
	Previous  IndexResult
	Delta     float64
	Direction Direction
}

// Tracker computes handicap indexes from differential histories.
type Tracker struct {
	Table          BestCountTable
	Window         int
	MinScores      int
	Factor         float64
	LowIndexPeriod time.Duration
}

// DefaultTracker returns the best-of-last-20 tracker with WHS caps.
func DefaultTracker() Tracker {
	return Tracker{
		Table:          DefaultBestCountTable(),
		Window:         20,
		MinScores:      3,
		Factor:         0.96,
		LowIndexPeriod: 365 * 24 * time.Hour,
	}
}

// RawIndex averages the lowest differentials of the most recent window and
// applies the 0.96 factor. Caps are not applied.
func (t Tracker) RawIndex(diffs []float64) (IndexResult, error) {
	if len(diffs) < t.MinScores {
		return IndexResult{}, fmt.Errorf("%w: %d differentials, need %d", ErrInsufficientHistory, len(diffs), t.MinScores)
	}

	window := diffs
	if len(window) > t.Window {
		window = window[len(window)-t.Window:]
	}

	used := t.Table.Count(len(window))
	if used <= 0 {
		return IndexResult{}, fmt.Errorf("%w: no best-count entry for %d differentials", ErrInsufficientHistory, len(window))
	}
	used = min(used, len(window))

	sorted := slices.Clone(window)
	slices.Sort(sorted)

	sum := 0.0
	for _, d := range sorted[:used] {
		sum += d
	}
	raw := RoundTenth(sum / float64(used) * t.Factor)

	return IndexResult{
		Value:    raw,
		Raw:      raw,
		Cap:      CapNone,
		Computed: true,
		Scores:   len(window),
		Used:     used,
	}, nil
}

// LowHandicapIndex returns the lowest raw index produced after any entry
// dated within LowIndexPeriod of asOf. Each candidate is computed from the
// full history up to and including that entry. ok is false when no entry in
// the period yields an index.
func (t Tracker) LowHandicapIndex(history []Entry, asOf time.Time) (lhi float64, ok bool) {
	sorted := sortEntries(history)
	cutoff := asOf.Add(-t.LowIndexPeriod)
	diffs := differentials(sorted)

	for i, e := range sorted {
		if e.Date.Before(cutoff) || e.Date.After(asOf) {
			continue
		}
		res, err := t.RawIndex(diffs[:i+1])
		if err != nil {
			continue
		}
		if !ok || res.Raw < lhi {
			lhi, ok = res.Raw, true
		}
	}
	return lhi, ok
}

// ApplyCaps limits raw against the low handicap index. Increases up to 3.0
// stand, the part between 3.0 and 5.0 is halved, and nothing beyond 5.0 counts.
func ApplyCaps(raw, lhi float64) (float64, CapKind) {
	increase := RoundTenth(raw - lhi)
	switch {
	case increase <= softCapThreshold:
		return raw, CapNone
	case increase <= hardCapThreshold:
		return RoundTenth(lhi + softCapThreshold + 0.5*(increase-softCapThreshold)), CapSoft
	default:
		return RoundTenth(lhi + hardCapThreshold), CapHard
	}
}

// Compute returns the capped index for the whole history, with the low
// handicap index window ending at the latest entry. With too few
// differentials it returns prior, Computed=false and ErrInsufficientHistory.
func (t Tracker) Compute(history []Entry, prior float64) (IndexResult, error) {
	sorted := sortEntries(history)
	var asOf time.Time
	if len(sorted) > 0 {
		asOf = sorted[len(sorted)-1].Date
	}
	return t.computeAsOf(sorted, asOf, prior)
}

// ComputeBefore returns the index a player held going into a round on date:
// only entries strictly before date are used and the low handicap index
// window ends on date.
func (t Tracker) ComputeBefore(history []Entry, date time.Time, prior float64) (IndexResult, error) {
	before := make([]Entry, 0, len(history))
	for _, e := range history {
		if e.Date.Before(date) {
			before = append(before, e)
		}
	}
	return t.computeAsOf(sortEntries(before), date, prior)
}

// computeAsOf expects sorted entries.
func (t Tracker) computeAsOf(sorted []Entry, asOf time.Time, prior float64) (IndexResult, error) {
	res, err := t.RawIndex(differentials(sorted))
	if err != nil {
		return IndexResult{Value: prior, Cap: CapNone}, err
	}

	if lhi, ok := t.LowHandicapIndex(sorted, asOf); ok {
		res.LowIndex, res.HasLowIndex = lhi, true
		res.Value, res.Cap = ApplyCaps(res.Raw, lhi)
	}
	return res, nil
}

// Change recomputes the index with and without the most recent entry.
// Both sides are full recomputations.
func (t Tracker) Change(history []Entry, prior float64) IndexChange {
	sorted := sortEntries(history)

	current, _ := t.Compute(sorted, prior)
	previous := IndexResult{Value: prior, Cap: CapNone}
	if len(sorted) > 0 {
		previous, _ = t.Compute(sorted[:len(sorted)-1], prior)
	}

	delta := RoundTenth(current.Value - previous.Value)
	dir := DirectionSame
	switch {
	case delta > 0:
		dir = DirectionUp
	case delta < 0:
		dir = DirectionDown
	}

	return IndexChange{
		Current:   current,
		Previous:  previous,
		Delta:     delta,
		Direction: dir,
	}
}

// IsInsufficientHistory reports whether err means there was not enough data.
func IsInsufficientHistory(err error) bool {
	return errors.Is(err, ErrInsufficientHistory)
}

func sortEntries(history []Entry) []Entry {
	sorted := slices.Clone(history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

func differentials(entries []Entry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Differential
	}
	return out
}
