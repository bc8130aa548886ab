package handicapdomain

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, time.January, 4, 0, 0, 0, 0, time.UTC)

func weekly(diffs ...float64) []Entry {
	out := make([]Entry, len(diffs))
	for i, d := range diffs {
		out[i] = Entry{Date: day0.AddDate(0, 0, 7*i), Differential: d}
	}
	return out
}

func repeat(d float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d
	}
	return out
}

func TestBestCountTable(t *testing.T) {
	table := DefaultBestCountTable()
	require.NoError(t, table.Validate())

	tests := map[int]int{2: 0, 3: 1, 5: 1, 6: 2, 11: 3, 14: 4, 16: 5, 18: 6, 19: 7, 20: 8, 27: 8}
	for n, want := range tests {
		assert.Equal(t, want, table.Count(n), "window of %d", n)
	}

	assert.ErrorIs(t, BestCountTable{3: 4}.Validate(), ErrValidation)
	assert.ErrorIs(t, BestCountTable{}.Validate(), ErrValidation)
}

func TestRawIndex(t *testing.T) {
	tracker := DefaultTracker()

	t.Run("three scores use the lowest", func(t *testing.T) {
		res, err := tracker.RawIndex([]float64{14, 10, 12})
		require.NoError(t, err)
		assert.Equal(t, 9.6, res.Raw)
		assert.Equal(t, 3, res.Scores)
		assert.Equal(t, 1, res.Used)
	})

	t.Run("too few scores", func(t *testing.T) {
		_, err := tracker.RawIndex([]float64{10, 12})
		assert.True(t, IsInsufficientHistory(err))
	})

	t.Run("twenty first score drops the oldest", func(t *testing.T) {
		diffs := append([]float64{0}, repeat(20, 19)...)

		res, err := tracker.RawIndex(diffs)
		require.NoError(t, err)
		assert.Equal(t, 16.8, res.Raw)

		res, err = tracker.RawIndex(append(diffs, 20))
		require.NoError(t, err)
		assert.Equal(t, 20, res.Scores)
		assert.Equal(t, 19.2, res.Raw)
	})
}

func TestApplyCaps(t *testing.T) {
	tests := []struct {
		name    string
		raw     float64
		lhi     float64
		want    float64
		wantCap CapKind
	}{
		{name: "hard cap", raw: 16.0, lhi: 10.0, want: 15.0, wantCap: CapHard},
		{name: "soft cap", raw: 14.0, lhi: 10.0, want: 13.5, wantCap: CapSoft},
		{name: "exactly three", raw: 13.0, lhi: 10.0, want: 13.0, wantCap: CapNone},
		{name: "exactly five", raw: 15.0, lhi: 10.0, want: 14.0, wantCap: CapSoft},
		{name: "improvement", raw: 8.2, lhi: 10.0, want: 8.2, wantCap: CapNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kind := ApplyCaps(tt.raw, tt.lhi)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCap, kind)
		})
	}
}

func TestTrackerCompute(t *testing.T) {
	tracker := DefaultTracker()

	t.Run("insufficient history keeps prior", func(t *testing.T) {
		res, err := tracker.Compute(weekly(12, 14), 18.4)
		assert.ErrorIs(t, err, ErrInsufficientHistory)
		assert.False(t, res.Computed)
		assert.Equal(t, 18.4, res.Value)
	})

	t.Run("soft cap against an earlier low", func(t *testing.T) {
		history := weekly(append(repeat(10, 3), repeat(30, 9)...)...)

		res, err := tracker.Compute(history, 0)
		require.NoError(t, err)
		assert.True(t, res.Computed)
		assert.Equal(t, 14.4, res.Raw)
		assert.True(t, res.HasLowIndex)
		assert.Equal(t, 9.6, res.LowIndex)
		assert.Equal(t, CapSoft, res.Cap)
		assert.Equal(t, 13.5, res.Value)
	})

	t.Run("input order does not matter", func(t *testing.T) {
		history := weekly(22.1, 18.4, 25.0, 19.9, 30.2, 17.3)
		shuffled := []Entry{history[3], history[0], history[5], history[1], history[4], history[2]}

		a, err := tracker.Compute(history, 0)
		require.NoError(t, err)
		b, err := tracker.Compute(shuffled, 0)
		require.NoError(t, err)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("results differ (-sorted +shuffled):\n%s", diff)
		}
	})
}

func TestTrackerComputeIdempotent(t *testing.T) {
	faker := gofakeit.New(42)
	tracker := DefaultTracker()

	for run := 0; run < 25; run++ {
		n := faker.Number(0, 40)
		history := make([]Entry, n)
		for i := range history {
			history[i] = Entry{
				Date:         day0.AddDate(0, 0, 3*i),
				Differential: RoundTenth(faker.Float64Range(-2, 45)),
			}
		}

		first, firstErr := tracker.Compute(history, 20)
		second, secondErr := tracker.Compute(history, 20)
		assert.Equal(t, firstErr, secondErr)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("run %d: recomputation changed the result:\n%s", run, diff)
		}
		if n >= 3 {
			require.NoError(t, firstErr)
			assert.LessOrEqual(t, first.Value, first.Raw)
		}
	}
}

func TestLowHandicapIndex(t *testing.T) {
	tracker := DefaultTracker()
	history := weekly(10, 12, 14, 16)

	lhi, ok := tracker.LowHandicapIndex(history, history[3].Date)
	require.True(t, ok)
	assert.Equal(t, 9.6, lhi)

	// Nothing in the last year fails open.
	_, ok = tracker.LowHandicapIndex(history, history[3].Date.AddDate(2, 0, 0))
	assert.False(t, ok)
}

func TestTrackerChange(t *testing.T) {
	tracker := DefaultTracker()

	t.Run("first computed index against prior", func(t *testing.T) {
		change := tracker.Change(weekly(14, 10, 12), 12.0)
		assert.False(t, change.Previous.Computed)
		assert.Equal(t, 12.0, change.Previous.Value)
		assert.Equal(t, 9.6, change.Current.Value)
		assert.Equal(t, -2.4, change.Delta)
		assert.Equal(t, DirectionDown, change.Direction)
	})

	t.Run("direction", func(t *testing.T) {
		change := tracker.Change(weekly(10, 12, 14, 16, 18, 20, 8), 0)
		assert.Equal(t, DirectionDown, change.Direction)
		assert.Equal(t, 8.6, change.Current.Value)

		change = tracker.Change(weekly(10, 12, 14, 16, 18, 30), 0)
		assert.Equal(t, DirectionUp, change.Direction)
		assert.Equal(t, 9.6, change.Previous.Value)
		assert.Equal(t, 10.6, change.Current.Value)
		assert.Equal(t, 1.0, change.Delta)
	})

	t.Run("no rounds", func(t *testing.T) {
		change := tracker.Change(nil, 7.5)
		assert.Equal(t, DirectionSame, change.Direction)
		assert.Equal(t, 7.5, change.Current.Value)
	})
}

func TestComputeBefore(t *testing.T) {
	tracker := DefaultTracker()
	history := weekly(10, 12, 14, 4)

	res, err := tracker.ComputeBefore(history, history[3].Date, 0)
	require.NoError(t, err)
	assert.Equal(t, 9.6, res.Value)
}

func TestComputeBeforeAnchorsLowIndexOnRoundDate(t *testing.T) {
	tracker := DefaultTracker()
	history := weekly(append(repeat(10, 3), repeat(30, 9)...)...)
	last := history[len(history)-1].Date

	// Low index 9.6 is within a year of the latest entry, so the soft cap applies.
	capped, err := tracker.Compute(history, 0)
	require.NoError(t, err)
	assert.Equal(t, 14.4, capped.Raw)
	assert.True(t, capped.HasLowIndex)
	assert.Equal(t, CapSoft, capped.Cap)
	assert.Equal(t, 13.5, capped.Value)

	// After a long layoff nothing falls within a year of the round.
	res, err := tracker.ComputeBefore(history, last.AddDate(0, 0, 400), 0)
	require.NoError(t, err)
	assert.Equal(t, 14.4, res.Raw)
	assert.False(t, res.HasLowIndex)
	assert.Equal(t, CapNone, res.Cap)
	assert.Equal(t, 14.4, res.Value)
}
