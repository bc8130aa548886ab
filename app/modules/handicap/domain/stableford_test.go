package handicapdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateByStrokeIndex(t *testing.T) {
	si := DefaultCourse()[NineHoles1To9].StrokeIndex // 15,1,5,10,16,7,13,4,11

	tests := []struct {
		name string
		ch   int
		want []int
	}{
		{name: "negative handicap", ch: -3, want: []int{0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{name: "single figure", ch: 5, want: []int{0, 1, 1, 0, 0, 0, 0, 1, 0}},
		{name: "eighteen gives one everywhere", ch: 18, want: []int{1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{name: "nineteen adds a second on index one", ch: 19, want: []int{1, 2, 1, 1, 1, 1, 1, 1, 1}},
		{name: "thirty seven adds a third on index one", ch: 37, want: []int{2, 3, 2, 2, 2, 2, 2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllocateByStrokeIndex(tt.ch, si))
		})
	}
}

func TestAllocateSequential(t *testing.T) {
	si := DefaultCourse()[NineHoles1To9].StrokeIndex

	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0, 0, 0}, AllocateSequential(0, si))
	assert.Equal(t, []int{0, 1, 1, 0, 0, 0, 0, 1, 0}, AllocateSequential(3, si))
	// Nine strokes cover the nine, the tenth goes back to the lowest index.
	assert.Equal(t, []int{1, 2, 1, 1, 1, 1, 1, 1, 1}, AllocateSequential(10, si))
}

func TestHolePoints(t *testing.T) {
	tests := []struct {
		gross, par, strokes, want int
	}{
		{gross: 4, par: 4, strokes: 1, want: 3},
		{gross: 8, par: 4, strokes: 1, want: 0},
		{gross: 0, par: 4, strokes: 1, want: 0},
		{gross: 2, par: 4, strokes: 0, want: 4},
		{gross: 1, par: 4, strokes: 0, want: 4},
		{gross: 4, par: 4, strokes: 0, want: 2},
		{gross: 5, par: 4, strokes: 0, want: 1},
		{gross: 6, par: 4, strokes: 0, want: 0},
	}
	for _, tt := range tests {
		if got := HolePoints(tt.gross, tt.par, tt.strokes); got != tt.want {
			t.Errorf("HolePoints(%d, %d, %d) = %d, want %d", tt.gross, tt.par, tt.strokes, got, tt.want)
		}
	}
}

func TestCourseHandicap(t *testing.T) {
	course := DefaultCourse()
	even := Nine{Par: 36, RatingDisplay: 36, SlopeDisplay: 113}

	tests := []struct {
		name  string
		index float64
		nine  Nine
		want  int
	}{
		{name: "holes 1-9", index: 10, nine: course[NineHoles1To9], want: 11},
		{name: "holes 10-18 rating below par", index: 10, nine: course[NineHoles10To18], want: 8},
		{name: "floored at zero", index: 0, nine: course[NineHoles10To18], want: 0},
		{name: "half rounds down to even", index: 2.5, nine: even, want: 2},
		{name: "half rounds up to even", index: 3.5, nine: even, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CourseHandicap(tt.index, tt.nine))
		})
	}
}

func TestStableford(t *testing.T) {
	nine := DefaultCourse()[NineHoles1To9]

	t.Run("par round with eleven strokes", func(t *testing.T) {
		card, err := Stableford(nine.HolePars, nine, 11)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 1, 1, 0, 1, 0, 1, 1}, card.Strokes)
		assert.Equal(t, []int{2, 3, 3, 3, 2, 3, 2, 3, 3}, card.Points)
		assert.Equal(t, 24, card.Total)
	})

	t.Run("missing holes score nothing", func(t *testing.T) {
		card, err := Stableford([]int{4, Blob, 5, 4, 3, 4, 4, 3, 4}, nine, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, card.Points[1])
		assert.Equal(t, 16, card.Total)
	})

	t.Run("for index", func(t *testing.T) {
		card, err := StablefordForIndex(nine.HolePars, nine, 10)
		require.NoError(t, err)
		assert.Equal(t, 11, card.CourseHandicap)
		assert.Equal(t, 24, card.Total)
	})

	t.Run("wrong hole count", func(t *testing.T) {
		_, err := Stableford([]int{4, 4, 4}, nine, 0)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("mismatched tables", func(t *testing.T) {
		broken := nine
		broken.StrokeIndex = broken.StrokeIndex[:8]
		_, err := Stableford(nine.HolePars, broken, 0)
		assert.ErrorIs(t, err, ErrInvalidCourseData)
	})
}

func TestCourseValidate(t *testing.T) {
	require.NoError(t, DefaultCourse().Validate())

	dup := DefaultCourse()
	n := dup[NineHoles1To9]
	n.StrokeIndex = []int{1, 1, 5, 10, 16, 7, 13, 4, 11}
	dup[NineHoles1To9] = n
	assert.ErrorIs(t, dup.Validate(), ErrInvalidCourseData)

	_, err := DefaultCourse().Lookup("holes-19-27")
	assert.ErrorIs(t, err, ErrInvalidCourseData)
}

func TestNineFromLegacyLabel(t *testing.T) {
	got, err := NineFromLegacyLabel("front9")
	require.NoError(t, err)
	assert.Equal(t, NineHoles10To18, got)

	got, err = NineFromLegacyLabel("back9")
	require.NoError(t, err)
	assert.Equal(t, NineHoles1To9, got)

	_, err = NineFromLegacyLabel("middle9")
	assert.ErrorIs(t, err, ErrValidation)
}
