package handicapdomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportedScorecardSplit(t *testing.T) {
	played := date(2025, time.December, 22)

	t.Run("eighteen holes become two nines", func(t *testing.T) {
		card := ImportedScorecard{
			Date: played,
			Players: []PlayerCard{
				{Name: "Ben", Holes: []int{4, 5, 6, 4, 3, 5, 4, 3, 5, 6, 4, 3, 5, 3, 4, 5, 4, 4}},
			},
		}
		nines, err := card.Split()
		require.NoError(t, err)
		require.Len(t, nines, 2)

		assert.Equal(t, "2025-12-22", nines[0].Key.String())
		assert.Equal(t, NineHoles1To9, nines[0].Nine)
		assert.Equal(t, []int{4, 5, 6, 4, 3, 5, 4, 3, 5}, nines[0].Players[0].Holes)

		assert.Equal(t, "2025-12-22-back9", nines[1].Key.String())
		assert.Equal(t, NineHoles10To18, nines[1].Nine)
		assert.Equal(t, []int{6, 4, 3, 5, 3, 4, 5, 4, 4}, nines[1].Players[0].Holes)
	})

	t.Run("starting on the tenth", func(t *testing.T) {
		card := ImportedScorecard{
			Date:      played,
			FirstNine: NineHoles10To18,
			Players:   []PlayerCard{{Name: "Ben", Holes: make([]int, 18)}},
		}
		nines, err := card.Split()
		require.NoError(t, err)
		assert.Equal(t, NineHoles10To18, nines[0].Nine)
		assert.Equal(t, NineHoles1To9, nines[1].Nine)
	})

	t.Run("nine holes keep gross", func(t *testing.T) {
		card := ImportedScorecard{
			Date:    played,
			Players: []PlayerCard{{Name: "Ben", Gross: 47}, {Name: "Sam", Gross: 44}},
		}
		nines, err := card.Split()
		require.NoError(t, err)
		require.Len(t, nines, 1)
		assert.Equal(t, 47, nines[0].Players[0].Gross)
	})

	t.Run("ragged rows", func(t *testing.T) {
		card := ImportedScorecard{
			Date: played,
			Players: []PlayerCard{
				{Name: "Ben", Holes: make([]int, 9)},
				{Name: "Sam", Holes: make([]int, 18)},
			},
		}
		_, err := card.Split()
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ImportedScorecard{Date: played}.Split()
		assert.ErrorIs(t, err, ErrValidation)
	})
}
