package handicapdomain

import (
	"cmp"
	"slices"
)

// AllocateSequential hands out courseHandicap strokes one hole at a time in
// ascending stroke index order, wrapping for further passes. This is the
// allocation used for net double bogey.
func AllocateSequential(courseHandicap int, strokeIndex []int) []int {
	strokes := make([]int, len(strokeIndex))
	if courseHandicap <= 0 || len(strokeIndex) == 0 {
		return strokes
	}

	order := make([]int, len(strokeIndex))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(strokeIndex[a], strokeIndex[b])
	})

	for remaining := courseHandicap; remaining > 0; {
		for _, hole := range order {
			if remaining == 0 {
				break
			}
			strokes[hole]++
			remaining--
		}
	}
	return strokes
}

// AllocateByStrokeIndex gives each hole a stroke when its 18-hole stroke index
// is within the course handicap, a second when it is within courseHandicap-18
// and a third within courseHandicap-36.
func AllocateByStrokeIndex(courseHandicap int, strokeIndex []int) []int {
	strokes := make([]int, len(strokeIndex))
	for i, si := range strokeIndex {
		if si <= courseHandicap {
			strokes[i]++
		}
		if courseHandicap > 18 && si <= courseHandicap-18 {
			strokes[i]++
		}
		if courseHandicap > 36 && si <= courseHandicap-36 {
			strokes[i]++
		}
	}
	return strokes
}
