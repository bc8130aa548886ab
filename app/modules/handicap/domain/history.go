package handicapdomain

import (
	"fmt"
	"slices"
)

// HistoryEntry pairs a differential with the round it came from.
type HistoryEntry struct {
	Entry
	Key           RoundKey
	Nine          NineID
	AdjustedGross int
}

// SortRounds orders rounds by key. Rounds sharing a key keep their order.
func SortRounds(rounds []PlayerRound) []PlayerRound {
	sorted := slices.Clone(rounds)
	slices.SortStableFunc(sorted, func(a, b PlayerRound) int {
		return a.Key.Compare(b.Key)
	})
	return sorted
}

// RoundDifferential computes the differential for a single round. PCC is
// dropped for rounds the policy does not cover.
func RoundDifferential(r PlayerRound, course Course, policy PCCPolicy) (DifferentialResult, error) {
	nine, err := course.Lookup(r.Nine)
	if err != nil {
		return DifferentialResult{}, err
	}
	card := r.Scorecard(nine)
	if card.PCC != nil && !policy.Applies(r.Key.Date) {
		card.PCC = nil
	}
	return ComputeDifferential(card)
}

// BuildHistory turns a player's rounds into a date-ordered differential
// history. Ineligible rounds are skipped. The same rounds always produce the
// same history.
func BuildHistory(rounds []PlayerRound, course Course, policy PCCPolicy) ([]HistoryEntry, error) {
	history := make([]HistoryEntry, 0, len(rounds))
	for _, r := range SortRounds(rounds) {
		if !r.Eligible {
			continue
		}
		res, err := RoundDifferential(r, course, policy)
		if err != nil {
			return nil, fmt.Errorf("round %s: %w", r.Key, err)
		}
		history = append(history, HistoryEntry{
			Entry:         Entry{Date: r.Key.Date, Differential: res.Value},
			Key:           r.Key,
			Nine:          r.Nine,
			AdjustedGross: res.AdjustedGross,
		})
	}
	return history, nil
}

// Entries strips round details from a history.
func Entries(history []HistoryEntry) []Entry {
	out := make([]Entry, len(history))
	for i, h := range history {
		out[i] = h.Entry
	}
	return out
}

// IndexPoint is the index a player held after a given round.
type IndexPoint struct {
	Key   RoundKey
	Index IndexResult
}

// Progression computes the index after every entry of history, each from a
// full recomputation over the prefix ending there.
func (t Tracker) Progression(history []HistoryEntry, prior float64) []IndexPoint {
	points := make([]IndexPoint, 0, len(history))
	entries := Entries(history)
	for i, h := range history {
		res, _ := t.Compute(entries[:i+1], prior)
		points = append(points, IndexPoint{Key: h.Key, Index: res})
	}
	return points
}
