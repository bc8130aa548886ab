package handicapservice

import "errors"

var (
	// ErrRoundExists is returned when a round key has already been recorded.
	ErrRoundExists = errors.New("round already recorded")
	// ErrPlayerNotFound is returned for a player with no record and no rounds.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrRoundNotFound is returned when a round key or ID does not exist.
	ErrRoundNotFound = errors.New("round not found")
)
