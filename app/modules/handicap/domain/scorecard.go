package handicapdomain

import (
	"fmt"
	"strings"
	"time"
)

// PlayerCard is one player's line on an imported scorecard. Holes are in
// the order they were played and hold 9 or 18 scores.
type PlayerCard struct {
	Name  string
	Holes []int
	Gross int
}

// ImportedScorecard is a scorecard as read from a file or web page.
type ImportedScorecard struct {
	Date time.Time
	// FirstNine is the nine the group started on. Empty means holes 1-9.
	FirstNine NineID
	// TeeTime is the UTC start time when the source records one.
	TeeTime *time.Time
	Players []PlayerCard
}

// NineCard is the part of an imported scorecard played on one nine.
type NineCard struct {
	Key     RoundKey
	Nine    NineID
	Players []PlayerCard
}

// Split breaks a scorecard into nines. An 18-hole card yields two nines,
// the second keyed with SecondNineVariant. Gross is only carried for 9-hole
// cards; for 18-hole cards each nine is totalled from its holes.
func (c ImportedScorecard) Split() ([]NineCard, error) {
	if len(c.Players) == 0 {
		return nil, fmt.Errorf("%w: scorecard has no players", ErrValidation)
	}
	first := c.FirstNine
	if first == "" {
		first = NineHoles1To9
	}
	second, err := OtherNine(first)
	if err != nil {
		return nil, err
	}

	holes := len(c.Players[0].Holes)
	for _, p := range c.Players {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("%w: scorecard row without a player name", ErrValidation)
		}
		if len(p.Holes) != holes {
			return nil, fmt.Errorf("%w: %s has %d holes, expected %d", ErrValidation, p.Name, len(p.Holes), holes)
		}
	}

	switch holes {
	case 0, HolesPerNine:
		return []NineCard{{Key: NewRoundKey(c.Date, ""), Nine: first, Players: c.Players}}, nil
	case 2 * HolesPerNine:
		front := NineCard{Key: NewRoundKey(c.Date, ""), Nine: first}
		back := NineCard{Key: NewRoundKey(c.Date, SecondNineVariant), Nine: second}
		for _, p := range c.Players {
			front.Players = append(front.Players, PlayerCard{Name: p.Name, Holes: p.Holes[:HolesPerNine]})
			back.Players = append(back.Players, PlayerCard{Name: p.Name, Holes: p.Holes[HolesPerNine:]})
		}
		return []NineCard{front, back}, nil
	default:
		return nil, fmt.Errorf("%w: scorecard has %d holes, want 9 or 18", ErrValidation, holes)
	}
}

// OtherNine returns the nine that completes an 18-hole round.
func OtherNine(id NineID) (NineID, error) {
	switch id {
	case NineHoles1To9:
		return NineHoles10To18, nil
	case NineHoles10To18:
		return NineHoles1To9, nil
	default:
		return "", fmt.Errorf("%w: unknown nine %q", ErrInvalidCourseData, id)
	}
}
