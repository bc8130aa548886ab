package handicapdomain

import (
	"fmt"
	"sort"
)

// HolesPerNine is the number of holes in every round the engine accepts.
const HolesPerNine = 9

// NineID identifies a physical nine by its real-world hole range.
type NineID string

const (
	NineHoles1To9   NineID = "holes-1-9"
	NineHoles10To18 NineID = "holes-10-18"
)

// String implements fmt.Stringer.
func (n NineID) String() string { return string(n) }

// Nine is the static configuration of one nine.
//
// Rating and Slope are the values the Differential Engine uses. They are kept
// fixed so historical indexes stay continuous. RatingDisplay and SlopeDisplay
// are the club's published values and are only used for course handicaps.
type Nine struct {
	ID            NineID
	Name          string
	Holes         []int
	Par           int
	Rating        float64
	Slope         float64
	RatingDisplay float64
	SlopeDisplay  float64
	HolePars      []int
	StrokeIndex   []int
}

// Validate checks the per-hole tables.
func (n Nine) Validate() error {
	if len(n.HolePars) != HolesPerNine || len(n.StrokeIndex) != HolesPerNine {
		return fmt.Errorf("%w: nine %s has %d pars and %d stroke indexes, want %d",
			ErrInvalidCourseData, n.ID, len(n.HolePars), len(n.StrokeIndex), HolesPerNine)
	}
	seen := make(map[int]bool, HolesPerNine)
	for i, si := range n.StrokeIndex {
		if si < 1 || si > 18 {
			return fmt.Errorf("%w: nine %s hole %d stroke index %d outside 1-18", ErrInvalidCourseData, n.ID, i+1, si)
		}
		if seen[si] {
			return fmt.Errorf("%w: nine %s repeats stroke index %d", ErrInvalidCourseData, n.ID, si)
		}
		seen[si] = true
	}
	for i, p := range n.HolePars {
		if p <= 0 {
			return fmt.Errorf("%w: nine %s hole %d par %d", ErrInvalidCourseData, n.ID, i+1, p)
		}
	}
	if n.Rating <= 0 || n.Slope <= 0 || n.RatingDisplay <= 0 || n.SlopeDisplay <= 0 {
		return fmt.Errorf("%w: nine %s ratings and slopes must be positive", ErrInvalidCourseData, n.ID)
	}
	return nil
}

// CardPar is the sum of the per-hole pars. It can differ from Par, which is
// the value used in the course handicap formula.
func (n Nine) CardPar() int {
	total := 0
	for _, p := range n.HolePars {
		total += p
	}
	return total
}

// Course is the set of nines a group plays.
type Course map[NineID]Nine

// Lookup returns the nine with the given ID.
func (c Course) Lookup(id NineID) (Nine, error) {
	n, ok := c[id]
	if !ok {
		return Nine{}, fmt.Errorf("%w: unknown nine %q", ErrInvalidCourseData, id)
	}
	return n, nil
}

// IDs returns the configured nine IDs in a stable order.
func (c Course) IDs() []NineID {
	ids := make([]NineID, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Validate validates every nine.
func (c Course) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: no nines configured", ErrInvalidCourseData)
	}
	for _, id := range c.IDs() {
		if err := c[id].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultCourse returns the Warringah whites configuration.
func DefaultCourse() Course {
	return Course{
		NineHoles1To9: {
			ID:            NineHoles1To9,
			Name:          "Front 9 (Holes 1-9)",
			Holes:         []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
			Par:           35,
			Rating:        33.5,
			Slope:         101,
			RatingDisplay: 35.0,
			SlopeDisplay:  127,
			HolePars:      []int{4, 4, 5, 4, 3, 4, 4, 3, 4},
			StrokeIndex:   []int{15, 1, 5, 10, 16, 7, 13, 4, 11},
		},
		NineHoles10To18: {
			ID:            NineHoles10To18,
			Name:          "Back 9 (Holes 10-18)",
			Holes:         []int{10, 11, 12, 13, 14, 15, 16, 17, 18},
			Par:           35,
			Rating:        33.5,
			Slope:         101,
			RatingDisplay: 33.0,
			SlopeDisplay:  111,
			HolePars:      []int{5, 4, 3, 4, 3, 4, 4, 3, 4},
			StrokeIndex:   []int{8, 9, 18, 6, 17, 3, 14, 12, 2},
		},
	}
}

// NineFromLegacyLabel maps the labels stored by the first version of the bot
// onto real nines. Those labels were swapped: "front9" rows were played on
// holes 10-18. Only the label migration should call this.
func NineFromLegacyLabel(label string) (NineID, error) {
	switch label {
	case "front9":
		return NineHoles10To18, nil
	case "back9":
		return NineHoles1To9, nil
	case string(NineHoles1To9), string(NineHoles10To18):
		return NineID(label), nil
	default:
		return "", fmt.Errorf("%w: unknown legacy nine label %q", ErrValidation, label)
	}
}
