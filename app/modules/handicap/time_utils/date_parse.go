// Package handicaptime turns typed round dates into calendar days.
package handicaptime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnrecognisedDate is returned when no layout or phrase matches.
var ErrUnrecognisedDate = errors.New("unrecognised date")

// ErrFutureDate is returned for a round date after today.
var ErrFutureDate = errors.New("round date is in the future")

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

var layouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"2 Jan 2006",
	"2 January 2006",
}

// DateParser parses round dates typed by a person: ISO and day-first dates
// as well as phrases like "yesterday" or "last saturday".
type DateParser struct {
	loc   *time.Location
	clock Clock
	w     *when.Parser
}

// NewDateParser resolves relative phrases against clock in loc.
func NewDateParser(loc *time.Location, clock Clock) *DateParser {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = SystemClock{}
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &DateParser{loc: loc, clock: clock, w: w}
}

// Parse returns the calendar day at UTC midnight.
func (p *DateParser) Parse(input string) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnrecognisedDate)
	}

	now := p.clock.Now().In(p.loc)
	today := midnight(now)

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return checkPast(midnight(t), today)
		}
	}

	r, err := p.w.Parse(strings.ToLower(s), now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrUnrecognisedDate, input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognisedDate, input)
	}
	return checkPast(midnight(r.Time.In(p.loc)), today)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkPast(day, today time.Time) (time.Time, error) {
	if day.After(today) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrFutureDate, day.Format("2006-01-02"))
	}
	return day, nil
}
