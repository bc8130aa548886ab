package parsers

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/PuerkitoBio/goquery"
)

var (
	// "Friday November 07, 2025" with an optional UTC "20:53" tee time.
	pageDateRe = regexp.MustCompile(`([A-Z][a-z]+ [A-Z][a-z]+ \d{2}, \d{4})(?:\s+(\d{2}):(\d{2}))?`)
	// "Andy J. (Index 12.4)"
	playerIndexRe = regexp.MustCompile(`(.+?)\s*\(Index\s+-?\d+(?:\.\d+)?\)`)
)

// HTMLParser reads the scorecard pages published by the club's scoring app:
// a long-form date, then for each player a name block followed by a
// div.score-table holding Hole and Score rows.
type HTMLParser struct{}

// NewHTMLParser creates a new HTML parser instance.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// Parse extracts the date, tee time and each player's hole scores.
func (p *HTMLParser) Parse(data []byte) (*handicapdomain.ImportedScorecard, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read HTML: %v", handicapdomain.ErrValidation, err)
	}

	card := &handicapdomain.ImportedScorecard{FirstNine: handicapdomain.NineHoles1To9}
	if err := p.parseDate(doc.Text(), card); err != nil {
		return nil, err
	}

	var parseErr error
	doc.Find("div.score-table").EachWithBreak(func(i int, table *goquery.Selection) bool {
		name := playerName(table)
		if name == "" {
			return true
		}
		holes, first, err := scoreRow(table)
		if err != nil {
			parseErr = fmt.Errorf("%s: %w", name, err)
			return false
		}
		if holes == nil {
			return true
		}
		if len(card.Players) == 0 {
			card.FirstNine = firstNineFor(first)
		}
		card.Players = append(card.Players, handicapdomain.PlayerCard{Name: name, Holes: holes})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(card.Players) == 0 {
		return nil, fmt.Errorf("%w: no players found on scorecard page", handicapdomain.ErrValidation)
	}
	trimUnplayedNine(card)
	return card, nil
}

func (p *HTMLParser) parseDate(text string, card *handicapdomain.ImportedScorecard) error {
	m := pageDateRe.FindStringSubmatch(text)
	if m == nil {
		return fmt.Errorf("%w: no date on scorecard page", handicapdomain.ErrValidation)
	}
	d, err := parseDate(m[1])
	if err != nil {
		return err
	}
	card.Date = d
	if m[2] != "" {
		hour, _ := strconv.Atoi(m[2])
		minute, _ := strconv.Atoi(m[3])
		tee := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
		card.TeeTime = &tee
	}
	return nil
}

// playerName finds the nearest preceding block carrying "Name (Index x.y)".
func playerName(table *goquery.Selection) string {
	var name string
	table.PrevAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := playerIndexRe.FindStringSubmatch(strings.TrimSpace(s.Text())); m != nil {
			name = strings.TrimSpace(m[1])
			return false
		}
		return true
	})
	return name
}

// scoreRow returns the hole scores of a score table and the number of the
// first hole played. Out/In/Total columns are dropped using the Hole row, or
// by position when the page has no Hole row.
func scoreRow(table *goquery.Selection) ([]int, int, error) {
	var header, scores []string
	table.Children().Each(func(_ int, row *goquery.Selection) {
		var texts []string
		row.Children().Each(func(_ int, c *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(c.Text()))
		})
		if len(texts) == 0 {
			return
		}
		switch strings.ToLower(texts[0]) {
		case "hole":
			header = texts[1:]
		case "score":
			scores = texts[1:]
		}
	})
	if scores == nil {
		return nil, 0, nil
	}

	type cell struct {
		hole  int
		value string
	}
	var cells []cell
	if header != nil {
		for i, h := range header {
			hole, err := strconv.Atoi(h)
			if err != nil || i >= len(scores) {
				continue
			}
			cells = append(cells, cell{hole: hole, value: scores[i]})
		}
	} else {
		switch {
		case len(scores) >= 19:
			for i, v := range scores[0:9] {
				cells = append(cells, cell{hole: i + 1, value: v})
			}
			for i, v := range scores[10:19] {
				cells = append(cells, cell{hole: i + 10, value: v})
			}
		case len(scores) >= 9:
			for i, v := range scores[:9] {
				cells = append(cells, cell{hole: i + 1, value: v})
			}
		}
	}

	if n := len(cells); n != handicapdomain.HolesPerNine && n != 2*handicapdomain.HolesPerNine {
		return nil, 0, fmt.Errorf("%w: score row has %d holes", handicapdomain.ErrValidation, n)
	}
	holes := make([]int, len(cells))
	for i, c := range cells {
		score, err := parseHoleCell(c.value)
		if err != nil {
			return nil, 0, err
		}
		holes[i] = score
	}
	return holes, cells[0].hole, nil
}
