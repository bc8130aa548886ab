package parsers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
)

// holeColumn is a header column holding a hole score.
type holeColumn struct {
	index int
	hole  int
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// findColumn searches for a column by multiple possible names (case-insensitive)
// Removes spaces, underscores, and hyphens for normalization
func findColumn(header []string, possibleNames []string) int {
	for i, col := range header {
		colNorm := normalize(col)
		for _, name := range possibleNames {
			if colNorm == normalize(name) {
				return i
			}
		}
	}
	return -1
}

// holeNumber reads headers like "7", "H7", "Hole 7" or "hole_7".
func holeNumber(col string) (int, bool) {
	n := normalize(col)
	switch {
	case strings.HasPrefix(n, "hole"):
		n = strings.TrimPrefix(n, "hole")
	case strings.HasPrefix(n, "h"):
		n = strings.TrimPrefix(n, "h")
	}
	hole, err := strconv.Atoi(n)
	if err != nil || hole < 1 || hole > 2*handicapdomain.HolesPerNine {
		return 0, false
	}
	return hole, true
}

// findHoleColumns finds all columns that represent holes, in sheet order.
func findHoleColumns(header []string) []holeColumn {
	var cols []holeColumn
	for i, col := range header {
		if hole, ok := holeNumber(col); ok {
			cols = append(cols, holeColumn{index: i, hole: hole})
		}
	}
	return cols
}

// isPARRow checks if a row represents par values
func isPARRow(cellValue string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(cellValue))
	return normalized == "PAR" || normalized == "PARS" || normalized == "P"
}

// parseHoleCell reads one hole score. Dashes, blanks and X mark a pick-up.
func parseHoleCell(cell string) (int, error) {
	v := strings.TrimSpace(cell)
	switch strings.ToUpper(v) {
	case "", "-", "X":
		return handicapdomain.Blob, nil
	}
	score, err := strconv.Atoi(v)
	if err != nil || score < 0 || score > 20 {
		return 0, fmt.Errorf("%w: hole score %q", handicapdomain.ErrValidation, cell)
	}
	return score, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"Monday January 02, 2006",
	"2 Jan 2006",
}

// parseDate accepts ISO dates, Australian day-first dates and the long form
// printed on scorecard pages.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse date %q", handicapdomain.ErrValidation, s)
}

// preprocessCSVData cleans CSV data and auto-detects delimiter
// Returns: cleaned string, delimiter rune, error
func preprocessCSVData(data []byte) (string, rune, error) {
	if len(data) == 0 {
		return "", ',', fmt.Errorf("%w: empty CSV data", handicapdomain.ErrValidation)
	}

	// Strip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	cleaned := strings.ReplaceAll(string(data), "\r\n", "\n")

	// Count commas vs tabs in the first 5 lines
	lines := strings.Split(cleaned, "\n")
	commaCount, tabCount := 0, 0
	for _, line := range lines[:min(5, len(lines))] {
		commaCount += strings.Count(line, ",")
		tabCount += strings.Count(line, "\t")
	}

	delimiter := ','
	if tabCount > commaCount {
		delimiter = '\t'
	}
	return cleaned, delimiter, nil
}

// detectHeaderRow scans the first 5 rows to find the header
// Returns the index of the header row, or -1 if not found
func detectHeaderRow(rows [][]string) int {
	knownColumns := []string{"player", "playername", "name", "date", "gross", "total"}

	bestScore, bestRow := 0, -1
	for rowIdx := 0; rowIdx < min(5, len(rows)); rowIdx++ {
		score := 0
		for _, cell := range rows[rowIdx] {
			if _, ok := holeNumber(cell); ok {
				score++
				continue
			}
			cellNorm := normalize(cell)
			for _, known := range knownColumns {
				if cellNorm == known {
					score++
					break
				}
			}
		}
		// Need at least 2 recognized columns to consider it a header
		if score >= 2 && score > bestScore {
			bestScore, bestRow = score, rowIdx
		}
	}
	return bestRow
}

// firstNineFor picks the starting nine from the hole numbers of a card.
func firstNineFor(firstHole int) handicapdomain.NineID {
	if firstHole > handicapdomain.HolesPerNine {
		return handicapdomain.NineHoles10To18
	}
	return handicapdomain.NineHoles1To9
}

// tableToScorecard turns spreadsheet rows into a scorecard: a header row
// naming the player, optional date and gross columns, and 9 or 18 hole
// columns. Par rows are skipped.
func tableToScorecard(rows [][]string) (*handicapdomain.ImportedScorecard, error) {
	headerIdx := detectHeaderRow(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: no header row found", handicapdomain.ErrValidation)
	}
	header := rows[headerIdx]

	nameCol := findColumn(header, []string{"player", "player name", "name"})
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: no player column", handicapdomain.ErrValidation)
	}
	dateCol := findColumn(header, []string{"date", "played", "played on"})
	grossCol := findColumn(header, []string{"gross", "total", "score"})
	holeCols := findHoleColumns(header)

	switch len(holeCols) {
	case 0:
		if grossCol < 0 {
			return nil, fmt.Errorf("%w: no hole or gross columns", handicapdomain.ErrValidation)
		}
	case handicapdomain.HolesPerNine, 2 * handicapdomain.HolesPerNine:
	default:
		return nil, fmt.Errorf("%w: %d hole columns, want 9 or 18", handicapdomain.ErrValidation, len(holeCols))
	}

	card := &handicapdomain.ImportedScorecard{FirstNine: handicapdomain.NineHoles1To9}
	if len(holeCols) > 0 {
		card.FirstNine = firstNineFor(holeCols[0].hole)
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	for i, row := range rows[headerIdx+1:] {
		line := headerIdx + i + 2
		name := cell(row, nameCol)
		if name == "" || isPARRow(name) {
			continue
		}

		if raw := cell(row, dateCol); raw != "" {
			d, err := parseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			if !card.Date.IsZero() && !card.Date.Equal(d) {
				return nil, fmt.Errorf("%w: row %d is dated %s, card is %s", handicapdomain.ErrValidation, line, raw, card.Date.Format(time.DateOnly))
			}
			card.Date = d
		}

		pc := handicapdomain.PlayerCard{Name: name}
		if raw := cell(row, grossCol); raw != "" {
			gross, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d gross %q", handicapdomain.ErrValidation, line, raw)
			}
			pc.Gross = gross
		}
		if len(holeCols) > 0 {
			pc.Holes = make([]int, len(holeCols))
			for j, hc := range holeCols {
				score, err := parseHoleCell(cell(row, hc.index))
				if err != nil {
					return nil, fmt.Errorf("row %d hole %d: %w", line, hc.hole, err)
				}
				pc.Holes[j] = score
			}
		}
		// 18-hole cards are totalled per nine when split.
		if len(pc.Holes) == 2*handicapdomain.HolesPerNine {
			pc.Gross = 0
		}
		card.Players = append(card.Players, pc)
	}

	if len(card.Players) == 0 {
		return nil, fmt.Errorf("%w: no player scores found", handicapdomain.ErrValidation)
	}
	trimUnplayedNine(card)
	return card, nil
}

// trimUnplayedNine reduces an 18-hole card to a single nine when nobody
// scored on the other one.
func trimUnplayedNine(card *handicapdomain.ImportedScorecard) {
	const nine = handicapdomain.HolesPerNine
	if len(card.Players) == 0 || len(card.Players[0].Holes) != 2*nine {
		return
	}
	var firstPlayed, secondPlayed bool
	for _, p := range card.Players {
		for i, h := range p.Holes {
			if h == handicapdomain.Blob {
				continue
			}
			if i < nine {
				firstPlayed = true
			} else {
				secondPlayed = true
			}
		}
	}

	switch {
	case firstPlayed && !secondPlayed:
		for i := range card.Players {
			card.Players[i].Holes = card.Players[i].Holes[:nine]
		}
	case secondPlayed && !firstPlayed:
		for i := range card.Players {
			card.Players[i].Holes = card.Players[i].Holes[nine:]
		}
		if other, err := handicapdomain.OtherNine(card.FirstNine); err == nil {
			card.FirstNine = other
		}
	}
}
