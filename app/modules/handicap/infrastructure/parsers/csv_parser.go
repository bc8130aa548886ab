package parsers

import (
	"encoding/csv"
	"fmt"
	"strings"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
)

// CSVParser implements the Parser interface for CSV scorecard files.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads comma or tab separated scorecards.
func (p *CSVParser) Parse(data []byte) (*handicapdomain.ImportedScorecard, error) {
	cleaned, delimiter, err := preprocessCSVData(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(cleaned))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse CSV: %v", handicapdomain.ErrValidation, err)
	}
	return tableToScorecard(rows)
}
