package parsers

import (
	"bytes"
	"fmt"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/xuri/excelize/v2"
)

// XLSXParser implements the Parser interface for Excel scorecards.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser instance.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first sheet of the workbook.
func (p *XLSXParser) Parse(data []byte) (*handicapdomain.ImportedScorecard, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open XLSX file: %v", handicapdomain.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: XLSX file has no sheets", handicapdomain.ErrValidation)
	}

	sheetName := sheets[0]
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", handicapdomain.ErrValidation, sheetName)
	}
	return tableToScorecard(rows)
}
