package parsers

import (
	"errors"
	"fmt"
	"strings"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
)

// ErrUnsupportedFormat is returned for files no parser understands.
var ErrUnsupportedFormat = errors.New("unsupported scorecard format")

// Parser defines the interface for scorecard parsers
type Parser interface {
	Parse(data []byte) (*handicapdomain.ImportedScorecard, error)
}

// ParserFactory defines the interface for creating parsers
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension
type Factory struct{}

// NewFactory creates a new parser factory
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(getFileExtension(filename))

	switch ext {
	case ".csv", ".tsv":
		return NewCSVParser(), nil
	case ".xlsx", ".xls":
		return NewXLSXParser(), nil
	case ".html", ".htm":
		return NewHTMLParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// getFileExtension extracts the file extension from a filename
func getFileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return filename[idx:]
}
