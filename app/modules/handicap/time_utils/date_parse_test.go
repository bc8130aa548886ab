package handicaptime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateParser(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// Wednesday 2025-03-12, 09:00 in Sydney.
	clock := FixedClock(time.Date(2025, time.March, 12, 9, 0, 0, 0, sydney))
	p := NewDateParser(sydney, clock)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "iso", input: "2025-03-01", want: "2025-03-01"},
		{name: "day first", input: "08/03/2025", want: "2025-03-08"},
		{name: "short day first", input: "1/3/2025", want: "2025-03-01"},
		{name: "month name", input: "8 March 2025", want: "2025-03-08"},
		{name: "today", input: "today", want: "2025-03-12"},
		{name: "yesterday", input: "Yesterday", want: "2025-03-11"},
		{name: "last saturday", input: "last saturday", want: "2025-03-08"},
		{name: "future", input: "2025-04-01", wantErr: ErrFutureDate},
		{name: "nonsense", input: "whenever", wantErr: ErrUnrecognisedDate},
		{name: "empty", input: "  ", wantErr: ErrUnrecognisedDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}
