package parsers

import (
	"bytes"
	"testing"
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFactory_GetParser(t *testing.T) {
	factory := NewFactory()
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "csv file", filename: "scores.csv", want: "csv"},
		{name: "upper case extension", filename: "SCORES.CSV", want: "csv"},
		{name: "xlsx file", filename: "scores.xlsx", want: "xlsx"},
		{name: "html page", filename: "round.html", want: "html"},
		{name: "unsupported file", filename: "scores.txt", wantErr: true},
		{name: "no extension", filename: "scores", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := factory.GetParser(tt.filename)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			switch tt.want {
			case "csv":
				_, ok := parser.(*CSVParser)
				require.True(t, ok)
			case "xlsx":
				_, ok := parser.(*XLSXParser)
				require.True(t, ok)
			case "html":
				_, ok := parser.(*HTMLParser)
				require.True(t, ok)
			default:
				t.Fatalf("unexpected parser type %q", tt.want)
			}
		})
	}
}

func TestCSVParser_Parse(t *testing.T) {
	parser := NewCSVParser()
	tests := []struct {
		name      string
		data      string
		wantErr   bool
		wantDate  time.Time
		wantNine  handicapdomain.NineID
		wantHoles [][]int
		wantGross []int
	}{
		{
			name:      "front nine with par row and blobs",
			data:      "Date,Player,1,2,3,4,5,6,7,8,9\nPar,Par,4,4,5,4,3,4,4,3,4\n2025-12-22,Ben,4,5,-,4,3,4,X,3,4\n2025-12-22,Sam,5,5,6,4,3,5,5,4,5\n",
			wantDate:  time.Date(2025, time.December, 22, 0, 0, 0, 0, time.UTC),
			wantNine:  handicapdomain.NineHoles1To9,
			wantHoles: [][]int{{4, 5, 0, 4, 3, 4, 0, 3, 4}, {5, 5, 6, 4, 3, 5, 5, 4, 5}},
			wantGross: []int{0, 0},
		},
		{
			name:      "back nine headers",
			data:      "Player,H10,H11,H12,H13,H14,H15,H16,H17,H18\r\nBen,5,4,3,4,3,4,4,3,4\r\n",
			wantNine:  handicapdomain.NineHoles10To18,
			wantHoles: [][]int{{5, 4, 3, 4, 3, 4, 4, 3, 4}},
			wantGross: []int{0},
		},
		{
			name:      "gross only with day first date",
			data:      "Name\tDate\tGross\nBen\t22/12/2025\t45\nSam\t22/12/2025\t47\n",
			wantDate:  time.Date(2025, time.December, 22, 0, 0, 0, 0, time.UTC),
			wantNine:  handicapdomain.NineHoles1To9,
			wantHoles: [][]int{nil, nil},
			wantGross: []int{45, 47},
		},
		{
			name:      "eighteen holes with only the back nine played",
			data:      "Player,1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18\nBen,,,,,,,,,,5,4,3,4,3,4,4,3,4\n",
			wantNine:  handicapdomain.NineHoles10To18,
			wantHoles: [][]int{{5, 4, 3, 4, 3, 4, 4, 3, 4}},
			wantGross: []int{0},
		},
		{
			name:    "bad hole score",
			data:    "Player,1,2,3,4,5,6,7,8,9\nBen,4,five,4,4,3,4,4,3,4\n",
			wantErr: true,
		},
		{
			name:    "mixed dates",
			data:    "Date,Player,Gross\n2025-12-22,Ben,45\n2025-12-23,Sam,44\n",
			wantErr: true,
		},
		{
			name:    "wrong number of holes",
			data:    "Player,1,2,3\nBen,4,4,5\n",
			wantErr: true,
		},
		{
			name:    "no players",
			data:    "Player,Gross\n",
			wantErr: true,
		},
		{
			name:    "empty",
			data:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := parser.Parse([]byte(tt.data))
			if tt.wantErr {
				require.ErrorIs(t, err, handicapdomain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, card.Date)
			assert.Equal(t, tt.wantNine, card.FirstNine)
			require.Len(t, card.Players, len(tt.wantHoles))
			for i, p := range card.Players {
				assert.Equal(t, tt.wantHoles[i], p.Holes, p.Name)
				assert.Equal(t, tt.wantGross[i], p.Gross, p.Name)
			}
		})
	}
}

func TestXLSXParser_Parse(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"Date", "Player", "Hole 1", "Hole 2", "Hole 3", "Hole 4", "Hole 5", "Hole 6", "Hole 7", "Hole 8", "Hole 9",
			"Hole 10", "Hole 11", "Hole 12", "Hole 13", "Hole 14", "Hole 15", "Hole 16", "Hole 17", "Hole 18"},
		{"2025-12-22", "Ben", 4, 4, 5, 4, 3, 4, 4, 3, 4, 5, 4, 3, 4, 3, 4, 4, 3, 4},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	card, err := NewXLSXParser().Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, card.Players, 1)
	assert.Len(t, card.Players[0].Holes, 18)

	nines, err := card.Split()
	require.NoError(t, err)
	require.Len(t, nines, 2)
	assert.Equal(t, "2025-12-22-back9", nines[1].Key.String())

	_, err = NewXLSXParser().Parse([]byte("not a workbook"))
	assert.ErrorIs(t, err, handicapdomain.ErrValidation)
}

const scorecardPage = `<html><body>
<div class="header"><span>Warringah Golf Club</span><span>Friday November 07, 2025 20:53</span></div>
<div class="players">
  <div class="player"><div><span>Andy J. (Index 12.4)</span></div></div>
  <div class="score-table">
    <div><div>Hole</div><div>1</div><div>2</div><div>3</div><div>4</div><div>5</div><div>6</div><div>7</div><div>8</div><div>9</div><div>Out</div></div>
    <div><div>Score</div><div>4</div><div>5</div><div>6</div><div>4</div><div>3</div><div>-</div><div>4</div><div>3</div><div>5</div><div>38</div></div>
    <div><div>Putts</div><div>2</div><div>2</div></div>
  </div>
  <div class="player"><div><span>Sam (Index 8.0)</span></div></div>
  <div class="score-table">
    <div><div>Hole</div><div>1</div><div>2</div><div>3</div><div>4</div><div>5</div><div>6</div><div>7</div><div>8</div><div>9</div><div>Out</div></div>
    <div><div>Score</div><div>4</div><div>4</div><div>5</div><div>4</div><div>3</div><div>4</div><div>4</div><div>3</div><div>4</div><div>35</div></div>
  </div>
</div>
</body></html>`

func TestHTMLParser_Parse(t *testing.T) {
	card, err := NewHTMLParser().Parse([]byte(scorecardPage))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.November, 7, 0, 0, 0, 0, time.UTC), card.Date)
	require.NotNil(t, card.TeeTime)
	assert.Equal(t, time.Date(2025, time.November, 7, 20, 53, 0, 0, time.UTC), *card.TeeTime)
	assert.Equal(t, handicapdomain.NineHoles1To9, card.FirstNine)

	require.Len(t, card.Players, 2)
	assert.Equal(t, "Andy J.", card.Players[0].Name)
	assert.Equal(t, []int{4, 5, 6, 4, 3, 0, 4, 3, 5}, card.Players[0].Holes)
	assert.Equal(t, "Sam", card.Players[1].Name)
}

func TestHTMLParser_Errors(t *testing.T) {
	_, err := NewHTMLParser().Parse([]byte(`<html><body><p>No round here</p></body></html>`))
	assert.ErrorIs(t, err, handicapdomain.ErrValidation)

	_, err = NewHTMLParser().Parse([]byte(`<html><body><p>Friday November 07, 2025</p></body></html>`))
	assert.ErrorIs(t, err, handicapdomain.ErrValidation)
}

func TestParseHoleCell(t *testing.T) {
	for _, blob := range []string{"", " ", "-", "x", "X"} {
		score, err := parseHoleCell(blob)
		require.NoError(t, err)
		assert.Equal(t, handicapdomain.Blob, score)
	}
	score, err := parseHoleCell(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, 7, score)

	_, err = parseHoleCell("-3")
	assert.ErrorIs(t, err, handicapdomain.ErrValidation)
}
