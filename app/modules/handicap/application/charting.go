package handicapservice

import (
	"bytes"
	"context"
	"fmt"
	"time"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/Black-And-White-Club/handicap-bot/pkg/results"
	"github.com/uptrace/bun"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the chart colours.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultPalette is fairway green on off-white.
func DefaultPalette() ChartPalette {
	return ChartPalette{
		Background:  drawing.ColorFromHex("f7f5ef"),
		PrimaryLine: drawing.ColorFromHex("2e6b3f"),
		AccentLine:  drawing.ColorFromHex("c9a227"),
		TextColor:   drawing.ColorFromHex("1f2a24"),
	}
}

// IndexPoint is the index after one round, for charting.
type IndexPoint struct {
	Date  time.Time
	Index float64
}

// IndexHistoryChart renders the player's index after each eligible round.
func (s *HandicapService) IndexHistoryChart(ctx context.Context, player string) ([]byte, error) {
	name := s.CanonicalName(player)
	chartTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]IndexPoint, error], error) {
		return s.indexHistoryLogic(ctx, db, name)
	}

	result, err := withTelemetry(s, ctx, "IndexHistoryChart", name, func(ctx context.Context) (results.OperationResult[[]IndexPoint, error], error) {
		return runInTx(s, ctx, chartTx)
	})
	points, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	png, err := GenerateIndexHistoryChart(name, points, s.opts.Palette)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return png, nil
}

func (s *HandicapService) indexHistoryLogic(ctx context.Context, db bun.IDB, name string) (results.OperationResult[[]IndexPoint, error], error) {
	player, err := s.loadPlayer(ctx, db, name)
	if err != nil {
		return infraError[[]IndexPoint]("failed to load player", err)
	}
	rounds, _, err := s.playerRounds(ctx, db, name)
	if err != nil {
		return infraError[[]IndexPoint]("failed to load player rounds", err)
	}
	if player == nil && len(rounds) == 0 {
		return failure[[]IndexPoint](fmt.Errorf("%w: %s", ErrPlayerNotFound, name))
	}

	history, err := handicapdomain.BuildHistory(rounds, s.opts.Course, s.opts.PCCPolicy)
	if err != nil {
		return infraError[[]IndexPoint]("failed to build history", err)
	}

	var points []IndexPoint
	for _, p := range s.opts.Tracker.Progression(history, s.initialIndex(name, player)) {
		if !p.Index.Computed {
			continue
		}
		points = append(points, IndexPoint{Date: p.Key.Date, Index: p.Index.Value})
	}
	return success(points)
}

// GenerateIndexHistoryChart produces a PNG line chart of index history.
func GenerateIndexHistoryChart(player string, points []IndexPoint, palette ChartPalette) ([]byte, error) {
	if len(points) == 0 {
		return renderNoDataPlaceholder(palette, "Not enough rounds for an index yet")
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Date
		yValues[i] = p.Index
	}

	// go-chart needs two points to draw a line.
	if len(points) == 1 {
		xValues = append(xValues, xValues[0].Add(24*time.Hour))
		yValues = append(yValues, yValues[0])
	}

	graph := chart.Chart{
		Title:  player + " handicap index",
		Width:  800,
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style:          chart.Style{FontColor: palette.TextColor},
		},
		YAxis: chart.YAxis{
			Name:           "Index",
			ValueFormatter: func(v any) string { return fmt.Sprintf("%.1f", v) },
			Style:          chart.Style{FontColor: palette.TextColor},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Index",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: palette.PrimaryLine,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    palette.AccentLine,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette, msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{Style: chart.Style{Hidden: true}},
		// Render refuses a chart without series.
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
