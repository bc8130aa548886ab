package handicapservice

import (
	"context"
	"fmt"
	"io"
	"strconv"

	handicapdb "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/infrastructure/repositories"
	"github.com/Black-And-White-Club/handicap-bot/pkg/results"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
)

const (
	standingsSheet = "Standings"
	roundsSheet    = "Rounds"
)

// ExportSeasonReport writes an XLSX workbook with the season standings and
// every card played in year.
func (s *HandicapService) ExportSeasonReport(ctx context.Context, year int, w io.Writer) error {
	reportTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*excelize.File, error], error) {
		summary, scores, err := s.seasonSummaryLogic(ctx, db, year)
		if err != nil {
			return infraError[*excelize.File]("failed to build season summary", err)
		}
		f, err := buildSeasonWorkbook(summary, scores)
		if err != nil {
			return infraError[*excelize.File]("failed to build workbook", err)
		}
		return success(f)
	}

	result, err := withTelemetry(s, ctx, "ExportSeasonReport", strconv.Itoa(year), func(ctx context.Context) (results.OperationResult[*excelize.File, error], error) {
		return runInTx(s, ctx, reportTx)
	})
	f, err := unwrap(result, err)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildSeasonWorkbook(summary *SeasonSummary, scores []*handicapdb.RoundScore) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(roundsSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	standings := [][]any{{"Rank", "Player", "Rounds", "Points", "Average", "Form", "Best Stableford", "Best Gross", "Favourite Hole", "Worst Hole"}}
	for _, st := range summary.Standings {
		fav, worst := "", ""
		if st.FavouriteHole != nil {
			fav = fmt.Sprintf("%d (%.1f)", st.FavouriteHole.Hole, st.FavouriteHole.Average)
		}
		if st.WorstHole != nil {
			worst = fmt.Sprintf("%d (%.1f)", st.WorstHole.Hole, st.WorstHole.Average)
		}
		standings = append(standings, []any{
			st.Rank, st.Player, st.Rounds, st.TotalPoints, st.AveragePoints, st.Form,
			st.BestStableford, st.BestGross, fav, worst,
		})
	}

	rounds := [][]any{{"Round", "Nine", "Player", "Gross", "Index", "Course Handicap", "Stableford", "Differential", "Eligible"}}
	for _, sc := range scores {
		var diff any = ""
		if sc.Differential != nil {
			diff = *sc.Differential
		}
		rounds = append(rounds, []any{
			sc.Round.RoundKey, sc.Round.Nine, sc.Player, sc.Gross, sc.IndexAtTime,
			sc.CourseHandicap, sc.Stableford, diff, sc.Round.Eligible,
		})
	}

	for sheet, rows := range map[string][][]any{standingsSheet: standings, roundsSheet: rounds} {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
