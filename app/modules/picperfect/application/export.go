package picperfectservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"
)

// ChartPalette holds the colors used for the leaderboard chart.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Leader     drawing.Color
	Text       drawing.Color
}

// DefaultChartPalette is the palette used by RenderLeaderboardChart.
var DefaultChartPalette = ChartPalette{
	Background: drawing.ColorFromHex("1b1f24"),
	Bar:        drawing.ColorFromHex("3d7ea6"),
	Leader:     drawing.ColorFromHex("e0b644"),
	Text:       drawing.ColorFromHex("f0f0f0"),
}

const leaderboardSheet = "Leaderboard"

var leaderboardHeader = []any{
	"Rank", "Team", "Deception Points", "Discovery Points", "Total Points", "Votes Received", "Voted For Hidden", "Image URL",
}

// ExportLeaderboardXLSX renders the ranked leaderboard as a workbook.
func (s *PicPerfectService) ExportLeaderboardXLSX(ctx context.Context, challengeID string) ([]byte, error) {
	view, err := s.GetLeaderboard(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	return BuildLeaderboardWorkbook(view)
}

// BuildLeaderboardWorkbook writes view into a single-sheet XLSX file.
func BuildLeaderboardWorkbook(view *LeaderboardView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), leaderboardSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(leaderboardSheet, "A1", &leaderboardHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, e := range view.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{e.Rank, e.TeamName, e.DeceptionPoints, e.DiscoveryPoints, e.TotalPoints, e.VotesReceived, e.VotedForHidden, e.ImageURL}
		if err := f.SetSheetRow(leaderboardSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", e.TeamName, err)
		}
	}

	if view.HiddenImage != nil {
		start := len(view.Entries) + 3
		for i, row := range [][]any{
			{"Hidden Image", view.HiddenImage.ImageURL},
			{"Prompt", view.HiddenImage.Prompt},
			{"Found By", len(view.HiddenImage.VotesReceived)},
		} {
			cell, err := excelize.CoordinatesToCellName(1, start+i)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(leaderboardSheet, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write hidden image summary: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderLeaderboardChart renders total points per team as a PNG bar chart.
func (s *PicPerfectService) RenderLeaderboardChart(ctx context.Context, challengeID string) ([]byte, error) {
	view, err := s.GetLeaderboard(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	return GenerateLeaderboardChart(view.Entries, DefaultChartPalette)
}

// GenerateLeaderboardChart produces a PNG bar chart of total points. The
// leader's bar is highlighted.
func GenerateLeaderboardChart(entries []ScoreEntry, palette ChartPalette) ([]byte, error) {
	if len(entries) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	top := 10
	bars := make([]chart.Value, 0, len(entries))
	for i, e := range entries {
		top = max(top, e.TotalPoints)
		color := palette.Bar
		if i == 0 {
			color = palette.Leader
		}
		bars = append(bars, chart.Value{
			Label: e.TeamName,
			Value: float64(e.TotalPoints),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.BarChart{
		Title:  "Pic Perfect Leaderboard",
		Width:  160 + 90*len(entries),
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.Text,
		},
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.Text,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.Text,
			},
			// All-zero scores would otherwise give an empty range.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		BarWidth: 50,
		Bars:     bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws the message straight onto a PNG renderer.
// chart.Chart refuses to render without at least one series.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No scores yet"
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(palette.Background)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(palette.Text)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
