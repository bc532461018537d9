package services

import (
	"io"
	"strconv"

	"github.com/hargun03/accidents-analysis/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartBarWidth   = 12
	chartBarSpacing = 4
	chartWidth      = MinuteBuckets*(chartBarWidth+chartBarSpacing) + 120
)

// RenderMinuteChart draws the minute breakdown as a PNG bar chart, minute
// on the x axis and crash count on the y axis.
func RenderMinuteChart(w io.Writer, breakdown models.MinuteBreakdown) error {
	peak := 1
	bars := make([]chart.Value, len(breakdown.Buckets))
	for i, b := range breakdown.Buckets {
		bars[i] = chart.Value{
			Label: strconv.Itoa(b.Minute),
			Value: float64(b.Crashes),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("636efa"),
				StrokeColor: drawing.ColorFromHex("636efa"),
				StrokeWidth: 1,
			},
		}
		if b.Crashes > peak {
			peak = b.Crashes
		}
	}

	graph := chart.BarChart{
		Title:      breakdown.Label,
		Height:     breakdown.ChartHeight,
		Width:      chartWidth,
		BarWidth:   chartBarWidth,
		BarSpacing: chartBarSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Name:  "crashes",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak)},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}
