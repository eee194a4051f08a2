// Package report renders recorded inference results as a self-contained
// HTML chart for quick visual review without a frontend.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pulse.report/internal/db"
)

// RenderTimeline writes an HTML line chart of hr_mean and confidence over
// time, one x-axis point per recorded result. Results are expected oldest
// first.
func RenderTimeline(w io.Writer, results []db.ResultRow) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to render")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Emotion inference timeline",
			Subtitle: fmt.Sprintf("%d results", len(results)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{}),
	)

	timestamps := make([]string, 0, len(results))
	hrMeans := make([]opts.LineData, 0, len(results))
	confidences := make([]opts.LineData, 0, len(results))
	for _, r := range results {
		timestamps = append(timestamps, r.Timestamp.Format("15:04:05"))
		hrMeans = append(hrMeans, opts.LineData{Value: r.Features["hr_mean"]})
		// Name carries the winning label so hovering a point shows what
		// was inferred.
		confidences = append(confidences, opts.LineData{Value: r.Confidence, Name: r.Emotion})
	}

	line.SetXAxis(timestamps).
		AddSeries("hr_mean", hrMeans).
		AddSeries("confidence", confidences)

	return line.Render(w)
}
