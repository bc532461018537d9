package services

import (
	"fmt"
	"sort"

	"github.com/hargun03/accidents-analysis/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	MinuteBuckets     = 60
	minuteChartHeight = 400
)

// FallbackCenter is lower Manhattan, used when there is nothing to average.
var FallbackCenter = models.Point{Latitude: 40.7128, Longitude: -74.0060}

func CenterPoint(records []models.Collision) models.Point {
	if len(records) == 0 {
		return FallbackCenter
	}

	lats := make([]float64, len(records))
	lons := make([]float64, len(records))
	for i, rec := range records {
		lats[i] = rec.Latitude
		lons[i] = rec.Longitude
	}
	return models.Point{
		Latitude:  stat.Mean(lats, nil),
		Longitude: stat.Mean(lons, nil),
	}
}

// MinuteHistogram counts records per minute-of-hour. The result always has
// MinuteBuckets entries.
func MinuteHistogram(records []models.Collision) []int {
	minutes := make([]float64, len(records))
	for i, rec := range records {
		minutes[i] = float64(rec.Timestamp.Minute())
	}
	sort.Float64s(minutes)

	dividers := floats.Span(make([]float64, MinuteBuckets+1), 0, MinuteBuckets)
	counts := stat.Histogram(nil, dividers, minutes, nil)

	hist := make([]int, MinuteBuckets)
	for i, c := range counts {
		hist[i] = int(c)
	}
	return hist
}

func MinuteBreakdown(records []models.Collision, hour int) models.MinuteBreakdown {
	window := WithinHourWindow(records, hour)
	hist := MinuteHistogram(window)

	buckets := make([]models.MinuteCount, MinuteBuckets)
	total := 0
	for m, n := range hist {
		buckets[m] = models.MinuteCount{Minute: m, Crashes: n}
		total += n
	}

	return models.MinuteBreakdown{
		Label:        fmt.Sprintf("Breakdown by minute between %d:00 and %d:00", hour, (hour+1)%24),
		Hour:         hour,
		Buckets:      buckets,
		ChartHeight:  minuteChartHeight,
		TotalCrashes: total,
	}
}
