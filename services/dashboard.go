package services

import (
	"errors"
	"fmt"

	"github.com/hargun03/accidents-analysis/models"
)

const (
	MaxInjuredThreshold = 19
	MaxHour             = 23
)

const (
	mapStyle            = "mapbox://styles/mapbox/light-v9"
	mapZoom             = 11
	mapPitch            = 50
	hexRadius           = 100
	hexElevationScale   = 4
	hexElevationCeiling = 1000
)

var ErrInvalidControl = errors.New("invalid control value")

// Controls are the widget values of one interaction.
type Controls struct {
	MinInjured int      `json:"injured"`
	Hour       int      `json:"hour"`
	Affected   Category `json:"affected"`
	ShowRaw    bool     `json:"raw"`
}

func DefaultControls() Controls {
	return Controls{Affected: Pedestrians}
}

func (c Controls) Validate() error {
	if c.MinInjured < 0 || c.MinInjured > MaxInjuredThreshold {
		return fmt.Errorf("%w: injured must be between 0 and %d, got %d", ErrInvalidControl, MaxInjuredThreshold, c.MinInjured)
	}
	if c.Hour < 0 || c.Hour > MaxHour {
		return fmt.Errorf("%w: hour must be between 0 and %d, got %d", ErrInvalidControl, MaxHour, c.Hour)
	}
	if _, err := ParseCategory(string(c.Affected)); err != nil {
		return err
	}
	return nil
}

// BuildDashboard recomputes every section from the full table. The street
// ranking always sees the whole table; the hour sliders never narrow it.
func BuildDashboard(table *Table, c Controls) (models.Dashboard, error) {
	if err := c.Validate(); err != nil {
		return models.Dashboard{}, err
	}
	affected, _ := ParseCategory(string(c.Affected))

	hourly := FilterByHour(table.Records, c.Hour)

	d := models.Dashboard{
		RowLimit: table.RowLimit,
		InjuryMap: models.InjuryMap{
			MinInjured: c.MinInjured,
			Points:     FilterByInjuries(table.Records, c.MinInjured),
		},
		Hour:    hourView(hourly, c.Hour),
		Minutes: MinuteBreakdown(hourly, c.Hour),
		Streets: models.StreetRanking{
			Affected: string(affected),
			Streets:  TopStreets(table.Records, affected),
		},
	}
	if c.ShowRaw {
		d.RawData = hourly
	}
	return d, nil
}

// HourView filters the table to one hour and describes the density map
// for it.
func HourView(table *Table, hour int) (models.HourView, error) {
	if hour < 0 || hour > MaxHour {
		return models.HourView{}, fmt.Errorf("%w: hour must be between 0 and %d, got %d", ErrInvalidControl, MaxHour, hour)
	}
	return hourView(FilterByHour(table.Records, hour), hour), nil
}

func hourView(hourly []models.Collision, hour int) models.HourView {
	center := CenterPoint(hourly)

	data := make([]models.HexPoint, len(hourly))
	for i, rec := range hourly {
		data[i] = models.HexPoint{Timestamp: rec.Timestamp, Latitude: rec.Latitude, Longitude: rec.Longitude}
	}

	return models.HourView{
		Hour:     hour,
		NextHour: (hour + 1) % 24,
		Label:    fmt.Sprintf("Vehicle collisions between %d:00 and %d:00", hour, (hour+1)%24),
		Count:    len(hourly),
		Center:   center,
		Deck: models.Deck{
			MapStyle: mapStyle,
			InitialViewState: models.ViewState{
				Latitude:  center.Latitude,
				Longitude: center.Longitude,
				Zoom:      mapZoom,
				Pitch:     mapPitch,
			},
			Layers: []models.HexagonLayer{{
				Type:           "HexagonLayer",
				Data:           data,
				GetPosition:    []string{"longitude", "latitude"},
				Radius:         hexRadius,
				Extruded:       true,
				Pickable:       true,
				ElevationScale: hexElevationScale,
				ElevationRange: [2]int{0, hexElevationCeiling},
			}},
		},
	}
}
