package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hargun03/accidents-analysis/models"
)

const topStreetsLimit = 5

// Category selects which injured-person count a street ranking uses.
type Category string

const (
	Pedestrians Category = "Pedestrians"
	Cyclists    Category = "Cyclists"
	Motorists   Category = "Motorists"
)

var Categories = []Category{Pedestrians, Cyclists, Motorists}

func ParseCategory(value string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(value, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: affected type %q, want one of Pedestrians, Cyclists, Motorists", ErrInvalidControl, value)
}

func (c Category) count(rec models.Collision) *int {
	switch c {
	case Pedestrians:
		return rec.PedestriansInjured
	case Cyclists:
		return rec.CyclistsInjured
	case Motorists:
		return rec.MotoristsInjured
	}
	return nil
}

// FilterByInjuries projects the records with at least minInjured persons
// injured onto their coordinates. Unknown injury counts never match.
func FilterByInjuries(records []models.Collision, minInjured int) []models.Point {
	points := make([]models.Point, 0)
	for _, rec := range records {
		if rec.PersonsInjured == nil || *rec.PersonsInjured < minInjured {
			continue
		}
		points = append(points, models.Point{Latitude: rec.Latitude, Longitude: rec.Longitude})
	}
	return points
}

// FilterByHour keeps the records whose timestamp falls in the given hour.
func FilterByHour(records []models.Collision, hour int) []models.Collision {
	out := make([]models.Collision, 0)
	for _, rec := range records {
		if rec.Timestamp.Hour() == hour {
			out = append(out, rec)
		}
	}
	return out
}

// WithinHourWindow keeps records with hour <= timestamp hour < hour+1.
func WithinHourWindow(records []models.Collision, hour int) []models.Collision {
	out := make([]models.Collision, 0)
	for _, rec := range records {
		h := rec.Timestamp.Hour()
		if h >= hour && h < hour+1 {
			out = append(out, rec)
		}
	}
	return out
}

// TopStreets ranks streets by the affected category's injury count. Rows
// with no street or a count below one are skipped; ties keep source order.
func TopStreets(records []models.Collision, affected Category) []models.StreetRank {
	ranked := make([]models.StreetRank, 0)
	for _, rec := range records {
		n := affected.count(rec)
		if n == nil || *n < 1 || rec.OnStreetName == nil {
			continue
		}
		ranked = append(ranked, models.StreetRank{OnStreetName: *rec.OnStreetName, Injured: *n})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Injured > ranked[j].Injured
	})

	if len(ranked) > topStreetsLimit {
		ranked = ranked[:topStreetsLimit]
	}
	return ranked
}
