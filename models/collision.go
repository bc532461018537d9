package models

import "time"

// Collision is one row of the collisions dataset. Latitude and Longitude
// are always present; rows without them never make it into a table.
type Collision struct {
	Timestamp          time.Time `json:"timestamp"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	PersonsInjured     *int      `json:"number_of_persons_injured"`
	PedestriansInjured *int      `json:"injured_pedestrians"`
	CyclistsInjured    *int      `json:"injured_cyclists"`
	MotoristsInjured   *int      `json:"injured_motorists"`
	OnStreetName       *string   `json:"on_street_name"`

	// Extra holds the non-empty cells of every other source column, keyed
	// by normalized label.
	Extra map[string]string `json:"extra,omitempty"`
}

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HexPoint is the row shape fed to the hexagon layer.
type HexPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type StreetRank struct {
	OnStreetName string `json:"on_street_name"`
	Injured      int    `json:"injured"`
}

type MinuteCount struct {
	Minute  int `json:"minute"`
	Crashes int `json:"crashes"`
}
