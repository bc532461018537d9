package models

type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
	Pitch     int     `json:"pitch"`
}

type HexagonLayer struct {
	Type           string     `json:"type"`
	Data           []HexPoint `json:"data"`
	GetPosition    []string   `json:"get_position"`
	Radius         int        `json:"radius"`
	Extruded       bool       `json:"extruded"`
	Pickable       bool       `json:"pickable"`
	ElevationScale int        `json:"elevation_scale"`
	ElevationRange [2]int     `json:"elevation_range"`
}

// Deck is the map description handed to the front end's deck renderer.
type Deck struct {
	MapStyle         string         `json:"map_style"`
	InitialViewState ViewState      `json:"initial_view_state"`
	Layers           []HexagonLayer `json:"layers"`
}

type InjuryMap struct {
	MinInjured int     `json:"min_injured"`
	Points     []Point `json:"points"`
}

type HourView struct {
	Hour     int    `json:"hour"`
	NextHour int    `json:"next_hour"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Center   Point  `json:"center"`
	Deck     Deck   `json:"deck"`
}

type MinuteBreakdown struct {
	Label        string        `json:"label"`
	Hour         int           `json:"hour"`
	Buckets      []MinuteCount `json:"buckets"`
	ChartHeight  int           `json:"chart_height"`
	TotalCrashes int           `json:"total_crashes"`
}

type StreetRanking struct {
	Affected string       `json:"affected"`
	Streets  []StreetRank `json:"streets"`
}

// Dashboard is everything one interaction recomputes.
type Dashboard struct {
	RowLimit  int             `json:"row_limit"`
	InjuryMap InjuryMap       `json:"injury_map"`
	Hour      HourView        `json:"hour"`
	Minutes   MinuteBreakdown `json:"minutes"`
	Streets   StreetRanking   `json:"streets"`
	RawData   []Collision     `json:"raw_data,omitempty"`
}
