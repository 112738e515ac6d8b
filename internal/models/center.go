package models

// RecyclingCenter is a facility from the static directory.
// Distance fields are filled per request when a query point is supplied.
type RecyclingCenter struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Accepts    []string `json:"accepts"`
	Rating     float64  `json:"rating"`
	Hours      string   `json:"hours"`
	Phone      string   `json:"phone"`
	Website    string   `json:"website"`
	Distance   string   `json:"distance,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}
