package model

// GymLocation is one gym point of interest from the intermediate gyms table,
// with the geography already decomposed into lat/lng scalars upstream.
type GymLocation struct {
	PlaceID     string  `json:"place_id"`
	DisplayName string  `json:"display_name"`
	GymType     string  `json:"gym_type"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}
