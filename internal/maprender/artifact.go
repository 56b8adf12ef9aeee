// Package maprender builds the choropleth map artifact: one colored polygon
// per census block group, optional gym markers, a legend, and layer toggles.
// The artifact is a renderer-agnostic description consumed by the embedded
// Leaflet page (or any other mapping frontend).
package maprender

// San Francisco is the only supported city; the dashboard is hardcoded to
// its center and water-exclusion list.
var sfCenter = [2]float64{37.7749, -122.4194}

const (
	defaultZoom  = 12
	tileLayer    = "CartoDB positron"
	borderColor  = "gray"
	borderWeight = 1
	fillOpacity  = 0.6

	gymMarkerColor   = "blue"
	gymMarkerRadius  = 4
	gymMarkerOpacity = 0.7

	polygonLayerName = "Census Block Groups"
	gymLayerName     = "Gym Locations"
)

// Artifact is the complete rendered map description.
type Artifact struct {
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
	Tiles  string     `json:"tiles"`

	Polygons []PolygonFeature `json:"polygons"`
	Gyms     []GymMarker      `json:"gyms,omitempty"`

	Legend Legend        `json:"legend"`
	Layers []LayerToggle `json:"layers"`

	// SkippedGeometries counts records whose geometry failed to parse and
	// were left off the map. Bad geometry never aborts the render.
	SkippedGeometries int `json:"skipped_geometries,omitempty"`
}

// PolygonFeature is one block group's filled outline shape.
type PolygonFeature struct {
	BlockGroup string `json:"block_group"`

	// Ring is the outer ring of the first polygon, latitude-first as the
	// mapping primitive expects.
	Ring [][2]float64 `json:"ring"`

	FillColor   string  `json:"fill_color"`
	BorderColor string  `json:"border_color"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fill_opacity"`

	Popup   string `json:"popup"`
	Tooltip string `json:"tooltip"`
}

// GymMarker is one gym point in the overlay layer.
type GymMarker struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Radius      int     `json:"radius"`
	Color       string  `json:"color"`
	FillOpacity float64 `json:"fill_opacity"`
	Popup       string  `json:"popup"`
	Tooltip     string  `json:"tooltip"`
}

// Legend describes the active color scale's domain and polarity.
type Legend struct {
	Caption string   `json:"caption"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Stops   []string `json:"stops"`
}

// LayerToggle is one entry in the layer-visibility control.
type LayerToggle struct {
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}
