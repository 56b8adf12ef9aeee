package maprender

import (
	"fmt"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// GeometryError reports one record's malformed or unsupported geometry. It is
// isolated per record: the renderer logs it, skips the shape, and keeps going.
type GeometryError struct {
	BlockGroup string
	Err        error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("maprender: block group %s: bad geometry: %v", e.BlockGroup, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// outerRing parses GeoJSON text and returns the outer ring of the first
// polygon, converted to latitude-first pairs. For a MultiPolygon only the
// first sub-polygon's outer ring is used; interior rings and additional
// sub-polygons are intentionally not rendered. That is a documented
// simplification of the source geometry, not a defect.
func outerRing(blockGroup, raw string) ([][2]float64, error) {
	var g geom.T
	if err := geojson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, &GeometryError{BlockGroup: blockGroup, Err: err}
	}

	var ring []geom.Coord
	switch shape := g.(type) {
	case *geom.Polygon:
		if shape.NumLinearRings() == 0 {
			return nil, &GeometryError{BlockGroup: blockGroup, Err: fmt.Errorf("polygon has no rings")}
		}
		ring = shape.LinearRing(0).Coords()
	case *geom.MultiPolygon:
		if shape.NumPolygons() == 0 || shape.Polygon(0).NumLinearRings() == 0 {
			return nil, &GeometryError{BlockGroup: blockGroup, Err: fmt.Errorf("multipolygon has no rings")}
		}
		ring = shape.Polygon(0).LinearRing(0).Coords()
	default:
		return nil, &GeometryError{BlockGroup: blockGroup, Err: fmt.Errorf("unsupported geometry type %T", g)}
	}

	if len(ring) < 3 {
		return nil, &GeometryError{BlockGroup: blockGroup, Err: fmt.Errorf("ring has %d coordinates, need at least 3", len(ring))}
	}

	// Source coordinates are longitude-first; the mapping primitive wants
	// latitude-first.
	out := make([][2]float64, len(ring))
	for i, c := range ring {
		out[i] = [2]float64{c.Y(), c.X()}
	}
	return out, nil
}
