// Package geo holds the small amount of GeoJSON handling the catalog
// needs. Station boundaries are stored and served as opaque GeoJSON
// text; the only geometry this service ever synthesizes itself is the
// fallback octagon used when no real boundary can be resolved.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Polygon is a GeoJSON Polygon. Coordinates hold one or more linear
// rings of [longitude, latitude] pairs; the first ring is the outer
// boundary and must be closed (first point repeated last).
type Polygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

const (
	fallbackPoints = 8
	// fallbackRadius is in decimal degrees, roughly 100 m at Tokyo's latitude.
	fallbackRadius = 0.001
)

// FallbackPolygon synthesizes a closed octagonal ring of fallbackRadius
// around the given center, used when a station's real boundary lookup
// fails or returns nothing.
func FallbackPolygon(lat, lng float64) Polygon {
	ring := make([][2]float64, 0, fallbackPoints+1)
	for i := 0; i < fallbackPoints; i++ {
		angle := 2 * math.Pi * float64(i) / fallbackPoints
		ring = append(ring, [2]float64{
			lng + fallbackRadius*math.Cos(angle),
			lat + fallbackRadius*math.Sin(angle),
		})
	}
	ring = append(ring, ring[0])

	return Polygon{Type: "Polygon", Coordinates: [][][2]float64{ring}}
}

// FallbackPolygonJSON returns the fallback polygon serialized for storage.
func FallbackPolygonJSON(lat, lng float64) string {
	data, err := json.Marshal(FallbackPolygon(lat, lng))
	if err != nil {
		// A fixed-shape struct of floats cannot fail to marshal.
		panic(fmt.Sprintf("marshal fallback polygon: %v", err))
	}
	return string(data)
}
