package geo_test

import (
	"encoding/json"
	"math"
	"testing"

	"station-tracker-backend/internal/geo"
)

const (
	testLat = 35.6812
	testLng = 139.7671
)

func TestFallbackPolygon_ClosedRing(t *testing.T) {
	p := geo.FallbackPolygon(testLat, testLng)

	if p.Type != "Polygon" {
		t.Fatalf("expected type Polygon, got %q", p.Type)
	}
	if len(p.Coordinates) != 1 {
		t.Fatalf("expected a single ring, got %d", len(p.Coordinates))
	}

	ring := p.Coordinates[0]
	if len(ring) != 9 {
		t.Fatalf("expected 8 points plus closing point, got %d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		t.Fatalf("ring is not closed: first %v, last %v", ring[0], ring[len(ring)-1])
	}
}

func TestFallbackPolygon_PointsOnRadius(t *testing.T) {
	p := geo.FallbackPolygon(testLat, testLng)

	for i, pt := range p.Coordinates[0] {
		dLng := pt[0] - testLng
		dLat := pt[1] - testLat
		dist := math.Hypot(dLng, dLat)
		if math.Abs(dist-0.001) > 1e-9 {
			t.Fatalf("point %d at distance %g, want 0.001", i, dist)
		}
	}
}

func TestFallbackPolygonJSON_RoundTrips(t *testing.T) {
	raw := geo.FallbackPolygonJSON(testLat, testLng)

	var p geo.Polygon
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Type != "Polygon" || len(p.Coordinates[0]) != 9 {
		t.Fatalf("unexpected polygon after round trip: %+v", p)
	}
}
