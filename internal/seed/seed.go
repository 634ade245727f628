// Package seed provisions the station catalog: a fixed station list,
// each station get-or-created by name with a boundary polygon resolved
// from an Overpass geodata endpoint, falling back to a synthetic
// octagon when the lookup fails or finds nothing.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"station-tracker-backend/internal/geo"
	"station-tracker-backend/internal/models"
	"station-tracker-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// Seeder loads the fixed station catalog into storage
type Seeder struct {
	stations    *services.StationService
	client      *http.Client
	overpassURL string
}

// NewSeeder creates a seeder. timeout bounds each station's polygon
// lookup; one slow or failing lookup never stalls the batch.
func NewSeeder(stations *services.StationService, overpassURL string, timeout time.Duration) *Seeder {
	return &Seeder{
		stations:    stations,
		client:      &http.Client{Timeout: timeout},
		overpassURL: overpassURL,
	}
}

// Run seeds every station in the list. Idempotent: stations that
// already exist (keyed by name) are left untouched.
func (s *Seeder) Run(ctx context.Context, list []StationSeed) error {
	created := 0
	for _, entry := range list {
		station := &models.Station{
			Name:        entry.Name,
			NameKana:    entry.NameKana,
			Latitude:    entry.Lat,
			Longitude:   entry.Lng,
			PolygonData: s.lookupPolygon(ctx, entry),
		}

		_, isNew, err := s.stations.GetOrCreate(ctx, station)
		if err != nil {
			return fmt.Errorf("failed to seed station %q: %w", entry.Name, err)
		}
		if isNew {
			created++
			log.Info().Str("station", entry.Name).Msg("Station created")
		} else {
			log.Debug().Str("station", entry.Name).Msg("Station already exists")
		}
	}

	log.Info().Int("created", created).Int("total", len(list)).Msg("Station seeding finished")
	return nil
}

// overpassResponse is the slice of the Overpass reply the seeder reads
type overpassResponse struct {
	Elements []struct {
		Geometry []struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"geometry"`
	} `json:"elements"`
}

// lookupPolygon resolves a station's boundary from Overpass. Any
// failure or empty result degrades to the fallback octagon; this
// method never returns an error.
func (s *Seeder) lookupPolygon(ctx context.Context, entry StationSeed) string {
	query := fmt.Sprintf(`
[out:json][timeout:25];
(
  way["railway"="station"]["name"~"%[1]s",i](around:200,%[2]f,%[3]f);
  way["building"]["name"~"%[1]s",i](around:200,%[2]f,%[3]f);
  way["amenity"="station"]["name"~"%[1]s",i](around:200,%[2]f,%[3]f);
);
out geom;
`, entry.Name, entry.Lat, entry.Lng)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.overpassURL, strings.NewReader(query))
	if err != nil {
		return geo.FallbackPolygonJSON(entry.Lat, entry.Lng)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("station", entry.Name).Msg("Polygon lookup failed, using fallback")
		return geo.FallbackPolygonJSON(entry.Lat, entry.Lng)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("station", entry.Name).Msg("Polygon lookup failed, using fallback")
		return geo.FallbackPolygonJSON(entry.Lat, entry.Lng)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Warn().Err(err).Str("station", entry.Name).Msg("Polygon response unreadable, using fallback")
		return geo.FallbackPolygonJSON(entry.Lat, entry.Lng)
	}

	for _, element := range parsed.Elements {
		if len(element.Geometry) < 3 {
			continue
		}
		ring := make([][2]float64, 0, len(element.Geometry))
		for _, node := range element.Geometry {
			ring = append(ring, [2]float64{node.Lon, node.Lat})
		}
		data, err := json.Marshal(geo.Polygon{Type: "Polygon", Coordinates: [][][2]float64{ring}})
		if err != nil {
			break
		}
		return string(data)
	}

	return geo.FallbackPolygonJSON(entry.Lat, entry.Lng)
}
