package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"station-tracker-backend/internal/models"

	"github.com/google/uuid"
)

// StationRepository is the storage contract the catalog service needs
type StationRepository interface {
	List(ctx context.Context) ([]*models.Station, error)
	GetByID(ctx context.Context, id string) (*models.Station, error)
	GetByName(ctx context.Context, name string) (*models.Station, error)
	Create(ctx context.Context, st *models.Station) error
}

// StationService serves the read-only station catalog
type StationService struct {
	stationRepo StationRepository
}

// NewStationService creates a new station service
func NewStationService(stationRepo StationRepository) *StationService {
	return &StationService{stationRepo: stationRepo}
}

// List returns the catalog sorted by name. The coordinate hints are
// accepted for forward compatibility but intentionally unused.
func (s *StationService) List(ctx context.Context, lat, lng *float64) ([]*models.Station, error) {
	// TODO: implement distance-based filtering on lat/lng
	_ = lat
	_ = lng
	return s.stationRepo.List(ctx)
}

// Get retrieves a station by ID
func (s *StationService) Get(ctx context.Context, id string) (*models.Station, error) {
	return s.stationRepo.GetByID(ctx, id)
}

// GetOrCreate inserts a station keyed by its unique name, returning
// whether a new row was written. Used by the seeding command only.
func (s *StationService) GetOrCreate(ctx context.Context, st *models.Station) (*models.Station, bool, error) {
	existing, err := s.stationRepo.GetByName(ctx, st.Name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up station: %w", err)
	}

	st.ID = uuid.New().String()
	st.CreatedAt = time.Now()
	if err := s.stationRepo.Create(ctx, st); err != nil {
		return nil, false, err
	}
	return st, true, nil
}
