package repository

import (
	"context"
	"fmt"

	"station-tracker-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StationRepository handles database operations for the station catalog
type StationRepository struct {
	db *pgxpool.Pool
}

// NewStationRepository creates a new station repository
func NewStationRepository(db *pgxpool.Pool) *StationRepository {
	return &StationRepository{db: db}
}

// List returns the full catalog sorted by name ascending
func (r *StationRepository) List(ctx context.Context) ([]*models.Station, error) {
	query := `
		SELECT id, name, name_kana, latitude, longitude, polygon_data, created_at
		FROM stations
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	defer rows.Close()

	var stations []*models.Station
	for rows.Next() {
		var st models.Station
		err := rows.Scan(
			&st.ID, &st.Name, &st.NameKana, &st.Latitude, &st.Longitude,
			&st.PolygonData, &st.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stations: %w", err)
	}
	return stations, nil
}

// GetByID retrieves a station by ID
func (r *StationRepository) GetByID(ctx context.Context, id string) (*models.Station, error) {
	query := `
		SELECT id, name, name_kana, latitude, longitude, polygon_data, created_at
		FROM stations
		WHERE id = $1
	`
	var st models.Station
	err := r.db.QueryRow(ctx, query, id).Scan(
		&st.ID, &st.Name, &st.NameKana, &st.Latitude, &st.Longitude,
		&st.PolygonData, &st.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("station %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get station: %w", err)
	}
	return &st, nil
}

// GetByName retrieves a station by its unique name
func (r *StationRepository) GetByName(ctx context.Context, name string) (*models.Station, error) {
	query := `
		SELECT id, name, name_kana, latitude, longitude, polygon_data, created_at
		FROM stations
		WHERE name = $1
	`
	var st models.Station
	err := r.db.QueryRow(ctx, query, name).Scan(
		&st.ID, &st.Name, &st.NameKana, &st.Latitude, &st.Longitude,
		&st.PolygonData, &st.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("station %q: %w", name, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get station by name: %w", err)
	}
	return &st, nil
}

// Create inserts a new station
func (r *StationRepository) Create(ctx context.Context, st *models.Station) error {
	query := `
		INSERT INTO stations (id, name, name_kana, latitude, longitude, polygon_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		st.ID, st.Name, st.NameKana, st.Latitude, st.Longitude, st.PolygonData, st.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("station %q already exists: %w", st.Name, models.ErrInvalidInput)
		}
		return fmt.Errorf("failed to create station: %w", err)
	}
	return nil
}
