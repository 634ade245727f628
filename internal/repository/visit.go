package repository

import (
	"context"
	"fmt"

	"station-tracker-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VisitRepository handles database operations for station visits.
// Every lookup and mutation is scoped by the owning user id so a
// caller can never observe or touch another user's records.
type VisitRepository struct {
	db *pgxpool.Pool
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db *pgxpool.Pool) *VisitRepository {
	return &VisitRepository{db: db}
}

const visitColumns = `
	v.id, v.user_id, v.station_id, v.arrived_at, v.departed_at,
	v.duration_minutes, v.weather, v.notes, v.latitude, v.longitude,
	s.id, s.name, s.name_kana, s.latitude, s.longitude, s.polygon_data, s.created_at
`

func scanVisit(row pgx.Row) (*models.StationVisit, error) {
	var v models.StationVisit
	var st models.Station
	err := row.Scan(
		&v.ID, &v.UserID, &v.StationID, &v.ArrivedAt, &v.DepartedAt,
		&v.DurationMinutes, &v.Weather, &v.Notes, &v.Latitude, &v.Longitude,
		&st.ID, &st.Name, &st.NameKana, &st.Latitude, &st.Longitude,
		&st.PolygonData, &st.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Station = &st
	return &v, nil
}

// Create inserts a new visit. A (user, station, arrived_at) collision is
// rejected by the table's unique constraint, which also settles the race
// between two concurrent creates for the same triple.
func (r *VisitRepository) Create(ctx context.Context, visit *models.StationVisit) error {
	query := `
		INSERT INTO station_visits
			(id, user_id, station_id, arrived_at, departed_at, duration_minutes,
			 weather, notes, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		visit.ID, visit.UserID, visit.StationID, visit.ArrivedAt, visit.DepartedAt,
		visit.DurationMinutes, visit.Weather, visit.Notes, visit.Latitude, visit.Longitude,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create visit: %w", models.ErrDuplicateVisit)
		}
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

// ListByUser returns the user's visits, newest arrival first, with
// station data embedded.
func (r *VisitRepository) ListByUser(ctx context.Context, userID string) ([]*models.StationVisit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM station_visits v
		JOIN stations s ON s.id = v.station_id
		WHERE v.user_id = $1
		ORDER BY v.arrived_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []*models.StationVisit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}
	return visits, nil
}

// GetByID retrieves a visit owned by userID. A visit belonging to a
// different user is reported as not found, never as forbidden.
func (r *VisitRepository) GetByID(ctx context.Context, userID, visitID string) (*models.StationVisit, error) {
	query := `
		SELECT ` + visitColumns + `
		FROM station_visits v
		JOIN stations s ON s.id = v.station_id
		WHERE v.id = $1 AND v.user_id = $2
	`
	v, err := scanVisit(r.db.QueryRow(ctx, query, visitID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("visit %s: %w", visitID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return v, nil
}

// Update writes the mutable fields of a visit owned by visit.UserID
func (r *VisitRepository) Update(ctx context.Context, visit *models.StationVisit) error {
	query := `
		UPDATE station_visits
		SET station_id = $1, arrived_at = $2, departed_at = $3, duration_minutes = $4,
		    weather = $5, notes = $6, latitude = $7, longitude = $8
		WHERE id = $9 AND user_id = $10
	`
	result, err := r.db.Exec(ctx, query,
		visit.StationID, visit.ArrivedAt, visit.DepartedAt, visit.DurationMinutes,
		visit.Weather, visit.Notes, visit.Latitude, visit.Longitude,
		visit.ID, visit.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update visit: %w", models.ErrDuplicateVisit)
		}
		return fmt.Errorf("failed to update visit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("visit %s: %w", visit.ID, models.ErrNotFound)
	}
	return nil
}

// Delete removes a visit owned by userID
func (r *VisitRepository) Delete(ctx context.Context, userID, visitID string) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM station_visits WHERE id = $1 AND user_id = $2`, visitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete visit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("visit %s: %w", visitID, models.ErrNotFound)
	}
	return nil
}

// Stats computes the per-user visit aggregate in two scoped queries.
// avg_duration averages only rows with a computed duration and comes
// back as 0 when there are none. The most-visited tie break is count
// descending then station name ascending, which keeps it deterministic.
func (r *VisitRepository) Stats(ctx context.Context, userID string) (*models.VisitStats, error) {
	stats := &models.VisitStats{}

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT station_id),
		       COALESCE(AVG(duration_minutes), 0)
		FROM station_visits
		WHERE user_id = $1
	`, userID).Scan(&stats.TotalVisits, &stats.UniqueStations, &stats.AvgDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate visits: %w", err)
	}

	if stats.TotalVisits == 0 {
		return stats, nil
	}

	var mv models.MostVisited
	err = r.db.QueryRow(ctx, `
		SELECT s.name, COUNT(*) AS visit_count
		FROM station_visits v
		JOIN stations s ON s.id = v.station_id
		WHERE v.user_id = $1
		GROUP BY s.name
		ORDER BY visit_count DESC, s.name ASC
		LIMIT 1
	`, userID).Scan(&mv.StationName, &mv.VisitCount)
	if err != nil {
		return nil, fmt.Errorf("failed to find most visited station: %w", err)
	}
	stats.MostVisited = &mv

	return stats, nil
}
