package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"station-tracker-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// VisitRepository is the storage contract the visit ledger needs.
// Implementations scope every operation by the owning user id.
type VisitRepository interface {
	Create(ctx context.Context, visit *models.StationVisit) error
	ListByUser(ctx context.Context, userID string) ([]*models.StationVisit, error)
	GetByID(ctx context.Context, userID, visitID string) (*models.StationVisit, error)
	Update(ctx context.Context, visit *models.StationVisit) error
	Delete(ctx context.Context, userID, visitID string) error
	Stats(ctx context.Context, userID string) (*models.VisitStats, error)
}

// ProfileGetter is the slice of the user store the notifier path needs
type ProfileGetter interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Notifier delivers a push notification to a device token
type Notifier interface {
	Push(ctx context.Context, deviceToken, title, body string) error
}

// VisitService handles the per-user visit ledger
type VisitService struct {
	visitRepo   VisitRepository
	stationRepo StationRepository
	profiles    ProfileGetter
	notifier    Notifier
}

// NewVisitService creates a new visit service. notifier may be nil,
// in which case check-in notifications are skipped.
func NewVisitService(visitRepo VisitRepository, stationRepo StationRepository, profiles ProfileGetter, notifier Notifier) *VisitService {
	return &VisitService{
		visitRepo:   visitRepo,
		stationRepo: stationRepo,
		profiles:    profiles,
		notifier:    notifier,
	}
}

// VisitDuration derives the whole minutes between arrival and
// departure, rounded down. Callers must ensure departedAt is not
// before arrivedAt; the write paths reject that ordering.
func VisitDuration(arrivedAt, departedAt time.Time) int {
	return int(departedAt.Sub(arrivedAt) / time.Minute)
}

// VisitInput carries the client-writable visit fields. The owner and
// the duration are always derived server-side.
type VisitInput struct {
	StationID  string
	ArrivedAt  time.Time
	DepartedAt *time.Time
	Weather    string
	Notes      string
	Latitude   float64
	Longitude  float64
}

// VisitUpdate carries a partial update; nil means unchanged.
// ClearDeparted removes the departure and the derived duration.
type VisitUpdate struct {
	StationID     *string
	ArrivedAt     *time.Time
	DepartedAt    *time.Time
	ClearDeparted bool
	Weather       *string
	Notes         *string
	Latitude      *float64
	Longitude     *float64
}

// Create records a check-in for userID. The station must exist, a
// departure must not precede the arrival, and the
// (user, station, arrived_at) triple must be new.
func (s *VisitService) Create(ctx context.Context, userID string, input VisitInput) (*models.StationVisit, error) {
	station, err := s.stationRepo.GetByID(ctx, input.StationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.FieldErrors{"station": "station does not exist"}
		}
		return nil, err
	}

	visit := &models.StationVisit{
		ID:         uuid.New().String(),
		UserID:     userID,
		StationID:  station.ID,
		ArrivedAt:  input.ArrivedAt,
		DepartedAt: input.DepartedAt,
		Weather:    input.Weather,
		Notes:      input.Notes,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
	}

	if err := deriveDuration(visit); err != nil {
		return nil, err
	}

	if err := s.visitRepo.Create(ctx, visit); err != nil {
		if errors.Is(err, models.ErrDuplicateVisit) {
			return nil, models.FieldErrors{"arrived_at": "a visit to this station at this time already exists"}
		}
		return nil, err
	}
	visit.Station = station

	s.notifyCheckIn(userID, station.Name)

	return visit, nil
}

// List returns userID's visits, newest arrival first
func (s *VisitService) List(ctx context.Context, userID string) ([]*models.StationVisit, error) {
	return s.visitRepo.ListByUser(ctx, userID)
}

// Get returns a single visit owned by userID
func (s *VisitService) Get(ctx context.Context, userID, visitID string) (*models.StationVisit, error) {
	return s.visitRepo.GetByID(ctx, userID, visitID)
}

// Update applies a partial update to a visit owned by userID and
// re-derives the duration from the resulting timestamps.
func (s *VisitService) Update(ctx context.Context, userID, visitID string, update VisitUpdate) (*models.StationVisit, error) {
	visit, err := s.visitRepo.GetByID(ctx, userID, visitID)
	if err != nil {
		return nil, err
	}

	if update.StationID != nil && *update.StationID != visit.StationID {
		station, err := s.stationRepo.GetByID(ctx, *update.StationID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.FieldErrors{"station": "station does not exist"}
			}
			return nil, err
		}
		visit.StationID = station.ID
		visit.Station = station
	}
	if update.ArrivedAt != nil {
		visit.ArrivedAt = *update.ArrivedAt
	}
	if update.ClearDeparted {
		visit.DepartedAt = nil
	} else if update.DepartedAt != nil {
		visit.DepartedAt = update.DepartedAt
	}
	if update.Weather != nil {
		visit.Weather = *update.Weather
	}
	if update.Notes != nil {
		visit.Notes = *update.Notes
	}
	if update.Latitude != nil {
		visit.Latitude = *update.Latitude
	}
	if update.Longitude != nil {
		visit.Longitude = *update.Longitude
	}

	if err := deriveDuration(visit); err != nil {
		return nil, err
	}

	if err := s.visitRepo.Update(ctx, visit); err != nil {
		if errors.Is(err, models.ErrDuplicateVisit) {
			return nil, models.FieldErrors{"arrived_at": "a visit to this station at this time already exists"}
		}
		return nil, err
	}
	return visit, nil
}

// Delete removes a visit owned by userID
func (s *VisitService) Delete(ctx context.Context, userID, visitID string) error {
	return s.visitRepo.Delete(ctx, userID, visitID)
}

// Stats returns the aggregate over userID's own visits only
func (s *VisitService) Stats(ctx context.Context, userID string) (*models.VisitStats, error) {
	return s.visitRepo.Stats(ctx, userID)
}

// deriveDuration sets DurationMinutes from the visit's timestamps:
// unset without a departure, rejected when the departure precedes the
// arrival, floor minutes otherwise.
func deriveDuration(visit *models.StationVisit) error {
	if visit.DepartedAt == nil {
		visit.DurationMinutes = nil
		return nil
	}
	if visit.DepartedAt.Before(visit.ArrivedAt) {
		return models.FieldErrors{"departed_at": "departure cannot be before arrival"}
	}
	minutes := VisitDuration(visit.ArrivedAt, *visit.DepartedAt)
	visit.DurationMinutes = &minutes
	return nil
}

// notifyCheckIn fires a push notification for a recorded visit when the
// owner has opted in and registered a device token. Delivery is best
// effort and never blocks or fails the request.
func (s *VisitService) notifyCheckIn(userID, stationName string) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		profile, err := s.profiles.GetProfile(ctx, userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile for notification")
			return
		}
		if !profile.EnableNotifications || profile.PushToken == nil {
			return
		}

		body := fmt.Sprintf("Visit recorded at %s", stationName)
		if err := s.notifier.Push(ctx, *profile.PushToken, "Station Tracker", body); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send check-in notification")
		}
	}()
}
