// Package memstore provides in-memory implementations of the service
// repository interfaces. The pgx repositories need a running PostgreSQL
// server, so service and handler tests run against these instead; they
// enforce the same uniqueness and ownership rules as the SQL schema.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"station-tracker-backend/internal/models"
)

// UserStore is an in-memory user and profile repository
type UserStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	profiles map[string]*models.UserProfile
}

// NewUserStore creates an empty user store
func NewUserStore() *UserStore {
	return &UserStore{
		users:    make(map[string]*models.User),
		profiles: make(map[string]*models.UserProfile),
	}
}

// CreateUser inserts a user and its profile atomically
func (s *UserStore) CreateUser(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("create user: %w", models.ErrDuplicateUser)
		}
	}

	u := *user
	p := *profile
	s.users[u.ID] = &u
	s.profiles[p.UserID] = &p
	return nil
}

// GetUserByUsername retrieves a user by username
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
}

// UsernameExists checks if a username is already taken
func (s *UserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// EmailExists checks if an email is already taken
func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// GetProfile retrieves the profile owned by userID
func (s *UserStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user %s: %w", userID, models.ErrNotFound)
	}
	out := *p
	return &out, nil
}

// UpdateProfile writes the profile's mutable fields
func (s *UserStore) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[profile.UserID]
	if !ok {
		return fmt.Errorf("profile for user %s: %w", profile.UserID, models.ErrNotFound)
	}
	existing.PushToken = profile.PushToken
	existing.EnableNotifications = profile.EnableNotifications
	return nil
}

// StationStore is an in-memory station catalog
type StationStore struct {
	mu       sync.RWMutex
	stations map[string]*models.Station
}

// NewStationStore creates an empty station store
func NewStationStore() *StationStore {
	return &StationStore{stations: make(map[string]*models.Station)}
}

// List returns all stations sorted by name ascending
func (s *StationStore) List(ctx context.Context) ([]*models.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Station, 0, len(s.stations))
	for _, st := range s.stations {
		c := *st
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetByID retrieves a station by ID
func (s *StationStore) GetByID(ctx context.Context, id string) (*models.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stations[id]
	if !ok {
		return nil, fmt.Errorf("station %s: %w", id, models.ErrNotFound)
	}
	out := *st
	return &out, nil
}

// GetByName retrieves a station by its unique name
func (s *StationStore) GetByName(ctx context.Context, name string) (*models.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.stations {
		if st.Name == name {
			out := *st
			return &out, nil
		}
	}
	return nil, fmt.Errorf("station %q: %w", name, models.ErrNotFound)
}

// Create inserts a new station, enforcing name uniqueness
func (s *StationStore) Create(ctx context.Context, st *models.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.stations {
		if existing.Name == st.Name {
			return fmt.Errorf("station %q already exists: %w", st.Name, models.ErrInvalidInput)
		}
	}
	c := *st
	s.stations[c.ID] = &c
	return nil
}

// VisitStore is an in-memory visit ledger backed by a StationStore for
// station embedding
type VisitStore struct {
	mu       sync.RWMutex
	visits   map[string]*models.StationVisit
	stations *StationStore
}

// NewVisitStore creates an empty visit store
func NewVisitStore(stations *StationStore) *VisitStore {
	return &VisitStore{
		visits:   make(map[string]*models.StationVisit),
		stations: stations,
	}
}

// Create inserts a visit, enforcing the (user, station, arrived_at) triple
func (s *VisitStore) Create(ctx context.Context, visit *models.StationVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.visits {
		if existing.UserID == visit.UserID &&
			existing.StationID == visit.StationID &&
			existing.ArrivedAt.Equal(visit.ArrivedAt) {
			return fmt.Errorf("create visit: %w", models.ErrDuplicateVisit)
		}
	}
	c := *visit
	c.Station = nil
	s.visits[c.ID] = &c
	return nil
}

func (s *VisitStore) embed(ctx context.Context, visit models.StationVisit) *models.StationVisit {
	if st, err := s.stations.GetByID(ctx, visit.StationID); err == nil {
		visit.Station = st
	}
	return &visit
}

// ListByUser returns the user's visits, newest arrival first
func (s *VisitStore) ListByUser(ctx context.Context, userID string) ([]*models.StationVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.StationVisit
	for _, v := range s.visits {
		if v.UserID == userID {
			out = append(out, s.embed(ctx, *v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArrivedAt.After(out[j].ArrivedAt) })
	return out, nil
}

// GetByID retrieves a visit owned by userID; other owners' visits are
// not found, same as the SQL implementation
func (s *VisitStore) GetByID(ctx context.Context, userID, visitID string) (*models.StationVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.visits[visitID]
	if !ok || v.UserID != userID {
		return nil, fmt.Errorf("visit %s: %w", visitID, models.ErrNotFound)
	}
	return s.embed(ctx, *v), nil
}

// Update writes a visit's mutable fields, scoped by owner
func (s *VisitStore) Update(ctx context.Context, visit *models.StationVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.visits[visit.ID]
	if !ok || existing.UserID != visit.UserID {
		return fmt.Errorf("visit %s: %w", visit.ID, models.ErrNotFound)
	}
	for _, other := range s.visits {
		if other.ID != visit.ID && other.UserID == visit.UserID &&
			other.StationID == visit.StationID && other.ArrivedAt.Equal(visit.ArrivedAt) {
			return fmt.Errorf("update visit: %w", models.ErrDuplicateVisit)
		}
	}
	c := *visit
	c.Station = nil
	s.visits[c.ID] = &c
	return nil
}

// Delete removes a visit owned by userID
func (s *VisitStore) Delete(ctx context.Context, userID, visitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visits[visitID]
	if !ok || v.UserID != userID {
		return fmt.Errorf("visit %s: %w", visitID, models.ErrNotFound)
	}
	delete(s.visits, visitID)
	return nil
}

// Stats aggregates userID's visits with the same semantics as the SQL
// implementation: avg over computed durations only (0 when none), most
// visited by count descending then station name ascending
func (s *VisitStore) Stats(ctx context.Context, userID string) (*models.VisitStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.VisitStats{}
	stationCounts := make(map[string]int)
	durationSum := 0
	durationCount := 0

	for _, v := range s.visits {
		if v.UserID != userID {
			continue
		}
		stats.TotalVisits++
		stationCounts[v.StationID]++
		if v.DurationMinutes != nil {
			durationSum += *v.DurationMinutes
			durationCount++
		}
	}

	stats.UniqueStations = len(stationCounts)
	if durationCount > 0 {
		stats.AvgDuration = float64(durationSum) / float64(durationCount)
	}

	if stats.TotalVisits == 0 {
		return stats, nil
	}

	var best *models.MostVisited
	for stationID, count := range stationCounts {
		st, err := s.stations.GetByID(ctx, stationID)
		if err != nil {
			return nil, err
		}
		if best == nil || count > best.VisitCount ||
			(count == best.VisitCount && st.Name < best.StationName) {
			best = &models.MostVisited{StationName: st.Name, VisitCount: count}
		}
	}
	stats.MostVisited = best

	return stats, nil
}
