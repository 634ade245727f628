package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"station-tracker-backend/internal/models"
	"station-tracker-backend/internal/repository/memstore"
	"station-tracker-backend/internal/services"

	"github.com/google/uuid"
)

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type testLedger struct {
	visits   *services.VisitService
	stations *memstore.StationStore
	users    *memstore.UserStore
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()
	stations := memstore.NewStationStore()
	users := memstore.NewUserStore()
	visits := services.NewVisitService(memstore.NewVisitStore(stations), stations, users, nil)
	return &testLedger{visits: visits, stations: stations, users: users}
}

func (l *testLedger) addStation(t *testing.T, name string) *models.Station {
	t.Helper()
	st := &models.Station{
		ID:        uuid.New().String(),
		Name:      name,
		Latitude:  35.6812,
		Longitude: 139.7671,
		CreatedAt: time.Now(),
	}
	if err := l.stations.Create(context.Background(), st); err != nil {
		t.Fatalf("create station: %v", err)
	}
	return st
}

func timePtr(t time.Time) *time.Time { return &t }

func TestVisitDuration(t *testing.T) {
	tests := []struct {
		name     string
		departed time.Duration
		want     int
	}{
		{"seventy five minutes", 75 * time.Minute, 75},
		{"rounds down", 90 * time.Second, 1},
		{"under a minute", 59 * time.Second, 0},
		{"zero", 0, 0},
		{"two hours", 2 * time.Hour, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.VisitDuration(baseTime, baseTime.Add(tt.departed))
			if got != tt.want {
				t.Fatalf("VisitDuration = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVisitService_Create_ComputesDuration(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	visit, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID:  st.ID,
		ArrivedAt:  baseTime,
		DepartedAt: timePtr(baseTime.Add(75 * time.Minute)),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if visit.DurationMinutes == nil || *visit.DurationMinutes != 75 {
		t.Fatalf("expected duration 75, got %v", visit.DurationMinutes)
	}
	if visit.Station == nil || visit.Station.Name != "東京" {
		t.Fatalf("expected embedded station data, got %+v", visit.Station)
	}
}

func TestVisitService_Create_NoDepartureNoDuration(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	visit, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID: st.ID,
		ArrivedAt: baseTime,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if visit.DurationMinutes != nil {
		t.Fatalf("expected nil duration, got %d", *visit.DurationMinutes)
	}
}

func TestVisitService_Create_RejectsDepartureBeforeArrival(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	_, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID:  st.ID,
		ArrivedAt:  baseTime,
		DepartedAt: timePtr(baseTime.Add(-time.Minute)),
	})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	var fieldErrs models.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	if _, ok := fieldErrs["departed_at"]; !ok {
		t.Fatalf("expected departed_at field error, got %v", fieldErrs)
	}
}

func TestVisitService_Create_RejectsDuplicateTriple(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")
	input := services.VisitInput{StationID: st.ID, ArrivedAt: baseTime}

	if _, err := l.visits.Create(context.Background(), "alice", input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := l.visits.Create(context.Background(), "alice", input)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for duplicate triple, got %v", err)
	}

	// A different user may record the same station and arrival time.
	if _, err := l.visits.Create(context.Background(), "bob", input); err != nil {
		t.Fatalf("other user's create: %v", err)
	}
}

func TestVisitService_Create_UnknownStation(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID: uuid.New().String(),
		ArrivedAt: baseTime,
	})
	var fieldErrs models.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fieldErrs["station"]; !ok {
		t.Fatalf("expected station field error, got %v", fieldErrs)
	}
}

func TestVisitService_Update_RecomputesDuration(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	visit, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID: st.ID,
		ArrivedAt: baseTime,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := l.visits.Update(context.Background(), "alice", visit.ID, services.VisitUpdate{
		DepartedAt: timePtr(baseTime.Add(42 * time.Minute)),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DurationMinutes == nil || *updated.DurationMinutes != 42 {
		t.Fatalf("expected duration 42, got %v", updated.DurationMinutes)
	}

	// Moving the arrival recomputes against the stored departure.
	updated, err = l.visits.Update(context.Background(), "alice", visit.ID, services.VisitUpdate{
		ArrivedAt: timePtr(baseTime.Add(12 * time.Minute)),
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if updated.DurationMinutes == nil || *updated.DurationMinutes != 30 {
		t.Fatalf("expected duration 30, got %v", updated.DurationMinutes)
	}
}

func TestVisitService_Update_ClearsDeparture(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	visit, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID:  st.ID,
		ArrivedAt:  baseTime,
		DepartedAt: timePtr(baseTime.Add(42 * time.Minute)),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := l.visits.Update(context.Background(), "alice", visit.ID, services.VisitUpdate{
		ClearDeparted: true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.DepartedAt != nil {
		t.Fatalf("expected departure cleared, got %v", updated.DepartedAt)
	}
	if updated.DurationMinutes != nil {
		t.Fatalf("expected duration cleared, got %d", *updated.DurationMinutes)
	}
}

func TestVisitService_Update_RejectsDuplicateTriple(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	if _, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID: st.ID,
		ArrivedAt: baseTime,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID: st.ID,
		ArrivedAt: baseTime.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	// Moving the arrival onto the first visit's slot collides.
	_, err = l.visits.Update(context.Background(), "alice", second.ID, services.VisitUpdate{
		ArrivedAt: timePtr(baseTime),
	})
	if err == nil {
		t.Fatal("expected duplicate triple error")
	}
	var fieldErrs models.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fieldErrs["arrived_at"]; !ok {
		t.Fatalf("expected arrived_at field error, got %v", fieldErrs)
	}

	// The collision must not leave a partial move behind.
	kept, err := l.visits.Get(context.Background(), "alice", second.ID)
	if err != nil {
		t.Fatalf("Get after failed update: %v", err)
	}
	if !kept.ArrivedAt.Equal(baseTime.Add(time.Hour)) {
		t.Fatalf("arrival moved despite collision: %v", kept.ArrivedAt)
	}
}

func TestVisitService_Update_RejectsNegativeDuration(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	visit, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID: st.ID,
		ArrivedAt: baseTime,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = l.visits.Update(context.Background(), "alice", visit.ID, services.VisitUpdate{
		DepartedAt: timePtr(baseTime.Add(-time.Hour)),
	})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestVisitService_OwnershipScoping(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	visit, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
		StationID: st.ID,
		ArrivedAt: baseTime,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := l.visits.Get(context.Background(), "bob", visit.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Get as non-owner: expected ErrNotFound, got %v", err)
	}
	if _, err := l.visits.Update(context.Background(), "bob", visit.ID, services.VisitUpdate{}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Update as non-owner: expected ErrNotFound, got %v", err)
	}
	if err := l.visits.Delete(context.Background(), "bob", visit.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Delete as non-owner: expected ErrNotFound, got %v", err)
	}

	// The record is untouched and the owner still sees it.
	visits, err := l.visits.List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("expected 1 visit, got %d", len(visits))
	}
}

func TestVisitService_List_NewestFirst(t *testing.T) {
	l := newTestLedger(t)
	st := l.addStation(t, "東京")

	for _, offset := range []time.Duration{0, 2 * time.Hour, time.Hour} {
		_, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
			StationID: st.ID,
			ArrivedAt: baseTime.Add(offset),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	visits, err := l.visits.List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(visits) != 3 {
		t.Fatalf("expected 3 visits, got %d", len(visits))
	}
	for i := 1; i < len(visits); i++ {
		if visits[i].ArrivedAt.After(visits[i-1].ArrivedAt) {
			t.Fatalf("visits not ordered newest first: %v before %v",
				visits[i-1].ArrivedAt, visits[i].ArrivedAt)
		}
	}
}

func TestVisitService_Stats_Empty(t *testing.T) {
	l := newTestLedger(t)

	stats, err := l.visits.Stats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalVisits != 0 || stats.UniqueStations != 0 || stats.AvgDuration != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
	if stats.MostVisited != nil {
		t.Fatalf("expected nil most_visited, got %+v", stats.MostVisited)
	}
}

func TestVisitService_Stats_Aggregates(t *testing.T) {
	l := newTestLedger(t)
	tokyo := l.addStation(t, "東京")
	kanda := l.addStation(t, "神田")

	create := func(st *models.Station, arrived time.Time, departed *time.Time) {
		t.Helper()
		_, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
			StationID:  st.ID,
			ArrivedAt:  arrived,
			DepartedAt: departed,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	create(tokyo, baseTime, timePtr(baseTime.Add(60*time.Minute)))
	create(tokyo, baseTime.Add(24*time.Hour), timePtr(baseTime.Add(24*time.Hour+90*time.Minute)))
	create(kanda, baseTime.Add(48*time.Hour), nil)

	// Another user's visits must not leak into the aggregate.
	_, err := l.visits.Create(context.Background(), "bob", services.VisitInput{
		StationID:  kanda.ID,
		ArrivedAt:  baseTime,
		DepartedAt: timePtr(baseTime.Add(999 * time.Minute)),
	})
	if err != nil {
		t.Fatalf("bob create: %v", err)
	}

	stats, err := l.visits.Stats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalVisits != 3 {
		t.Fatalf("total_visits = %d, want 3", stats.TotalVisits)
	}
	if stats.UniqueStations != 2 {
		t.Fatalf("unique_stations = %d, want 2", stats.UniqueStations)
	}
	// Average over the two computed durations only.
	if stats.AvgDuration != 75 {
		t.Fatalf("avg_duration = %g, want 75", stats.AvgDuration)
	}
	if stats.MostVisited == nil || stats.MostVisited.StationName != "東京" || stats.MostVisited.VisitCount != 2 {
		t.Fatalf("unexpected most_visited: %+v", stats.MostVisited)
	}
}

func TestVisitService_Stats_TieBreaksByName(t *testing.T) {
	l := newTestLedger(t)
	akihabara := l.addStation(t, "秋葉原")
	kanda := l.addStation(t, "神田")

	for _, st := range []*models.Station{kanda, akihabara} {
		_, err := l.visits.Create(context.Background(), "alice", services.VisitInput{
			StationID: st.ID,
			ArrivedAt: baseTime,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	stats, err := l.visits.Stats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.MostVisited == nil || stats.MostVisited.StationName != "神田" {
		t.Fatalf("expected name-ascending tie break, got %+v", stats.MostVisited)
	}
}

type captureNotifier struct {
	pushed chan string
}

func (n *captureNotifier) Push(ctx context.Context, deviceToken, title, body string) error {
	n.pushed <- body
	return nil
}

func TestVisitService_Create_NotifiesOptedInOwner(t *testing.T) {
	stations := memstore.NewStationStore()
	users := memstore.NewUserStore()
	notifier := &captureNotifier{pushed: make(chan string, 1)}
	visits := services.NewVisitService(memstore.NewVisitStore(stations), stations, users, notifier)

	userID := uuid.New().String()
	token := "device-token"
	err := users.CreateUser(context.Background(),
		&models.User{ID: userID, Username: "alice", Email: "alice@x.com"},
		&models.UserProfile{UserID: userID, PushToken: &token, EnableNotifications: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	st := &models.Station{ID: uuid.New().String(), Name: "東京"}
	if err := stations.Create(context.Background(), st); err != nil {
		t.Fatalf("create station: %v", err)
	}

	_, err = visits.Create(context.Background(), userID, services.VisitInput{
		StationID: st.ID,
		ArrivedAt: baseTime,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	select {
	case body := <-notifier.pushed:
		if body != "Visit recorded at 東京" {
			t.Fatalf("unexpected notification body %q", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a push notification")
	}
}
