package models

import "time"

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserProfile holds per-user notification preferences, one per user
type UserProfile struct {
	UserID              string    `json:"id"`
	PushToken           *string   `json:"push_token,omitempty"`
	EnableNotifications bool      `json:"enable_notifications"`
	CreatedAt           time.Time `json:"created_at"`
}

// Station is an immutable catalog entry with its boundary polygon as GeoJSON text
type Station struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NameKana    string    `json:"name_kana"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	PolygonData string    `json:"polygon_data"`
	CreatedAt   time.Time `json:"created_at"`
}

// StationVisit is a user's check-in/check-out record at a station.
// Latitude/Longitude are the user's recorded position at check-in,
// not the station's canonical coordinates. DurationMinutes is derived,
// never client-supplied, and stays nil until a departure is known.
type StationVisit struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	StationID       string     `json:"station"`
	ArrivedAt       time.Time  `json:"arrived_at"`
	DepartedAt      *time.Time `json:"departed_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Weather         string     `json:"weather"`
	Notes           string     `json:"notes"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	Station         *Station   `json:"station_data,omitempty"`
}

// MostVisited is the leader of a user's per-station visit counts
type MostVisited struct {
	StationName string `json:"station__name"`
	VisitCount  int    `json:"visit_count"`
}

// VisitStats aggregates a single user's visit records
type VisitStats struct {
	TotalVisits    int          `json:"total_visits"`
	UniqueStations int          `json:"unique_stations"`
	AvgDuration    float64      `json:"avg_duration"`
	MostVisited    *MostVisited `json:"most_visited"`
}
