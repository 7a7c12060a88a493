package sharing

import "time"

// Session grants read access to its owner's live location until ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ShareRequest struct {
	DurationHours int `json:"duration_hours"`
}

type ShareResponse struct {
	Token       string    `json:"token"`
	TrackingURL string    `json:"tracking_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type StatusResponse struct {
	Token          string         `json:"token"`
	OwnerName      string         `json:"owner_name"`
	ExpiresAt      time.Time      `json:"expires_at"`
	LatestLocation *LatestSample  `json:"latest_location"`
}

type LatestSample struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Recorded  time.Time `json:"recorded_at"`
}
