package location

import "time"

// Sample is one recorded position for a user. Samples are immutable once
// stored; speed and heading are derived from the preceding sample when the
// device does not supply them.
type Sample struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy,omitempty"`
	Altitude   float64   `json:"altitude,omitempty"`
	Speed      float64   `json:"speed"`
	Heading    float64   `json:"heading"`
	Recorded   time.Time `json:"recorded_at"`
	IPAddress  string    `json:"-"`
	DeviceInfo string    `json:"-"`
}
