package emergency

import "time"

const (
	AlertTypeSOS        = "sos"
	AlertTypeUserReport = "user_report"

	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// Alert is a persisted safety alert. SOS alerts additionally carry an audio
// reference and whether emergency contacts were notified.
type Alert struct {
	ID               string     `json:"id"`
	UserID           string     `json:"-"`
	Type             string     `json:"alert_type"`
	Severity         string     `json:"severity"`
	Message          string     `json:"message"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	AudioRef         string     `json:"audio_ref,omitempty"`
	ContactsNotified bool       `json:"contacts_notified"`
	IsResolved       bool       `json:"is_resolved"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

type Contact struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"-"`
	Name                  string    `json:"name"`
	Relationship          string    `json:"relationship,omitempty"`
	PhoneNumber           string    `json:"phone_number"`
	Email                 string    `json:"email,omitempty"`
	IsPrimary             bool      `json:"is_primary"`
	NotifyOnSOS           bool      `json:"notify_on_sos"`
	NotifyOnLocationShare bool      `json:"notify_on_location_share"`
	CreatedAt             time.Time `json:"created_at"`
}

type SOSRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Message   string   `json:"message"`
	AudioRef  string   `json:"audio_ref"`
}

type SOSResponse struct {
	Alert            Alert `json:"alert"`
	ContactsNotified int   `json:"contacts_notified"`
}

type ReportRequest struct {
	Type      string   `json:"type"`
	Severity  string   `json:"severity"`
	Message   string   `json:"message"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type ContactRequest struct {
	Name                  string `json:"name"`
	Relationship          string `json:"relationship"`
	PhoneNumber           string `json:"phone_number"`
	Email                 string `json:"email"`
	IsPrimary             bool   `json:"is_primary"`
	NotifyOnSOS           *bool  `json:"notify_on_sos"`
	NotifyOnLocationShare *bool  `json:"notify_on_location_share"`
}

// ContactUpdate patches only the fields the client sent.
type ContactUpdate struct {
	Name                  *string `json:"name"`
	Relationship          *string `json:"relationship"`
	PhoneNumber           *string `json:"phone_number"`
	Email                 *string `json:"email"`
	IsPrimary             *bool   `json:"is_primary"`
	NotifyOnSOS           *bool   `json:"notify_on_sos"`
	NotifyOnLocationShare *bool   `json:"notify_on_location_share"`
}
