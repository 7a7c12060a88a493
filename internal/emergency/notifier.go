package emergency

import (
	"context"
	"log"
)

// Notifier delivers an SOS alert to the user's emergency contacts and
// reports how many were actually reached, which may be fewer than requested
// when delivery fails part-way. Real deployments plug in an SMS or email
// gateway here.
type Notifier interface {
	NotifySOS(ctx context.Context, alert Alert, contacts []Contact) (int, error)
}

// LogNotifier writes each would-be notification to the process log.
type LogNotifier struct{}

func (LogNotifier) NotifySOS(_ context.Context, alert Alert, contacts []Contact) (int, error) {
	for _, contact := range contacts {
		log.Printf("sos alert %s: notifying %s at %s", alert.ID, contact.Name, contact.PhoneNumber)
	}
	return len(contacts), nil
}
