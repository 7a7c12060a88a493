package emergency

import (
	"context"
	"errors"
	"log"
	"time"

	"backend-safewalk/internal/db"
	"backend-safewalk/internal/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrAlertNotFound   = errors.New("alert not found")
	ErrContactNotFound = errors.New("contact not found")
	ErrContactInvalid  = errors.New("contact name and phone number are required")
	ErrTooManyContacts = errors.New("maximum number of emergency contacts reached")
	ErrMessageRequired = errors.New("message is required")
)

const defaultSOSMessage = "SOS alert triggered. User may be in danger."

type Service struct {
	db          db.Querier
	notifier    Notifier
	collector   *metrics.Collector
	maxContacts int

	now func() time.Time
}

func NewService(q db.Querier, notifier Notifier, collector *metrics.Collector, maxContacts int) *Service {
	return &Service{
		db:          q,
		notifier:    notifier,
		collector:   collector,
		maxContacts: maxContacts,
		now:         time.Now,
	}
}

// TriggerSOS persists a danger alert and then notifies the user's
// notify-on-sos contacts. The alert survives any notification trouble;
// delivery problems only shrink the reported delivered count.
func (s *Service) TriggerSOS(ctx context.Context, userID string, req SOSRequest) (Alert, int, error) {
	lat, lng := req.Latitude, req.Longitude
	if lat == nil || lng == nil {
		var latest struct{ lat, lng float64 }
		err := s.db.QueryRow(ctx, `
			SELECT latitude, longitude
			FROM location_history WHERE user_id=$1
			ORDER BY recorded_at DESC
			LIMIT 1
		`, userID).Scan(&latest.lat, &latest.lng)
		switch {
		case err == nil:
			lat, lng = &latest.lat, &latest.lng
		case errors.Is(err, pgx.ErrNoRows):
		default:
			return Alert{}, 0, err
		}
	}

	message := req.Message
	if message == "" {
		message = defaultSOSMessage
	}

	alert := Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      AlertTypeSOS,
		Severity:  SeverityDanger,
		Message:   message,
		Latitude:  lat,
		Longitude: lng,
		AudioRef:  req.AudioRef,
		CreatedAt: s.now().UTC(),
	}
	if err := s.insertAlert(ctx, alert); err != nil {
		return Alert{}, 0, err
	}
	s.collector.RecordSOSTriggered()

	contacts, err := s.contactsToNotify(ctx, userID)
	if err != nil {
		log.Printf("sos alert %s: contact lookup failed: %v", alert.ID, err)
		return alert, 0, nil
	}
	if len(contacts) == 0 {
		return alert, 0, nil
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE safety_alerts SET contacts_notified=TRUE WHERE id=$1
	`, alert.ID); err != nil {
		log.Printf("sos alert %s: flagging notified failed: %v", alert.ID, err)
	} else {
		alert.ContactsNotified = true
	}

	delivered, err := s.notifier.NotifySOS(ctx, alert, contacts)
	if err != nil {
		log.Printf("sos alert %s: notification failed after %d of %d deliveries: %v",
			alert.ID, delivered, len(contacts), err)
	}
	return alert, delivered, nil
}

// Report persists a user-submitted safety issue. No contacts are notified.
func (s *Service) Report(ctx context.Context, userID string, req ReportRequest) (Alert, error) {
	if req.Message == "" {
		return Alert{}, ErrMessageRequired
	}

	alertType := req.Type
	if alertType == "" {
		alertType = AlertTypeUserReport
	}
	severity := req.Severity
	if severity == "" {
		severity = SeverityWarning
	}

	alert := Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      alertType,
		Severity:  severity,
		Message:   req.Message,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedAt: s.now().UTC(),
	}
	if err := s.insertAlert(ctx, alert); err != nil {
		return Alert{}, err
	}
	return alert, nil
}

// Resolve marks the alert resolved. Resolving twice keeps the first
// resolution timestamp.
func (s *Service) Resolve(ctx context.Context, alertID, userID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE safety_alerts
		SET is_resolved=TRUE, resolved_at=COALESCE(resolved_at, $3)
		WHERE id=$1 AND user_id=$2
	`, alertID, userID, s.now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (s *Service) Alerts(ctx context.Context, userID string, limit, offset int, includeResolved bool) ([]Alert, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, alert_type, severity, message, latitude, longitude,
		       COALESCE(audio_file_path, ''), contacts_notified, is_resolved,
		       created_at, resolved_at
		FROM safety_alerts
		WHERE user_id=$1 AND ($2 OR is_resolved=FALSE)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, userID, includeResolved, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		alert := Alert{UserID: userID}
		if err := rows.Scan(&alert.ID, &alert.Type, &alert.Severity, &alert.Message,
			&alert.Latitude, &alert.Longitude, &alert.AudioRef, &alert.ContactsNotified,
			&alert.IsResolved, &alert.CreatedAt, &alert.ResolvedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (s *Service) insertAlert(ctx context.Context, alert Alert) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO safety_alerts
			(id, user_id, alert_type, severity, message, latitude, longitude,
			 audio_file_path, contacts_notified, is_resolved, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, alert.ID, alert.UserID, alert.Type, alert.Severity, alert.Message,
		alert.Latitude, alert.Longitude, alert.AudioRef, alert.ContactsNotified,
		alert.IsResolved, alert.CreatedAt)
	return err
}

func (s *Service) contactsToNotify(ctx context.Context, userID string) ([]Contact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(relationship, ''), phone_number, COALESCE(email, ''),
		       is_primary, notify_on_sos, notify_on_location_share, created_at
		FROM emergency_contacts
		WHERE user_id=$1 AND notify_on_sos=TRUE
		ORDER BY is_primary DESC, created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows, userID)
}

func (s *Service) Contacts(ctx context.Context, userID string) ([]Contact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(relationship, ''), phone_number, COALESCE(email, ''),
		       is_primary, notify_on_sos, notify_on_location_share, created_at
		FROM emergency_contacts
		WHERE user_id=$1
		ORDER BY is_primary DESC, created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows, userID)
}

func scanContacts(rows pgx.Rows, userID string) ([]Contact, error) {
	var contacts []Contact
	for rows.Next() {
		contact := Contact{UserID: userID}
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Relationship,
			&contact.PhoneNumber, &contact.Email, &contact.IsPrimary,
			&contact.NotifyOnSOS, &contact.NotifyOnLocationShare, &contact.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (s *Service) Contact(ctx context.Context, userID, contactID string) (Contact, error) {
	contact := Contact{ID: contactID, UserID: userID}
	err := s.db.QueryRow(ctx, `
		SELECT name, COALESCE(relationship, ''), phone_number, COALESCE(email, ''),
		       is_primary, notify_on_sos, notify_on_location_share, created_at
		FROM emergency_contacts
		WHERE id=$1 AND user_id=$2
	`, contactID, userID).Scan(&contact.Name, &contact.Relationship, &contact.PhoneNumber,
		&contact.Email, &contact.IsPrimary, &contact.NotifyOnSOS,
		&contact.NotifyOnLocationShare, &contact.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrContactNotFound
	}
	if err != nil {
		return Contact{}, err
	}
	return contact, nil
}

// AddContact stores a new emergency contact. The first contact of a user
// always becomes primary; asking for primary demotes the current one.
func (s *Service) AddContact(ctx context.Context, userID string, req ContactRequest) (Contact, error) {
	if req.Name == "" || req.PhoneNumber == "" {
		return Contact{}, ErrContactInvalid
	}

	var count int
	if err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM emergency_contacts WHERE user_id=$1
	`, userID).Scan(&count); err != nil {
		return Contact{}, err
	}
	if count >= s.maxContacts {
		return Contact{}, ErrTooManyContacts
	}

	contact := Contact{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Name:                  req.Name,
		Relationship:          req.Relationship,
		PhoneNumber:           req.PhoneNumber,
		Email:                 req.Email,
		IsPrimary:             req.IsPrimary,
		NotifyOnSOS:           true,
		NotifyOnLocationShare: true,
		CreatedAt:             s.now().UTC(),
	}
	if req.NotifyOnSOS != nil {
		contact.NotifyOnSOS = *req.NotifyOnSOS
	}
	if req.NotifyOnLocationShare != nil {
		contact.NotifyOnLocationShare = *req.NotifyOnLocationShare
	}

	if count == 0 || contact.IsPrimary {
		if contact.IsPrimary {
			if err := s.demotePrimary(ctx, userID); err != nil {
				return Contact{}, err
			}
		}
		contact.IsPrimary = true
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO emergency_contacts
			(id, user_id, name, relationship, phone_number, email,
			 is_primary, notify_on_sos, notify_on_location_share, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10)
	`, contact.ID, contact.UserID, contact.Name, contact.Relationship,
		contact.PhoneNumber, contact.Email, contact.IsPrimary,
		contact.NotifyOnSOS, contact.NotifyOnLocationShare, contact.CreatedAt)
	if err != nil {
		return Contact{}, err
	}
	return contact, nil
}

// UpdateContact patches the given fields. Setting is_primary true demotes
// the current primary; setting it false is ignored, someone must hold it.
func (s *Service) UpdateContact(ctx context.Context, userID, contactID string, upd ContactUpdate) (Contact, error) {
	contact, err := s.Contact(ctx, userID, contactID)
	if err != nil {
		return Contact{}, err
	}

	if upd.Name != nil {
		contact.Name = *upd.Name
	}
	if upd.Relationship != nil {
		contact.Relationship = *upd.Relationship
	}
	if upd.PhoneNumber != nil {
		contact.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Email != nil {
		contact.Email = *upd.Email
	}
	if upd.NotifyOnSOS != nil {
		contact.NotifyOnSOS = *upd.NotifyOnSOS
	}
	if upd.NotifyOnLocationShare != nil {
		contact.NotifyOnLocationShare = *upd.NotifyOnLocationShare
	}
	if upd.IsPrimary != nil && *upd.IsPrimary && !contact.IsPrimary {
		if err := s.demotePrimary(ctx, userID); err != nil {
			return Contact{}, err
		}
		contact.IsPrimary = true
	}

	_, err = s.db.Exec(ctx, `
		UPDATE emergency_contacts
		SET name=$3, relationship=$4, phone_number=$5, email=$6,
		    is_primary=$7, notify_on_sos=$8, notify_on_location_share=$9, updated_at=$10
		WHERE id=$1 AND user_id=$2
	`, contactID, userID, contact.Name, contact.Relationship, contact.PhoneNumber,
		contact.Email, contact.IsPrimary, contact.NotifyOnSOS,
		contact.NotifyOnLocationShare, s.now().UTC())
	if err != nil {
		return Contact{}, err
	}
	return contact, nil
}

// DeleteContact removes a contact. Deleting the primary promotes the oldest
// remaining contact.
func (s *Service) DeleteContact(ctx context.Context, userID, contactID string) error {
	contact, err := s.Contact(ctx, userID, contactID)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `
		DELETE FROM emergency_contacts WHERE id=$1 AND user_id=$2
	`, contactID, userID); err != nil {
		return err
	}

	if contact.IsPrimary {
		_, err = s.db.Exec(ctx, `
			UPDATE emergency_contacts SET is_primary=TRUE
			WHERE id=(
				SELECT id FROM emergency_contacts
				WHERE user_id=$1
				ORDER BY created_at ASC
				LIMIT 1
			)
		`, userID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) demotePrimary(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE emergency_contacts SET is_primary=FALSE
		WHERE user_id=$1 AND is_primary=TRUE
	`, userID)
	return err
}
