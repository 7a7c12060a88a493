package location

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-safewalk/internal/db"
	"backend-safewalk/internal/metrics"
	"backend-safewalk/internal/sharing"
	"backend-safewalk/internal/shared/geo"
	"backend-safewalk/internal/stream"

	"github.com/google/uuid"
)

var ErrInvalidCoordinates = errors.New("latitude must be in [-90,90] and longitude in [-180,180]")

type Service struct {
	db            db.Querier
	hub           *stream.Hub
	store         *sharing.Store
	collector     *metrics.Collector
	retentionDays int
}

func NewService(q db.Querier, hub *stream.Hub, store *sharing.Store, collector *metrics.Collector, retentionDays int) *Service {
	return &Service{
		db:            q,
		hub:           hub,
		store:         store,
		collector:     collector,
		retentionDays: retentionDays,
	}
}

// Record validates and stores a location sample, deriving speed and heading
// from the previous sample when the device omitted them, prunes entries past
// the retention window, and fans the sample out to live tracking watchers.
func (s *Service) Record(ctx context.Context, input Sample) (Sample, error) {
	if input.Latitude < -90 || input.Latitude > 90 ||
		input.Longitude < -180 || input.Longitude > 180 {
		return Sample{}, ErrInvalidCoordinates
	}

	input.ID = uuid.NewString()
	if input.Recorded.IsZero() {
		input.Recorded = time.Now().UTC()
	}

	var prevLat, prevLng float64
	var prevAt time.Time
	prevErr := s.db.QueryRow(ctx, `
		SELECT latitude, longitude, recorded_at
		FROM location_history WHERE user_id=$1
		ORDER BY recorded_at DESC
		LIMIT 1
	`, input.UserID).Scan(&prevLat, &prevLng, &prevAt)

	if prevErr == nil {
		prev := geo.Point{Lat: prevLat, Lng: prevLng, At: prevAt}
		curr := geo.Point{Lat: input.Latitude, Lng: input.Longitude, At: input.Recorded}
		if input.Speed == 0 {
			input.Speed = geo.SpeedMps(prev, curr)
		}
		if input.Heading == 0 {
			input.Heading = geo.Heading(prevLat, prevLng, input.Latitude, input.Longitude)
		}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO location_history (id, user_id, latitude, longitude, accuracy, altitude, speed, heading, recorded_at, ip_address, device_info)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, input.ID, input.UserID, input.Latitude, input.Longitude, input.Accuracy, input.Altitude,
		input.Speed, input.Heading, input.Recorded, input.IPAddress, input.DeviceInfo)
	if err != nil {
		return Sample{}, err
	}
	s.collector.RecordSampleRecorded()

	if s.retentionDays > 0 {
		cutoff := input.Recorded.AddDate(0, 0, -s.retentionDays)
		_, _ = s.db.Exec(ctx, `
			DELETE FROM location_history WHERE user_id=$1 AND recorded_at < $2
		`, input.UserID, cutoff)
	}

	s.broadcast(input)
	return input, nil
}

// History returns stored samples for userID, newest first.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]Sample, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, latitude, longitude, COALESCE(accuracy,0), COALESCE(altitude,0), COALESCE(speed,0), COALESCE(heading,0), recorded_at
		FROM location_history WHERE user_id=$1
		ORDER BY recorded_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var sample Sample
		if err := rows.Scan(&sample.ID, &sample.UserID, &sample.Latitude, &sample.Longitude,
			&sample.Accuracy, &sample.Altitude, &sample.Speed, &sample.Heading, &sample.Recorded); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// Latest returns the most recent sample for userID.
func (s *Service) Latest(ctx context.Context, userID string) (Sample, error) {
	var sample Sample
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, latitude, longitude, COALESCE(accuracy,0), COALESCE(altitude,0), COALESCE(speed,0), COALESCE(heading,0), recorded_at
		FROM location_history WHERE user_id=$1
		ORDER BY recorded_at DESC
		LIMIT 1
	`, userID).Scan(&sample.ID, &sample.UserID, &sample.Latitude, &sample.Longitude,
		&sample.Accuracy, &sample.Altitude, &sample.Speed, &sample.Heading, &sample.Recorded)
	if err != nil {
		return Sample{}, err
	}
	return sample, nil
}

func (s *Service) broadcast(sample Sample) {
	if s.hub == nil || s.store == nil {
		return
	}
	payload, _ := json.Marshal(sample)
	for _, session := range s.store.ListActive(sample.UserID) {
		s.hub.Broadcast(session.Token, payload)
	}
}
