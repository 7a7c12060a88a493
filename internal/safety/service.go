package safety

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"backend-safewalk/internal/db"
	"backend-safewalk/internal/places"
	"backend-safewalk/internal/shared/geo"

	"github.com/jackc/pgx/v5"
)

const (
	poiRadiusM        = 2000
	vehicleSpeedMps   = 20
	erraticHeadingDeg = 90
	behaviorWindow    = 5
)

type Service struct {
	db         db.Querier
	places     places.Finder
	nightStart int
	nightEnd   int
}

func NewService(q db.Querier, finder places.Finder, nightStart, nightEnd int) *Service {
	return &Service{
		db:         q,
		places:     finder,
		nightStart: nightStart,
		nightEnd:   nightEnd,
	}
}

// Recommendations builds the ordered tip list for userID: time-of-day tips,
// then location tips (when coordinates are known), then movement-pattern
// tips, then the general fallback. When nothing else fired the entire
// general set is returned instead of the single rotated tip.
func (s *Service) Recommendations(ctx context.Context, userID string, lat, lng *float64, now time.Time) ([]Recommendation, error) {
	recommendations := s.timeRecommendations(now.Hour())

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
			return nil, err
		}
	}

	if lat != nil && lng != nil {
		locationTips, err := s.locationRecommendations(ctx, *lat, *lng)
		if err != nil {
			// a degraded POI lookup must not fail the whole request
			log.Printf("nearby place lookup failed, skipping location tips: %v", err)
		} else {
			recommendations = append(recommendations, locationTips...)
		}
	}

	behaviorTips, err := s.behaviorRecommendations(ctx, userID)
	if err != nil {
		return nil, err
	}
	recommendations = append(recommendations, behaviorTips...)

	if len(recommendations) == 0 {
		recommendations = append(recommendations, generalTips...)
	} else {
		recommendations = append(recommendations, generalTips[now.Hour()%len(generalTips)])
	}

	return recommendations, nil
}

func (s *Service) timeRecommendations(hour int) []Recommendation {
	var recommendations []Recommendation

	if hour >= s.nightStart || hour < s.nightEnd {
		recommendations = append(recommendations,
			Recommendation{Type: TypeTime, Severity: SeverityWarning,
				Message: "It's late at night. Stay in well-lit areas and avoid walking alone."},
			Recommendation{Type: TypeTime, Severity: SeverityInfo,
				Message: "Consider using ride-sharing services or taxis instead of walking."})
	}

	if hour >= 5 && hour < 8 {
		recommendations = append(recommendations,
			Recommendation{Type: TypeTime, Severity: SeverityInfo,
				Message: "Good morning! If you're out for a morning walk or jog, stick to populated areas."})
	}

	if hour >= 17 && hour < 20 {
		recommendations = append(recommendations,
			Recommendation{Type: TypeTime, Severity: SeverityInfo,
				Message: "As it gets darker, be aware of your surroundings and stay in well-lit areas."})
	}

	return recommendations
}

func (s *Service) locationRecommendations(ctx context.Context, lat, lng float64) ([]Recommendation, error) {
	nearbyPolice, err := s.places.Nearby(ctx, lat, lng, poiRadiusM, "police")
	if err != nil {
		return nil, err
	}
	nearbyHospitals, err := s.places.Nearby(ctx, lat, lng, poiRadiusM, "hospital")
	if err != nil {
		return nil, err
	}

	var recommendations []Recommendation

	if len(nearbyPolice) == 0 {
		recommendations = append(recommendations,
			Recommendation{Type: TypeLocation, Severity: SeverityWarning,
				Message: "No police stations detected nearby. Stay vigilant and keep your phone charged."})
	} else {
		closest := nearbyPolice[0]
		for _, place := range nearbyPolice[1:] {
			if place.DistanceM < closest.DistanceM {
				closest = place
			}
		}
		recommendations = append(recommendations,
			Recommendation{Type: TypeLocation, Severity: SeverityInfo,
				Message: fmt.Sprintf("Nearest police station: %s (%d meters away)", closest.Name, int(closest.DistanceM))})
	}

	if len(nearbyHospitals) == 0 {
		recommendations = append(recommendations,
			Recommendation{Type: TypeLocation, Severity: SeverityInfo,
				Message: "No hospitals detected nearby. Be extra cautious and avoid risky activities."})
	}

	if len(nearbyPolice) == 0 && len(nearbyHospitals) == 0 {
		recommendations = append(recommendations,
			Recommendation{Type: TypeLocation, Severity: SeverityWarning,
				Message: "You appear to be in an isolated area. Consider sharing your location with a trusted contact."})
	}

	return recommendations, nil
}

func (s *Service) behaviorRecommendations(ctx context.Context, userID string) ([]Recommendation, error) {
	samples, err := s.recentPoints(ctx, userID, behaviorWindow)
	if err != nil {
		return nil, err
	}
	if len(samples) < 2 {
		return nil, nil
	}

	var recommendations []Recommendation

	// samples are newest first; speed over the latest pair
	if geo.SpeedMps(samples[1], samples[0]) > vehicleSpeedMps {
		recommendations = append(recommendations,
			Recommendation{Type: TypeBehavior, Severity: SeverityInfo,
				Message: "You appear to be moving quickly. If you're in a vehicle, ensure you're with a trusted driver."})
	}

	if len(samples) >= 3 {
		for i := 0; i+2 < len(samples); i++ {
			h1 := geo.Heading(samples[i].Lat, samples[i].Lng, samples[i+1].Lat, samples[i+1].Lng)
			h2 := geo.Heading(samples[i+1].Lat, samples[i+1].Lng, samples[i+2].Lat, samples[i+2].Lng)
			delta := math.Abs(h2 - h1)
			if delta > 180 {
				delta = 360 - delta
			}
			if delta > erraticHeadingDeg {
				recommendations = append(recommendations,
					Recommendation{Type: TypeBehavior, Severity: SeverityInfo,
						Message: "Your movement pattern appears erratic. If you're lost, consider using the map to find your way."})
				break
			}
		}
	}

	return recommendations, nil
}

func (s *Service) recentPoints(ctx context.Context, userID string, limit int) ([]geo.Point, error) {
	rows, err := s.db.Query(ctx, `
		SELECT latitude, longitude, recorded_at
		FROM location_history WHERE user_id=$1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []geo.Point
	for rows.Next() {
		var p geo.Point
		if err := rows.Scan(&p.Lat, &p.Lng, &p.At); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
