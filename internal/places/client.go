package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend-safewalk/internal/metrics"
	"backend-safewalk/internal/shared/geo"

	"github.com/doyensec/safeurl"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrUnavailable reports that the upstream lookup failed or is circuit-broken.
// Callers must treat it differently from an empty result.
var ErrUnavailable = errors.New("nearby place lookup unavailable")

// Place is a point of interest near a coordinate.
type Place struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Type      string  `json:"type"`
	Address   string  `json:"address"`
	Phone     string  `json:"phone"`
	DistanceM float64 `json:"distance_m"`
}

// Finder looks up points of interest around a coordinate.
type Finder interface {
	Nearby(ctx context.Context, lat, lng float64, radiusM int, kind string) ([]Place, error)
}

// OverpassClient queries the Overpass API for nearby amenities. Outbound
// requests go through an SSRF-guarded client, a rate limiter, and a circuit
// breaker so a degraded upstream fails fast instead of hanging callers.
type OverpassClient struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]Place]
	collector *metrics.Collector
}

// NewOverpassClient builds a client for baseURL. A nil httpClient gets the
// default SSRF-guarded client; tests pass their own to reach local servers.
func NewOverpassClient(baseURL string, httpClient *http.Client, collector *metrics.Collector) *OverpassClient {
	if httpClient == nil {
		config := safeurl.GetConfigBuilder().
			SetTimeout(10 * time.Second).
			SetAllowedSchemes("http", "https").
			SetAllowedPorts(80, 443).
			Build()
		httpClient = safeurl.Client(config).Client
	}

	breaker := gobreaker.NewCircuitBreaker[[]Place](gobreaker.Settings{
		Name:    "overpass",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &OverpassClient{
		baseURL:   baseURL,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(2), 4),
		breaker:   breaker,
		collector: collector,
	}
}

// Nearby returns points of interest of the given kind within radiusM meters.
func (c *OverpassClient) Nearby(ctx context.Context, lat, lng float64, radiusM int, kind string) ([]Place, error) {
	query, err := overpassQuery(lat, lng, radiusM, kind)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	found, err := c.breaker.Execute(func() ([]Place, error) {
		return c.fetch(ctx, lat, lng, kind, query)
	})
	if err != nil {
		c.collector.RecordPOIFailure()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return found, nil
}

func (c *OverpassClient) fetch(ctx context.Context, lat, lng float64, kind, query string) ([]Place, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Elements []struct {
			Type string            `json:"type"`
			ID   int64             `json:"id"`
			Lat  float64           `json:"lat"`
			Lon  float64           `json:"lon"`
			Tags map[string]string `json:"tags"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	var found []Place
	for _, element := range parsed.Elements {
		if element.Type != "node" {
			continue
		}
		name := element.Tags["name"]
		if name == "" {
			name = "Unknown"
		}
		found = append(found, Place{
			ID:        element.ID,
			Name:      name,
			Latitude:  element.Lat,
			Longitude: element.Lon,
			Type:      kind,
			Address:   element.Tags["addr:full"],
			Phone:     element.Tags["phone"],
			DistanceM: geo.DistanceMeters(lat, lng, element.Lat, element.Lon),
		})
	}
	return found, nil
}

func overpassQuery(lat, lng float64, radiusM int, kind string) (string, error) {
	var selector string
	switch kind {
	case "police":
		selector = `node["amenity"="police"]`
	case "hospital":
		selector = `node["amenity"="hospital"]`
	case "shelter":
		selector = `node["social_facility"="shelter"]`
	default:
		return "", fmt.Errorf("unknown place type %q", kind)
	}
	return fmt.Sprintf("[out:json];%s(around:%d,%f,%f);out body;", selector, radiusM, lat, lng), nil
}
