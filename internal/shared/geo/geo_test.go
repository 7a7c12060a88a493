package geo

import (
	"math"
	"testing"
	"time"
)

func TestDistanceMeters(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := DistanceMeters(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100000 || d > 140000 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestDistanceIdentityAndSymmetry(t *testing.T) {
	if d := DistanceMeters(51.5, -0.12, 51.5, -0.12); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}

	ab := DistanceMeters(51.5, -0.12, 48.85, 2.35)
	ba := DistanceMeters(48.85, 2.35, 51.5, -0.12)
	if math.Abs(ab-ba) > 1e-6 {
		t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	points := [][2]float64{
		{51.5, -0.12},
		{48.85, 2.35},
		{40.71, -74.0},
		{-33.87, 151.21},
	}
	for _, p := range points {
		for _, q := range points {
			for _, r := range points {
				pq := DistanceMeters(p[0], p[1], q[0], q[1])
				pr := DistanceMeters(p[0], p[1], r[0], r[1])
				rq := DistanceMeters(r[0], r[1], q[0], q[1])
				if pq > pr+rq+1e-3 {
					t.Fatalf("triangle inequality violated: %v > %v + %v", pq, pr, rq)
				}
			}
		}
	}
}

func TestSpeedMps(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p1 := Point{Lat: -6.2, Lng: 106.816, At: base}
	p2 := Point{Lat: -6.21, Lng: 106.816, At: base.Add(time.Minute)}

	speed := SpeedMps(p1, p2)
	if speed <= 0 {
		t.Fatalf("expected positive speed, got %v", speed)
	}
	// ~1.11 km in 60s
	if speed < 15 || speed > 22 {
		t.Fatalf("unexpected speed: %v", speed)
	}
}

func TestSpeedMpsZeroOrNegativeDelta(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p1 := Point{Lat: -6.2, Lng: 106.816, At: base}
	p2 := Point{Lat: -6.21, Lng: 106.816, At: base}

	if speed := SpeedMps(p1, p2); speed != 0 {
		t.Fatalf("expected zero speed for zero delta, got %v", speed)
	}

	p2.At = base.Add(-time.Minute)
	if speed := SpeedMps(p1, p2); speed != 0 {
		t.Fatalf("expected zero speed for negative delta, got %v", speed)
	}
}

func TestHeadingRange(t *testing.T) {
	coords := [][4]float64{
		{0, 0, 1, 0},
		{0, 0, -1, 0},
		{0, 0, 0, 1},
		{0, 0, 0, -1},
		{51.5, -0.12, 48.85, 2.35},
		{-33.87, 151.21, 40.71, -74.0},
	}
	for _, c := range coords {
		h := Heading(c[0], c[1], c[2], c[3])
		if h < 0 || h >= 360 {
			t.Fatalf("heading out of range: %v", h)
		}
	}
}

func TestHeadingCardinal(t *testing.T) {
	if h := Heading(0, 0, 1, 0); math.Abs(h) > 1e-9 {
		t.Fatalf("expected north heading 0, got %v", h)
	}
	if h := Heading(0, 0, 0, 1); math.Abs(h-90) > 1e-9 {
		t.Fatalf("expected east heading 90, got %v", h)
	}
	if h := Heading(0, 0, -1, 0); math.Abs(h-180) > 1e-9 {
		t.Fatalf("expected south heading 180, got %v", h)
	}
	if h := Heading(0, 0, 0, -1); math.Abs(h-270) > 1e-9 {
		t.Fatalf("expected west heading 270, got %v", h)
	}
}

func TestHeadingIdenticalPoints(t *testing.T) {
	if h := Heading(-6.2, 106.816, -6.2, 106.816); h != 0 {
		t.Fatalf("expected stable zero heading, got %v", h)
	}
}
