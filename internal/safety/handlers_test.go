package safety

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func authAs(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	mock := newMock(t)
	expectNoLatest(mock)
	expectRecent(mock, emptyRecent())

	app := fiber.New()
	svc := NewService(mock, &fakeFinder{}, 22, 6)
	RegisterRoutes(app.Group("/safety"), svc, authAs("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/safety/recommendations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Recommendations) == 0 {
		t.Fatal("expected at least one recommendation")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecommendationsRejectsBadCoordinates(t *testing.T) {
	mock := newMock(t)

	app := fiber.New()
	svc := NewService(mock, &fakeFinder{}, 22, 6)
	RegisterRoutes(app.Group("/safety"), svc, authAs("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/safety/recommendations?latitude=abc", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRecommendationsUsesQueryCoordinates(t *testing.T) {
	mock := newMock(t)
	expectRecent(mock, emptyRecent())

	finder := &fakeFinder{}
	app := fiber.New()
	svc := NewService(mock, finder, 22, 6)
	RegisterRoutes(app.Group("/safety"), svc, authAs("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/safety/recommendations?latitude=-6.2&longitude=106.816", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if finder.calls != 2 {
		t.Fatalf("expected POI lookups for provided coordinates, got %d", finder.calls)
	}
}
