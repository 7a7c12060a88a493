package emergency

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func authAs(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func newApp(t *testing.T, svc *Service) *fiber.App {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/emergency"), svc, authAs("user-1"))
	return app
}

func TestSOSEndpoint(t *testing.T) {
	mock := newMock(t)
	expectInsertAlert(mock)
	mock.ExpectQuery(`(?s)SELECT id, name, .+ FROM emergency_contacts`).
		WithArgs("user-1").
		WillReturnRows(contactRows())

	app := newApp(t, NewService(mock, &fakeNotifier{}, nil, 5))

	req := httptest.NewRequest(http.MethodPost, "/emergency/sos",
		strings.NewReader(`{"latitude":-6.2,"longitude":106.816}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body SOSResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ContactsNotified != 0 {
		t.Fatalf("expected 0 contacts notified, got %d", body.ContactsNotified)
	}
	if body.Alert.Message != defaultSOSMessage {
		t.Fatalf("expected default message, got %q", body.Alert.Message)
	}
}

func TestReportEndpointRequiresMessage(t *testing.T) {
	mock := newMock(t)
	app := newApp(t, NewService(mock, &fakeNotifier{}, nil, 5))

	req := httptest.NewRequest(http.MethodPost, "/emergency/report", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestResolveEndpointUnknownAlert(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`UPDATE safety_alerts\s+SET is_resolved=TRUE`).
		WithArgs("missing", "user-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	app := newApp(t, NewService(mock, &fakeNotifier{}, nil, 5))

	req := httptest.NewRequest(http.MethodPost, "/emergency/alerts/missing/resolve", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestContactLimitEndpoint(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM emergency_contacts`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	app := newApp(t, NewService(mock, &fakeNotifier{}, nil, 5))

	req := httptest.NewRequest(http.MethodPost, "/emergency/contacts",
		strings.NewReader(`{"name":"Ana","phone_number":"+6281100"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDirectoryEndpoints(t *testing.T) {
	mock := newMock(t)
	app := newApp(t, NewService(mock, &fakeNotifier{}, nil, 5))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/emergency/numbers?country=IN", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("numbers: %v %d", err, resp.StatusCode)
	}
	var numbers map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&numbers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if numbers["women_helpline"] != "1091" {
		t.Fatalf("unexpected IN numbers: %v", numbers)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/emergency/helplines", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("helplines: %v %d", err, resp.StatusCode)
	}
	var helplines map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&helplines); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if helplines["domestic_violence"] == "" {
		t.Fatalf("expected US helplines by default, got %v", helplines)
	}
}
