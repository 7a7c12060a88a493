package stream

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend-safewalk/internal/sharing"

	"github.com/gofiber/fiber/v2"
)

func TestStreamRejectsUnknownToken(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil), sharing.NewStore())

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/unknown", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v %d", err, resp.StatusCode)
	}
}

func TestStreamRejectsStoppedToken(t *testing.T) {
	store := sharing.NewStore()
	session, err := store.Create("user-1", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil), store)

	if err := store.Stop(session.Token, "user-1"); err != nil {
		t.Fatalf("stop: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/"+session.Token, nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v %d", err, resp.StatusCode)
	}
}

type fakeConn struct {
	readErr chan error
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	return 0, nil, <-f.readErr
}

func (f *fakeConn) WriteMessage(int, []byte) error { return nil }

func (f *fakeConn) Close() error { return nil }

func TestServeWatcherStopsOnClientDisconnect(t *testing.T) {
	hub := NewHub(nil)
	conn := &fakeConn{readErr: make(chan error, 1)}

	returned := make(chan struct{})
	go func() {
		serveWatcher(hub, "token-1", conn)
		close(returned)
	}()

	conn.readErr <- errors.New("websocket: close 1001 (going away)")

	// no broadcast arrives; the read error alone must tear everything down
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatalf("serveWatcher still running after client disconnect")
	}

	hub.mu.RLock()
	remaining := len(hub.watchers)
	hub.mu.RUnlock()
	if remaining != 0 {
		t.Fatalf("expected watcher to be unregistered, %d left", remaining)
	}
}

func TestStreamLiveTokenRequiresUpgrade(t *testing.T) {
	store := sharing.NewStore()
	session, err := store.Create("user-1", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app.Group("/stream"), NewHub(nil), store)

	// plain GET without websocket headers is refused by the upgrade handler
	req := httptest.NewRequest(http.MethodGet, "/stream/ws/"+session.Token, nil)
	resp, err := app.Test(req, int(time.Second.Milliseconds()))
	if err != nil {
		t.Fatalf("test: %v", err)
	}
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		t.Fatalf("live token should pass the gate, got %d", resp.StatusCode)
	}
}
