package stream

import (
	"errors"

	"backend-safewalk/internal/sharing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes the live tracking websocket. The token must belong
// to a live sharing session; expired or unknown tokens are rejected before
// the upgrade.
func RegisterRoutes(r fiber.Router, hub *Hub, store *sharing.Store) {
	r.Get("/ws/:token", func(c *fiber.Ctx) error {
		token := c.Params("token")
		if _, err := store.Get(token); err != nil {
			if errors.Is(err, sharing.ErrSessionExpired) {
				return fiber.NewError(fiber.StatusGone, err.Error())
			}
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}

		return websocket.New(func(conn *websocket.Conn) {
			serveWatcher(hub, token, conn)
		})(c)
	})
}

type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// serveWatcher pumps hub updates to conn until either side drops. A read
// error unregisters the watcher right away so the writer is not left waiting
// for a further broadcast.
func serveWatcher(hub *Hub, token string, conn wsConn) {
	watcher := hub.Register(token)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range watcher.Send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	hub.Unregister(watcher)
	<-done
}
