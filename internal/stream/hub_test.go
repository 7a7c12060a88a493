package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	watcher := hub.Register("token-1")
	defer hub.Unregister(watcher)

	hub.Broadcast("token-1", []byte("hello"))

	select {
	case msg := <-watcher.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubBroadcastOtherTokenNotDelivered(t *testing.T) {
	hub := NewHub(nil)
	watcher := hub.Register("token-1")
	defer hub.Unregister(watcher)

	hub.Broadcast("token-2", []byte("hello"))

	select {
	case <-watcher.Send:
		t.Fatalf("unexpected delivery")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubHelpers(t *testing.T) {
	ch := updateChannel("abc")
	if ch == "" {
		t.Fatalf("expected channel")
	}
	if tokenFromChannel(ch) != "abc" {
		t.Fatalf("unexpected token")
	}
	if tokenFromChannel("bad") != "" {
		t.Fatalf("expected empty token")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	watcher := hub.Register("token-2")
	hub.Unregister(watcher)
	_, ok := <-watcher.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisBroadcast(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("token-redis")
	defer hub.Unregister(ws)

	hub.Broadcast("token-redis", []byte("ping"))

	select {
	case msg := <-ws.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for broadcast")
	}
}

func TestHubRedisRelayAcrossInstances(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	ws := hub.Register("tok123")
	defer hub.Unregister(ws)

	// a publisher on its own connection stands in for another instance;
	// re-publish until the pattern subscription is established
	publisher := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer publisher.Close()

	deadline := time.After(2 * time.Second)
	for {
		if err := publisher.Publish(context.Background(), updateChannel("tok123"), "pong").Err(); err != nil {
			t.Fatalf("publish error: %v", err)
		}
		select {
		case msg := <-ws.Send:
			if string(msg) != "pong" {
				t.Fatalf("unexpected message from redis")
			}
			return
		case <-deadline:
			t.Fatalf("relay never delivered the cross-instance update")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	watcher := hub.Register("token-bad")
	defer hub.Unregister(watcher)

	hub.Broadcast("token-bad", []byte("ping"))
}
