package echo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// echoServer upgrades and echoes every text frame back, mirroring the
// remote endpoint the session targets.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func fastGenerator() *Generator {
	cfg := DefaultGeneratorConfig()
	cfg.Interval = 10 * time.Millisecond
	return NewGenerator(cfg)
}

func TestSessionStreamsEchoedUpdates(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	sess := NewSession(wsURL(srv), fastGenerator())
	if err := sess.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	universe := make(map[string]bool)
	for _, s := range DefaultGeneratorConfig().Symbols {
		universe[s] = true
	}

	for i := 0; i < 3; i++ {
		select {
		case u, ok := <-sess.Updates():
			if !ok {
				t.Fatalf("updates closed early, err=%v", sess.Err())
			}
			if !universe[u.Symbol] {
				t.Errorf("unexpected symbol %q", u.Symbol)
			}
			if u.Price < 1 {
				t.Errorf("price %v below floor", u.Price)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for update")
		}
	}
}

func TestSessionOpenFailsWithoutEndpoint(t *testing.T) {
	srv := echoServer(t)
	url := wsURL(srv)
	srv.Close()

	sess := NewSession(url, fastGenerator())
	err := sess.Open(context.Background())
	if err == nil {
		t.Fatal("expected Open to fail against closed endpoint")
	}
	if !errors.Is(err, ErrConnect) {
		t.Errorf("expected ErrConnect, got %v", err)
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	sess := NewSession(wsURL(srv), fastGenerator())
	if err := sess.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := sess.Close(); err != nil {
			t.Errorf("Close call %d returned %v", i+1, err)
		}
	}

	// updates channel must end after teardown
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-sess.Updates():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel never closed after Close")
		}
	}
}

func TestSessionCloseBeforeOpenIsSafe(t *testing.T) {
	sess := NewSession("ws://localhost:0", fastGenerator())
	if err := sess.Close(); err != nil {
		t.Fatalf("Close before Open returned %v", err)
	}
}

func TestSessionEndsCleanlyOnRemoteClosure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		// drain until the client acknowledges
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	sess := NewSession(wsURL(srv), fastGenerator())
	if err := sess.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-sess.Updates():
			if !ok {
				if err := sess.Err(); err != nil {
					t.Errorf("expected clean end, got %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("updates channel never closed after remote closure")
		}
	}
}

func TestSessionDropsMalformedFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		frames := []string{"garbage", "AAPL;notanumber", ";9", "AAPL;42.5"}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	sess := NewSession(wsURL(srv), fastGenerator())
	if err := sess.Open(context.Background()); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	select {
	case u, ok := <-sess.Updates():
		if !ok {
			t.Fatalf("updates closed early, err=%v", sess.Err())
		}
		if u.Symbol != "AAPL" || u.Price != 42.5 {
			t.Errorf("expected the one well-formed frame, got %+v", u)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for well-formed frame")
	}
}
