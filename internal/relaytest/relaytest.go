// Package relaytest provides throwaway relay servers for probe tests.
package relaytest

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewServer starts a WebSocket server that calls onConnect for each accepted
// connection and then drains it until the client goes away. It returns the
// ws:// URL of the server. The server is closed when the test ends.
func NewServer(t testing.TB, onConnect func(*websocket.Conn)) string {
	endpoint, _ := NewWatchedServer(t, onConnect)
	return endpoint
}

// NewWatchedServer is NewServer that also reports, once per connection, the
// read error that ended the drain loop: a *websocket.CloseError when the
// client sent a close frame, or the transport error when it just went away.
func NewWatchedServer(t testing.TB, onConnect func(*websocket.Conn)) (string, <-chan error) {
	t.Helper()

	ended := make(chan error, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if onConnect != nil {
			onConnect(conn)
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case ended <- err:
				default:
				}
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), ended
}

// Silent accepts connections and never sends anything.
func Silent(t testing.TB) string {
	return NewServer(t, nil)
}

// Greeting sends msg as a text frame right after the handshake.
func Greeting(t testing.TB, msg string) string {
	return NewServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
	})
}

// Closing sends a close frame right after the handshake.
func Closing(t testing.TB) string {
	return NewServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"))
	})
}

// Rejecting answers every request with 403 instead of upgrading.
func Rejecting(t testing.TB) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// RefusedEndpoint returns a ws:// URL on host whose port has no listener.
func RefusedEndpoint(t testing.TB, host string) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, port, err := net.SplitHostPort(l.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	_ = l.Close()

	return "ws://" + net.JoinHostPort(host, port)
}
