package discord

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func sendHello(conn *websocket.Conn, intervalMS int) error {
	return conn.WriteJSON(map[string]any{"op": opHello, "d": map[string]any{"heartbeat_interval": intervalMS}})
}

func sendDispatch(conn *websocket.Conn, event string, seq int, d any) error {
	return conn.WriteJSON(map[string]any{"op": opDispatch, "t": event, "s": seq, "d": d})
}

// drain читает до закрытия соединения клиентом
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timeout waiting for %s", what)
	}
	var zero T
	return zero
}

func newTestGateway(srv *httptest.Server) *Gateway {
	return NewGateway("secret", IntentGuilds,
		WithGatewayURL(wsURL(srv)),
		WithGatewayLogger(quietLogger()),
		WithBackoff(10*time.Millisecond, 50*time.Millisecond))
}

func TestGatewayIdentifyReadyInteraction(t *testing.T) {
	identified := make(chan identifyData, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		_ = sendHello(conn, 45000)
		var p gatewayPayload
		if err := conn.ReadJSON(&p); err != nil || p.Op != opIdentify {
			t.Errorf("expected identify, got op %d (%v)", p.Op, err)
			return
		}
		var id identifyData
		_ = json.Unmarshal(p.D, &id)
		identified <- id

		_ = sendDispatch(conn, "READY", 1, map[string]any{
			"session_id": "sess-1",
			"user":       map[string]any{"id": "42", "username": "statusbot"},
		})
		_ = sendDispatch(conn, "INTERACTION_CREATE", 2, map[string]any{
			"id": "900", "type": 2, "token": "itok",
			"data": map[string]any{"name": "ping"},
		})
		drain(conn)
	}))
	defer srv.Close()

	gw := newTestGateway(srv)
	ready := make(chan *Ready, 1)
	interactions := make(chan *Interaction, 1)
	gw.OnReady = func(r *Ready) { ready <- r }
	gw.OnInteraction = func(it *Interaction) { interactions <- it }

	if err := gw.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	id := waitFor(t, identified, "identify")
	if id.Token != "secret" || id.Intents != IntentGuilds {
		t.Fatalf("unexpected identify: %+v", id)
	}
	r := waitFor(t, ready, "READY")
	if r.User.ID != "42" || gw.SessionID() != "sess-1" {
		t.Fatalf("unexpected ready: %+v (session %q)", r, gw.SessionID())
	}
	it := waitFor(t, interactions, "interaction")
	if it.ID != "900" || it.Type != InteractionApplicationCommand || it.CommandName() != "ping" {
		t.Fatalf("unexpected interaction: %+v", it)
	}
	if !gw.IsConnected() {
		t.Fatal("gateway must report connected")
	}

	gw.Disconnect()
	waitFor(t, gw.Done(), "read loop exit")
	if gw.IsConnected() {
		t.Fatal("gateway must report disconnected")
	}
}

func TestGatewayResumesAfterReconnectRequest(t *testing.T) {
	var conns atomic.Int32
	resumed := make(chan resumeData, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		n := conns.Add(1)
		_ = sendHello(conn, 45000)
		var p gatewayPayload
		if err := conn.ReadJSON(&p); err != nil {
			return
		}
		if n == 1 {
			_ = sendDispatch(conn, "READY", 1, map[string]any{"session_id": "sess-1"})
			_ = conn.WriteJSON(map[string]any{"op": opReconnect})
			drain(conn)
			return
		}
		if p.Op != opResume {
			t.Errorf("expected resume on reconnect, got op %d", p.Op)
			return
		}
		var rd resumeData
		_ = json.Unmarshal(p.D, &rd)
		resumed <- rd
		drain(conn)
	}))
	defer srv.Close()

	gw := newTestGateway(srv)
	if err := gw.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer gw.Disconnect()

	rd := waitFor(t, resumed, "resume")
	if rd.SessionID != "sess-1" || rd.Seq != 1 || rd.Token != "secret" {
		t.Fatalf("unexpected resume payload: %+v", rd)
	}
}

func TestGatewayHeartbeat(t *testing.T) {
	beats := make(chan json.RawMessage, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = sendHello(conn, 20)
		for {
			var p gatewayPayload
			if err := conn.ReadJSON(&p); err != nil {
				return
			}
			if p.Op == opHeartbeat {
				select {
				case beats <- p.D:
				default:
				}
				_ = conn.WriteJSON(map[string]any{"op": opHeartbeatAck})
			}
		}
	}))
	defer srv.Close()

	gw := newTestGateway(srv)
	if err := gw.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer gw.Disconnect()

	d := waitFor(t, beats, "heartbeat")
	if string(d) != "null" {
		t.Fatalf("first heartbeat before any dispatch must carry null, got %s", d)
	}
}

func TestGatewayFatalCloseStopsReconnecting(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conns.Add(1)
		_ = sendHello(conn, 45000)
		var p gatewayPayload
		_ = conn.ReadJSON(&p)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(4004, "Authentication failed."),
			time.Now().Add(time.Second))
		drain(conn)
	}))
	defer srv.Close()

	gw := newTestGateway(srv)
	errs := make(chan error, 4)
	gw.OnError = func(err error) { errs <- err }
	if err := gw.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	err := waitFor(t, errs, "fatal error")
	var ce *websocket.CloseError
	if !errors.As(err, &ce) || ce.Code != 4004 {
		t.Fatalf("expected close 4004, got %v", err)
	}
	waitFor(t, gw.Done(), "read loop exit")
	if n := conns.Load(); n != 1 {
		t.Fatalf("expected no reconnect after fatal close, got %d connections", n)
	}
}

func TestGatewayContextCancelStopsLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = sendHello(conn, 45000)
		drain(conn)
	}))
	defer srv.Close()

	gw := newTestGateway(srv)
	disconnected := make(chan struct{}, 1)
	gw.OnDisconnected = func() { disconnected <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	if err := gw.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	cancel()
	waitFor(t, disconnected, "OnDisconnected")
	waitFor(t, gw.Done(), "read loop exit")
}
