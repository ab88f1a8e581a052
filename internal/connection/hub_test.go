package connection

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmorel/presence-relay/internal/protocol"
	"github.com/jmorel/presence-relay/internal/router"
)

// hubServer mounts a Hub behind an httptest server's upgrade handler.
func hubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		hub.Adopt(ws)
	}))
	t.Cleanup(server.Close)

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitForConns(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for hub.Len() != want {
		select {
		case <-deadline:
			t.Fatalf("hub Len = %d, want %d", hub.Len(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHub_EmitsLoginEvents(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil)
	events := hub.Events()
	server := hubServer(t, hub)

	ws := dial(t, server)
	waitForConns(t, hub, 1)

	frame, err := protocol.Encode(protocol.TypeLogin, protocol.LoginMsg{Identity: "alice"})
	if err != nil {
		t.Fatalf("encode login: %v", err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write login: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != router.EventLogin {
			t.Errorf("event Type = %q, want %q", ev.Type, router.EventLogin)
		}
		if ev.Identity != "alice" {
			t.Errorf("event Identity = %q, want alice", ev.Identity)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no login event received")
	}
}

func TestHub_EmitsDisconnectOnClose(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil)
	events := hub.Events()
	server := hubServer(t, hub)

	ws := dial(t, server)
	waitForConns(t, hub, 1)

	ws.Close()

	select {
	case ev := <-events:
		if ev.Type != router.EventDisconnect {
			t.Errorf("event Type = %q, want %q", ev.Type, router.EventDisconnect)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no disconnect event received")
	}
	waitForConns(t, hub, 0)
}

func TestHub_BroadcastReachesAllConns(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil)
	server := hubServer(t, hub)

	a := dial(t, server)
	b := dial(t, server)
	waitForConns(t, hub, 2)

	payload := []byte(`{"type":"users","msg":{"users":[]}}`)
	hub.Broadcast(payload)

	for name, ws := range map[string]*websocket.Conn{"a": a, "b": b} {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("conn %s read failed: %v", name, err)
		}
		if string(data) != string(payload) {
			t.Errorf("conn %s received %s, want %s", name, data, payload)
		}
	}
}

func TestHub_DeliverTargetsOneConn(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil)
	events := hub.Events()
	server := hubServer(t, hub)

	a := dial(t, server)
	b := dial(t, server)
	waitForConns(t, hub, 2)

	// Log both in so we can map websockets to conn IDs through events.
	for i, ws := range []*websocket.Conn{a, b} {
		identity := []string{"alice", "bob"}[i]
		frame, _ := protocol.Encode(protocol.TypeLogin, protocol.LoginMsg{Identity: identity})
		if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			t.Fatalf("write login: %v", err)
		}
	}

	ids := make(map[string]router.Event, 2)
	for len(ids) < 2 {
		select {
		case ev := <-events:
			if ev.Type == router.EventLogin {
				ids[ev.Identity] = ev
			}
		case <-time.After(2 * time.Second):
			t.Fatal("missing login events")
		}
	}

	payload := []byte(`{"type":"receive_message","msg":{}}`)
	hub.Deliver(ids["bob"].Conn, payload)

	b.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := b.ReadMessage()
	if err != nil {
		t.Fatalf("bob read failed: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("bob received %s, want %s", data, payload)
	}

	// Alice must not receive anything.
	a.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, stray, err := a.ReadMessage(); err == nil {
		t.Errorf("alice unexpectedly received %s", stray)
	}
}
