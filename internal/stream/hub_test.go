package stream

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fleetconfig/channelhub/internal/auth"
	"github.com/fleetconfig/channelhub/internal/bus"
	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/fleetconfig/channelhub/internal/store/memory"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

func setupTestHub(t *testing.T) (*Hub, *bus.MemoryBus) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s := memory.New()
	s.AddOrganization(domain.Organization{
		ID:      "org-1",
		Name:    "Acme",
		OrgKeys: []string{"key-1"},
	})
	s.AddOrganization(domain.Organization{
		ID:      "org-2",
		Name:    "Globex",
		OrgKeys: []string{"key-2"},
	})

	b := bus.NewMemoryBus(logger)
	hub := NewHub(b, auth.NewGate(s, logger), logger)
	return hub, b
}

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/ws/orgs/{orgID}/subscription-updates", hub.HandleSubscriptionUpdates)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func connectWS(t *testing.T, server *httptest.Server, orgID, orgKey string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/orgs/" + orgID + "/subscription-updates"

	header := http.Header{}
	if orgKey != "" {
		header.Set("X-Org-Key", orgKey)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_SignalReachesWatcher(t *testing.T) {
	hub, b := setupTestHub(t)
	server := newTestServer(t, hub)

	conn := connectWS(t, server, "org-1", "key-1")

	// Give the hub time to register the client
	time.Sleep(50 * time.Millisecond)

	b.Publish(context.Background(), "org-1")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	if !strings.Contains(string(message), `"has_updates":true`) {
		t.Errorf("expected has_updates signal, got: %s", message)
	}
}

func TestHub_OtherOrgEventsSuppressed(t *testing.T) {
	hub, b := setupTestHub(t)
	server := newTestServer(t, hub)

	conn := connectWS(t, server, "org-1", "key-1")
	time.Sleep(50 * time.Millisecond)

	b.Publish(context.Background(), "org-2")

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected no signal for another org's event")
	}
}

func TestHub_WrongKeySuppressesButKeepsConnection(t *testing.T) {
	hub, b := setupTestHub(t)
	server := newTestServer(t, hub)

	conn := connectWS(t, server, "org-1", "key-wrong")
	time.Sleep(50 * time.Millisecond)

	// Connection stays registered; delivery is silently suppressed.
	if count := hub.ClientCount(); count != 1 {
		t.Fatalf("expected 1 client, got %d", count)
	}

	b.Publish(context.Background(), "org-1")

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected no signal with a wrong org key")
	}
}

func TestHub_MissingKeySuppresses(t *testing.T) {
	hub, b := setupTestHub(t)
	server := newTestServer(t, hub)

	conn := connectWS(t, server, "org-1", "")
	time.Sleep(50 * time.Millisecond)

	b.Publish(context.Background(), "org-1")

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected no signal without an org key")
	}
}

func TestHub_QueryParamKeyAccepted(t *testing.T) {
	hub, b := setupTestHub(t)
	server := newTestServer(t, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/orgs/org-1/subscription-updates?orgKey=key-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect WebSocket: %v", err)
	}
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	b.Publish(context.Background(), "org-1")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("expected signal with query-param key: %v", err)
	}
}

func TestHub_MultipleWatchersSameOrg(t *testing.T) {
	hub, b := setupTestHub(t)
	server := newTestServer(t, hub)

	conn1 := connectWS(t, server, "org-1", "key-1")
	conn2 := connectWS(t, server, "org-1", "key-1")
	time.Sleep(50 * time.Millisecond)

	if count := hub.ClientCount(); count != 2 {
		t.Fatalf("expected 2 clients, got %d", count)
	}

	b.Publish(context.Background(), "org-1")

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Errorf("watcher %d missed the signal: %v", i+1, err)
		}
	}
}

func TestHub_DisconnectDeregisters(t *testing.T) {
	hub, _ := setupTestHub(t)
	server := newTestServer(t, hub)

	conn := connectWS(t, server, "org-1", "key-1")
	time.Sleep(50 * time.Millisecond)

	if count := hub.ClientCount(); count != 1 {
		t.Fatalf("expected 1 client, got %d", count)
	}

	conn.Close()
	time.Sleep(100 * time.Millisecond)

	if count := hub.ClientCount(); count != 0 {
		t.Errorf("expected 0 clients after disconnect, got %d", count)
	}
}

func TestHub_ClientCountStartsAtZero(t *testing.T) {
	hub, _ := setupTestHub(t)

	if count := hub.ClientCount(); count != 0 {
		t.Errorf("expected 0 clients initially, got %d", count)
	}
}
