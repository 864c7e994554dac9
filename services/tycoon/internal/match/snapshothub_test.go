package match

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

func newHubServer(t *testing.T) (*httptest.Server, *SessionCache, *SnapshotHub, *testClock) {
	t.Helper()
	cache := seededCache(nil)
	hub := NewSnapshotHub(nil)
	h := NewHandler(HandlerDeps{Cache: cache, Hub: hub}, nil, nil)
	clock := &testClock{at: handlerEpoch}
	h.now = clock.Now

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		_ = hub.Close()
		srv.Close()
	})
	return srv, cache, hub, clock
}

func dialSession(t *testing.T, srv *httptest.Server, id uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + id.String() + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d, want 101", resp.StatusCode)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) session.Snapshot {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap session.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return snap
}

func waitForViewers(t *testing.T, hub *SnapshotHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Viewers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Viewers() = %d, want %d", hub.Viewers(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSnapshotHubSendsInitialAndBroadcasts(t *testing.T) {
	srv, cache, hub, _ := newHubServer(t)
	id := cache.Create()

	conn := dialSession(t, srv, id)
	initial := readSnapshot(t, conn)
	if initial.ID != id {
		t.Errorf("initial ID = %s, want %s", initial.ID, id)
	}
	if initial.State != session.StateNotStarted {
		t.Errorf("initial State = %q, want %q", initial.State, session.StateNotStarted)
	}

	waitForViewers(t, hub, 1)
	if !hub.Watching(id) {
		t.Error("Watching() = false, want true")
	}

	resp, err := http.Post(srv.URL+"/sessions/"+id.String()+"/start", "application/json", nil)
	if err != nil {
		t.Fatalf("start request error = %v", err)
	}
	resp.Body.Close()

	started := readSnapshot(t, conn)
	if started.State != session.StateRunning {
		t.Errorf("broadcast State = %q, want %q", started.State, session.StateRunning)
	}
	if started.Customer == nil {
		t.Error("broadcast snapshot should carry the seated customer")
	}
}

func TestSnapshotHubUnknownSession(t *testing.T) {
	srv, _, _, _ := newHubServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + uuid.NewString() + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Dial() should fail for unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %v, want 404", resp)
	}
}

func TestSnapshotHubDropClosesViewers(t *testing.T) {
	srv, cache, hub, _ := newHubServer(t)
	id := cache.Create()

	conn := dialSession(t, srv, id)
	readSnapshot(t, conn)
	waitForViewers(t, hub, 1)

	hub.Drop(id)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("ReadMessage() after Drop should fail")
	}
	if hub.Watching(id) {
		t.Error("Watching() after Drop = true")
	}
}

func TestSnapshotHubBroadcastWithoutViewers(t *testing.T) {
	hub := NewSnapshotHub(nil)
	hub.Broadcast(uuid.New(), session.Snapshot{})
	if hub.Viewers() != 0 {
		t.Errorf("Viewers() = %d, want 0", hub.Viewers())
	}
}

func TestRunnerBroadcastsCountdown(t *testing.T) {
	srv, cache, hub, clock := newHubServer(t)
	id := cache.Create()
	_ = cache.Update(context.Background(), id, func(s *session.Session) { s.Start(clock.Now()) })

	conn := dialSession(t, srv, id)
	readSnapshot(t, conn)
	waitForViewers(t, hub, 1)

	runner := NewRunner(cache, hub, time.Hour, nil)
	runner.now = clock.Now

	clock.Advance(1500 * time.Millisecond)
	runner.TickAll(context.Background())

	snap := readSnapshot(t, conn)
	if snap.Remaining != "2:59" {
		t.Errorf("Remaining = %q, want 2:59", snap.Remaining)
	}
}
