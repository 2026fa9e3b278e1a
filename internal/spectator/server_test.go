package spectator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type testLevel struct {
	Holes []string `json:"holes"`
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub()
	srv := NewServer("127.0.0.1:0", testLevel{Holes: []string{"goal"}}, hub)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, hub
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestHealth(t *testing.T) {
	ts, hub := newTestServer(t)
	hub.Publish(Snapshot{Tick: 42})

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
		Tick    uint64 `json:"tick"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Tick != 42 || body.Clients != 0 {
		t.Errorf("unexpected health %+v", body)
	}
}

func TestLevel(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/level")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type %q", ct)
	}
	var lvl testLevel
	if err := json.NewDecoder(resp.Body).Decode(&lvl); err != nil {
		t.Fatal(err)
	}
	if len(lvl.Holes) != 1 || lvl.Holes[0] != "goal" {
		t.Errorf("unexpected level %+v", lvl)
	}
}

func TestCORS(t *testing.T) {
	ts, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set("Origin", "http://viewer.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestStream(t *testing.T) {
	ts, hub := newTestServer(t)
	conn := dial(t, ts)

	hello := readEnvelope(t, conn)
	if hello.Type != MessageHello {
		t.Fatalf("expected hello, got %q", hello.Type)
	}
	if _, err := uuid.Parse(hello.ClientID); err != nil {
		t.Errorf("client id %q is not a uuid: %v", hello.ClientID, err)
	}
	if hub.Clients() != 1 {
		t.Errorf("expected 1 client, got %d", hub.Clients())
	}

	hub.Publish(Snapshot{
		Tick:   7,
		Ball:   BallState{Position: [3]float32{1, 2, 3}},
		Events: []Event{{Type: "drop", Tick: 7, Hole: "goal"}},
	})

	env := readEnvelope(t, conn)
	if env.Type != MessageSnapshot || env.Snapshot == nil {
		t.Fatalf("expected snapshot, got %+v", env)
	}
	if env.Snapshot.Tick != 7 || env.Snapshot.Ball.Position != [3]float32{1, 2, 3} {
		t.Errorf("unexpected snapshot %+v", env.Snapshot)
	}
	if len(env.Snapshot.Events) != 1 || env.Snapshot.Events[0].Hole != "goal" {
		t.Errorf("unexpected events %+v", env.Snapshot.Events)
	}
}

func TestLateJoinerGetsLastSnapshot(t *testing.T) {
	ts, hub := newTestServer(t)
	hub.Publish(Snapshot{Tick: 99})

	conn := dial(t, ts)
	readEnvelope(t, conn) // hello
	env := readEnvelope(t, conn)
	if env.Snapshot == nil || env.Snapshot.Tick != 99 {
		t.Errorf("expected last snapshot, got %+v", env)
	}
}

func TestRegisterQueuesLastSnapshotInOrder(t *testing.T) {
	hub := NewHub()
	hub.Publish(Snapshot{Tick: 7})
	c := hub.register()
	hub.Publish(Snapshot{Tick: 8})

	want := []struct {
		typ  string
		tick uint64
	}{
		{MessageHello, 0},
		{MessageSnapshot, 7},
		{MessageSnapshot, 8},
	}
	if len(c.send) != len(want) {
		t.Fatalf("queued %d messages, want %d", len(c.send), len(want))
	}
	for i, w := range want {
		var env Envelope
		if err := json.Unmarshal(<-c.send, &env); err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if env.Type != w.typ {
			t.Errorf("message %d type %q, want %q", i, env.Type, w.typ)
		}
		if w.typ == MessageSnapshot && (env.Snapshot == nil || env.Snapshot.Tick != w.tick) {
			t.Errorf("message %d snapshot %+v, want tick %d", i, env.Snapshot, w.tick)
		}
	}
	hub.unregister(c)
}

func TestDisconnectUnregisters(t *testing.T) {
	ts, hub := newTestServer(t)
	conn := dial(t, ts)
	readEnvelope(t, conn)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client still registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	c := hub.register()
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*4; i++ {
			hub.Publish(Snapshot{Tick: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a stalled client")
	}
	if len(c.send) != sendBuffer {
		t.Errorf("expected a full buffer, got %d", len(c.send))
	}
	hub.unregister(c)
}
