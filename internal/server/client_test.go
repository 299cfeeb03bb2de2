package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duanecilliers/openclaw-admin/internal/logging"
)

// socketPair returns a server-side Client and the dialing side of one
// WebSocket connection.
func socketPair(t *testing.T) (*Client, *websocket.Conn) {
	t.Helper()
	clients := make(chan *Client, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		clients <- NewClient(conn)
	}))
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case c := <-clients:
		t.Cleanup(func() { c.Close() })
		return c, conn
	case <-time.After(5 * time.Second):
		t.Fatal("no server connection")
		return nil, nil
	}
}

func TestNewEvent(t *testing.T) {
	f, err := NewEvent("cron_job_changed", map[string]string{"id": "j1"}, 7)
	require.NoError(t, err)
	assert.Equal(t, FrameTypeEvent, f.Type)
	assert.Equal(t, "cron_job_changed", f.Event)
	assert.Equal(t, int64(7), f.Seq)
	assert.JSONEq(t, `{"id":"j1"}`, string(f.Payload))

	raw, err := json.Marshal(Frame{Type: FrameTypeEvent, Event: EventHello})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","event":"hello"}`, string(raw))
}

func TestClientSendAndClose(t *testing.T) {
	c, peer := socketPair(t)
	assert.NotEmpty(t, c.ConnID)

	require.NoError(t, c.SendEvent("skill_installed", map[string]string{"name": "weather"}, 3))
	var f Frame
	peer.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, peer.ReadJSON(&f))
	assert.Equal(t, "skill_installed", f.Event)
	assert.Equal(t, int64(3), f.Seq)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.SendEvent("x", nil, 0), ErrClientClosed)
}

func TestHub(t *testing.T) {
	hub := NewHub(logging.New(nil, "silent"))
	assert.Equal(t, 0, hub.Count())

	a, peerA := socketPair(t)
	b, peerB := socketPair(t)
	hub.Add(a)
	hub.Add(b)
	assert.Equal(t, 2, hub.Count())

	assert.Equal(t, int64(1), hub.Publish("config_written", map[string]int{"bytes": 10}))
	assert.Equal(t, int64(2), hub.Publish("config_changed", nil))
	for _, peer := range []*websocket.Conn{peerA, peerB} {
		for _, want := range []Frame{{Event: "config_written", Seq: 1}, {Event: "config_changed", Seq: 2}} {
			var f Frame
			peer.SetReadDeadline(time.Now().Add(5 * time.Second))
			require.NoError(t, peer.ReadJSON(&f))
			assert.Equal(t, want.Event, f.Event)
			assert.Equal(t, want.Seq, f.Seq)
		}
	}

	hub.Remove(a.ConnID)
	hub.Remove("nonexistent")
	assert.Equal(t, 1, hub.Count())

	hub.CloseAll()
	assert.Equal(t, 0, hub.Count())
	assert.ErrorIs(t, b.SendEvent("x", nil, 0), ErrClientClosed)
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(logging.New(nil, "silent"))
	live, peer := socketPair(t)
	dead, _ := socketPair(t)
	hub.Add(live)
	hub.Add(dead)
	require.NoError(t, dead.Close())

	hub.Publish("skill_removed", map[string]string{"name": "weather"})
	assert.Equal(t, 1, hub.Count())

	var f Frame
	peer.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, peer.ReadJSON(&f))
	assert.Equal(t, "skill_removed", f.Event)
}
