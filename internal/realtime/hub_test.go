package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub, userID string, streams []string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(userID, streams, AllowedStreams(), w, r)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestHubPingControlRepliesWithPong(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, "user-1", []string{StreamActivity})

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "pong", msg.Event)
}

func TestHubBroadcastStreamReachesSubscriber(t *testing.T) {
	hub := NewHub()
	conn := dialTestHub(t, hub, "user-1", []string{StreamActivity})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		subscribed := len(hub.subscriptions[StreamActivity]) > 0
		hub.mu.RUnlock()
		if subscribed {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastStream(StreamActivity, Message{Event: "activity.created"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "activity.created", msg.Event)
	require.Equal(t, StreamActivity, msg.Stream)
}

func TestTrySendAfterCloseDoesNotPanic(t *testing.T) {
	c := &connection{send: make(chan Message, 1)}

	c.sendMu.Lock()
	c.closed = true
	close(c.send)
	c.sendMu.Unlock()

	require.False(t, c.trySend(Message{Event: "pong"}))
}

func TestTrySendReportsBackpressure(t *testing.T) {
	c := &connection{send: make(chan Message, 1)}

	require.True(t, c.trySend(Message{Event: "first"}))
	require.False(t, c.trySend(Message{Event: "second"}))
}
