package network

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/clients"
	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/messages"
	"github.com/cbodonnell/yahtzee/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func newTestServer(t *testing.T) (*httptest.Server, *WSServer, *clients.ClientManager, *queue.InMemoryQueue) {
	t.Helper()
	cm := clients.NewClientManager()
	q := queue.NewInMemoryQueue(16)
	ws := NewWSServer(NewWSServerOptions{
		ClientManager: cm,
		EventQueue:    q,
		AllowOrigin:   "*",
	})
	server := httptest.NewServer(ws)
	t.Cleanup(server.Close)
	return server, ws, cm, q
}

func dial(t *testing.T, ctx context.Context, server *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	return conn
}

func TestWSServer_enqueuesValidEvents(t *testing.T) {
	server, _, cm, q := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, server)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.NoError(t, wsjson.Write(ctx, conn, messages.Message{
		Type:    messages.MessageTypeDiceValues,
		Payload: json.RawMessage(`{"values":[9,9,9,9,9]}`),
	}))
	require.NoError(t, wsjson.Write(ctx, conn, messages.Message{
		Type:    messages.MessageTypeJoin,
		Payload: json.RawMessage(`{"username":"alice"}`),
	}))

	item, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, &messages.JoinEvent{Username: "alice"}, item)
	assert.Equal(t, 0, q.Size())
	assert.Equal(t, 1, cm.Count())
}

func TestWSServer_clientReceivesWrites(t *testing.T) {
	server, _, cm, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(t, ctx, server)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return cm.Count() == 1 }, time.Second, 10*time.Millisecond)

	msg, err := messages.NewStateMessage(types.NewSession().Snapshot())
	require.NoError(t, err)
	for _, client := range cm.GetClients() {
		require.NoError(t, client.Conn.WriteMessage(ctx, msg))
	}

	got := &messages.Message{}
	require.NoError(t, wsjson.Read(ctx, conn, got))
	assert.Equal(t, messages.MessageTypeBroadcastGameState, got.Type)
}

func TestWSServer_disconnectAndShutdown(t *testing.T) {
	server, ws, cm, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := dial(t, ctx, server)
	require.Eventually(t, func() bool { return cm.Count() == 1 }, time.Second, 10*time.Millisecond)
	first.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return cm.Count() == 0 }, time.Second, 10*time.Millisecond)

	second := dial(t, ctx, server)
	require.Eventually(t, func() bool { return cm.Count() == 1 }, time.Second, 10*time.Millisecond)

	ws.Shutdown()
	ws.Shutdown()
	_, _, err := second.Read(ctx)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	assert.Eventually(t, func() bool { return cm.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestAcceptOptions(t *testing.T) {
	assert.True(t, acceptOptions("*").InsecureSkipVerify)
	assert.True(t, acceptOptions("").InsecureSkipVerify)
	assert.Equal(t, []string{"yahtzee.example.com"}, acceptOptions("https://yahtzee.example.com").OriginPatterns)
	assert.Equal(t, []string{"localhost:3000"}, acceptOptions("localhost:3000").OriginPatterns)
}
