package clients

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/messages"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) WriteMessage(ctx context.Context, msg *messages.Message) error {
	return nil
}

func TestClientManager_connectDisconnect(t *testing.T) {
	cm := NewClientManager()

	a, err := cm.ConnectClient(nopConn{}, "10.0.0.1:5000")
	require.NoError(t, err)
	b, err := cm.ConnectClient(nopConn{}, "10.0.0.2:5000")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, cm.Count())

	client, err := cm.GetClient(a)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:5000", client.RemoteAddr)

	cm.DisconnectClient(a)
	cm.DisconnectClient(a)
	assert.Equal(t, 1, cm.Count())
	_, err = cm.GetClient(a)
	assert.Error(t, err)

	events := cm.GetConnectionEventChan()
	assert.Equal(t, ConnectionEvent{ClientID: a, Type: ConnectionEventTypeConnect}, <-events)
	assert.Equal(t, ConnectionEvent{ClientID: b, Type: ConnectionEventTypeConnect}, <-events)
	assert.Equal(t, ConnectionEvent{ClientID: a, Type: ConnectionEventTypeDisconnect}, <-events)
	assert.Len(t, events, 0)
}

func TestClientManager_unknownClient(t *testing.T) {
	cm := NewClientManager()
	cm.DisconnectClient(uuid.New())
	assert.Len(t, cm.GetConnectionEventChan(), 0)
	assert.Empty(t, cm.GetClients())
}

func TestClientManager_fullEventChannelLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	log.SetDefaultLogger(log.New(&buf, "", log.DefaultLoggerFlag, log.LogLevelWarn))
	defer log.SetDefaultLogger(log.New(os.Stdout, "", log.DefaultLoggerFlag, log.LogLevelInfo))

	cm := &ClientManager{
		clients:             make(map[uuid.UUID]*Client),
		connectionEventChan: make(chan ConnectionEvent, 1),
	}
	_, err := cm.ConnectClient(nopConn{}, "10.0.0.1:5000")
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	dropped, err := cm.ConnectClient(nopConn{}, "10.0.0.2:5000")
	require.NoError(t, err)
	assert.Len(t, cm.connectionEventChan, 1)
	assert.Contains(t, buf.String(), "Connection event channel is full")
	assert.Contains(t, buf.String(), dropped.String())
}
