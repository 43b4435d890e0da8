package clients

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/messages"
	"github.com/google/uuid"
)

const (
	// ConnectionEventChannelSize represents the size of the connection event channel
	ConnectionEventChannelSize = 1024
)

// Conn is the write side of a subscriber connection.
type Conn interface {
	WriteMessage(ctx context.Context, msg *messages.Message) error
}

// Client represents a connected subscriber
type Client struct {
	ID         uuid.UUID
	Conn       Conn
	RemoteAddr string
}

// ConnectionEventType represents the type of a connection event
type ConnectionEventType int

const (
	ConnectionEventTypeConnect ConnectionEventType = iota
	ConnectionEventTypeDisconnect
)

// ConnectionEvent represents something that happened to a client connection
type ConnectionEvent struct {
	ClientID uuid.UUID
	Type     ConnectionEventType
}

// ClientManager manages connected clients
type ClientManager struct {
	clients             map[uuid.UUID]*Client
	clientsLock         sync.RWMutex
	connectionEventChan chan ConnectionEvent
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:             make(map[uuid.UUID]*Client),
		connectionEventChan: make(chan ConnectionEvent, ConnectionEventChannelSize),
	}
}

// GetConnectionEventChan returns a one-way channel for receiving connection events
func (cm *ClientManager) GetConnectionEventChan() <-chan ConnectionEvent {
	return cm.connectionEventChan
}

// GetClients returns a slice of all connected clients.
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	return clients
}

// GetClient returns the client with the given ID.
func (cm *ClientManager) GetClient(clientID uuid.UUID) (*Client, error) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	client, ok := cm.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %s not found", clientID)
	}
	return client, nil
}

// Count returns the number of connected clients.
func (cm *ClientManager) Count() int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return len(cm.clients)
}

// ConnectClient adds a new client to the manager and returns its ID
func (cm *ClientManager) ConnectClient(conn Conn, remoteAddr string) (uuid.UUID, error) {
	clientID, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate client ID: %v", err)
	}

	cm.clientsLock.Lock()
	cm.clients[clientID] = &Client{
		ID:         clientID,
		Conn:       conn,
		RemoteAddr: remoteAddr,
	}
	cm.clientsLock.Unlock()

	cm.emit(ConnectionEvent{ClientID: clientID, Type: ConnectionEventTypeConnect})

	return clientID, nil
}

// DisconnectClient removes a client from the manager
func (cm *ClientManager) DisconnectClient(clientID uuid.UUID) {
	cm.clientsLock.Lock()
	_, ok := cm.clients[clientID]
	delete(cm.clients, clientID)
	cm.clientsLock.Unlock()

	if ok {
		cm.emit(ConnectionEvent{ClientID: clientID, Type: ConnectionEventTypeDisconnect})
	}
}

// emit never blocks; events are dropped when nobody keeps up with the channel.
func (cm *ClientManager) emit(event ConnectionEvent) {
	select {
	case cm.connectionEventChan <- event:
	default:
		log.Warn("Connection event channel is full, dropping event for client %s", event.ClientID)
	}
}
