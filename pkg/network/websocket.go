package network

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/cbodonnell/yahtzee/pkg/clients"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/messages"
	"github.com/cbodonnell/yahtzee/pkg/queue"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	// MessageReadLimit represents the maximum size of an inbound message
	MessageReadLimit = 64 * 1024
)

// WSServer accepts websocket subscribers. Every subscriber receives the
// session broadcasts and may send events, which are validated and queued
// for the event worker.
type WSServer struct {
	clientManager *clients.ClientManager
	eventQueue    queue.Queue
	acceptOptions *websocket.AcceptOptions

	done     chan struct{}
	doneOnce sync.Once
}

type NewWSServerOptions struct {
	ClientManager *clients.ClientManager
	EventQueue    queue.Queue
	// AllowOrigin is "*" or the origin browsers load the game from
	AllowOrigin string
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	return &WSServer{
		clientManager: opts.ClientManager,
		eventQueue:    opts.EventQueue,
		acceptOptions: acceptOptions(opts.AllowOrigin),
		done:          make(chan struct{}),
	}
}

func acceptOptions(allowOrigin string) *websocket.AcceptOptions {
	if allowOrigin == "" || allowOrigin == "*" {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	pattern := allowOrigin
	if u, err := url.Parse(allowOrigin); err == nil && u.Host != "" {
		pattern = u.Host
	}
	return &websocket.AcceptOptions{OriginPatterns: []string{pattern}}
}

// Shutdown closes every open connection. It is safe to call more than once.
func (s *WSServer) Shutdown() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, s.acceptOptions)
	if err != nil {
		log.Error("Failed to accept WebSocket connection: %v", err)
		return
	}
	conn.SetReadLimit(MessageReadLimit)

	clientID, err := s.clientManager.ConnectClient(&wsConn{conn: conn}, r.RemoteAddr)
	if err != nil {
		log.Error("Failed to connect client from %s: %v", r.RemoteAddr, err)
		conn.Close(websocket.StatusInternalError, "failed to register client")
		return
	}
	log.Debug("New WebSocket connection %s from %s", clientID, r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.clientManager.DisconnectClient(clientID)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}()

	s.readLoop(ctx, clientID, conn)
}

func (s *WSServer) readLoop(ctx context.Context, clientID uuid.UUID, conn *websocket.Conn) {
	for {
		message := &messages.Message{}
		if err := wsjson.Read(ctx, conn, message); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Trace("Connection closed for %s", clientID)
			default:
				log.Debug("Error reading WebSocket message from %s: %v", clientID, err)
			}
			return
		}

		event, err := messages.DecodeEvent(message)
		if err != nil {
			log.Warn("Dropping invalid message from %s: %v", clientID, err)
			continue
		}
		if err := s.eventQueue.Enqueue(event); err != nil {
			log.Error("Failed to enqueue %s event from %s: %v", event.EventType(), clientID, err)
		}
	}
}

// wsConn adapts a websocket connection to clients.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) WriteMessage(ctx context.Context, msg *messages.Message) error {
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}
	return nil
}
