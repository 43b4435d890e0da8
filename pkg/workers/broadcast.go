package workers

import (
	"context"
	"sync"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/clients"
	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/messages"
)

const (
	// DefaultBroadcastBufferSize is the number of snapshots waiting to be sent
	DefaultBroadcastBufferSize = 256
	// DefaultWriteTimeout bounds a single write to a subscriber
	DefaultWriteTimeout = 5 * time.Second
)

// BroadcastWorker sends every published snapshot to all connected clients.
// Publish never blocks the session; snapshots are delivered in publish order.
type BroadcastWorker struct {
	publishLock   sync.Mutex
	clientManager *clients.ClientManager
	snapshotChan  chan types.Snapshot
	writeTimeout  time.Duration
}

type NewBroadcastWorkerOptions struct {
	ClientManager *clients.ClientManager
	BufferSize    int
	WriteTimeout  time.Duration
}

func NewBroadcastWorker(opts NewBroadcastWorkerOptions) *BroadcastWorker {
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultBroadcastBufferSize
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &BroadcastWorker{
		clientManager: opts.ClientManager,
		snapshotChan:  make(chan types.Snapshot, bufferSize),
		writeTimeout:  writeTimeout,
	}
}

// Publish queues the snapshot for delivery without blocking. When the buffer
// is full the oldest queued snapshot is dropped, so the latest state is
// always delivered.
func (w *BroadcastWorker) Publish(snapshot types.Snapshot) {
	w.publishLock.Lock()
	defer w.publishLock.Unlock()

	for {
		select {
		case w.snapshotChan <- snapshot:
			return
		default:
		}
		select {
		case <-w.snapshotChan:
			log.Warn("Broadcast buffer is full, dropping oldest snapshot")
		default:
		}
	}
}

func (w *BroadcastWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-w.snapshotChan:
			msg, err := messages.NewStateMessage(snapshot)
			if err != nil {
				log.Error("Failed to create state message: %v", err)
				continue
			}
			w.sendToAll(ctx, msg)
		}
	}
}

func (w *BroadcastWorker) sendToAll(ctx context.Context, msg *messages.Message) {
	for _, client := range w.clientManager.GetClients() {
		if err := w.send(ctx, client, msg); err != nil {
			log.Debug("Failed to send state to client %s: %v", client.ID, err)
		}
	}
}

// send writes one message to one client within the write timeout.
func (w *BroadcastWorker) send(ctx context.Context, client *clients.Client, msg *messages.Message) error {
	ctx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()
	return client.Conn.WriteMessage(ctx, msg)
}
