package workers

import (
	"context"

	"github.com/cbodonnell/yahtzee/pkg/clients"
	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/messages"
)

// SnapshotSource returns the current session view.
type SnapshotSource interface {
	Snapshot() types.Snapshot
}

type ConnectionEventWorker struct {
	clientManager *clients.ClientManager
	snapshots     SnapshotSource
	broadcaster   *BroadcastWorker
}

type NewConnectionEventWorkerOptions struct {
	ClientManager *clients.ClientManager
	Snapshots     SnapshotSource
	Broadcaster   *BroadcastWorker
}

// NewConnectionEventWorker creates a new ConnectionEventWorker.
// The worker processes client connects and disconnects and sends the
// current session to every newly connected client.
func NewConnectionEventWorker(opts NewConnectionEventWorkerOptions) *ConnectionEventWorker {
	return &ConnectionEventWorker{
		clientManager: opts.ClientManager,
		snapshots:     opts.Snapshots,
		broadcaster:   opts.Broadcaster,
	}
}

func (w *ConnectionEventWorker) Start(ctx context.Context) {
	events := w.clientManager.GetConnectionEventChan()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			switch event.Type {
			case clients.ConnectionEventTypeConnect:
				w.handleClientConnect(ctx, event)
			case clients.ConnectionEventTypeDisconnect:
				log.Info("Client %s disconnected, %d connected", event.ClientID, w.clientManager.Count())
			default:
				log.Error("Unknown connection event type: %v", event.Type)
			}
		}
	}
}

func (w *ConnectionEventWorker) handleClientConnect(ctx context.Context, event clients.ConnectionEvent) {
	log.Info("Client %s connected, %d connected", event.ClientID, w.clientManager.Count())

	client, err := w.clientManager.GetClient(event.ClientID)
	if err != nil {
		// already gone
		log.Debug("Skipping welcome state: %v", err)
		return
	}

	msg, err := messages.NewStateMessage(w.snapshots.Snapshot())
	if err != nil {
		log.Error("Failed to create state message: %v", err)
		return
	}
	if err := w.broadcaster.send(ctx, client, msg); err != nil {
		log.Error("Failed to send state to client %s: %v", client.ID, err)
	}
}
