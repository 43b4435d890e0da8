package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/messages"
	"github.com/cbodonnell/yahtzee/pkg/repositories"
)

type SaveSessionWorker struct {
	repository repositories.SnapshotStore
	snapshots  SnapshotSource
	interval   time.Duration
}

type NewSaveSessionWorkerOptions struct {
	Repository repositories.SnapshotStore
	Snapshots  SnapshotSource
	Interval   time.Duration
}

// NewSaveSessionWorker creates a new SaveSessionWorker.
// The worker periodically saves the session snapshot to the repository
// so a restarted server can pick the game back up.
func NewSaveSessionWorker(opts NewSaveSessionWorkerOptions) *SaveSessionWorker {
	return &SaveSessionWorker{
		repository: opts.Repository,
		snapshots:  opts.Snapshots,
		interval:   opts.Interval,
	}
}

func (w *SaveSessionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// final save on shutdown, ctx is already cancelled
			saveCtx, cancel := context.WithTimeout(context.Background(), w.interval)
			w.Save(saveCtx)
			cancel()
			return
		case <-ticker.C:
			w.Save(ctx)
		}
	}
}

// Save writes the current snapshot to the repository.
func (w *SaveSessionWorker) Save(ctx context.Context) {
	data, err := messages.SerializeSnapshot(w.snapshots.Snapshot())
	if err != nil {
		log.Error("Failed to serialize session: %v", err)
		return
	}
	if err := w.repository.SaveSnapshot(ctx, data); err != nil {
		log.Error("Failed to save session: %v", err)
		return
	}
	log.Trace("Saved session snapshot (%d bytes)", len(data))
}
