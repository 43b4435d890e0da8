package repositories

import (
	"context"

	"github.com/cbodonnell/yahtzee/pkg/repositories/models"
)

// UserStore holds player profiles and their personal best scores.
type UserStore interface {
	FindUser(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, username string) (*models.User, error)
	UpdateHighScore(ctx context.Context, username string, score int) error
}

// RecordStore holds ranked record lists keyed by name.
type RecordStore interface {
	GetRecords(ctx context.Context, key string) ([]models.Record, error)
	SetRecords(ctx context.Context, key string, records []models.Record) error
}

// TranscriptStore archives session transcripts.
type TranscriptStore interface {
	AppendLog(ctx context.Context, entries []string) error
}

// SnapshotStore keeps the last serialized session snapshot.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, data []byte) error
	LoadSnapshot(ctx context.Context) ([]byte, error)
}

type Repository interface {
	UserStore
	RecordStore
	TranscriptStore
	SnapshotStore
	Close(ctx context.Context) error
}
