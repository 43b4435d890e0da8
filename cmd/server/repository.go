package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/messages"
	"github.com/cbodonnell/yahtzee/pkg/repositories"
)

// openRepository picks the repository implementation from the URL scheme.
func openRepository(ctx context.Context, databaseURL string) (repositories.Repository, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		path := u.Host + u.Path
		if path == "" {
			return nil, fmt.Errorf("sqlite database URL has no path: %s", databaseURL)
		}
		repository, err := repositories.NewSQLiteRepository(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite repository: %v", err)
		}
		return repository, nil
	case "postgresql", "postgres":
		repository, err := repositories.NewPostgresRepository(ctx, u.String())
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres repository: %v", err)
		}
		return repository, nil
	case "memory":
		return repositories.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown database type %q", u.Scheme)
	}
}

// restoreSession loads the last saved session. It returns nil when nothing was saved.
func restoreSession(ctx context.Context, store repositories.SnapshotStore) (*types.Session, error) {
	data, err := store.LoadSnapshot(ctx)
	if err != nil {
		if repositories.IsNotFound(err) {
			log.Info("No saved session to restore")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session snapshot: %v", err)
	}

	snapshot, err := messages.DeserializeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize session snapshot: %v", err)
	}
	session := types.SessionFromSnapshot(snapshot)
	log.Info("Restored %s session with %d players", session.Phase(), len(session.Roster))

	return session, nil
}
