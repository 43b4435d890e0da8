// Package leaderboard maintains personal bests and the all-time hall of fame.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/repositories"
	"github.com/cbodonnell/yahtzee/pkg/repositories/models"
)

const (
	// HallOfFameKey identifies the all-time records list in the record store
	HallOfFameKey = "all_time_records"
	// MaxRecords is the size of the hall of fame
	MaxRecords = 10
)

// InsertRecord places record before the first entry whose score is lower than
// or equal to it, then caps the list at MaxRecords. The input must already be
// sorted by descending score; it is not modified. The boolean reports whether
// the record made it onto the list.
func InsertRecord(records []models.Record, record models.Record) ([]models.Record, bool) {
	i := sort.Search(len(records), func(i int) bool {
		return records[i].Score <= record.Score
	})
	if i >= MaxRecords {
		return append([]models.Record{}, records...), false
	}

	updated := make([]models.Record, 0, len(records)+1)
	updated = append(updated, records[:i]...)
	updated = append(updated, record)
	updated = append(updated, records[i:]...)
	if len(updated) > MaxRecords {
		updated = updated[:MaxRecords]
	}

	return updated, true
}

type Updater struct {
	users   repositories.UserStore
	records repositories.RecordStore
}

type NewUpdaterOptions struct {
	UserStore   repositories.UserStore
	RecordStore repositories.RecordStore
}

func NewUpdater(opts NewUpdaterOptions) *Updater {
	return &Updater{
		users:   opts.UserStore,
		records: opts.RecordStore,
	}
}

// UpdatePersonalBest stores score as the player's best if it beats the stored one.
func (u *Updater) UpdatePersonalBest(ctx context.Context, player string, score int) (bool, error) {
	user, err := u.users.FindUser(ctx, player)
	if err != nil {
		return false, fmt.Errorf("failed to find user %s: %w", player, err)
	}
	if score <= user.HighScore {
		return false, nil
	}

	if err := u.users.UpdateHighScore(ctx, player, score); err != nil {
		return false, fmt.Errorf("failed to update high score for %s: %w", player, err)
	}
	log.Info("New personal best for %s: %d (was %d)", player, score, user.HighScore)

	return true, nil
}

// UpdateHallOfFame inserts the score into the all-time records when it ranks.
func (u *Updater) UpdateHallOfFame(ctx context.Context, player string, score int) (bool, error) {
	records, err := u.records.GetRecords(ctx, HallOfFameKey)
	if err != nil {
		return false, fmt.Errorf("failed to get records: %w", err)
	}

	updated, inserted := InsertRecord(records, models.Record{Player: player, Score: score})
	if !inserted {
		return false, nil
	}

	if err := u.records.SetRecords(ctx, HallOfFameKey, updated); err != nil {
		return false, fmt.Errorf("failed to set records: %w", err)
	}
	log.Info("New hall of fame record for %s: %d", player, score)

	return true, nil
}

// Records returns the current hall of fame.
func (u *Updater) Records(ctx context.Context) ([]models.Record, error) {
	records, err := u.records.GetRecords(ctx, HallOfFameKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	return records, nil
}
