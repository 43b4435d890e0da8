package game

import (
	"context"
	"sync"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/repositories"
)

// DefaultStoreTimeout bounds each call to an external store made while the session is locked.
const DefaultStoreTimeout = 5 * time.Second

// Publisher delivers a session snapshot to every subscriber.
type Publisher interface {
	Publish(snapshot types.Snapshot)
}

// LeaderboardUpdater records the winning score of a finished game.
type LeaderboardUpdater interface {
	UpdatePersonalBest(ctx context.Context, player string, score int) (bool, error)
	UpdateHallOfFame(ctx context.Context, player string, score int) (bool, error)
}

// SessionManager owns the single shared session. Every operation runs
// mutate, finalize and publish under one lock, so at most one mutation is
// in flight at a time and subscribers see snapshots in mutation order.
type SessionManager struct {
	lock         sync.Mutex
	session      *types.Session
	users        repositories.UserStore
	transcripts  repositories.TranscriptStore
	leaderboard  LeaderboardUpdater
	publisher    Publisher
	strictTurns  bool
	maxRolls     int
	storeTimeout time.Duration
}

// NewSessionManagerOptions contains options for creating a new SessionManager.
type NewSessionManagerOptions struct {
	UserStore       repositories.UserStore
	TranscriptStore repositories.TranscriptStore
	Leaderboard     LeaderboardUpdater
	Publisher       Publisher
	// StrictTurns rejects end_turn from anyone but the active player
	StrictTurns bool
	// MaxRollsPerTurn caps dice rolls per turn; 0 disables the cap
	MaxRollsPerTurn int
	StoreTimeout    time.Duration
	// Session restores a previous session; a fresh one is created when nil
	Session *types.Session
}

func NewSessionManager(opts NewSessionManagerOptions) *SessionManager {
	session := opts.Session
	if session == nil {
		session = types.NewSession()
	}
	storeTimeout := opts.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &SessionManager{
		session:      session,
		users:        opts.UserStore,
		transcripts:  opts.TranscriptStore,
		leaderboard:  opts.Leaderboard,
		publisher:    opts.Publisher,
		strictTurns:  opts.StrictTurns,
		maxRolls:     opts.MaxRollsPerTurn,
		storeTimeout: storeTimeout,
	}
}

// Snapshot returns a copy of the current session view.
func (m *SessionManager) Snapshot() types.Snapshot {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.session.Snapshot()
}

// Join adds a player to the roster and makes sure the player has a profile.
func (m *SessionManager) Join(ctx context.Context, player string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	err := join(m.session, player)
	if err == nil {
		log.Info("Player %s joined the game", player)
		m.ensureUser(ctx, player)
	}
	return m.commit("join", err)
}

func (m *SessionManager) Start(ctx context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	err := start(m.session)
	if err == nil {
		log.Info("Game started with %d players", len(m.session.Roster))
	}
	return m.commit("start", err)
}

func (m *SessionManager) RollDice(ctx context.Context, values []int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	err := rollDice(m.session, values, m.maxRolls)
	return m.commit("roll", err)
}

func (m *SessionManager) EndTurn(ctx context.Context, player string, turnScore int, scorecard types.Scorecard) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	ended, err := endTurn(m.session, player, turnScore, scorecard, m.strictTurns)
	if err == nil && ended {
		m.finishGame(ctx)
	}
	return m.commit("end turn", err)
}

func (m *SessionManager) Chat(ctx context.Context, player string, text string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	chat(m.session, player, text)
	return m.commit("chat", nil)
}

// Refresh republishes the current snapshot without changing it.
func (m *SessionManager) Refresh(ctx context.Context) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.publish()
}

// Reset discards the session and returns the empty snapshot it published.
func (m *SessionManager) Reset(ctx context.Context) types.Snapshot {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.session = types.NewSession()
	log.Info("Session reset")
	snapshot := m.session.Snapshot()
	if m.publisher != nil {
		m.publisher.Publish(snapshot)
	}
	return snapshot
}

// commit records the outcome of an operation in the session and publishes it.
// Failures are reported to players through LastError and also returned.
func (m *SessionManager) commit(op string, err error) error {
	if err != nil {
		log.Warn("Failed to %s: %v", op, err)
		m.session.LastError = err.Error()
	} else {
		m.session.LastError = ""
	}
	m.publish()
	return err
}

func (m *SessionManager) publish() {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(m.session.Snapshot())
}

func (m *SessionManager) ensureUser(ctx context.Context, player string) {
	if m.users == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()

	_, err := m.users.FindUser(ctx, player)
	if err == nil {
		return
	}
	if !repositories.IsNotFound(err) {
		log.Error("Failed to find user %s: %v", player, err)
		return
	}
	if _, err := m.users.CreateUser(ctx, player); err != nil && !repositories.IsUserExists(err) {
		log.Error("Failed to create user %s: %v", player, err)
		return
	}
	log.Debug("Created profile for %s", player)
}

// finishGame ranks the players and records the winner's score.
func (m *SessionManager) finishGame(ctx context.Context) {
	winner := finalize(m.session)
	log.Info("Game ended, %s won with %d points", winner.Player, winner.Score)

	ctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()

	if m.leaderboard != nil {
		personalBest, err := m.leaderboard.UpdatePersonalBest(ctx, winner.Player, winner.Score)
		if err != nil {
			log.Error("Failed to update personal best: %v", err)
		}
		m.session.NewPersonalBest = personalBest

		hallRecord, err := m.leaderboard.UpdateHallOfFame(ctx, winner.Player, winner.Score)
		if err != nil {
			log.Error("Failed to update hall of fame: %v", err)
		}
		m.session.NewHallRecord = hallRecord
	}

	if m.transcripts != nil {
		if err := m.transcripts.AppendLog(ctx, m.session.Transcript); err != nil {
			log.Error("Failed to archive transcript: %v", err)
		}
	}
}
