package workers

import (
	"context"
	"sync"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/messages"
	"github.com/stretchr/testify/mock"
)

type MockSessionHandler struct {
	mock.Mock
}

func (m *MockSessionHandler) Join(ctx context.Context, player string) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockSessionHandler) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSessionHandler) RollDice(ctx context.Context, values []int) error {
	args := m.Called(ctx, values)
	return args.Error(0)
}

func (m *MockSessionHandler) EndTurn(ctx context.Context, player string, turnScore int, scorecard types.Scorecard) error {
	args := m.Called(ctx, player, turnScore, scorecard)
	return args.Error(0)
}

func (m *MockSessionHandler) Chat(ctx context.Context, player string, text string) error {
	args := m.Called(ctx, player, text)
	return args.Error(0)
}

func (m *MockSessionHandler) Refresh(ctx context.Context) {
	m.Called(ctx)
}

type MockSnapshotSource struct {
	mock.Mock
}

func (m *MockSnapshotSource) Snapshot() types.Snapshot {
	args := m.Called()
	return args.Get(0).(types.Snapshot)
}

// recordingConn stores every message written to it.
type recordingConn struct {
	lock     sync.Mutex
	messages []*messages.Message
	err      error
}

func (c *recordingConn) WriteMessage(ctx context.Context, msg *messages.Message) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}

func (c *recordingConn) received() []*messages.Message {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]*messages.Message{}, c.messages...)
}
