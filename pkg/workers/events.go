package workers

import (
	"context"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/cbodonnell/yahtzee/pkg/messages"
	"github.com/cbodonnell/yahtzee/pkg/queue"
)

// SessionHandler applies events to the shared session.
type SessionHandler interface {
	Join(ctx context.Context, player string) error
	Start(ctx context.Context) error
	RollDice(ctx context.Context, values []int) error
	EndTurn(ctx context.Context, player string, turnScore int, scorecard types.Scorecard) error
	Chat(ctx context.Context, player string, text string) error
	Refresh(ctx context.Context)
}

type EventWorker struct {
	eventQueue queue.Queue
	session    SessionHandler
}

type NewEventWorkerOptions struct {
	EventQueue queue.Queue
	Session    SessionHandler
}

// NewEventWorker creates a new EventWorker.
// The worker dequeues validated client events and applies them to the
// session one at a time, in arrival order.
func NewEventWorker(opts NewEventWorkerOptions) *EventWorker {
	return &EventWorker{
		eventQueue: opts.EventQueue,
		session:    opts.Session,
	}
}

func (w *EventWorker) Start(ctx context.Context) {
	for {
		item, err := w.eventQueue.Dequeue(ctx)
		if err != nil {
			// only fails once ctx is done
			return
		}
		w.handleEvent(ctx, item)
	}
}

// Session errors are already logged and published by the handler, so they
// are not logged again here.
func (w *EventWorker) handleEvent(ctx context.Context, item interface{}) {
	switch event := item.(type) {
	case *messages.JoinEvent:
		_ = w.session.Join(ctx, event.Username)
	case *messages.StartGameEvent:
		_ = w.session.Start(ctx)
	case *messages.GetUserWithCurrentTurnEvent:
		w.session.Refresh(ctx)
	case *messages.ChatMessageEvent:
		_ = w.session.Chat(ctx, event.Username, event.Message)
	case *messages.EndTurnEvent:
		_ = w.session.EndTurn(ctx, event.Username, event.TurnScore, event.Scorecard)
	case *messages.DiceValuesEvent:
		_ = w.session.RollDice(ctx, event.Values)
	default:
		log.Error("Unknown event type: %T", item)
	}
}
