package messages

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
)

const (
	// DiceCount is the number of dice in a roll
	DiceCount = 5
)

// Message types
const (
	MessageTypeJoin                   = "join"
	MessageTypeStartGame              = "start_game"
	MessageTypeGetUserWithCurrentTurn = "get_user_with_current_turn"
	MessageTypeChatMessage            = "chat_message"
	MessageTypeEndTurn                = "end_turn"
	MessageTypeDiceValues             = "dice_values"
	MessageTypeBroadcastGameState     = "broadcast_game_state"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is a validated inbound message.
type Event interface {
	EventType() string
}

type JoinEvent struct {
	Username string `json:"username"`
}

type StartGameEvent struct{}

type GetUserWithCurrentTurnEvent struct{}

type ChatMessageEvent struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type EndTurnEvent struct {
	Username  string          `json:"username"`
	TurnScore int             `json:"turnScore"`
	Scorecard types.Scorecard `json:"scorecard"`
}

type DiceValuesEvent struct {
	Values []int `json:"values"`
}

func (JoinEvent) EventType() string                   { return MessageTypeJoin }
func (StartGameEvent) EventType() string              { return MessageTypeStartGame }
func (GetUserWithCurrentTurnEvent) EventType() string { return MessageTypeGetUserWithCurrentTurn }
func (ChatMessageEvent) EventType() string            { return MessageTypeChatMessage }
func (EndTurnEvent) EventType() string                { return MessageTypeEndTurn }
func (DiceValuesEvent) EventType() string             { return MessageTypeDiceValues }

// DecodeEvent checks the payload of an inbound message against the schema of its type.
func DecodeEvent(m *Message) (Event, error) {
	switch m.Type {
	case MessageTypeJoin:
		e := &JoinEvent{}
		if err := unmarshalPayload(m, e); err != nil {
			return nil, err
		}
		if e.Username == "" {
			return nil, fmt.Errorf("join: username is required")
		}
		return e, nil
	case MessageTypeStartGame:
		return &StartGameEvent{}, nil
	case MessageTypeGetUserWithCurrentTurn:
		return &GetUserWithCurrentTurnEvent{}, nil
	case MessageTypeChatMessage:
		e := &ChatMessageEvent{}
		if err := unmarshalPayload(m, e); err != nil {
			return nil, err
		}
		if e.Username == "" {
			return nil, fmt.Errorf("chat_message: username is required")
		}
		return e, nil
	case MessageTypeEndTurn:
		e := &EndTurnEvent{}
		if err := unmarshalPayload(m, e); err != nil {
			return nil, err
		}
		if e.Username == "" {
			return nil, fmt.Errorf("end_turn: username is required")
		}
		if e.Scorecard == nil {
			e.Scorecard = types.Scorecard{}
		}
		return e, nil
	case MessageTypeDiceValues:
		e := &DiceValuesEvent{}
		if err := unmarshalPayload(m, e); err != nil {
			return nil, err
		}
		if len(e.Values) != DiceCount {
			return nil, fmt.Errorf("dice_values: expected %d dice, got %d", DiceCount, len(e.Values))
		}
		for _, v := range e.Values {
			if v < 1 || v > 6 {
				return nil, fmt.Errorf("dice_values: invalid face value %d", v)
			}
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown message type: %s", m.Type)
	}
}

func unmarshalPayload(m *Message, v interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%s: failed to unmarshal payload: %v", m.Type, err)
	}
	return nil
}

// NewStateMessage wraps a snapshot in a broadcast_game_state message.
func NewStateMessage(snapshot types.Snapshot) (*Message, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %v", err)
	}
	return &Message{
		Type:    MessageTypeBroadcastGameState,
		Payload: payload,
	}, nil
}
