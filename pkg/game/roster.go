package game

import (
	"fmt"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
)

// join adds the player to the end of the roster with an empty scorecard.
func join(s *types.Session, player string) error {
	if s.HasPlayer(player) {
		return newError(ErrorKindDuplicateJoin, "%s has already joined the game", player)
	}
	if s.HasStarted {
		return newError(ErrorKindGameAlreadyStarted, "the game has already started, %s cannot join", player)
	}

	s.Roster = append(s.Roster, player)
	s.Scorecards[player] = types.Scorecard{}
	s.AppendTranscript(fmt.Sprintf("%s joined the game", player))

	return nil
}

// chat records a chat line. Chat is allowed in every phase.
func chat(s *types.Session, player string, text string) {
	s.ChatLog = append(s.ChatLog, fmt.Sprintf("%s: %s", player, text))
}
