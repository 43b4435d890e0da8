package game

import (
	"fmt"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
)

func start(s *types.Session) error {
	if s.HasStarted {
		return newError(ErrorKindGameAlreadyStarted, "the game has already started")
	}
	if len(s.Roster) == 0 {
		return newError(ErrorKindInvalidTurnState, "cannot start a game without players")
	}

	s.HasStarted = true
	s.TurnIndex = 0
	s.AppendTranscript(fmt.Sprintf("The game has started. It is %s's turn", s.ActivePlayer()))

	return nil
}

// endTurn records the finished turn and advances to the next player.
// It returns true when this turn completed the game.
func endTurn(s *types.Session, player string, turnScore int, scorecard types.Scorecard, strict bool) (bool, error) {
	if s.Phase() != types.PhaseInProgress {
		return false, newError(ErrorKindInvalidTurnState, "cannot end a turn while the game is %s", s.Phase())
	}
	if !s.HasPlayer(player) {
		return false, newError(ErrorKindPlayerNotFound, "%s is not in the game", player)
	}
	if strict && player != s.ActivePlayer() {
		return false, newError(ErrorKindNotYourTurn, "it is %s's turn, not %s's", s.ActivePlayer(), player)
	}

	s.Scorecards[player] = scorecard.Copy()
	s.CumulativeScores[player] = turnScore

	s.TurnIndex = (s.TurnIndex + 1) % len(s.Roster)
	s.DiceRollCount = 0
	s.TotalTurnsCompleted++
	s.AppendTranscript(fmt.Sprintf("%s ended their turn with %d points. It is now %s's turn",
		player, turnScore, s.ActivePlayer()))

	return s.TotalTurnsCompleted == s.TurnLimit(), nil
}
