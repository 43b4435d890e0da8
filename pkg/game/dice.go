package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
)

// rollDice replaces the current dice. maxRolls of 0 means no per-turn limit.
func rollDice(s *types.Session, values []int, maxRolls int) error {
	if s.Phase() != types.PhaseInProgress {
		return newError(ErrorKindInvalidTurnState, "cannot roll dice while the game is %s", s.Phase())
	}
	if maxRolls > 0 && s.DiceRollCount >= maxRolls {
		return newError(ErrorKindRollLimitReached, "%s has already rolled %d times this turn", s.ActivePlayer(), s.DiceRollCount)
	}

	s.DiceValues = append([]int{}, values...)
	s.DiceRollCount++
	s.AppendTranscript(fmt.Sprintf("%s rolled %s", s.ActivePlayer(), formatDice(values)))

	return nil
}

func formatDice(values []int) string {
	faces := make([]string, len(values))
	for i, v := range values {
		faces[i] = strconv.Itoa(v)
	}
	return strings.Join(faces, ", ")
}
