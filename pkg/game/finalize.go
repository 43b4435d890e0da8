package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cbodonnell/yahtzee/pkg/game/types"
)

// rankPlayers orders the roster by descending score. Equal scores keep join order.
func rankPlayers(s *types.Session) []types.RankEntry {
	ranking := make([]types.RankEntry, 0, len(s.Roster))
	for _, player := range s.Roster {
		ranking = append(ranking, types.RankEntry{
			Player: player,
			Score:  s.CumulativeScores[player],
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	return ranking
}

// finalize ends the game and returns the winning entry.
func finalize(s *types.Session) types.RankEntry {
	s.FinalRanking = rankPlayers(s)
	winner := s.FinalRanking[0]
	s.Winner = winner.Player
	s.HasEnded = true

	scores := make([]string, len(s.FinalRanking))
	for i, entry := range s.FinalRanking {
		scores[i] = fmt.Sprintf("%s %d", entry.Player, entry.Score)
	}
	s.AppendTranscript("Final scores: " + strings.Join(scores, ", "))
	s.AppendTranscript(fmt.Sprintf("%s wins with %d points!", winner.Player, winner.Score))

	return winner
}
