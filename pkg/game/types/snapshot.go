package types

// Snapshot is the serialized view of a Session delivered to subscribers.
// TurnIndex is internal and is published as ActivePlayer instead.
type Snapshot struct {
	Roster              []string             `json:"roster"`
	ActivePlayer        string               `json:"activePlayer"`
	Phase               string               `json:"phase"`
	TotalTurnsCompleted int                  `json:"totalTurnsCompleted"`
	Scorecards          map[string]Scorecard `json:"scorecards"`
	CumulativeScores    map[string]int       `json:"cumulativeScores"`
	DiceValues          []int                `json:"diceValues"`
	DiceRollCount       int                  `json:"diceRollCount"`
	HasStarted          bool                 `json:"hasStarted"`
	HasEnded            bool                 `json:"hasEnded"`
	Winner              string               `json:"winner"`
	FinalRanking        []RankEntry          `json:"finalRanking"`
	NewHallRecord       bool                 `json:"newHallRecord"`
	NewPersonalBest     bool                 `json:"newPersonalBest"`
	Transcript          []string             `json:"transcript"`
	ChatLog             []string             `json:"chatLog"`
	LastError           string               `json:"lastError"`
}

// Snapshot returns a deep copy of the session suitable for publishing.
func (s *Session) Snapshot() Snapshot {
	scorecards := make(map[string]Scorecard, len(s.Scorecards))
	for player, card := range s.Scorecards {
		scorecards[player] = card.Copy()
	}
	scores := make(map[string]int, len(s.CumulativeScores))
	for player, score := range s.CumulativeScores {
		scores[player] = score
	}

	return Snapshot{
		Roster:              append([]string{}, s.Roster...),
		ActivePlayer:        s.ActivePlayer(),
		Phase:               s.Phase().String(),
		TotalTurnsCompleted: s.TotalTurnsCompleted,
		Scorecards:          scorecards,
		CumulativeScores:    scores,
		DiceValues:          append([]int{}, s.DiceValues...),
		DiceRollCount:       s.DiceRollCount,
		HasStarted:          s.HasStarted,
		HasEnded:            s.HasEnded,
		Winner:              s.Winner,
		FinalRanking:        append([]RankEntry{}, s.FinalRanking...),
		NewHallRecord:       s.NewHallRecord,
		NewPersonalBest:     s.NewPersonalBest,
		Transcript:          append([]string{}, s.Transcript...),
		ChatLog:             append([]string{}, s.ChatLog...),
		LastError:           s.LastError,
	}
}

// SessionFromSnapshot rebuilds a session, resolving ActivePlayer back to a turn index.
func SessionFromSnapshot(snap Snapshot) *Session {
	s := NewSession()
	s.Roster = append(s.Roster, snap.Roster...)
	s.TotalTurnsCompleted = snap.TotalTurnsCompleted
	for player, card := range snap.Scorecards {
		s.Scorecards[player] = card.Copy()
	}
	for player, score := range snap.CumulativeScores {
		s.CumulativeScores[player] = score
	}
	s.DiceValues = append(s.DiceValues, snap.DiceValues...)
	s.DiceRollCount = snap.DiceRollCount
	s.HasStarted = snap.HasStarted
	s.HasEnded = snap.HasEnded
	s.Winner = snap.Winner
	s.FinalRanking = append(s.FinalRanking, snap.FinalRanking...)
	s.NewHallRecord = snap.NewHallRecord
	s.NewPersonalBest = snap.NewPersonalBest
	s.Transcript = append(s.Transcript, snap.Transcript...)
	s.ChatLog = append(s.ChatLog, snap.ChatLog...)
	s.LastError = snap.LastError

	if i := s.RosterIndex(snap.ActivePlayer); i >= 0 {
		s.TurnIndex = i
	}

	return s
}
