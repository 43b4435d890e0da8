package types

// CategoriesPerPlayer is the number of scorecard categories each player fills,
// and therefore the number of turns each player takes in a game.
const CategoriesPerPlayer = 13

type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Scorecard maps a scoring category to the value recorded for it.
type Scorecard map[string]int

func (s Scorecard) Copy() Scorecard {
	if s == nil {
		return Scorecard{}
	}
	c := make(Scorecard, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// RankEntry is one line of the final ranking.
type RankEntry struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// Session is the single shared record of a pending, running or finished game.
type Session struct {
	// Roster holds joined players in join order, which is also turn order
	Roster []string
	// TurnIndex points into Roster at the active player
	TurnIndex           int
	TotalTurnsCompleted int
	Scorecards          map[string]Scorecard
	// CumulativeScores holds the last total reported by each player
	CumulativeScores map[string]int
	DiceValues       []int
	DiceRollCount    int
	HasStarted       bool
	HasEnded         bool
	Winner           string
	FinalRanking     []RankEntry
	NewHallRecord    bool
	NewPersonalBest  bool
	Transcript       []string
	ChatLog          []string
	LastError        string
}

func NewSession() *Session {
	return &Session{
		Roster:           []string{},
		Scorecards:       make(map[string]Scorecard),
		CumulativeScores: make(map[string]int),
		DiceValues:       []int{},
		FinalRanking:     []RankEntry{},
		Transcript:       []string{},
		ChatLog:          []string{},
	}
}

func (s *Session) Phase() Phase {
	switch {
	case s.HasEnded:
		return PhaseEnded
	case s.HasStarted:
		return PhaseInProgress
	default:
		return PhaseNotStarted
	}
}

// HasPlayer reports whether the identifier is on the roster.
func (s *Session) HasPlayer(player string) bool {
	return s.RosterIndex(player) >= 0
}

// RosterIndex returns the join position of the player, or -1.
func (s *Session) RosterIndex(player string) int {
	for i, p := range s.Roster {
		if p == player {
			return i
		}
	}
	return -1
}

// ActivePlayer returns the player whose turn it is, or "" when no game is running.
func (s *Session) ActivePlayer() string {
	if !s.HasStarted || len(s.Roster) == 0 {
		return ""
	}
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.Roster) {
		return ""
	}
	return s.Roster[s.TurnIndex]
}

// TurnLimit is the number of completed turns after which the game ends.
func (s *Session) TurnLimit() int {
	return len(s.Roster) * CategoriesPerPlayer
}

func (s *Session) AppendTranscript(entry string) {
	s.Transcript = append(s.Transcript, entry)
}
