package scoring

// Scoring keeps the score of the current round. It lives only as long as
// the round and is never written anywhere.
type Scoring struct {
	// public
	CurrentScore int
	MatchCount   int
	MissCount    int
	HintCount    int
	ComboCount   int
	TimeBonus    int
	// private
	scoreTable map[string]int
}

// InitScoring creates a zeroed score for a new round.
func InitScoring() *Scoring {
	return &Scoring{
		scoreTable: getScoreTable(),
	}
}

// ScoreEvent updates the score based on a given game event.
func (s *Scoring) ScoreEvent(event string) {
	switch event {
	case "match":
		s.MatchCount++
	case "mismatch":
		s.MissCount++
	case "hint":
		s.HintCount++
	case "comboBonus":
		s.ComboCount++
	}
	s.CurrentScore += s.scoreTable[event]
}

// AddTimeBonus rewards the seconds left on the clock when the round is won.
func (s *Scoring) AddTimeBonus(seconds int) {
	if seconds <= 0 {
		return
	}
	bonus := seconds * s.scoreTable["secondLeft"]
	s.TimeBonus += bonus
	s.CurrentScore += bonus
}

// Display is the score shown to the player; it never goes below zero.
func (s *Scoring) Display() int {
	if s.CurrentScore < 0 {
		return 0
	}
	return s.CurrentScore
}

// getScoreTable returns the predefined values for different scoring events.
func getScoreTable() map[string]int {
	return map[string]int{
		"match":      100,
		"mismatch":   -10,
		"hint":       -50,
		"comboBonus": 250,
		"secondLeft": 10,
	}
}
