package game

// Scoreboard tracks the seated count and latches the win once per round.
type Scoreboard struct {
	Score int  `json:"score"`
	Total int  `json:"total"`
	Won   bool `json:"won"`
	Best  int  `json:"best"`
}

// Update records the latest count. It returns true exactly once per round:
// the first time every ring is seated.
func (s *Scoreboard) Update(seated, total int) bool {
	s.Score = seated
	s.Total = total
	if seated > s.Best {
		s.Best = seated
	}
	if s.Won || total == 0 || seated < total {
		return false
	}
	s.Won = true
	return true
}

// Reset starts a new round. Best carries over: it is the session's best.
func (s *Scoreboard) Reset(total int) {
	*s = Scoreboard{Total: total, Best: s.Best}
}
