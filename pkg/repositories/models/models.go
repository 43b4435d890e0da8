package models

// User is a player profile tracked across games.
type User struct {
	Username  string `json:"username"`
	HighScore int    `json:"highScore"`
}

// Record is one hall-of-fame entry.
type Record struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}
