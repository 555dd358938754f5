// models/models.go
package models

import (
	"time"
)

// MatchRecord 一局对战的结果
type MatchRecord struct {
	RoomID     string    `json:"room_id"`
	Outcome    string    `json:"outcome"` // finished/abandoned
	Winner     int       `json:"winner"`  // 0 红方, 1 蓝方, -1 无
	PlayerRed  string    `json:"player_red"`
	PlayerBlue string    `json:"player_blue"`
	ScoreRed   int       `json:"score_red"`
	ScoreBlue  int       `json:"score_blue"`
	Moves      int       `json:"moves"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// Duration 对局时长
func (r MatchRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// MatchStats 对战汇总
type MatchStats struct {
	TotalGames int `json:"total_games"`
	Finished   int `json:"finished"`
	Abandoned  int `json:"abandoned"`
	RedWins    int `json:"red_wins"`
	BlueWins   int `json:"blue_wins"`
	TotalMoves int `json:"total_moves"`
}

// Add 把一局结果计入汇总
func (s *MatchStats) Add(r MatchRecord) {
	s.TotalGames++
	s.TotalMoves += r.Moves
	if r.Outcome == "abandoned" {
		s.Abandoned++
	} else {
		s.Finished++
	}
	switch r.Winner {
	case 0:
		s.RedWins++
	case 1:
		s.BlueWins++
	}
}

// RoomSummary 房间概况，供管理接口使用
type RoomSummary struct {
	RoomID    string    `json:"room_id"`
	Status    string    `json:"status"`
	Players   int       `json:"players"`
	CreatedAt time.Time `json:"created_at"`
}
