// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormMatch 对战记录模型
type GormMatch struct {
	gorm.Model
	RoomID     string    `gorm:"index;not null"`
	Outcome    string    `gorm:"not null"`
	Winner     int       `gorm:"default:-1"`
	PlayerRed  string    `gorm:"not null"`
	PlayerBlue string    `gorm:"not null"`
	ScoreRed   int       `gorm:"default:0"`
	ScoreBlue  int       `gorm:"default:0"`
	Moves      int       `gorm:"default:0"`
	StartedAt  time.Time
	EndedAt    time.Time `gorm:"index"`
	Duration   int       `gorm:"default:0"` // 对局时长(秒)
}

func (GormMatch) TableName() string {
	return "matches"
}

func NewGormMatch(r MatchRecord) GormMatch {
	return GormMatch{
		RoomID:     r.RoomID,
		Outcome:    r.Outcome,
		Winner:     r.Winner,
		PlayerRed:  r.PlayerRed,
		PlayerBlue: r.PlayerBlue,
		ScoreRed:   r.ScoreRed,
		ScoreBlue:  r.ScoreBlue,
		Moves:      r.Moves,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
		Duration:   int(r.Duration().Seconds()),
	}
}

func (m GormMatch) Record() MatchRecord {
	return MatchRecord{
		RoomID:     m.RoomID,
		Outcome:    m.Outcome,
		Winner:     m.Winner,
		PlayerRed:  m.PlayerRed,
		PlayerBlue: m.PlayerBlue,
		ScoreRed:   m.ScoreRed,
		ScoreBlue:  m.ScoreBlue,
		Moves:      m.Moves,
		StartedAt:  m.StartedAt,
		EndedAt:    m.EndedAt,
	}
}
