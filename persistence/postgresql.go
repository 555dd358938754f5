// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/minesduel/models"
)

const queryTimeout = 5 * time.Second

// PostgreSQL 数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn(host, port, user, password, dbname))
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 与 GormMatch 的表结构保持一致
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS matches (
            id BIGSERIAL PRIMARY KEY,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMPTZ,
            room_id TEXT NOT NULL,
            outcome TEXT NOT NULL,
            winner BIGINT DEFAULT -1,
            player_red TEXT NOT NULL,
            player_blue TEXT NOT NULL,
            score_red BIGINT DEFAULT 0,
            score_blue BIGINT DEFAULT 0,
            moves BIGINT DEFAULT 0,
            started_at TIMESTAMPTZ,
            ended_at TIMESTAMPTZ,
            duration BIGINT DEFAULT 0
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_matches_room_id ON matches(room_id);
        CREATE INDEX IF NOT EXISTS idx_matches_ended_at ON matches(ended_at);
    `)
	return err
}

// SaveMatch 保存对战记录
func (p *PostgreSQL) SaveMatch(r models.MatchRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
        INSERT INTO matches (room_id, outcome, winner, player_red, player_blue,
            score_red, score_blue, moves, started_at, ended_at, duration)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := p.db.ExecContext(ctx, query,
		r.RoomID, r.Outcome, r.Winner, r.PlayerRed, r.PlayerBlue,
		r.ScoreRed, r.ScoreBlue, r.Moves, r.StartedAt, r.EndedAt, int(r.Duration().Seconds()))
	return err
}

// RecentMatches 按结束时间倒序返回最近的对战
func (p *PostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := `
        SELECT room_id, outcome, winner, player_red, player_blue,
            score_red, score_blue, moves, started_at, ended_at
        FROM matches
        WHERE deleted_at IS NULL
        ORDER BY ended_at DESC
        LIMIT $1
    `
	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var r models.MatchRecord
		if err := rows.Scan(&r.RoomID, &r.Outcome, &r.Winner, &r.PlayerRed, &r.PlayerBlue,
			&r.ScoreRed, &r.ScoreBlue, &r.Moves, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// MatchStats 汇总全部对战
func (p *PostgreSQL) MatchStats() (models.MatchStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var s models.MatchStats
	err := p.db.QueryRowContext(ctx, statsQuery+" WHERE deleted_at IS NULL").Scan(
		&s.TotalGames, &s.Finished, &s.Abandoned, &s.RedWins, &s.BlueWins, &s.TotalMoves)
	return s, err
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
