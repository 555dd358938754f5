// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/minesduel/config"
	"github.com/wfunc/minesduel/models"
)

// Database 对战记录存储接口
type Database interface {
	SaveMatch(record models.MatchRecord) error
	RecentMatches(limit int) ([]models.MatchRecord, error)
	MatchStats() (models.MatchStats, error)
	Close() error
}

// 错误定义
var (
	ErrUnknownDriver = fmt.Errorf("unknown database driver")
)

// Open 按配置选择驱动，未启用时返回 nil
func Open(cfg config.DatabaseConfig) (Database, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	pg := cfg.Postgres
	switch cfg.Driver {
	case "gorm", "":
		db, err := NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "pq":
		db, err := NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func dsn(host string, port int, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

const statsQuery = `
        SELECT
            COUNT(*) AS total_games,
            COALESCE(SUM(CASE WHEN outcome = 'finished' THEN 1 ELSE 0 END), 0) AS finished,
            COALESCE(SUM(CASE WHEN outcome = 'abandoned' THEN 1 ELSE 0 END), 0) AS abandoned,
            COALESCE(SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END), 0) AS red_wins,
            COALESCE(SUM(CASE WHEN winner = 1 THEN 1 ELSE 0 END), 0) AS blue_wins,
            COALESCE(SUM(moves), 0) AS total_moves
        FROM matches`
