package persistence

import (
	"errors"
	"strings"
	"testing"

	"github.com/wfunc/minesduel/config"
)

func TestOpen_Disabled(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Enabled: false, Driver: "pq"})
	if err != nil || db != nil {
		t.Errorf("Expected no database when disabled, got %v, %v", db, err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Enabled: true, Driver: "mongo"})
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	got := dsn("db", 5432, "u", "p", "minesduel")
	want := "host=db port=5432 user=u password=p dbname=minesduel sslmode=disable"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestStatsQuery_Columns(t *testing.T) {
	// 列名需要和 models.MatchStats 的字段一一对应
	for _, col := range []string{"total_games", "finished", "abandoned", "red_wins", "blue_wins", "total_moves"} {
		if !strings.Contains(statsQuery, "AS "+col) {
			t.Errorf("stats query is missing column %s", col)
		}
	}
}
