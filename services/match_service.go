// services/match_service.go
package services

import (
	"errors"
	"sync"

	"github.com/wfunc/minesduel/game"
	"github.com/wfunc/minesduel/logger"
	"github.com/wfunc/minesduel/models"
	"github.com/wfunc/minesduel/monitor"
	"github.com/wfunc/minesduel/persistence"
	"github.com/wfunc/minesduel/state"
)

const recentLimit = 50

// MatchService 收集对局事件：更新指标，统计战绩，并在启用数据库时保存对战记录。
// 它实现了 state.Reporter，由房间事件循环调用
type MatchService struct {
	db      persistence.Database
	monitor *monitor.Monitor

	mutex  sync.Mutex
	stats  models.MatchStats
	recent []models.MatchRecord // 新的在前
	wg     sync.WaitGroup
}

// NewMatchService db 和 mon 都可以为 nil
func NewMatchService(db persistence.Database, mon *monitor.Monitor) *MatchService {
	return &MatchService{db: db, monitor: mon}
}

func (s *MatchService) ReportStart(roomID string) {
	if s.monitor != nil {
		s.monitor.IncGamesStarted()
	}
}

func (s *MatchService) ReportMove(roomID string, err error) {
	if s.monitor != nil {
		s.monitor.ObserveMove(MoveResult(err))
	}
}

// ReportResult 不阻塞房间循环，数据库写入在后台进行
func (s *MatchService) ReportResult(res state.Result) {
	record := RecordFromResult(res)

	s.mutex.Lock()
	s.stats.Add(record)
	s.recent = append([]models.MatchRecord{record}, s.recent...)
	if len(s.recent) > recentLimit {
		s.recent = s.recent[:recentLimit]
	}
	s.mutex.Unlock()

	if s.monitor != nil {
		s.monitor.IncGamesEnded(record.Outcome)
	}

	if s.db == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.SaveMatch(record); err != nil {
			logger.Log.Errorf("Failed to save match of room %s: %v", record.RoomID, err)
		}
	}()
}

// Stats 优先读取数据库，否则返回本进程内的统计
func (s *MatchService) Stats() (models.MatchStats, error) {
	if s.db != nil {
		return s.db.MatchStats()
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.stats, nil
}

func (s *MatchService) RecentMatches(limit int) ([]models.MatchRecord, error) {
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}
	if s.db != nil {
		return s.db.RecentMatches(limit)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if limit > len(s.recent) {
		limit = len(s.recent)
	}
	return append([]models.MatchRecord(nil), s.recent[:limit]...), nil
}

// Wait blocks until pending database writes are done.
func (s *MatchService) Wait() {
	s.wg.Wait()
}

func RecordFromResult(res state.Result) models.MatchRecord {
	return models.MatchRecord{
		RoomID:     res.RoomID,
		Outcome:    string(res.Outcome),
		Winner:     res.Winner,
		PlayerRed:  res.Players[0],
		PlayerBlue: res.Players[1],
		ScoreRed:   res.Scores[0],
		ScoreBlue:  res.Scores[1],
		Moves:      res.Moves,
		StartedAt:  res.StartedAt,
		EndedAt:    res.EndedAt,
	}
}

// MoveResult 把落子结果映射为指标标签
func MoveResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrAlreadyRevealed):
		return "already_revealed"
	case errors.Is(err, game.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, game.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	case errors.Is(err, state.ErrGameNotStarted):
		return "not_started"
	default:
		return "invalid"
	}
}
