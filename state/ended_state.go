package state

import (
	"time"

	"github.com/wfunc/minesduel/game"
	"github.com/wfunc/minesduel/logger"
	"github.com/wfunc/minesduel/network"
)

// EndedState 结算状态：对局已结束或有玩家离开，不再接受落子
type EndedState struct {
	RoomStateBase
	Game    *game.Game
	Outcome Outcome
	Result  Result
}

func NewEndedState(room RoomContext, g *game.Game, outcome Outcome, startedAt time.Time) *EndedState {
	return &EndedState{
		RoomStateBase: RoomStateBase{
			ID:   StateEnded,
			Room: room,
		},
		Game:    g,
		Outcome: outcome,
		Result: Result{
			RoomID:    room.GetID(),
			Outcome:   outcome,
			Winner:    g.Winner(),
			Scores:    g.Scores(),
			Players:   [2]string{g.Player(0).ID, g.Player(1).ID},
			Moves:     g.Moves(),
			StartedAt: startedAt,
		},
	}
}

func (s *EndedState) OnEnter() {
	s.Result.EndedAt = time.Now()
	logger.Log.Infof("房间 %s 对局结束: %s", s.Room.GetID(), s.Outcome)
	s.Room.Reporter().ReportResult(s.Result)
}

// HandleAction rejects every move.
func (s *EndedState) HandleAction(player Player, actionData []byte) error {
	err := game.ErrGameOver
	if _, ok := s.Game.Slot(player.GetID()); !ok {
		err = game.ErrUnknownPlayer
	}
	s.replyMoveError(player.GetID(), err, game.Message(err))
	return nil
}

func (s *EndedState) OnPlayerLeft(player Player) {
	s.Game.Freeze()
	s.broadcast(network.MsgTypeLeave, s.Game.UnrevealedMines())
}
