package state

import (
	"fmt"
	"time"

	"github.com/wfunc/minesduel/game"
	"github.com/wfunc/minesduel/logger"
	"github.com/wfunc/minesduel/network"
)

// PlayingState 游戏进行状态
type PlayingState struct {
	RoomStateBase
	Game      *game.Game
	StartedAt time.Time
}

// NewPlayingState 创建新的游戏状态
func NewPlayingState(room RoomContext, g *game.Game) *PlayingState {
	return &PlayingState{
		RoomStateBase: RoomStateBase{
			ID:   StatePlaying,
			Room: room,
		},
		Game: g,
	}
}

// OnEnter tells each player which slot it plays.
func (s *PlayingState) OnEnter() {
	s.StartedAt = time.Now()
	logger.Log.Infof("房间 %s 进入游戏状态", s.Room.GetID())
	for slot := 0; slot < 2; slot++ {
		s.sendTo(s.Game.Player(slot).ID, network.MsgTypeStart, slot)
	}
	s.Room.Reporter().ReportStart(s.Room.GetID())
}

// HandleAction applies a move request and emits turn, reply, reveal, last_move, score and finish, in that order.
func (s *PlayingState) HandleAction(player Player, actionData []byte) error {
	var req network.MoveRequest
	if err := network.Decode(actionData, &req); err != nil {
		return fmt.Errorf("failed to unmarshal move: %w", err)
	}

	out, err := s.Game.AttemptMove(player.GetID(), req.Row, req.Col)
	if err != nil {
		logger.Log.Debugf("Room %s rejected move (%d,%d) from %s: %v", s.Room.GetID(), req.Row, req.Col, player.GetID(), err)
		s.replyMoveError(player.GetID(), err, game.Message(err))
		return nil
	}
	s.Room.Reporter().ReportMove(s.Room.GetID(), nil)

	if out.TurnOver {
		s.broadcast(network.MsgTypeTurn, out.WhoToMove)
	}
	s.sendTo(player.GetID(), network.MsgTypeMove, network.MoveReply{Revealed: out.Revealed})
	s.broadcast(network.MsgTypeReveal, out.Revealed)
	s.broadcast(network.MsgTypeLastMove, out.LastMoves)
	s.broadcast(network.MsgTypeScore, out.Scores)

	if out.Finish != nil {
		logger.Log.Infof("Room %s finished, winner slot %d, scores %v", s.Room.GetID(), out.Finish.Winner, out.Scores)
		s.broadcast(network.MsgTypeFinish, [2]interface{}{out.Finish.Winner, out.Finish.Mines})
		return s.Room.ChangeState(NewEndedState(s.Room, s.Game, OutcomeFinished, s.StartedAt))
	}
	return nil
}

// OnPlayerLeft shows the remaining player every mine and stops the game.
func (s *PlayingState) OnPlayerLeft(player Player) {
	logger.Log.Infof("Player %s left room %s mid-game", player.GetID(), s.Room.GetID())
	s.Game.Freeze()
	s.broadcast(network.MsgTypeLeave, s.Game.UnrevealedMines())
	if err := s.Room.ChangeState(NewEndedState(s.Room, s.Game, OutcomeAbandoned, s.StartedAt)); err != nil {
		logger.Log.Errorf("房间 %s 状态切换失败: %v", s.Room.GetID(), err)
	}
}
