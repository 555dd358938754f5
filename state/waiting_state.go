package state

import (
	"errors"
)

// ErrGameNotStarted is reported for moves sent before the second player arrives.
var ErrGameNotStarted = errors.New("game has not started")

// NewWaitingState creates a new waiting state.
func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{
		RoomStateBase: RoomStateBase{
			ID:   StateWaiting,
			Room: room,
		},
	}
}

// 等待状态：房间已创建，等待第二名玩家加入
type WaitingState struct {
	RoomStateBase
}

func (s *WaitingState) HandleAction(player Player, actionData []byte) error {
	s.replyMoveError(player.GetID(), ErrGameNotStarted, "Game has not started yet.")
	return nil
}
