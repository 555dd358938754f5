package room

import (
	"errors"
	"fmt"

	"github.com/wfunc/minesduel/game"
	"github.com/wfunc/minesduel/logger"
	"github.com/wfunc/minesduel/network"
	"github.com/wfunc/minesduel/session"
	"github.com/wfunc/minesduel/state"
)

const (
	playersPerRoom = 2
	maxIDAttempts  = 20
)

// ErrNoRoomID is returned when no unused room code could be found.
var ErrNoRoomID = errors.New("could not allocate a room id")

// Lifecycle 负责房间的创建、配对、开局和销毁
type Lifecycle struct {
	rooms       *Manager
	broadcaster Broadcaster
	reporter    state.Reporter

	IDs      IDGenerator
	NewBoard func() (*game.Board, error)
	Coin     func() bool
}

func NewLifecycle(rooms *Manager, broadcaster Broadcaster, reporter state.Reporter) *Lifecycle {
	return &Lifecycle{
		rooms:       rooms,
		broadcaster: broadcaster,
		reporter:    reporter,
		IDs:         NumericCodes{Length: roomCodeLength},
		NewBoard: func() (*game.Board, error) {
			return game.Generate(game.BoardWidth, game.BoardHeight, game.MineCount)
		},
		Coin: game.FairCoin,
	}
}

// CreateRoom opens an empty room and returns its id.
func (l *Lifecycle) CreateRoom() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := l.IDs.NewID()
		_, err := l.rooms.CreateRoom(id, playersPerRoom, l.broadcaster, l.reporter)
		if errors.Is(err, ErrRoomExists) {
			continue
		}
		if err != nil {
			return "", err
		}
		logger.Log.Infof("Room %s created", id)
		return id, nil
	}
	return "", ErrNoRoomID
}

// NewRoom creates a room with s as its first member and acknowledges it on the new event.
func (l *Lifecycle) NewRoom(s *session.Session) (string, error) {
	l.leaveCurrent(s)

	id, err := l.CreateRoom()
	if err != nil {
		return "", err
	}
	if err := l.admit(id, s, network.MsgTypeNewRoom); err != nil {
		return "", err
	}
	return id, nil
}

// Join admits s into roomID, leaving its previous room on success.
// The joiner is acknowledged before the game starts.
func (l *Lifecycle) Join(roomID string, s *session.Session) error {
	previous := s.RoomID()
	if previous == roomID {
		return ErrAlreadyInRoom
	}
	if err := l.admit(roomID, s, network.MsgTypeJoinRoom); err != nil {
		return err
	}
	if previous != "" {
		l.Leave(previous, s)
	}
	return nil
}

func (l *Lifecycle) admit(roomID string, s *session.Session, ackMsgID uint16) error {
	r, ok := l.rooms.GetRoom(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	var joinErr error
	err := r.Exec(func() {
		var board *game.Board
		if r.PlayerCount() == r.MaxPlayers-1 {
			if board, joinErr = l.NewBoard(); joinErr != nil {
				joinErr = fmt.Errorf("room %s cannot start: %w", roomID, joinErr)
				return
			}
		}

		if joinErr = r.AddPlayer(s); joinErr != nil {
			return
		}
		s.SetRoomID(roomID)
		logger.Log.Infof("Session %s joined room %s", s.GetID(), roomID)

		if err := s.SendJSON(ackMsgID, roomID); err != nil {
			logger.Log.Warnf("Failed to acknowledge session %s: %v", s.GetID(), err)
		}

		if board != nil && r.PlayerCount() == r.MaxPlayers {
			l.startGame(r, board)
		}
	})
	if errors.Is(err, ErrRoomClosed) || errors.Is(joinErr, ErrRoomClosed) {
		return ErrRoomNotFound
	}
	return joinErr
}

// startGame seats the two members and enters the playing state. Runs on the room loop.
func (l *Lifecycle) startGame(r *Room, board *game.Board) {
	sessions := r.GetSessions()
	seats := game.AssignSlots([2]string{sessions[0].GetID(), sessions[1].GetID()}, l.Coin)
	g := game.NewGame(board, seats, game.WinThreshold)

	logger.Log.Infof("Room %s starting: slot 0 %s, slot 1 %s", r.ID, seats[0], seats[1])
	logger.Log.Debugf("Room %s board:\n%s", r.ID, board)

	if err := r.ChangeState(state.NewPlayingState(r, g)); err != nil {
		logger.Log.Errorf("房间 %s 开局失败: %v", r.ID, err)
	}
}

// Move hands a move request to the room's current state.
func (l *Lifecycle) Move(roomID string, s *session.Session, payload []byte) error {
	r, ok := l.rooms.GetRoom(roomID)
	if !ok {
		return ErrRoomNotFound
	}

	var actionErr error
	err := r.Exec(func() {
		actionErr = r.StateMachine.GetCurrentState().HandleAction(s, payload)
	})
	if errors.Is(err, ErrRoomClosed) {
		return ErrRoomNotFound
	}
	return actionErr
}

// Leave removes s from roomID. A started game is frozen and the rest of the room is shown
// every mine; the room is destroyed once empty.
func (l *Lifecycle) Leave(roomID string, s *session.Session) {
	r, ok := l.rooms.GetRoom(roomID)
	if !ok {
		if s.RoomID() == roomID {
			s.SetRoomID("")
		}
		return
	}

	empty := false
	err := r.Exec(func() {
		if !r.RemovePlayer(s.GetID()) {
			return
		}
		if s.RoomID() == roomID {
			s.SetRoomID("")
		}
		logger.Log.Infof("Session %s left room %s", s.GetID(), roomID)

		r.StateMachine.GetCurrentState().OnPlayerLeft(s)
		if r.PlayerCount() == 0 {
			r.markClosing()
			empty = true
		}
	})
	if err != nil {
		logger.Log.Debugf("Leave on room %s: %v", roomID, err)
		return
	}

	if empty && l.rooms.RemoveRoom(roomID) {
		logger.Log.Infof("Room %s deleted", roomID)
	}
}

func (l *Lifecycle) leaveCurrent(s *session.Session) {
	if current := s.RoomID(); current != "" {
		l.Leave(current, s)
	}
}
