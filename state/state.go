package state

import (
	"errors"
	"sync"

	"github.com/wfunc/minesduel/logger"
	"github.com/wfunc/minesduel/network"
)

// 状态机接口
type StateMachine interface {
	ChangeState(state State) error
	GetCurrentState() State
	AddTransition(fromID, toID string, condition func() bool) error
}

// 房间状态ID
const (
	StateWaiting = "waiting"
	StatePlaying = "playing"
	StateEnded   = "ended"
)

// 状态接口
type State interface {
	OnEnter()
	OnExit()
	GetID() string
	HandleAction(player Player, actionData []byte) error
	OnPlayerLeft(player Player)
}

var (
	// ErrTransitionNotAllowed is returned when a guarded transition's condition fails.
	ErrTransitionNotAllowed = errors.New("state transition not allowed")
	ErrEmptyStateID         = errors.New("empty state id")
)

// 基础状态机实现
type BaseStateMachine struct {
	currentState State
	transitions  map[string]map[string]func() bool // fromState -> toState -> condition
	mutex        sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return machine
}

// ChangeState runs OnExit/OnEnter outside the lock so states may broadcast or chain transitions.
func (sm *BaseStateMachine) ChangeState(newState State) error {
	sm.mutex.Lock()
	current := sm.currentState
	if conditions, exists := sm.transitions[current.GetID()]; exists {
		if condition, exists := conditions[newState.GetID()]; exists {
			if condition != nil && !condition() {
				sm.mutex.Unlock()
				return ErrTransitionNotAllowed
			}
		}
	}
	sm.currentState = newState
	sm.mutex.Unlock()

	current.OnExit()
	newState.OnEnter()
	return nil
}

func (sm *BaseStateMachine) GetCurrentState() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.currentState
}

// AddTransition guards fromID -> toID with condition. Pairs without a guard are always allowed.
func (sm *BaseStateMachine) AddTransition(fromID, toID string, condition func() bool) error {
	if fromID == "" || toID == "" {
		return ErrEmptyStateID
	}

	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if _, exists := sm.transitions[fromID]; !exists {
		sm.transitions[fromID] = make(map[string]func() bool)
	}
	sm.transitions[fromID][toID] = condition
	return nil
}

// 房间状态基础结构
type RoomStateBase struct {
	ID   string
	Room RoomContext
}

func (s *RoomStateBase) GetID() string {
	return s.ID
}

func (s *RoomStateBase) OnEnter() {}

func (s *RoomStateBase) OnExit() {}

func (s *RoomStateBase) HandleAction(player Player, actionData []byte) error {
	return nil
}

func (s *RoomStateBase) OnPlayerLeft(player Player) {}

func (s *RoomStateBase) broadcast(msgID uint16, v interface{}) {
	data, err := network.Encode(v)
	if err != nil {
		logger.Log.Errorf("房间 %s 编码消息 %d 失败: %v", s.Room.GetID(), msgID, err)
		return
	}
	if err := s.Room.Broadcast(msgID, data); err != nil {
		logger.Log.Warnf("Room %s broadcast %d failed: %v", s.Room.GetID(), msgID, err)
	}
}

func (s *RoomStateBase) sendTo(playerID string, msgID uint16, v interface{}) {
	data, err := network.Encode(v)
	if err != nil {
		logger.Log.Errorf("房间 %s 编码消息 %d 失败: %v", s.Room.GetID(), msgID, err)
		return
	}
	if err := s.Room.SendTo(playerID, msgID, data); err != nil {
		logger.Log.Warnf("Room %s send %d to %s failed: %v", s.Room.GetID(), msgID, playerID, err)
	}
}

func (s *RoomStateBase) replyMoveError(playerID string, err error, text string) {
	s.Room.Reporter().ReportMove(s.Room.GetID(), err)
	s.sendTo(playerID, network.MsgTypeMove, network.MoveReply{Error: &text})
}
