// room/room.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/minesduel/session"
	"github.com/wfunc/minesduel/state"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomClosed    = errors.New("room closed")
	ErrAlreadyInRoom = errors.New("already in room")
)

// RoomStatus 表示房间的业务状态
type RoomStatus int

const (
	StatusWaiting RoomStatus = iota
	StatusPlaying
	StatusEnded
	StatusClosing
)

func (s RoomStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusEnded:
		return "ended"
	default:
		return "closing"
	}
}

// Room 是游戏房间的核心结构。所有修改都在房间自己的事件循环里串行执行
type Room struct {
	ID           string
	MaxPlayers   int
	StateMachine state.StateMachine
	CreatedAt    time.Time
	players      []*session.Session // 按加入顺序
	closing      bool
	broadcaster  Broadcaster
	reporter     state.Reporter
	playerMutex  sync.RWMutex
	inbox        chan func()
	closeChan    chan struct{}
	closeOnce    sync.Once
}

// NewRoom 创建一个新房间并启动事件循环
func NewRoom(id string, maxPlayers int, broadcaster Broadcaster, reporter state.Reporter) *Room {
	if reporter == nil {
		reporter = state.NopReporter{}
	}
	room := &Room{
		ID:          id,
		MaxPlayers:  maxPlayers,
		CreatedAt:   time.Now(),
		broadcaster: broadcaster,
		reporter:    reporter,
		inbox:       make(chan func(), 64),
		closeChan:   make(chan struct{}),
	}

	// 初始化状态机，将房间自身(room)作为上下文传入
	room.StateMachine = state.NewBaseStateMachine(state.NewWaitingState(room))
	// 只有满员才能开局
	room.StateMachine.AddTransition(state.StateWaiting, state.StatePlaying, room.isFull)
	room.StateMachine.AddTransition(state.StateEnded, state.StatePlaying, room.isFull)

	go room.loop()
	return room
}

// --- 实现 state.RoomContext 接口 ---

func (r *Room) GetID() string {
	return r.ID
}

// GetPlayers returns the members in arrival order.
func (r *Room) GetPlayers() []state.Player {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	players := make([]state.Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	return players
}

func (r *Room) ChangeState(newState state.State) error {
	return r.StateMachine.ChangeState(newState)
}

// Broadcast sends a message to all players in the room.
func (r *Room) Broadcast(msgID uint16, data []byte) error {
	return r.broadcaster.BroadcastToRoom(r.ID, msgID, data)
}

// SendTo sends a message to one connection, member or not.
func (r *Room) SendTo(playerID string, msgID uint16, data []byte) error {
	return r.broadcaster.SendToSession(playerID, msgID, data)
}

func (r *Room) Reporter() state.Reporter {
	return r.reporter
}

// --- 房间核心逻辑 ---

// AddPlayer 添加一个玩家到房间
func (r *Room) AddPlayer(s *session.Session) error {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	if r.closing {
		return ErrRoomClosed
	}
	for _, p := range r.players {
		if p.ID == s.ID {
			return ErrAlreadyInRoom
		}
	}
	if len(r.players) >= r.MaxPlayers {
		return ErrRoomFull
	}
	r.players = append(r.players, s)
	return nil
}

// RemovePlayer 从房间移除一个玩家，返回该玩家是否在房间中
func (r *Room) RemovePlayer(sessionID string) bool {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()

	for i, p := range r.players {
		if p.ID == sessionID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return true
		}
	}
	return false
}

// GetPlayer 获取单个玩家
func (r *Room) GetPlayer(sessionID string) (*session.Session, bool) {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	for _, p := range r.players {
		if p.ID == sessionID {
			return p, true
		}
	}
	return nil, false
}

// GetSessions returns a copy of the members in arrival order.
func (r *Room) GetSessions() []*session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	sessions := make([]*session.Session, len(r.players))
	copy(sessions, r.players)
	return sessions
}

func (r *Room) PlayerCount() int {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return len(r.players)
}

func (r *Room) isFull() bool {
	return r.PlayerCount() == r.MaxPlayers
}

// markClosing refuses further joins; the room is about to be removed.
func (r *Room) markClosing() {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()
	r.closing = true
}

// Status 获取房间的业务状态
func (r *Room) Status() RoomStatus {
	r.playerMutex.RLock()
	closing := r.closing
	r.playerMutex.RUnlock()
	if closing {
		return StatusClosing
	}

	switch r.StateMachine.GetCurrentState().(type) {
	case *state.PlayingState:
		return StatusPlaying
	case *state.EndedState:
		return StatusEnded
	default:
		return StatusWaiting
	}
}

// Exec runs fn on the room's event loop and waits for it to finish.
// fn must not call Exec on the same room.
func (r *Room) Exec(fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	select {
	case r.inbox <- task:
	case <-r.closeChan:
		return ErrRoomClosed
	}

	select {
	case <-done:
		return nil
	case <-r.closeChan:
		select {
		case <-done:
			return nil
		default:
			return ErrRoomClosed
		}
	}
}

// loop 是房间的主循环，逐个执行投递的事件
func (r *Room) loop() {
	for {
		select {
		case task := <-r.inbox:
			task()
		case <-r.closeChan:
			return
		}
	}
}

// Close 关闭房间，停止主循环
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.closeChan)
	})
}
