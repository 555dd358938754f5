package room

import (
	"math/rand"
	"sync"

	"github.com/wfunc/minesduel/state"
)

const (
	roomCodeLength = 5            // 房间号长度
	roomCodeChars  = "0123456789" // 房间号字符集
)

// NumericCodes generates short numeric room codes.
type NumericCodes struct {
	Length int
}

func (g NumericCodes) NewID() string {
	n := g.Length
	if n <= 0 {
		n = roomCodeLength
	}
	code := make([]byte, n)
	for i := range code {
		code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
	}
	return string(code)
}

// Manager 管理所有房间，房间之间不共享任何可变状态
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom 创建一个新房间并添加到管理器
func (m *Manager) CreateRoom(id string, maxPlayers int, broadcaster Broadcaster, reporter state.Reporter) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.rooms[id]; exists {
		return nil, ErrRoomExists
	}
	room := NewRoom(id, maxPlayers, broadcaster, reporter)
	m.rooms[id] = room
	return room, nil
}

// RemoveRoom 从管理器中移除并关闭一个房间，返回房间是否存在
func (m *Manager) RemoveRoom(id string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[id]
	if !exists {
		return false
	}
	room.Close()
	delete(m.rooms, id)
	return true
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// Count returns the number of live rooms.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Rooms returns a snapshot of all rooms.
func (m *Manager) Rooms() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// CloseAll closes every room, used on shutdown.
func (m *Manager) CloseAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, room := range m.rooms {
		room.Close()
		delete(m.rooms, id)
	}
}
