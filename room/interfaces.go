package room

// Broadcaster defines the interface for delivering messages to room members.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	SendToSession(sessionID string, msgID uint16, data []byte) error
}

// IDGenerator produces candidate room codes. Collisions are retried by the caller.
type IDGenerator interface {
	NewID() string
}
