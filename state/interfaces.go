// state/interfaces.go
package state

import "time"

// Player defines the minimal interface for a player entity that a state needs to interact with.
type Player interface {
	GetID() string
}

// RoomContext defines the interface that a Room must implement to be managed by the state machine.
// This breaks the import cycle between room and state.
type RoomContext interface {
	GetID() string
	GetPlayers() []Player
	ChangeState(newState State) error
	Broadcast(msgID uint16, data []byte) error
	SendTo(playerID string, msgID uint16, data []byte) error
	Reporter() Reporter
}

// Outcome 对局结束方式
type Outcome string

const (
	OutcomeFinished  Outcome = "finished"
	OutcomeAbandoned Outcome = "abandoned"
)

// Result summarises a game once it can no longer be played.
type Result struct {
	RoomID    string
	Outcome   Outcome
	Winner    int // -1 when abandoned
	Scores    [2]int
	Players   [2]string
	Moves     int
	StartedAt time.Time
	EndedAt   time.Time
}

// Reporter receives game events for metrics and match history.
type Reporter interface {
	ReportStart(roomID string)
	ReportMove(roomID string, err error)
	ReportResult(result Result)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) ReportStart(string)       {}
func (NopReporter) ReportMove(string, error) {}
func (NopReporter) ReportResult(Result)      {}
