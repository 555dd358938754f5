package state

import (
	"errors"
	"strings"
	"testing"

	"github.com/wfunc/minesduel/game"
	"github.com/wfunc/minesduel/network"
)

// hookState records its hook calls into a shared log.
type hookState struct {
	RoomStateBase
	log *[]string
}

func newHookState(id string, log *[]string) *hookState {
	return &hookState{RoomStateBase: RoomStateBase{ID: id}, log: log}
}

func (s *hookState) OnEnter()                   { *s.log = append(*s.log, "enter "+s.ID) }
func (s *hookState) OnExit()                    { *s.log = append(*s.log, "exit "+s.ID) }
func (s *hookState) OnPlayerLeft(player Player) { *s.log = append(*s.log, "left "+player.GetID()) }

func TestStateMachine_HookOrder(t *testing.T) {
	var log []string
	sm := NewBaseStateMachine(newHookState(StateWaiting, &log))

	if err := sm.ChangeState(newHookState(StatePlaying, &log)); err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	sm.GetCurrentState().OnPlayerLeft(testPlayer("bob"))

	want := "enter waiting,exit waiting,enter playing,left bob"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("Expected hooks %q, got %q", want, got)
	}
	if sm.GetCurrentState().GetID() != StatePlaying {
		t.Errorf("Expected current state playing, got %s", sm.GetCurrentState().GetID())
	}
}

func TestStateMachine_GuardedStart(t *testing.T) {
	room := newFakeRoom("alice", "bob")
	full := false
	if err := room.machine.AddTransition(StateWaiting, StatePlaying, func() bool { return full }); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	board, _ := game.NewBoardWithMines(game.BoardWidth, game.BoardHeight, []game.Coord{{Row: 5, Col: 5}})
	g := game.NewGame(board, [2]string{"alice", "bob"}, game.WinThreshold)

	err := room.ChangeState(NewPlayingState(room, g))
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("Expected ErrTransitionNotAllowed, got %v", err)
	}
	if room.machine.GetCurrentState().GetID() != StateWaiting {
		t.Errorf("Blocked transition must keep the waiting state, got %s", room.machine.GetCurrentState().GetID())
	}
	if len(room.sent) != 0 {
		t.Errorf("Blocked transition must not announce a start, got %v", room.msgIDs())
	}

	full = true
	if err := room.ChangeState(NewPlayingState(room, g)); err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if len(room.sent) != 2 || room.sent[0].MsgID != network.MsgTypeStart {
		t.Errorf("Expected start for both players, got %v", room.msgIDs())
	}
}

func TestStateMachine_UnguardedTransition(t *testing.T) {
	var log []string
	sm := NewBaseStateMachine(newHookState(StatePlaying, &log))
	sm.AddTransition(StateWaiting, StatePlaying, func() bool { return false })

	// 只有 waiting -> playing 受限，playing -> ended 不受影响
	if err := sm.ChangeState(newHookState(StateEnded, &log)); err != nil {
		t.Errorf("Expected unguarded transition to pass, got %v", err)
	}
}

func TestStateMachine_AddTransitionRejectsEmptyID(t *testing.T) {
	var log []string
	sm := NewBaseStateMachine(newHookState(StateWaiting, &log))
	if err := sm.AddTransition("", StatePlaying, nil); !errors.Is(err, ErrEmptyStateID) {
		t.Errorf("Expected ErrEmptyStateID, got %v", err)
	}
}

func TestEndedState_RejectsMoves(t *testing.T) {
	room, _ := startPlaying(t, game.WinThreshold, game.Coord{Row: 5, Col: 5})
	playing := room.machine.GetCurrentState().(*PlayingState)
	playing.OnPlayerLeft(testPlayer("bob"))
	room.sent = nil

	move(t, room, "carol", 0, 0)
	move(t, room, "alice", 0, 0)

	if len(room.sent) != 2 {
		t.Fatalf("Expected two replies, got %v", room.msgIDs())
	}
	if room.sent[0].Data != `[null,"You are not a player in this room."]` {
		t.Errorf("Unexpected reply to stranger %s", room.sent[0].Data)
	}
	if room.sent[1].Data != `[null,"Game is over."]` {
		t.Errorf("Unexpected reply to player %s", room.sent[1].Data)
	}

	// 结束状态下再有人离开，剩余玩家仍会收到雷区
	room.sent = nil
	room.machine.GetCurrentState().OnPlayerLeft(testPlayer("alice"))
	if leave, ok := room.find(network.MsgTypeLeave); !ok || leave.Data != `[[5,5,0,"X"]]` {
		t.Errorf("Expected leave broadcast with mines, got %+v", room.sent)
	}
}
