// game/game.go
package game

import (
	"errors"
	"math/rand"
)

var (
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrAlreadyRevealed = errors.New("cell already revealed")
	ErrOutOfBounds     = errors.New("cell out of bounds")
	ErrGameOver        = errors.New("game is over")
)

// Message returns the text shown to the player for a rejected move.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotYourTurn):
		return "Not your turn yet."
	case errors.Is(err, ErrAlreadyRevealed):
		return "Already revealed."
	case errors.Is(err, ErrUnknownPlayer):
		return "You are not a player in this room."
	case errors.Is(err, ErrOutOfBounds):
		return "Cell is outside the board."
	case errors.Is(err, ErrGameOver):
		return "Game is over."
	default:
		return err.Error()
	}
}

// Phase 表示对局所处阶段
type Phase int

const (
	PhaseAwaitingMove Phase = iota
	PhaseFinished
	PhaseFrozen
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingMove:
		return "awaiting_move"
	case PhaseFinished:
		return "finished"
	case PhaseFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Player is one of the two seats of a game.
type Player struct {
	ID       string
	Score    int
	LastMove *Coord
}

// Finish is produced by the move that decides the game.
type Finish struct {
	Winner int
	Mines  []Revealed
}

// MoveOutcome describes everything a successful move changed.
type MoveOutcome struct {
	Slot      int
	Revealed  []Revealed
	TurnOver  bool
	WhoToMove int
	Scores    [2]int
	LastMoves [2]*Coord
	Finish    *Finish
}

// Game 是单个房间的对局状态，只由房间的事件循环修改
type Game struct {
	board     *Board
	mask      *RevealMask
	players   [2]Player
	whoToMove int
	bombToWin int
	phase     Phase
	winner    int
	moves     int
}

// NewGame seats ids[0] in slot 0 and ids[1] in slot 1. Slot 0 moves first.
func NewGame(board *Board, ids [2]string, bombToWin int) *Game {
	return &Game{
		board:     board,
		mask:      NewRevealMask(board.Width(), board.Height()),
		players:   [2]Player{{ID: ids[0]}, {ID: ids[1]}},
		bombToWin: bombToWin,
		winner:    -1,
	}
}

// Slot resolves a player id to its seat.
func (g *Game) Slot(playerID string) (int, bool) {
	for i, p := range g.players {
		if p.ID == playerID {
			return i, true
		}
	}
	return -1, false
}

// AttemptMove validates and applies a reveal at (row, col) for playerID.
// On error the game is left untouched.
func (g *Game) AttemptMove(playerID string, row, col int) (*MoveOutcome, error) {
	slot, ok := g.Slot(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if g.phase != PhaseAwaitingMove {
		return nil, ErrGameOver
	}
	if slot != g.whoToMove {
		return nil, ErrNotYourTurn
	}
	if !g.board.InBounds(row, col) {
		return nil, ErrOutOfBounds
	}
	if g.mask.Revealed(row, col) {
		return nil, ErrAlreadyRevealed
	}

	g.players[slot].LastMove = &Coord{Row: row, Col: col}
	revealed, mines, turnOver := Reveal(g.board, g.mask, Coord{Row: row, Col: col}, slot)
	g.players[slot].Score += mines
	if turnOver {
		g.whoToMove = 1 - g.whoToMove
	}
	g.moves++

	out := &MoveOutcome{
		Slot:      slot,
		Revealed:  revealed,
		TurnOver:  turnOver,
		WhoToMove: g.whoToMove,
		Scores:    g.Scores(),
		LastMoves: g.LastMoves(),
	}

	for i, p := range g.players {
		if p.Score >= g.bombToWin {
			g.phase = PhaseFinished
			g.winner = i
			out.Finish = &Finish{Winner: i, Mines: g.UnrevealedMines()}
			break
		}
	}
	return out, nil
}

// Freeze stops the game after a player has left. Further moves fail with ErrGameOver.
func (g *Game) Freeze() {
	if g.phase == PhaseAwaitingMove {
		g.phase = PhaseFrozen
	}
}

func (g *Game) UnrevealedMines() []Revealed {
	return UnrevealedMines(g.board, g.mask)
}

func (g *Game) Scores() [2]int {
	return [2]int{g.players[0].Score, g.players[1].Score}
}

func (g *Game) LastMoves() [2]*Coord {
	var moves [2]*Coord
	for i, p := range g.players {
		if p.LastMove != nil {
			m := *p.LastMove
			moves[i] = &m
		}
	}
	return moves
}

func (g *Game) WhoToMove() int         { return g.whoToMove }
func (g *Game) Phase() Phase           { return g.phase }
func (g *Game) Winner() int            { return g.winner }
func (g *Game) Moves() int             { return g.moves }
func (g *Game) Board() *Board          { return g.board }
func (g *Game) Mask() *RevealMask      { return g.mask }
func (g *Game) Player(slot int) Player { return g.players[slot] }
func (g *Game) Revealed(r, c int) bool { return g.mask.Revealed(r, c) }

// AssignSlots seats the two occupants, given in arrival order, using one fair coin flip.
// The result is indexed by slot.
func AssignSlots(arrival [2]string, coin func() bool) [2]string {
	if coin == nil {
		coin = FairCoin
	}
	if coin() {
		return [2]string{arrival[0], arrival[1]}
	}
	return [2]string{arrival[1], arrival[0]}
}

// FairCoin returns true with probability 1/2.
func FairCoin() bool {
	return rand.Intn(2) == 0
}
