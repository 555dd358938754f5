// game/board.go
package game

import (
	"errors"
	"fmt"
	"math/rand"
)

// Fixed match parameters.
const (
	BoardWidth   = 16
	BoardHeight  = 16
	MineCount    = 51
	WinThreshold = 26
)

// ErrInvalidConfig is returned when a board cannot be built from the given parameters.
var ErrInvalidConfig = errors.New("invalid board configuration")

// Board 是生成后不可变的雷区
type Board struct {
	width  int
	height int
	cells  []Cell
}

// Generate places mineCount mines uniformly at random and computes the hints.
func Generate(width, height, mineCount int) (*Board, error) {
	if err := validate(width, height, mineCount); err != nil {
		return nil, err
	}

	positions := make([]int, width*height)
	for i := range positions {
		positions[i] = i
	}
	rand.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})

	mines := make([]Coord, mineCount)
	for i, p := range positions[:mineCount] {
		mines[i] = Coord{Row: p / width, Col: p % width}
	}
	return NewBoardWithMines(width, height, mines)
}

// NewBoardWithMines builds a board with mines at exactly the given coordinates.
func NewBoardWithMines(width, height int, mines []Coord) (*Board, error) {
	if err := validate(width, height, len(mines)); err != nil {
		return nil, err
	}

	b := &Board{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for _, m := range mines {
		if !b.InBounds(m.Row, m.Col) {
			return nil, fmt.Errorf("%w: mine (%d,%d) outside %dx%d board", ErrInvalidConfig, m.Row, m.Col, width, height)
		}
		if b.cells[b.index(m.Row, m.Col)] == Mine {
			return nil, fmt.Errorf("%w: duplicate mine at (%d,%d)", ErrInvalidConfig, m.Row, m.Col)
		}
		b.cells[b.index(m.Row, m.Col)] = Mine
	}
	b.computeHints()
	return b, nil
}

func validate(width, height, mineCount int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: board %dx%d", ErrInvalidConfig, width, height)
	}
	if mineCount < 0 || mineCount >= width*height {
		return fmt.Errorf("%w: %d mines on a %dx%d board", ErrInvalidConfig, mineCount, width, height)
	}
	return nil
}

func (b *Board) computeHints() {
	for r := 0; r < b.height; r++ {
		for c := 0; c < b.width; c++ {
			if b.cells[b.index(r, c)] == Mine {
				continue
			}
			count := 0
			b.forEachNeighbor(r, c, func(nr, nc int) {
				if b.cells[b.index(nr, nc)] == Mine {
					count++
				}
			})
			b.cells[b.index(r, c)] = Digit(count)
		}
	}
}

// forEachNeighbor visits the in-bounds Moore neighbours of (r, c).
func (b *Board) forEachNeighbor(r, c int, fn func(nr, nc int)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if b.InBounds(r+dr, c+dc) {
				fn(r+dr, c+dc)
			}
		}
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// At returns the cell value at (r, c). The caller must check bounds.
func (b *Board) At(r, c int) Cell {
	return b.cells[b.index(r, c)]
}

func (b *Board) InBounds(r, c int) bool {
	return r >= 0 && r < b.height && c >= 0 && c < b.width
}

// MineCount returns the number of mines on the board.
func (b *Board) MineCount() int {
	n := 0
	for _, cell := range b.cells {
		if cell == Mine {
			n++
		}
	}
	return n
}

// String renders the board row by row, used for debug logging.
func (b *Board) String() string {
	buf := make([]byte, 0, (b.width+1)*b.height)
	for r := 0; r < b.height; r++ {
		for c := 0; c < b.width; c++ {
			buf = append(buf, b.At(r, c).String()...)
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

func (b *Board) index(r, c int) int {
	return r*b.width + c
}

// RevealMask tracks which cells have been revealed. Entries only ever go from false to true.
type RevealMask struct {
	width    int
	revealed []bool
	count    int
}

func NewRevealMask(width, height int) *RevealMask {
	return &RevealMask{
		width:    width,
		revealed: make([]bool, width*height),
	}
}

func (m *RevealMask) Revealed(r, c int) bool {
	return m.revealed[r*m.width+c]
}

// Count returns how many cells are revealed.
func (m *RevealMask) Count() int {
	return m.count
}

func (m *RevealMask) set(r, c int) {
	if !m.revealed[r*m.width+c] {
		m.revealed[r*m.width+c] = true
		m.count++
	}
}
