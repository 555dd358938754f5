// game/cell.go
package game

import "strconv"

// Cell 是一个格子的固定值：空、数字 1-8 或地雷
type Cell uint8

const (
	Empty Cell = 0
	Mine  Cell = 9
)

// Digit returns the hint cell for n neighbouring mines. n == 0 yields Empty.
func Digit(n int) Cell {
	if n < 0 || n > 8 {
		panic("game: digit out of range: " + strconv.Itoa(n))
	}
	return Cell(n)
}

func (c Cell) IsMine() bool  { return c == Mine }
func (c Cell) IsEmpty() bool { return c == Empty }

// Hint returns the neighbouring mine count, or -1 for a mine.
func (c Cell) Hint() int {
	if c == Mine {
		return -1
	}
	return int(c)
}

// String is the value sent to clients.
func (c Cell) String() string {
	switch c {
	case Empty:
		return " "
	case Mine:
		return "X"
	default:
		return strconv.Itoa(int(c))
	}
}

// Flag is the glyph shown on a mine revealed by the given slot.
func Flag(slot int) string {
	if slot == 0 {
		return "R"
	}
	return "B"
}

// Coord is a (row, col) board position.
type Coord struct {
	Row int
	Col int
}

// MarshalJSON encodes the coordinate as [row, col].
func (c Coord) MarshalJSON() ([]byte, error) {
	return []byte("[" + strconv.Itoa(c.Row) + "," + strconv.Itoa(c.Col) + "]"), nil
}
