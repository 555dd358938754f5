// game/reveal.go
package game

import (
	"encoding/json"
)

// Revealed is one cell uncovered by a move, with its ripple distance from the clicked cell.
type Revealed struct {
	Row      int
	Col      int
	Distance int
	Value    string
}

// MarshalJSON encodes the cell as [row, col, distance, value].
func (r Revealed) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]interface{}{r.Row, r.Col, r.Distance, r.Value})
}

type queued struct {
	row, col, dist int
}

// revealQueue is a FIFO with O(1) dequeue. Order matters: it defines the ripple distances.
type revealQueue struct {
	items []queued
	head  int
}

func (q *revealQueue) push(item queued) {
	q.items = append(q.items, item)
}

func (q *revealQueue) pop() (queued, bool) {
	if q.head >= len(q.items) {
		return queued{}, false
	}
	item := q.items[q.head]
	q.head++
	return item, true
}

// Reveal uncovers start and, through empty cells, its connected region.
// Mines are shown with the actor's flag. turnOver is false if any mine was revealed.
func Reveal(b *Board, mask *RevealMask, start Coord, actor int) (revealed []Revealed, minesFound int, turnOver bool) {
	turnOver = true
	q := &revealQueue{}
	q.push(queued{row: start.Row, col: start.Col})

	for {
		item, ok := q.pop()
		if !ok {
			break
		}
		r, c, d := item.row, item.col, item.dist
		if !b.InBounds(r, c) || mask.Revealed(r, c) {
			continue
		}
		mask.set(r, c)

		cell := b.At(r, c)
		if cell.IsMine() {
			revealed = append(revealed, Revealed{Row: r, Col: c, Distance: d, Value: Flag(actor)})
			minesFound++
			turnOver = false
			continue
		}
		revealed = append(revealed, Revealed{Row: r, Col: c, Distance: d, Value: cell.String()})

		if cell.IsEmpty() {
			for dr := -1; dr <= 1; dr++ {
				for dc := -1; dc <= 1; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					q.push(queued{row: r + dr, col: c + dc, dist: d + 1})
				}
			}
		}
	}
	return revealed, minesFound, turnOver
}

// UnrevealedMines lists every mine not yet revealed, in row-major order,
// numbered 0, 1, 2, ... so clients can sweep the rest of the board.
func UnrevealedMines(b *Board, mask *RevealMask) []Revealed {
	mines := make([]Revealed, 0)
	for r := 0; r < b.Height(); r++ {
		for c := 0; c < b.Width(); c++ {
			if b.At(r, c).IsMine() && !mask.Revealed(r, c) {
				mines = append(mines, Revealed{Row: r, Col: c, Distance: len(mines), Value: Mine.String()})
			}
		}
	}
	return mines
}
