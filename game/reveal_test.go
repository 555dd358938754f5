package game

import (
	"testing"
)

func TestReveal_EmptyCornerCascade(t *testing.T) {
	// All 51 mines sit in the bottom rows, so (0,0) and its neighbourhood are empty.
	b := mustBoard(t, bottomRightMines(MineCount)...)
	mask := NewRevealMask(b.Width(), b.Height())

	revealed, mines, turnOver := Reveal(b, mask, Coord{Row: 0, Col: 0}, 0)
	if mines != 0 || !turnOver {
		t.Fatalf("Expected no mines and turn over, got mines=%d turnOver=%v", mines, turnOver)
	}
	if len(revealed) < 9 {
		t.Fatalf("Expected at least 9 revealed cells, got %d", len(revealed))
	}

	if revealed[0].Row != 0 || revealed[0].Col != 0 || revealed[0].Distance != 0 {
		t.Errorf("Expected origin first with distance 0, got %+v", revealed[0])
	}
	for _, rc := range revealed {
		if rc.Row <= 1 && rc.Col <= 1 && !(rc.Row == 0 && rc.Col == 0) && rc.Distance != 1 {
			t.Errorf("Expected neighbour (%d,%d) at distance 1, got %d", rc.Row, rc.Col, rc.Distance)
		}
	}
	for r := 0; r <= 1; r++ {
		for c := 0; c <= 1; c++ {
			if !mask.Revealed(r, c) {
				t.Errorf("Expected (%d,%d) revealed", r, c)
			}
		}
	}
}

func TestReveal_FloodFillCorrectness(t *testing.T) {
	b := mustBoard(t, Coord{Row: 3, Col: 3}, Coord{Row: 10, Col: 12}, Coord{Row: 0, Col: 15})
	mask := NewRevealMask(b.Width(), b.Height())

	revealed, mines, _ := Reveal(b, mask, Coord{Row: 15, Col: 0}, 1)
	if mines != 0 {
		t.Fatalf("Cascade must never reveal a mine, got %d", mines)
	}

	prev := 0
	seen := make(map[Coord]bool)
	for _, rc := range revealed {
		if rc.Distance < prev {
			t.Fatalf("Ripple distances must be non-decreasing, got %d after %d", rc.Distance, prev)
		}
		prev = rc.Distance
		key := Coord{Row: rc.Row, Col: rc.Col}
		if seen[key] {
			t.Fatalf("Cell %v revealed twice", key)
		}
		seen[key] = true
	}

	// Every non-mine cell is connected through empties here, so all of them are revealed.
	want := b.Width()*b.Height() - 3
	if len(revealed) != want || mask.Count() != want {
		t.Errorf("Expected %d revealed cells, got %d (mask %d)", want, len(revealed), mask.Count())
	}

	// Every empty revealed cell has all its neighbours revealed.
	for r := 0; r < b.Height(); r++ {
		for c := 0; c < b.Width(); c++ {
			if !mask.Revealed(r, c) || !b.At(r, c).IsEmpty() {
				continue
			}
			b.forEachNeighbor(r, c, func(nr, nc int) {
				if !mask.Revealed(nr, nc) {
					t.Errorf("Neighbour (%d,%d) of empty (%d,%d) not revealed", nr, nc, r, c)
				}
			})
		}
	}
}

func TestReveal_DigitIsLeaf(t *testing.T) {
	b := mustBoard(t, Coord{Row: 5, Col: 5})
	mask := NewRevealMask(b.Width(), b.Height())

	revealed, _, turnOver := Reveal(b, mask, Coord{Row: 4, Col: 4}, 0)
	if len(revealed) != 1 {
		t.Fatalf("Expected a digit to reveal only itself, got %d cells", len(revealed))
	}
	if revealed[0].Value != "1" {
		t.Errorf("Expected value 1, got %q", revealed[0].Value)
	}
	if !turnOver {
		t.Error("Expected turn to pass")
	}
}

func TestReveal_SkipsRevealed(t *testing.T) {
	b := mustBoard(t, Coord{Row: 5, Col: 5})
	mask := NewRevealMask(b.Width(), b.Height())
	Reveal(b, mask, Coord{Row: 4, Col: 4}, 0)

	revealed, _, _ := Reveal(b, mask, Coord{Row: 4, Col: 4}, 0)
	if len(revealed) != 0 {
		t.Errorf("Expected nothing revealed twice, got %+v", revealed)
	}
	if !mask.Revealed(4, 4) {
		t.Error("Mask entry must stay true")
	}
}

func TestUnrevealedMines(t *testing.T) {
	b := mustBoard(t, Coord{Row: 0, Col: 1}, Coord{Row: 2, Col: 0}, Coord{Row: 7, Col: 7})
	mask := NewRevealMask(b.Width(), b.Height())
	Reveal(b, mask, Coord{Row: 2, Col: 0}, 0)

	mines := UnrevealedMines(b, mask)
	if len(mines) != 2 {
		t.Fatalf("Expected 2 unrevealed mines, got %d", len(mines))
	}
	if mines[0].Row != 0 || mines[0].Col != 1 || mines[0].Distance != 0 {
		t.Errorf("Unexpected first mine %+v", mines[0])
	}
	if mines[1].Row != 7 || mines[1].Col != 7 || mines[1].Distance != 1 {
		t.Errorf("Unexpected second mine %+v", mines[1])
	}
	if mines[0].Value != "X" {
		t.Errorf("Expected mine value X, got %q", mines[0].Value)
	}
}

func TestRevealQueue_FIFO(t *testing.T) {
	q := &revealQueue{}
	for i := 0; i < 3; i++ {
		q.push(queued{row: i})
	}
	for i := 0; i < 3; i++ {
		item, ok := q.pop()
		if !ok || item.row != i {
			t.Fatalf("Expected item %d, got %+v ok=%v", i, item, ok)
		}
	}
	if _, ok := q.pop(); ok {
		t.Error("Expected empty queue")
	}
}
