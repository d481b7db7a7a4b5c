package main

import "testing"

func TestZobristDeterministic(t *testing.T) {
	z1 := NewZobrist()
	z2 := NewZobrist()
	b := boardWith(t, placement{9, 9, CellBlack}, placement{3, 14, CellWhite})
	if z1.Hash(b, CellBlack) != z2.Hash(b, CellBlack) {
		t.Fatalf("two tables from the fixed seed must agree")
	}
}

func TestZobristDistinguishesSideAndCaptures(t *testing.T) {
	z := NewZobrist()
	b := boardWith(t, placement{0, 0, CellBlack})

	if z.Hash(b, CellBlack) == z.Hash(b, CellWhite) {
		t.Fatalf("side to move must change the hash")
	}

	b2 := b.Clone()
	b2.AddCaptures(CellBlack, 2)
	if z.Hash(b, CellBlack) == z.Hash(b2, CellBlack) {
		t.Fatalf("capture counts must change the hash")
	}
}

func TestZobristPlaceRemoveRoundTrip(t *testing.T) {
	z := NewZobrist()
	b := NewBoard()
	h := z.Hash(b, CellBlack)
	p := Pos{Row: 9, Col: 9}

	h2 := z.UpdatePlace(h, p, CellBlack)
	b.PlaceStone(p, CellBlack)
	if h2 != z.Hash(b, CellWhite) {
		t.Fatalf("incremental place disagrees with scratch hash")
	}

	h3 := z.UpdatePlace(h2, p, CellBlack)
	b.RemoveStone(p)
	if h3 != h {
		t.Fatalf("place/remove must round-trip the hash")
	}
}

func TestZobristToggleSide(t *testing.T) {
	z := NewZobrist()
	b := boardWith(t, placement{5, 5, CellBlack})
	h := z.Hash(b, CellBlack)
	if z.ToggleSide(h) != z.Hash(b, CellWhite) {
		t.Fatalf("side toggle disagrees with scratch hash")
	}
}

// Random make/unmake sequences: the incrementally maintained hash must
// equal the scratch recomputation at every step.
func TestZobristIncrementalMatchesScratch(t *testing.T) {
	z := NewZobrist()
	rng := splitmix64{state: 99}

	for trial := 0; trial < 50; trial++ {
		b := NewBoard()
		side := CellBlack
		h := z.Hash(b, side)

		type undo struct {
			pos  Pos
			cell Cell
			rec  CaptureRecord
			hash uint64
		}
		var stack []undo

		for step := 0; step < 60; step++ {
			if rng.intn(4) == 0 && len(stack) > 0 {
				// Unmake the most recent move.
				u := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				UndoCaptures(b, u.cell, &u.rec)
				b.RemoveStone(u.pos)
				h = u.hash
				side = u.cell
			} else {
				p := Pos{Row: rng.intn(BoardSize), Col: rng.intn(BoardSize)}
				if !b.IsEmpty(p) {
					continue
				}
				prevHash := h
				b.PlaceStone(p, side)
				rec := ExecuteCaptures(b, p, side)
				h = z.childHash(h, p, side, &rec, b.Captures(side))
				stack = append(stack, undo{pos: p, cell: side, rec: rec, hash: prevHash})
				side = side.Opponent()
			}
			if scratch := z.Hash(b, side); h != scratch {
				t.Fatalf("trial %d step %d: incremental %x != scratch %x", trial, step, h, scratch)
			}
		}
	}
}
