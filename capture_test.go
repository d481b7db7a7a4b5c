package main

import "testing"

func TestCaptureHorizontalPair(t *testing.T) {
	// B W W . — Black closing the bracket captures the white pair.
	b2 := boardWith(t,
		placement{0, 0, CellBlack},
		placement{0, 1, CellWhite},
		placement{0, 2, CellWhite},
	)
	p := Pos{Row: 0, Col: 3}
	b2.PlaceStone(p, CellBlack)
	rec := ExecuteCaptures(b2, p, CellBlack)
	if rec.Pairs != 1 || rec.Count != 2 {
		t.Fatalf("expected 1 pair captured, got pairs=%d count=%d", rec.Pairs, rec.Count)
	}
	if !b2.IsEmpty(Pos{Row: 0, Col: 1}) || !b2.IsEmpty(Pos{Row: 0, Col: 2}) {
		t.Fatalf("captured stones still on board")
	}
	if b2.Captures(CellBlack) != 1 {
		t.Fatalf("capture counter not incremented: %d", b2.Captures(CellBlack))
	}
}

func TestCaptureUndoRestoresBoard(t *testing.T) {
	b := boardWith(t,
		placement{9, 5, CellBlack},
		placement{9, 7, CellWhite},
		placement{9, 8, CellWhite},
		placement{9, 9, CellBlack},
		placement{7, 7, CellWhite},
		placement{8, 7, CellWhite},
		placement{10, 7, CellBlack},
	)
	before := *b
	p := Pos{Row: 9, Col: 6}
	b.PlaceStone(p, CellBlack)
	rec := ExecuteCaptures(b, p, CellBlack)
	if rec.Pairs == 0 {
		t.Fatalf("expected at least one captured pair")
	}
	UndoCaptures(b, CellBlack, &rec)
	b.RemoveStone(p)
	if *b != before {
		t.Fatalf("execute/undo did not restore the board exactly")
	}
}

func TestCaptureMultipleRays(t *testing.T) {
	// Cross pattern: captures in four rays from one placement.
	b := boardWith(t,
		placement{9, 6, CellBlack},
		placement{9, 7, CellWhite},
		placement{9, 8, CellWhite},
		placement{9, 10, CellWhite},
		placement{9, 11, CellWhite},
		placement{9, 12, CellBlack},
		placement{6, 9, CellBlack},
		placement{7, 9, CellWhite},
		placement{8, 9, CellWhite},
		placement{10, 9, CellWhite},
		placement{11, 9, CellWhite},
		placement{12, 9, CellBlack},
	)
	center := Pos{Row: 9, Col: 9}
	b.PlaceStone(center, CellBlack)
	rec := ExecuteCaptures(b, center, CellBlack)
	if rec.Pairs != 4 || rec.Count != 8 {
		t.Fatalf("expected 4 pairs / 8 stones, got pairs=%d count=%d", rec.Pairs, rec.Count)
	}
	if b.Captures(CellBlack) != 4 {
		t.Fatalf("expected 4 capture pairs credited, got %d", b.Captures(CellBlack))
	}
}

func TestNoCaptureOfThreeStones(t *testing.T) {
	b := boardWith(t,
		placement{9, 5, CellBlack},
		placement{9, 7, CellWhite},
		placement{9, 8, CellWhite},
		placement{9, 9, CellWhite},
		placement{9, 10, CellBlack},
	)
	p := Pos{Row: 9, Col: 6}
	b.PlaceStone(p, CellBlack)
	rec := ExecuteCaptures(b, p, CellBlack)
	if rec.Pairs != 0 {
		t.Fatalf("three in a row must not be capturable, got %d pairs", rec.Pairs)
	}
}

func TestPlacingIntoBracketIsSafe(t *testing.T) {
	// W B . W: Black playing into the gap is NOT captured; only a newly
	// placed flanking stone triggers capture.
	b := boardWith(t,
		placement{5, 5, CellWhite},
		placement{5, 6, CellBlack},
		placement{5, 8, CellWhite},
	)
	p := Pos{Row: 5, Col: 7}
	b.PlaceStone(p, CellBlack)
	rec := ExecuteCaptures(b, p, CellBlack)
	if rec.Pairs != 0 {
		t.Fatalf("self-capture must not happen, got %d pairs", rec.Pairs)
	}
	if b.Get(p) != CellBlack || b.Get(Pos{Row: 5, Col: 6}) != CellBlack {
		t.Fatalf("black pair removed after moving between white flankers")
	}
}

func TestCaptureEdgeRaysStayInBounds(t *testing.T) {
	b := boardWith(t,
		placement{0, 0, CellBlack},
		placement{0, 1, CellWhite},
	)
	p := Pos{Row: 0, Col: 2}
	b.PlaceStone(p, CellBlack)
	rec := ExecuteCaptures(b, p, CellBlack)
	if rec.Pairs != 0 {
		t.Fatalf("expected no capture near edge, got %d pairs", rec.Pairs)
	}
}

func TestHasCaptureAndCount(t *testing.T) {
	b := boardWith(t,
		placement{9, 3, CellBlack},
		placement{9, 4, CellWhite},
		placement{9, 5, CellWhite},
		placement{9, 7, CellWhite},
		placement{9, 8, CellWhite},
		placement{9, 9, CellBlack},
	)
	p := Pos{Row: 9, Col: 6}
	if !HasCapture(b, p, CellBlack) {
		t.Fatalf("expected capture available at %v", p)
	}
	if got := CountCapturePairs(b, p, CellBlack); got != 2 {
		t.Fatalf("expected 2 pairs, got %d", got)
	}
	if HasCapture(b, p, CellWhite) {
		t.Fatalf("white has no capture at %v", p)
	}
}

func TestRandomCaptureInverse(t *testing.T) {
	rng := splitmix64{state: 7}
	for trial := 0; trial < 200; trial++ {
		b := NewBoard()
		cell := CellBlack
		for i := 0; i < 40; i++ {
			p := Pos{Row: rng.intn(BoardSize), Col: rng.intn(BoardSize)}
			if !b.IsEmpty(p) {
				continue
			}
			b.PlaceStone(p, cell)
			cell = cell.Opponent()
		}
		p := Pos{Row: rng.intn(BoardSize), Col: rng.intn(BoardSize)}
		if !b.IsEmpty(p) {
			continue
		}
		before := *b
		b.PlaceStone(p, CellBlack)
		rec := ExecuteCaptures(b, p, CellBlack)
		UndoCaptures(b, CellBlack, &rec)
		b.RemoveStone(p)
		if *b != before {
			t.Fatalf("trial %d: execute/undo not an exact inverse", trial)
		}
	}
}
