package main

import (
	"testing"

	"github.com/rs/zerolog"
)

func testEngine() *Engine {
	return NewEngine(8, 12, 350, zerolog.Nop())
}

func TestEngineOpeningBookCenter(t *testing.T) {
	e := testEngine()
	res := e.GetMoveWithStats(NewBoard(), CellBlack)
	if !res.HasMove || !res.Move.Equals(Pos{Row: 9, Col: 9}) {
		t.Fatalf("empty board should open at center, got %v", res.Move)
	}
	if res.Stage != StageOpeningBook {
		t.Fatalf("expected OpeningBook stage, got %v", res.Stage)
	}
}

func TestEngineOpeningBookSecondMove(t *testing.T) {
	e := testEngine()
	b := boardWith(t, placement{9, 9, CellBlack})
	res := e.GetMoveWithStats(b, CellWhite)
	if res.Stage != StageOpeningBook {
		t.Fatalf("second move should come from the book, got %v", res.Stage)
	}
	if absInt(res.Move.Row-9) != 1 || absInt(res.Move.Col-9) != 1 {
		t.Fatalf("second move should be diagonally adjacent, got %v", res.Move)
	}
}

func TestEngineGetMoveShortForm(t *testing.T) {
	e := testEngine()
	move, ok := e.GetMove(NewBoard(), CellBlack)
	if !ok || !move.Equals(Pos{Row: 9, Col: 9}) {
		t.Fatalf("GetMove should mirror GetMoveWithStats, got %v ok=%v", move, ok)
	}
}

func TestEngineFourToFive(t *testing.T) {
	b := boardWith(t,
		placement{9, 0, CellBlack}, placement{9, 1, CellBlack},
		placement{9, 2, CellBlack}, placement{9, 3, CellBlack},
	)
	e := testEngine()
	res := e.GetMoveWithStats(b, CellBlack)
	if !res.HasMove || !res.Move.Equals(Pos{Row: 9, Col: 4}) {
		t.Fatalf("expected (9,4), got %v", res.Move)
	}
	if res.Stage != StageImmediateWin {
		t.Fatalf("expected ImmediateWin stage, got %v", res.Stage)
	}
}

func TestEngineBlocksLoneThreat(t *testing.T) {
	// White four blocked at one end: exactly one white winning move, so
	// Black must take it.
	b := boardWith(t,
		placement{5, 4, CellBlack},
		placement{5, 5, CellWhite}, placement{5, 6, CellWhite},
		placement{5, 7, CellWhite}, placement{5, 8, CellWhite},
	)
	e := testEngine()
	res := e.GetMoveWithStats(b, CellBlack)
	if !res.HasMove || !res.Move.Equals(Pos{Row: 5, Col: 9}) {
		t.Fatalf("expected block at (5,9), got %v", res.Move)
	}
	if res.Stage != StageBlockThreat {
		t.Fatalf("expected BlockThreat stage, got %v", res.Stage)
	}
}

func TestEngineCaptureWin(t *testing.T) {
	b := boardWith(t,
		placement{9, 8, CellBlack},
		placement{9, 9, CellWhite}, placement{9, 10, CellWhite},
		placement{3, 3, CellBlack}, placement{3, 15, CellWhite},
		placement{15, 3, CellBlack}, placement{15, 15, CellWhite},
	)
	b.AddCaptures(CellBlack, 4)
	e := testEngine()
	res := e.GetMoveWithStats(b, CellBlack)
	if !res.HasMove || !res.Move.Equals(Pos{Row: 9, Col: 11}) {
		t.Fatalf("expected capture win at (9,11), got %v", res.Move)
	}
	if res.Stage != StageImmediateWin {
		t.Fatalf("expected ImmediateWin stage, got %v", res.Stage)
	}
}

func TestEngineVCFStage(t *testing.T) {
	b := boardWith(t,
		placement{6, 8, CellBlack}, placement{7, 8, CellBlack}, placement{8, 8, CellBlack},
		placement{10, 5, CellBlack}, placement{10, 6, CellBlack}, placement{10, 7, CellBlack},
		placement{10, 4, CellWhite},
		placement{0, 0, CellWhite}, placement{0, 18, CellWhite},
	)
	e := testEngine()
	res := e.GetMoveWithStats(b, CellBlack)
	if !res.HasMove {
		t.Fatalf("no move returned")
	}
	if res.Stage != StageOurVCF {
		t.Fatalf("expected OurVCF stage, got %v (move %v)", res.Stage, res.Move)
	}
	if len(res.Sequence) < 2 {
		t.Fatalf("VCF result should carry the proven sequence, got %v", res.Sequence)
	}
	if res.Score < winThreshold {
		t.Fatalf("proven forced win must score in the terminal band, got %d", res.Score)
	}
}

func TestEngineMovesAreAlwaysLegal(t *testing.T) {
	rng := splitmix64{state: 31}
	e := testEngine()
	for trial := 0; trial < 3; trial++ {
		b := NewBoard()
		cell := CellBlack
		for i := 0; i < 10; i++ {
			p := Pos{Row: 5 + rng.intn(9), Col: 5 + rng.intn(9)}
			if !b.IsEmpty(p) {
				continue
			}
			b.PlaceStone(p, cell)
			cell = cell.Opponent()
		}
		res := e.GetMoveWithStats(b, cell)
		if !res.HasMove {
			t.Fatalf("trial %d: engine found no move", trial)
		}
		if !IsValidMove(b, res.Move, cell) {
			t.Fatalf("trial %d: engine returned illegal move %v", trial, res.Move)
		}
	}
}

func TestEngineTerminalPositionReturnsNoMove(t *testing.T) {
	b := fiveInRow(t, CellWhite)
	e := testEngine()
	res := e.GetMoveWithStats(b, CellBlack)
	if res.HasMove {
		t.Fatalf("finished game must yield no move, got %v", res.Move)
	}
}

func TestEngineForcedBreakStage(t *testing.T) {
	// White has a breakable five with two independent capturable pairs,
	// so neither break is illusory; Black must capture into the line
	// right now.
	b := boardWith(t,
		placement{7, 2, CellBlack}, placement{8, 2, CellWhite},
		placement{7, 3, CellBlack}, placement{8, 3, CellWhite},
	)
	for i := 2; i <= 6; i++ {
		b.PlaceStone(Pos{Row: 9, Col: i}, CellWhite)
	}
	e := testEngine()
	res := e.GetMoveWithStats(b, CellBlack)
	if !res.HasMove {
		t.Fatalf("no move returned")
	}
	if res.Stage != StageBreakFive {
		t.Fatalf("expected BreakFive stage, got %v (move %v)", res.Stage, res.Move)
	}
	if !res.Move.Equals(Pos{Row: 10, Col: 2}) && !res.Move.Equals(Pos{Row: 10, Col: 3}) {
		t.Fatalf("expected a break capture at (10,2) or (10,3), got %v", res.Move)
	}
}

func TestEngineResetAndClearCache(t *testing.T) {
	e := testEngine()
	b := boardWith(t,
		placement{9, 9, CellBlack}, placement{10, 10, CellWhite},
		placement{9, 10, CellBlack}, placement{10, 9, CellWhite},
		placement{11, 9, CellBlack}, placement{8, 9, CellWhite},
	)
	_ = e.GetMoveWithStats(b, CellBlack)
	e.Reset()
	if e.TTUsagePercent() == 0 {
		t.Fatalf("reset must keep the transposition table")
	}
	e.ClearCache()
	if e.TTUsagePercent() != 0 {
		t.Fatalf("clear cache must drop the transposition table")
	}
}
