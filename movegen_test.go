package main

import (
	"sync/atomic"
	"testing"
)

func testWorker(b *Board) *worker {
	var stop atomic.Bool
	w := newWorker(b, NewZobrist(), NewTranspositionTable(1), &stop)
	return w
}

func TestCandidatesEmptyBoardIsCenter(t *testing.T) {
	moves := generateCandidates(NewBoard(), CellBlack, nil)
	if len(moves) != 1 || !moves[0].Equals(Pos{Row: 9, Col: 9}) {
		t.Fatalf("empty board should yield only the center, got %v", moves)
	}
}

func TestCandidatesStayNearStones(t *testing.T) {
	b := boardWith(t, placement{9, 9, CellBlack})
	moves := generateCandidates(b, CellWhite, nil)
	if len(moves) == 0 {
		t.Fatalf("expected candidates around the stone")
	}
	for _, m := range moves {
		if absInt(m.Row-9) > candidateRange || absInt(m.Col-9) > candidateRange {
			t.Fatalf("candidate %v outside radius %d", m, candidateRange)
		}
		if m.Equals(Pos{Row: 9, Col: 9}) {
			t.Fatalf("occupied cell offered as candidate")
		}
	}
}

func TestCandidatesExcludeForbidden(t *testing.T) {
	b := boardWith(t,
		placement{9, 8, CellBlack}, placement{9, 10, CellBlack},
		placement{8, 9, CellBlack}, placement{10, 9, CellBlack},
	)
	moves := generateCandidates(b, CellBlack, nil)
	for _, m := range moves {
		if m.Equals(Pos{Row: 9, Col: 9}) {
			t.Fatalf("double-three cell offered as candidate")
		}
	}
}

func TestScoreMoveWinningBandsOrder(t *testing.T) {
	// Black four on the board: completing it must outrank blocking the
	// white four elsewhere.
	b := boardWith(t,
		placement{9, 0, CellBlack}, placement{9, 1, CellBlack},
		placement{9, 2, CellBlack}, placement{9, 3, CellBlack},
		placement{4, 4, CellWhite}, placement{4, 5, CellWhite},
		placement{4, 6, CellWhite}, placement{4, 7, CellWhite},
		placement{12, 12, CellBlack},
		placement{12, 13, CellWhite}, placement{12, 14, CellWhite},
		placement{12, 15, CellBlack},
	)
	w := testWorker(b)

	winScore := w.scoreMove(b, Pos{Row: 9, Col: 4}, CellBlack, noPos, false, 0, noPos)
	blockScore := w.scoreMove(b, Pos{Row: 4, Col: 8}, CellBlack, noPos, false, 0, noPos)
	if winScore != 900_000 {
		t.Fatalf("completing our five should score 900000, got %d", winScore)
	}
	if blockScore != 895_000 {
		t.Fatalf("blocking their five should score 895000, got %d", blockScore)
	}
	if winScore <= blockScore {
		t.Fatalf("win (%d) must outrank block (%d)", winScore, blockScore)
	}
}

func TestScoreMoveTTMoveTops(t *testing.T) {
	b := boardWith(t, placement{9, 9, CellBlack})
	w := testWorker(b)
	ttMove := Pos{Row: 9, Col: 10}
	if got := w.scoreMove(b, ttMove, CellWhite, ttMove, true, 0, noPos); got != ttMoveScore {
		t.Fatalf("TT move should score %d, got %d", ttMoveScore, got)
	}
}

func TestScoreMoveCaptureBand(t *testing.T) {
	b := boardWith(t,
		placement{9, 5, CellBlack},
		placement{9, 6, CellWhite}, placement{9, 7, CellWhite},
	)
	w := testWorker(b)
	got := w.scoreMove(b, Pos{Row: 9, Col: 8}, CellBlack, noPos, false, 0, noPos)
	if got != 600_000+50_000 {
		t.Fatalf("single-pair capture should score 650000, got %d", got)
	}
}

func TestScoreMoveCaptureWinBand(t *testing.T) {
	b := boardWith(t,
		placement{9, 5, CellBlack},
		placement{9, 6, CellWhite}, placement{9, 7, CellWhite},
	)
	b.AddCaptures(CellBlack, 4)
	w := testWorker(b)
	got := w.scoreMove(b, Pos{Row: 9, Col: 8}, CellBlack, noPos, false, 0, noPos)
	if got != 890_000 {
		t.Fatalf("fifth-pair capture should score 890000, got %d", got)
	}
}

func TestScoreMoveOpenFourBand(t *testing.T) {
	b := boardWith(t,
		placement{9, 5, CellBlack}, placement{9, 6, CellBlack}, placement{9, 7, CellBlack},
	)
	w := testWorker(b)
	got := w.scoreMove(b, Pos{Row: 9, Col: 8}, CellBlack, noPos, false, 0, noPos)
	if got != 870_000 {
		t.Fatalf("creating an open four should score 870000, got %d", got)
	}
}

func TestScoreMoveDoubleFourFork(t *testing.T) {
	// Two closed threes crossing at (9,9): playing there makes fours in
	// two directions, a fork even though both are closed.
	b := boardWith(t,
		placement{9, 6, CellBlack}, placement{9, 7, CellBlack}, placement{9, 8, CellBlack},
		placement{9, 5, CellWhite},
		placement{6, 9, CellBlack}, placement{7, 9, CellBlack}, placement{8, 9, CellBlack},
		placement{5, 9, CellWhite},
	)
	w := testWorker(b)
	got := w.scoreMove(b, Pos{Row: 9, Col: 9}, CellBlack, noPos, false, 0, noPos)
	if got != 880_000 {
		t.Fatalf("double four fork should score 880000, got %d", got)
	}
}

func TestGenerateOrderedSortsDescending(t *testing.T) {
	b := boardWith(t,
		placement{9, 5, CellBlack}, placement{9, 6, CellBlack}, placement{9, 7, CellBlack},
		placement{11, 11, CellWhite},
	)
	w := testWorker(b)
	moves := w.generateOrdered(b, CellBlack, noPos, false, 0, noPos, nil)
	for i := 1; i < len(moves); i++ {
		if moves[i].score > moves[i-1].score {
			t.Fatalf("moves not sorted at %d: %d after %d", i, moves[i].score, moves[i-1].score)
		}
	}
	if moves[0].score < 800_000 {
		t.Fatalf("a four-making extension should lead the ordering, top=%d", moves[0].score)
	}
}

func TestAdaptiveMoveLimits(t *testing.T) {
	cases := []struct {
		depth, top, want int
	}{
		{1, 900_000, 5},
		{3, 900_000, 7},
		{5, 860_000, 9},
		{8, 855_000, 12},
		{1, 100, 3},
		{3, 100, 5},
		{5, 100, 7},
		{8, 100, 9},
	}
	for _, tc := range cases {
		if got := adaptiveMoveLimit(tc.depth, tc.top); got != tc.want {
			t.Fatalf("limit(depth=%d, top=%d): got %d, want %d", tc.depth, tc.top, got, tc.want)
		}
	}
}
