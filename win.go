package main

// Win rules. A five only wins when the opponent cannot dissolve it by
// capturing a pair on the line; a break that hands the five right back
// (illusory break) does not save them.

var lineDirs = [4][2]int{
	{0, 1}, {1, 0}, {1, 1}, {1, -1},
}

// HasFiveAt reports whether p belongs to a run of five or more stones
// of colour c. Bounded work: four directions from a single cell.
func HasFiveAt(b *Board, p Pos, c Cell) bool {
	for _, d := range lineDirs {
		count := 1
		for r, cl := p.Row+d[0], p.Col+d[1]; InBounds(r, cl) && b.Get(Pos{Row: r, Col: cl}) == c; r, cl = r+d[0], cl+d[1] {
			count++
		}
		for r, cl := p.Row-d[0], p.Col-d[1]; InBounds(r, cl) && b.Get(Pos{Row: r, Col: cl}) == c; r, cl = r-d[0], cl-d[1] {
			count++
		}
		if count >= 5 {
			return true
		}
	}
	return false
}

// FindFiveLineAt returns the cells of a five-run through p, if any.
// Only call after HasFiveAt; the allocation is off the hot path.
func FindFiveLineAt(b *Board, p Pos, c Cell) ([]Pos, bool) {
	for _, d := range lineDirs {
		line := make([]Pos, 0, 8)
		line = append(line, p)
		for r, cl := p.Row+d[0], p.Col+d[1]; InBounds(r, cl) && b.Get(Pos{Row: r, Col: cl}) == c; r, cl = r+d[0], cl+d[1] {
			line = append(line, Pos{Row: r, Col: cl})
		}
		for r, cl := p.Row-d[0], p.Col-d[1]; InBounds(r, cl) && b.Get(Pos{Row: r, Col: cl}) == c; r, cl = r-d[0], cl-d[1] {
			line = append(line, Pos{Row: r, Col: cl})
		}
		if len(line) >= 5 {
			return line, true
		}
	}
	return nil, false
}

// FindFivePositions scans all stones of c and returns the first
// five-run found.
func FindFivePositions(b *Board, c Cell) ([]Pos, bool) {
	stones := b.Stones(c)
	if stones == nil {
		return nil, false
	}
	var found []Pos
	stones.ForEach(func(p Pos) {
		if found != nil {
			return
		}
		// Start-of-run filter keeps the scan linear.
		for _, d := range lineDirs {
			pr, pc := p.Row-d[0], p.Col-d[1]
			if InBounds(pr, pc) && b.Get(Pos{Row: pr, Col: pc}) == c {
				continue
			}
			count := 1
			for r, cl := p.Row+d[0], p.Col+d[1]; InBounds(r, cl) && b.Get(Pos{Row: r, Col: cl}) == c; r, cl = r+d[0], cl+d[1] {
				count++
			}
			if count >= 5 {
				line, _ := FindFiveLineAt(b, p, c)
				found = line
				return
			}
		}
	})
	return found, found != nil
}

// CanBreakFiveByCapture reports whether the opponent of fiveColor has a
// placement that captures a pair containing any cell of the five.
func CanBreakFiveByCapture(b *Board, five []Pos, fiveColor Cell) bool {
	return len(FindFiveBreakMoves(b, five, fiveColor)) > 0
}

// FindFiveBreakMoves lists every empty cell where the opponent can play
// to capture part of the five. Capture brackets reach two cells past the
// pair, hence the radius-2 neighbourhood.
func FindFiveBreakMoves(b *Board, five []Pos, fiveColor Cell) []Pos {
	opp := fiveColor.Opponent()
	var breaks []Pos
	for _, fp := range five {
		for dr := -2; dr <= 2; dr++ {
			for dc := -2; dc <= 2; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				p := Pos{Row: fp.Row + dr, Col: fp.Col + dc}
				if !p.InBounds() || !b.IsEmpty(p) {
					continue
				}
				dup := false
				for _, seen := range breaks {
					if seen.Equals(p) {
						dup = true
						break
					}
				}
				if dup {
					continue
				}
				if captureHitsLine(b, p, opp, five) {
					breaks = append(breaks, p)
				}
			}
		}
	}
	return breaks
}

func captureHitsLine(b *Board, p Pos, capturer Cell, line []Pos) bool {
	victim := capturer.Opponent()
	for _, d := range captureDirs {
		r3 := p.Row + 3*d[0]
		c3 := p.Col + 3*d[1]
		if !InBounds(r3, c3) {
			continue
		}
		p1 := Pos{Row: p.Row + d[0], Col: p.Col + d[1]}
		p2 := Pos{Row: p.Row + 2*d[0], Col: p.Col + 2*d[1]}
		if b.Get(p1) != victim || b.Get(p2) != victim || b.Get(Pos{Row: r3, Col: c3}) != capturer {
			continue
		}
		for _, fp := range line {
			if fp.Equals(p1) || fp.Equals(p2) {
				return true
			}
		}
	}
	return false
}

// IsIllusoryBreak reports whether every break capture against the five
// is illusory: the capture removes exactly one five-stone, the owner
// replays it, and the recreated five is unbreakable. One replay ply is
// checked.
func IsIllusoryBreak(b *Board, five []Pos, fiveColor Cell) bool {
	opp := fiveColor.Opponent()
	breaks := FindFiveBreakMoves(b, five, fiveColor)
	if len(breaks) == 0 {
		return false
	}
	for _, brk := range breaks {
		sim := b.Clone()
		sim.PlaceStone(brk, opp)
		rec := ExecuteCaptures(sim, brk, opp)

		replay := noPos
		hitCount := 0
		for i := 0; i < rec.Count; i++ {
			for _, fp := range five {
				if fp.Equals(rec.Stones[i]) {
					replay = rec.Stones[i]
					hitCount++
				}
			}
		}
		// Two five-stones gone: a single replay cannot rebuild the run.
		if hitCount != 1 || !sim.IsEmpty(replay) {
			return false
		}

		sim.PlaceStone(replay, fiveColor)
		if !HasFiveAt(sim, replay, fiveColor) {
			return false
		}
		newFive, ok := FindFiveLineAt(sim, replay, fiveColor)
		if !ok || CanBreakFiveByCapture(sim, newFive, fiveColor) {
			return false
		}
	}
	return true
}

// CheckWinner decides the position after lastMove. Capture wins come
// first; a last-move five wins only if unbreakable or every break is
// illusory.
func CheckWinner(b *Board, lastMove Pos) Cell {
	if b.Captures(CellBlack) >= 5 {
		return CellBlack
	}
	if b.Captures(CellWhite) >= 5 {
		return CellWhite
	}
	if !lastMove.InBounds() {
		return CellEmpty
	}
	c := b.Get(lastMove)
	if c == CellEmpty || !HasFiveAt(b, lastMove, c) {
		return CellEmpty
	}
	five, ok := FindFiveLineAt(b, lastMove, c)
	if !ok {
		return CellEmpty
	}
	if !CanBreakFiveByCapture(b, five, c) || IsIllusoryBreak(b, five, c) {
		return c
	}
	return CellEmpty
}

// checkWinnerScan is the referee-blind variant used by the evaluator:
// no last move is known, so both colours' runs are scanned.
func checkWinnerScan(b *Board) Cell {
	if b.Captures(CellBlack) >= 5 {
		return CellBlack
	}
	if b.Captures(CellWhite) >= 5 {
		return CellWhite
	}
	for _, c := range [2]Cell{CellBlack, CellWhite} {
		five, ok := FindFivePositions(b, c)
		if !ok {
			continue
		}
		if !CanBreakFiveByCapture(b, five, c) || IsIllusoryBreak(b, five, c) {
			return c
		}
	}
	return CellEmpty
}
