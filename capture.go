package main

// Pair captures: placing X so that the line reads X-O-O-X removes the
// O-O pair. A single placement can capture in all eight ray directions
// at once, so a record holds at most 16 stones.

const maxCapturedStones = 16

var captureDirs = [8][2]int{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

// CaptureRecord is the inverse ticket for one placement's captures.
// Fixed capacity, no heap allocation on the search path.
type CaptureRecord struct {
	Stones [maxCapturedStones]Pos
	Count  int
	Pairs  int
}

// ExecuteCaptures removes every pair flanked by the stone just placed at
// p and credits the pairs to c. The returned record feeds UndoCaptures.
func ExecuteCaptures(b *Board, p Pos, c Cell) CaptureRecord {
	var rec CaptureRecord
	opp := c.Opponent()
	for _, d := range captureDirs {
		r3 := p.Row + 3*d[0]
		c3 := p.Col + 3*d[1]
		if !InBounds(r3, c3) {
			continue
		}
		p1 := Pos{Row: p.Row + d[0], Col: p.Col + d[1]}
		p2 := Pos{Row: p.Row + 2*d[0], Col: p.Col + 2*d[1]}
		p3 := Pos{Row: r3, Col: c3}
		if b.Get(p1) == opp && b.Get(p2) == opp && b.Get(p3) == c {
			b.RemoveStone(p1)
			b.RemoveStone(p2)
			rec.Stones[rec.Count] = p1
			rec.Stones[rec.Count+1] = p2
			rec.Count += 2
			rec.Pairs++
		}
	}
	if rec.Pairs > 0 {
		b.AddCaptures(c, rec.Pairs)
	}
	return rec
}

// UndoCaptures restores the stones removed by ExecuteCaptures and
// rewinds c's capture counter. Execute followed by Undo leaves the
// board bit-identical.
func UndoCaptures(b *Board, c Cell, rec *CaptureRecord) {
	opp := c.Opponent()
	for i := 0; i < rec.Count; i++ {
		b.PlaceStone(rec.Stones[i], opp)
	}
	if rec.Pairs > 0 {
		b.SetCaptures(c, b.Captures(c)-rec.Pairs)
	}
}

// HasCapture reports whether placing c at p would capture anything.
func HasCapture(b *Board, p Pos, c Cell) bool {
	opp := c.Opponent()
	for _, d := range captureDirs {
		r3 := p.Row + 3*d[0]
		c3 := p.Col + 3*d[1]
		if !InBounds(r3, c3) {
			continue
		}
		if b.Get(Pos{Row: p.Row + d[0], Col: p.Col + d[1]}) == opp &&
			b.Get(Pos{Row: p.Row + 2*d[0], Col: p.Col + 2*d[1]}) == opp &&
			b.Get(Pos{Row: r3, Col: c3}) == c {
			return true
		}
	}
	return false
}

// CountCapturePairs counts the pairs a placement at p would take,
// without touching the board.
func CountCapturePairs(b *Board, p Pos, c Cell) int {
	opp := c.Opponent()
	pairs := 0
	for _, d := range captureDirs {
		r3 := p.Row + 3*d[0]
		c3 := p.Col + 3*d[1]
		if !InBounds(r3, c3) {
			continue
		}
		if b.Get(Pos{Row: p.Row + d[0], Col: p.Col + d[1]}) == opp &&
			b.Get(Pos{Row: p.Row + 2*d[0], Col: p.Col + 2*d[1]}) == opp &&
			b.Get(Pos{Row: r3, Col: c3}) == c {
			pairs++
		}
	}
	return pairs
}
