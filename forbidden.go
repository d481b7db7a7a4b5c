package main

// Double-three rule: a placement that creates two or more free-threes
// at once is forbidden, unless the same placement captures.

// linePattern describes the stones around a prospective placement in one
// direction. Offsets are relative to the placement (which sits at 0).
type linePattern struct {
	stones   [8]int
	count    int
	openEnds int
}

func (lp *linePattern) push(offset int) {
	if lp.count < len(lp.stones) {
		lp.stones[lp.count] = offset
		lp.count++
	}
}

func (lp *linePattern) sorted() []int {
	s := lp.stones[:lp.count]
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	return s
}

// scanThreeLine walks up to five cells each way from p, allowing one
// interior gap per side, and records friendly stones and open ends.
func scanThreeLine(b *Board, p Pos, c Cell, dr, dc int, allowGap bool) linePattern {
	opp := c.Opponent()
	var lp linePattern
	lp.push(0)

	for _, sign := range [2]int{1, -1} {
		gapUsed := false
		openEnd := false
		for i := 1; i <= 5; i++ {
			r := p.Row + dr*i*sign
			cl := p.Col + dc*i*sign
			if !InBounds(r, cl) {
				break
			}
			cell := b.Get(Pos{Row: r, Col: cl})
			if cell == c {
				lp.push(i * sign)
				continue
			}
			if cell == opp {
				break
			}
			if allowGap && !gapUsed {
				nr := p.Row + dr*(i+1)*sign
				nc := p.Col + dc*(i+1)*sign
				if InBounds(nr, nc) && b.Get(Pos{Row: nr, Col: nc}) == c {
					gapUsed = true
					continue
				}
			}
			openEnd = true
			break
		}
		if openEnd {
			lp.openEnds++
		}
	}
	return lp
}

// isFreeThree matches exactly three stones spanning at most four cells
// with both ends open: _OOO_, _OO_O_, _O_OO_.
func isFreeThree(lp linePattern) bool {
	if lp.count != 3 || lp.openEnds < 2 {
		return false
	}
	s := lp.sorted()
	span := s[2] - s[0] + 1
	if span > 4 {
		return false
	}
	if span == 4 {
		// One interior gap of exactly one cell.
		return (s[1]-s[0] == 1 && s[2]-s[1] == 2) || (s[1]-s[0] == 2 && s[2]-s[1] == 1)
	}
	return true
}

func createsFreeThree(b *Board, p Pos, c Cell, dr, dc int) bool {
	lp := scanThreeLine(b, p, c, dr, dc, true)
	if isFreeThree(lp) {
		return true
	}
	// A fourth gap-connected stone can hide a consecutive free-three;
	// retry without the gap allowance.
	if lp.count > 3 {
		return isFreeThree(scanThreeLine(b, p, c, dr, dc, false))
	}
	return false
}

// CountFreeThrees counts the direction classes in which placing c at p
// would create a free-three. Stops at 2, which is all the caller needs.
func CountFreeThrees(b *Board, p Pos, c Cell) int {
	count := 0
	for _, d := range lineDirs {
		if createsFreeThree(b, p, c, d[0], d[1]) {
			count++
			if count >= 2 {
				return count
			}
		}
	}
	return count
}

// IsDoubleThree reports whether placing c at p is forbidden. A move
// that captures is exempt.
func IsDoubleThree(b *Board, p Pos, c Cell) bool {
	if HasCapture(b, p, c) {
		return false
	}
	return CountFreeThrees(b, p, c) >= 2
}

// IsValidMove: the cell is empty and the placement is not a forbidden
// double-three.
func IsValidMove(b *Board, p Pos, c Cell) bool {
	if !p.InBounds() || !b.IsEmpty(p) {
		return false
	}
	return !IsDoubleThree(b, p, c)
}
