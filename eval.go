package main

// Pattern evaluator. Strictly symmetric: every term is a my-minus-their
// difference, so Evaluate(b, Black) == -Evaluate(b, White) holds
// exactly. Defensive preference lives in move ordering, never here.

const (
	scoreFive        = 1_000_000
	scoreOpenFour    = 100_000
	scoreClosedFour  = 50_000
	scoreOpenThree   = 10_000
	scoreClosedThree = 1_500
	scoreOpenTwo     = 1_000
	scoreClosedTwo   = 200

	positionWeight    = 8
	connectivityBonus = 160
	maxCenterDist     = 18
	boardCenter       = BoardSize / 2
)

// Non-linear capture weights per pair count; index 5 is the capture win.
var captureWeights = [6]int{0, 5_000, 7_000, 20_000, 80_000, scoreFive}

// vulnerabilityWeight grows as the threatening side nears a capture win.
func vulnerabilityWeight(threatCaptures int) int {
	switch {
	case threatCaptures >= 4:
		return 80_000
	case threatCaptures == 3:
		return 40_000
	case threatCaptures == 2:
		return 20_000
	default:
		return 10_000
	}
}

type patternTotals struct {
	score       int
	openFours   int
	closedFours int
	openThrees  int
	openTwos    int
}

// Evaluate scores the board for colour c.
func Evaluate(b *Board, c Cell) int {
	opp := c.Opponent()

	if winner := checkWinnerScan(b); winner != CellEmpty {
		if winner == c {
			return scoreFive
		}
		return -scoreFive
	}

	capScore := captureWeights[capClamp(b.Captures(c))] - captureWeights[capClamp(b.Captures(opp))]

	mine := evaluatePatterns(b, c)
	theirs := evaluatePatterns(b, opp)
	patternScore := mine.score + comboBonus(mine) - theirs.score - comboBonus(theirs)

	positionScore := evaluatePositions(b, c) - evaluatePositions(b, opp)
	connScore := evaluateConnectivity(b, c) - evaluateConnectivity(b, opp)

	myVuln := countVulnerablePairs(b, c)
	oppVuln := countVulnerablePairs(b, opp)
	vulnPenalty := myVuln*vulnerabilityWeight(b.Captures(opp)) - oppVuln*vulnerabilityWeight(b.Captures(c))

	return capScore + patternScore + positionScore + connScore - vulnPenalty
}

// comboBonus upgrades multi-threat positions the opponent cannot answer
// with a single move.
func comboBonus(t patternTotals) int {
	bonus := 0
	if t.openFours >= 1 && (t.closedFours >= 1 || t.openThrees >= 1) {
		bonus += scoreOpenFour
	}
	if t.closedFours >= 2 {
		bonus += scoreOpenFour
	}
	if t.closedFours >= 1 && t.openThrees >= 1 {
		bonus += scoreOpenFour
	}
	if t.openThrees >= 2 {
		bonus += scoreOpenFour
	}
	switch {
	case t.openTwos >= 4:
		bonus += 8_000
	case t.openTwos == 3:
		bonus += 5_000
	case t.openTwos == 2:
		bonus += 3_000
	}
	return bonus
}

func evaluatePatterns(b *Board, c Cell) patternTotals {
	var t patternTotals
	stones := b.Stones(c)
	if stones == nil {
		return t
	}
	stones.ForEach(func(p Pos) {
		for _, d := range lineDirs {
			s := evaluateLine(b, p, d[0], d[1], c)
			t.score += s
			switch {
			case s >= scoreOpenFour && s < scoreFive:
				t.openFours++
			case s >= scoreClosedFour:
				t.closedFours++
			case s >= scoreOpenThree:
				t.openThrees++
			case s == scoreOpenTwo:
				t.openTwos++
			}
		}
	})
	return t
}

// evaluateLine scores the run starting at p in direction (dr, dc).
// Only the start of a run contributes, so every physical run counts
// once per direction. At most one interior one-cell gap is folded in.
func evaluateLine(b *Board, p Pos, dr, dc int, c Cell) int {
	prevR, prevC := p.Row-dr, p.Col-dc
	openEnds := 0
	if InBounds(prevR, prevC) {
		switch b.Get(Pos{Row: prevR, Col: prevC}) {
		case c:
			return 0 // not the start of this run
		case CellEmpty:
			openEnds++
		}
	}

	count := 1
	span := 1
	hasGap := false
	r, cl := p.Row+dr, p.Col+dc
	for InBounds(r, cl) {
		switch b.Get(Pos{Row: r, Col: cl}) {
		case c:
			count++
			span++
		case CellEmpty:
			if !hasGap {
				nr, nc := r+dr, cl+dc
				if InBounds(nr, nc) && b.Get(Pos{Row: nr, Col: nc}) == c {
					hasGap = true
					span++
					r, cl = r+dr, cl+dc
					continue
				}
			}
			openEnds++
			return classifyLine(count, openEnds, hasGap, span)
		default:
			return classifyLine(count, openEnds, hasGap, span)
		}
		r, cl = r+dr, cl+dc
	}
	return classifyLine(count, openEnds, hasGap, span)
}

func classifyLine(count, openEnds int, hasGap bool, span int) int {
	if hasGap {
		// A gap pattern is never an actual five: filling the gap is
		// always one move away, so OPEN_FOUR is its ceiling.
		switch {
		case count >= 5:
			return scoreOpenFour
		case count == 4 && span == 5:
			return scoreOpenFour
		case count == 4:
			return scoreClosedFour
		case count == 3 && openEnds == 2:
			return scoreOpenThree
		case count == 3 && openEnds == 1:
			return scoreClosedThree
		}
		return 0
	}
	switch {
	case count >= 5:
		return scoreFive
	case count == 4 && openEnds == 2:
		return scoreOpenFour
	case count == 4 && openEnds == 1:
		return scoreClosedFour
	case count == 3 && openEnds == 2:
		return scoreOpenThree
	case count == 3 && openEnds == 1:
		return scoreClosedThree
	case count == 2 && openEnds == 2:
		return scoreOpenTwo
	case count == 2 && openEnds == 1:
		return scoreClosedTwo
	}
	return 0
}

func evaluatePositions(b *Board, c Cell) int {
	stones := b.Stones(c)
	if stones == nil {
		return 0
	}
	score := 0
	stones.ForEach(func(p Pos) {
		dist := absInt(p.Row-boardCenter) + absInt(p.Col-boardCenter)
		score += (maxCenterDist - dist) * positionWeight
	})
	return score
}

// evaluateConnectivity rewards adjacent friendly stones. Forward-only
// directions keep each adjacency counted once.
func evaluateConnectivity(b *Board, c Cell) int {
	stones := b.Stones(c)
	if stones == nil {
		return 0
	}
	score := 0
	stones.ForEach(func(p Pos) {
		for _, d := range lineDirs {
			r, cl := p.Row+d[0], p.Col+d[1]
			if InBounds(r, cl) && b.Get(Pos{Row: r, Col: cl}) == c {
				score += connectivityBonus
			}
		}
	})
	return score
}

// countVulnerablePairs counts friendly pairs the opponent can capture on
// their next move: empty-ally-ally-opp or opp-ally-ally-empty along any
// ray. Forward directions only, so each pair is seen once.
func countVulnerablePairs(b *Board, c Cell) int {
	opp := c.Opponent()
	stones := b.Stones(c)
	if stones == nil {
		return 0
	}
	vuln := 0
	stones.ForEach(func(p Pos) {
		for _, d := range lineDirs {
			r1, c1 := p.Row+d[0], p.Col+d[1]
			if !InBounds(r1, c1) || b.Get(Pos{Row: r1, Col: c1}) != c {
				continue
			}
			rb, cb := p.Row-d[0], p.Col-d[1]
			ra, ca := r1+d[0], c1+d[1]
			before, beforeIn := CellEmpty, InBounds(rb, cb)
			if beforeIn {
				before = b.Get(Pos{Row: rb, Col: cb})
			}
			after, afterIn := CellEmpty, InBounds(ra, ca)
			if afterIn {
				after = b.Get(Pos{Row: ra, Col: ca})
			}
			if beforeIn && before == CellEmpty && after == opp {
				vuln++
			}
			if afterIn && after == CellEmpty && before == opp {
				vuln++
			}
		}
	})
	return vuln
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
