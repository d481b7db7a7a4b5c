package main

import "sort"

// Move generation and ordering. Candidates are the empty cells within
// chessboard distance 2 of any stone; ordering is a banded priority
// score so the first few moves carry almost every cutoff.

const (
	maxRootMoves   = 30
	ttMoveScore    = 1_000_000
	tacticalScore  = 850_000
	killerScore0   = 500_000
	killerScore1   = 490_000
	counterScore   = 400_000
	candidateRange = 2
)

type scoredMove struct {
	pos   Pos
	score int
}

// generateCandidates appends every legal candidate cell to buf.
// An empty board yields only the centre.
func generateCandidates(b *Board, c Cell, buf []Pos) []Pos {
	buf = buf[:0]
	if b.IsBoardEmpty() {
		return append(buf, Pos{Row: boardCenter, Col: boardCenter})
	}
	var seen [TotalCells]bool
	visit := func(p Pos) {
		for dr := -candidateRange; dr <= candidateRange; dr++ {
			for dc := -candidateRange; dc <= candidateRange; dc++ {
				r, cl := p.Row+dr, p.Col+dc
				if !InBounds(r, cl) {
					continue
				}
				cand := Pos{Row: r, Col: cl}
				idx := cand.Index()
				if seen[idx] {
					continue
				}
				seen[idx] = true
				if IsValidMove(b, cand, c) {
					buf = append(buf, cand)
				}
			}
		}
	}
	b.black.ForEach(visit)
	b.white.ForEach(visit)
	return buf
}

// countLineWithGap scans both ways from p as if c just played there.
// Returns stones counted with at most one interior gap, open ends,
// whether a gap was used, and the strictly consecutive count.
func countLineWithGap(b *Board, p Pos, dr, dc int, c Cell) (count, openEnds int, hasGap bool, consec int) {
	count = 1
	consec = 1
	for _, sign := range [2]int{1, -1} {
		counting := true
		r, cl := p.Row+dr*sign, p.Col+dc*sign
		for InBounds(r, cl) {
			cell := b.Get(Pos{Row: r, Col: cl})
			if cell == c {
				count++
				if counting {
					consec++
				}
			} else if cell == CellEmpty {
				counting = false
				if !hasGap {
					nr, nc := r+dr*sign, cl+dc*sign
					if InBounds(nr, nc) && b.Get(Pos{Row: nr, Col: nc}) == c {
						hasGap = true
						r, cl = nr, nc
						continue
					}
				}
				openEnds++
				break
			} else {
				break
			}
			r, cl = r+dr*sign, cl+dc*sign
		}
	}
	return count, openEnds, hasGap, consec
}

// moveVulnerabilityPenalty estimates how badly placing at p exposes a
// fresh pair to capture, scaled by how close the opponent is to a
// capture win.
func moveVulnerabilityPenalty(b *Board, p Pos, c Cell) int {
	opp := c.Opponent()
	vuln := 0
	for _, d := range lineDirs {
		for _, sign := range [2]int{1, -1} {
			dr, dc := d[0]*sign, d[1]*sign
			rm1, cm1 := p.Row-dr, p.Col-dc
			rp1, cp1 := p.Row+dr, p.Col+dc
			rp2, cp2 := p.Row+2*dr, p.Col+2*dc

			// [mov]-ally with a flanking opp: opp plays the open end.
			if InBounds(rm1, cm1) && InBounds(rp2, cp2) {
				before := b.Get(Pos{Row: rm1, Col: cm1})
				a1 := b.Get(Pos{Row: rp1, Col: cp1})
				a2 := b.Get(Pos{Row: rp2, Col: cp2})
				if a1 == c && a2 == opp && before == CellEmpty {
					vuln++
				}
			}
			// ally-[mov] completing a pair against an existing flank.
			rm2, cm2 := p.Row-2*dr, p.Col-2*dc
			if InBounds(rm2, cm2) && InBounds(rp1, cp1) {
				b2 := b.Get(Pos{Row: rm2, Col: cm2})
				b1 := b.Get(Pos{Row: rm1, Col: cm1})
				after := b.Get(Pos{Row: rp1, Col: cp1})
				if b1 == c && after == opp && b2 == CellEmpty {
					vuln++
				}
			}
		}
	}
	if vuln == 0 {
		return 0
	}
	oppCaps := b.Captures(opp)
	urgency := 1
	if oppCaps >= 3 {
		urgency = 4
	} else if oppCaps >= 2 {
		urgency = 2
	}
	return vuln * 8_000 * urgency
}

// scoreMove assigns the ordering priority for playing c at p. Bands run
// from the TT move down through forced wins, blocks, forks, threats,
// captures, killers, countermove, and finally history plus locality.
func (w *worker) scoreMove(b *Board, p Pos, c Cell, ttMove Pos, hasTT bool, ply int, lastOppMove Pos) int {
	if hasTT && ttMove.Equals(p) {
		return ttMoveScore
	}

	opp := c.Opponent()
	var (
		myFive, oppFive               bool
		myFourDirs, oppFourDirs       int
		myOpenFourDirs, oppOpen4Dirs  int
		myOpenThreeDirs, oppOpen3Dirs int
		twoScore                      int
	)
	for _, d := range lineDirs {
		mc, mo, _, mconsec := countLineWithGap(b, p, d[0], d[1], c)
		oc, oo, _, oconsec := countLineWithGap(b, p, d[0], d[1], opp)
		if mconsec >= 5 {
			myFive = true
		}
		if oconsec >= 5 {
			oppFive = true
		}
		if mc == 4 && mo >= 1 {
			myFourDirs++
			if mo == 2 {
				myOpenFourDirs++
			}
		}
		if oc == 4 && oo >= 1 {
			oppFourDirs++
			if oo == 2 {
				oppOpen4Dirs++
			}
		}
		if mc == 3 && mo == 2 {
			myOpenThreeDirs++
		}
		if oc == 3 && oo == 2 {
			oppOpen3Dirs++
		}
		if mc == 2 {
			if mo == 2 {
				twoScore += 500
			} else if mo == 1 {
				twoScore += 150
			}
		}
		if oc == 2 && oo == 2 {
			twoScore += 200
		}
	}

	if myFive {
		return 900_000
	}
	if oppFive {
		return 895_000
	}

	myCapPairs := CountCapturePairs(b, p, c)
	if myCapPairs > 0 && b.Captures(c)+myCapPairs >= 5 {
		return 890_000
	}
	oppCapPairs := CountCapturePairs(b, p, opp)
	oppCaps := b.Captures(opp)
	if oppCapPairs > 0 && oppCaps+oppCapPairs >= 5 {
		return 885_000
	}

	// Forks count directions, not booleans: two closed fours still fork.
	if myFourDirs >= 2 {
		return 880_000
	}
	if myFourDirs >= 1 && myOpenThreeDirs >= 1 {
		return 878_000
	}
	if myOpenFourDirs >= 1 {
		return 870_000
	}
	if oppFourDirs >= 2 {
		return 868_000
	}
	if oppFourDirs >= 1 && oppOpen3Dirs >= 1 {
		return 866_000
	}
	if oppOpen4Dirs >= 1 {
		return 860_000
	}

	if oppCapPairs > 0 && oppCaps >= 3 {
		return 855_000
	}
	if oppCapPairs > 0 && oppCaps >= 2 {
		return 845_000
	}

	if myOpenThreeDirs >= 2 {
		return 840_000
	}
	if oppOpen3Dirs >= 2 {
		return 838_000
	}
	if myFourDirs >= 1 {
		return 830_000
	}
	if oppFourDirs >= 1 {
		return 820_000
	}
	if myOpenThreeDirs >= 1 {
		return 810_000
	}
	if oppOpen3Dirs >= 1 {
		return 800_000
	}

	if myCapPairs > 0 {
		return 600_000 + 50_000*myCapPairs
	}
	if oppCapPairs > 0 {
		return 550_000 + 30_000*oppCaps
	}

	vulnPenalty := moveVulnerabilityPenalty(b, p, c)

	if ply < maxPly {
		if w.hasKiller[ply][0] && w.killers[ply][0].Equals(p) {
			return killerScore0 - vulnPenalty
		}
		if w.hasKiller[ply][1] && w.killers[ply][1].Equals(p) {
			return killerScore1 - vulnPenalty
		}
	}

	ci := colorIndex(c)
	if lastOppMove.InBounds() && w.hasCounter[ci][lastOppMove.Row][lastOppMove.Col] &&
		w.countermove[ci][lastOppMove.Row][lastOppMove.Col].Equals(p) {
		return counterScore
	}

	hist := int(w.history[ci][p.Row][p.Col])
	dist := absInt(p.Row-boardCenter) + absInt(p.Col-boardCenter)
	return hist + (maxCenterDist-dist)*10 + twoScore - vulnPenalty
}

// generateOrdered fills out with scored candidates sorted best-first.
func (w *worker) generateOrdered(b *Board, c Cell, ttMove Pos, hasTT bool, ply int, lastOppMove Pos, out []scoredMove) []scoredMove {
	out = out[:0]
	w.candBuf = generateCandidates(b, c, w.candBuf)
	for _, p := range w.candBuf {
		out = append(out, scoredMove{
			pos:   p,
			score: w.scoreMove(b, p, c, ttMove, hasTT, ply, lastOppMove),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

// adaptiveMoveLimit widens the move window when the best candidate is
// tactical, and keeps quiet positions tight.
func adaptiveMoveLimit(depth, topScore int) int {
	if topScore >= tacticalScore {
		switch {
		case depth <= 1:
			return 5
		case depth <= 3:
			return 7
		case depth <= 5:
			return 9
		default:
			return 12
		}
	}
	switch {
	case depth <= 1:
		return 3
	case depth <= 3:
		return 5
	case depth <= 5:
		return 7
	default:
		return 9
	}
}
