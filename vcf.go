package main

// VCF (Victory by Continuous Fours) prover: every attacker move creates
// a four, so the defender is forced. If at any node the defender has
// zero answers we win; with exactly one we recurse; with more the line
// is not forcing and the branch fails.

const maxVCFDepth = 30

type vcfSearcher struct {
	nodes int64
}

// SearchVCF proves a forced win for c, returning the attacker's move
// sequence. The caller must skip the prover when the defender is at
// four capture pairs; a capture win outruns any chain of fours.
func (v *vcfSearcher) SearchVCF(b *Board, c Cell) ([]Pos, bool) {
	v.nodes = 0
	work := b.Clone()
	seq := make([]Pos, 0, maxVCFDepth)
	if v.search(work, c, 0, &seq) {
		return seq, true
	}
	return nil, false
}

func (v *vcfSearcher) search(b *Board, c Cell, depth int, seq *[]Pos) bool {
	v.nodes++
	if depth > maxVCFDepth {
		return false
	}

	threats := v.findFourMoves(b, c)
	for _, threat := range threats {
		b.PlaceStone(threat, c)
		rec := ExecuteCaptures(b, threat, c)
		*seq = append(*seq, threat)

		win := false
		breakableFive := false
		if HasFiveAt(b, threat, c) {
			if five, ok := FindFiveLineAt(b, threat, c); ok {
				if !CanBreakFiveByCapture(b, five, c) {
					win = true
				} else {
					breakableFive = true
				}
			}
		}
		if !win && b.Captures(c) >= 5 {
			win = true
		}
		if win {
			UndoCaptures(b, c, &rec)
			b.RemoveStone(threat)
			return true
		}
		if breakableFive {
			// The defender can dissolve this five; not a proven line.
			UndoCaptures(b, c, &rec)
			b.RemoveStone(threat)
			*seq = (*seq)[:len(*seq)-1]
			continue
		}

		// A capture can free a cell the defender immediately wins on.
		if rec.Count > 0 {
			defender := c.Opponent()
			freedWin := false
			for i := 0; i < rec.Count; i++ {
				if createsFiveConsec(b, rec.Stones[i], defender) {
					freedWin = true
					break
				}
			}
			if freedWin {
				UndoCaptures(b, c, &rec)
				b.RemoveStone(threat)
				*seq = (*seq)[:len(*seq)-1]
				continue
			}
		}

		defenses := v.findDefenses(b, threat, c)
		switch len(defenses) {
		case 0:
			UndoCaptures(b, c, &rec)
			b.RemoveStone(threat)
			return true
		case 1:
			defender := c.Opponent()
			def := defenses[0]
			b.PlaceStone(def, defender)
			defRec := ExecuteCaptures(b, def, defender)

			won := v.search(b, c, depth+1, seq)

			UndoCaptures(b, defender, &defRec)
			b.RemoveStone(def)
			if won {
				UndoCaptures(b, c, &rec)
				b.RemoveStone(threat)
				return true
			}
		}
		// Multiple defenses: not forcing down this branch.

		UndoCaptures(b, c, &rec)
		b.RemoveStone(threat)
		*seq = (*seq)[:len(*seq)-1]
	}
	return false
}

// findFourMoves lists legal moves that complete a five (first) or a
// consecutive four with an open end.
func (v *vcfSearcher) findFourMoves(b *Board, c Cell) []Pos {
	var wins, fours []Pos
	for r := 0; r < BoardSize; r++ {
		for cl := 0; cl < BoardSize; cl++ {
			p := Pos{Row: r, Col: cl}
			if !IsValidMove(b, p, c) {
				continue
			}
			if createsFiveConsec(b, p, c) {
				wins = append(wins, p)
			} else if createsFour(b, p, c) {
				fours = append(fours, p)
			}
		}
	}
	return append(wins, fours...)
}

// findDefenses lists the defender's answers to the four just played:
// the extension points of every four through threatMove, captures that
// remove a stone of those fours, and any capture at all once the
// defender holds three or more pairs.
func (v *vcfSearcher) findDefenses(b *Board, threatMove Pos, attacker Cell) []Pos {
	defender := attacker.Opponent()
	var defenses []Pos
	var fourStones []Pos

	for _, d := range lineDirs {
		count := 1
		linePositions := []Pos{threatMove}
		var extensions []Pos
		for _, sign := range [2]int{1, -1} {
			r, cl := threatMove.Row+d[0]*sign, threatMove.Col+d[1]*sign
			for InBounds(r, cl) {
				p := Pos{Row: r, Col: cl}
				cell := b.Get(p)
				if cell == attacker {
					count++
					linePositions = append(linePositions, p)
				} else {
					if cell == CellEmpty {
						extensions = append(extensions, p)
					}
					break
				}
				r, cl = r+d[0]*sign, cl+d[1]*sign
			}
		}
		if count == 4 {
			for _, ext := range extensions {
				if IsValidMove(b, ext, defender) {
					defenses = append(defenses, ext)
				}
			}
			fourStones = append(fourStones, linePositions...)
		}
	}

	strategicCaptures := b.Captures(defender) >= 3
	for r := 0; r < BoardSize; r++ {
		for cl := 0; cl < BoardSize; cl++ {
			p := Pos{Row: r, Col: cl}
			if !IsValidMove(b, p, defender) {
				continue
			}
			pairs := CountCapturePairs(b, p, defender)
			if pairs == 0 {
				continue
			}
			if strategicCaptures || captureHitsLine(b, p, defender, fourStones) {
				defenses = append(defenses, p)
			}
		}
	}

	return dedupPositions(defenses)
}

func dedupPositions(ps []Pos) []Pos {
	out := ps[:0]
	var seen [TotalCells]bool
	for _, p := range ps {
		idx := p.Index()
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, p)
	}
	return out
}
