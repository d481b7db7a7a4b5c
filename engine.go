package main

import (
	"time"

	"github.com/rs/zerolog"
)

// Engine is the decision procedure. Each request walks a staged
// pipeline; every stage either answers or falls through to the next:
// opening book, forced break, immediate win, threat block, our VCF,
// opponent VCF, and finally the timed parallel search.

type Stage uint8

const (
	StageOpeningBook Stage = iota
	StageBreakFive
	StageImmediateWin
	StageBlockThreat
	StageOurVCF
	StageOppVCF
	StageAlphaBeta
)

func (s Stage) String() string {
	switch s {
	case StageOpeningBook:
		return "OpeningBook"
	case StageBreakFive:
		return "BreakFive"
	case StageImmediateWin:
		return "ImmediateWin"
	case StageBlockThreat:
		return "BlockThreat"
	case StageOurVCF:
		return "OurVCF"
	case StageOppVCF:
		return "OppVCF"
	}
	return "AlphaBeta"
}

// MoveResult reports the chosen move together with search statistics.
type MoveResult struct {
	Move               Pos
	HasMove            bool
	Score              int
	Depth              int
	Nodes              int64
	ElapsedMs          int64
	NPS                int64
	TTUsagePct         int
	FirstMoveCutoffPct float64
	Stage              Stage
	Sequence           []Pos
}

type Engine struct {
	searcher *Searcher
	vcf      vcfSearcher
	maxDepth int
	budgetMs int64
	log      zerolog.Logger
}

// NewEngine builds an engine that keeps its transposition table for the
// lifetime of the game.
func NewEngine(ttMegabytes, maxDepth int, softBudgetMs int64, log zerolog.Logger) *Engine {
	if maxDepth <= 0 {
		maxDepth = 20
	}
	if softBudgetMs <= 0 {
		softBudgetMs = 500
	}
	return &Engine{
		searcher: NewSearcher(ttMegabytes, 0),
		maxDepth: maxDepth,
		budgetMs: softBudgetMs,
		log:      log,
	}
}

// GetMove returns the move alone; HasMove false means no legal move.
func (e *Engine) GetMove(b *Board, side Cell) (Pos, bool) {
	res := e.GetMoveWithStats(b, side)
	return res.Move, res.HasMove
}

// Reset clears worker-local tables between games and keeps the TT.
func (e *Engine) Reset() {
	e.searcher.Reset()
}

// ClearCache drops the transposition table.
func (e *Engine) ClearCache() {
	e.searcher.ClearTT()
}

func (e *Engine) TTUsagePercent() int {
	return e.searcher.tt.UsagePercent()
}

// GetMoveWithStats walks the decision pipeline.
func (e *Engine) GetMoveWithStats(b *Board, side Cell) MoveResult {
	start := time.Now()
	opp := side.Opponent()

	finish := func(res MoveResult) MoveResult {
		res.ElapsedMs = time.Since(start).Milliseconds()
		if res.ElapsedMs > 0 && res.Nodes > 0 {
			res.NPS = res.Nodes * 1000 / res.ElapsedMs
		}
		res.TTUsagePct = e.searcher.tt.UsagePercent()
		e.log.Debug().
			Str("stage", res.Stage.String()).
			Str("move", res.Move.Notation()).
			Int("score", res.Score).
			Int("depth", res.Depth).
			Int64("nodes", res.Nodes).
			Int64("elapsed_ms", res.ElapsedMs).
			Msg("engine move")
		return res
	}

	if checkWinnerScan(b) != CellEmpty {
		return finish(MoveResult{Stage: StageAlphaBeta})
	}

	// 1. Opening book.
	if move, ok := e.openingMove(b, side); ok {
		return finish(MoveResult{Move: move, HasMove: true, Stage: StageOpeningBook, Nodes: 1})
	}

	// 2. Forced break of an opponent five already on the board.
	if move, ok := e.forcedBreak(b, side); ok {
		return finish(MoveResult{Move: move, HasMove: true, Score: -900_000, Stage: StageBreakFive, Nodes: 1})
	}

	// 3. Immediate win.
	if move, ok := e.findImmediateWin(b, side); ok {
		return finish(MoveResult{Move: move, HasMove: true, Score: scoreFive, Stage: StageImmediateWin, Nodes: 1})
	}

	// 4. Block the opponent's only immediate win. With two or more, a
	// single block cannot save us; let the full search pick its poison.
	if threats := e.findWinningMoves(b, opp); len(threats) == 1 && IsValidMove(b, threats[0], side) {
		return finish(MoveResult{Move: threats[0], HasMove: true, Score: -900_000, Stage: StageBlockThreat, Nodes: 1})
	}

	// 5. Our VCF. Unreliable when the opponent can ignore fours and
	// capture-win instead. A proven win scores in the terminal band,
	// decayed by the length of the forced sequence so shorter mates
	// rank higher.
	if b.Captures(opp) < 4 {
		if seq, ok := e.vcf.SearchVCF(b, side); ok && len(seq) > 0 {
			return finish(MoveResult{
				Move: seq[0], HasMove: true, Score: scoreFive - len(seq),
				Stage: StageOurVCF, Nodes: e.vcf.nodes, Sequence: seq,
			})
		}
	}

	// 6. Opponent VCF: break their first threat.
	if b.Captures(side) < 4 {
		if seq, ok := e.vcf.SearchVCF(b, opp); ok && len(seq) > 0 && IsValidMove(b, seq[0], side) {
			return finish(MoveResult{
				Move: seq[0], HasMove: true, Score: -(scoreFive - len(seq)),
				Stage: StageOppVCF, Nodes: e.vcf.nodes, Sequence: seq,
			})
		}
	}

	// 7. Full timed search.
	sr := e.searcher.SearchTimed(b, side, e.maxDepth, e.budgetMs)
	res := MoveResult{
		Move:               sr.Move,
		HasMove:            sr.HasMove,
		Score:              sr.Score,
		Depth:              sr.Depth,
		Nodes:              sr.Stats.Nodes,
		FirstMoveCutoffPct: sr.Stats.FirstMoveCutoffRate(),
		Stage:              StageAlphaBeta,
	}
	if !res.HasMove {
		// Narrow fallback: any legal cell at all.
		if move, ok := anyLegalMove(b, side); ok {
			res.Move = move
			res.HasMove = true
		}
	}
	return finish(res)
}

// openingMove covers the first stones, where search adds nothing.
func (e *Engine) openingMove(b *Board, side Cell) (Pos, bool) {
	switch b.StoneCount() {
	case 0:
		return Pos{Row: boardCenter, Col: boardCenter}, true
	case 1:
		// Second move: diagonally adjacent to the lone stone,
		// preferring the centre-ward square.
		opp := side.Opponent()
		var oppPos Pos
		found := false
		b.Stones(opp).ForEach(func(p Pos) {
			if !found {
				oppPos = p
				found = true
			}
		})
		if !found {
			return noPos, false
		}
		best := noPos
		bestDist := 1 << 30
		for _, d := range [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
			r, c := oppPos.Row+d[0], oppPos.Col+d[1]
			if !InBounds(r, c) {
				continue
			}
			dist := absInt(r-boardCenter) + absInt(c-boardCenter)
			if dist < bestDist {
				bestDist = dist
				best = Pos{Row: r, Col: c}
			}
		}
		return best, best.InBounds()
	case 3:
		return e.thirdMoveBook(b, side)
	}
	return noPos, false
}

// thirdMoveBook answers row/column opponent pairs; anything else falls
// through to the search.
func (e *Engine) thirdMoveBook(b *Board, side Cell) (Pos, bool) {
	opp := side.Opponent()
	var mine, theirs []Pos
	b.Stones(side).ForEach(func(p Pos) { mine = append(mine, p) })
	b.Stones(opp).ForEach(func(p Pos) { theirs = append(theirs, p) })
	if len(mine) != 1 || len(theirs) != 2 {
		return noPos, false
	}
	sameRow := theirs[0].Row == theirs[1].Row
	sameCol := theirs[0].Col == theirs[1].Col
	if !sameRow && !sameCol {
		return noPos, false
	}

	best := noPos
	bestScore := -1 << 30
	for _, oppPos := range theirs {
		for _, d := range [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}} {
			r, c := oppPos.Row+d[0], oppPos.Col+d[1]
			p := Pos{Row: r, Col: c}
			if !InBounds(r, c) || b.Get(p) != CellEmpty {
				continue
			}
			centerDist := absInt(r-boardCenter) + absInt(c-boardCenter)
			connectivity := 0
			if r == mine[0].Row || c == mine[0].Col {
				connectivity = 10
			}
			disrupt := 0
			for _, op := range theirs {
				if absInt(op.Row-r) == 1 && absInt(op.Col-c) == 1 {
					disrupt += 5
				}
			}
			score := 100 - centerDist*15 + connectivity + disrupt
			if score > bestScore {
				bestScore = score
				best = p
			}
		}
	}
	return best, best.InBounds()
}

// forcedBreak handles an opponent five that survived because it was
// breakable: we must capture into the line now, avoiding breaks the
// opponent answers by rebuilding an unbreakable five.
func (e *Engine) forcedBreak(b *Board, side Cell) (Pos, bool) {
	opp := side.Opponent()
	five, ok := FindFivePositions(b, opp)
	if !ok || !CanBreakFiveByCapture(b, five, opp) {
		return noPos, false
	}

	breaks := FindFiveBreakMoves(b, five, opp)
	best := noPos
	bestEval := -1 << 30
	for _, brk := range breaks {
		if !IsValidMove(b, brk, side) {
			continue
		}
		sim := b.Clone()
		sim.PlaceStone(brk, side)
		rec := ExecuteCaptures(sim, brk, side)
		if e.opponentRecreatesUnbreakable(sim, &rec, opp) {
			continue
		}
		if score := Evaluate(sim, side); score > bestEval {
			bestEval = score
			best = brk
		}
	}
	return best, best.InBounds()
}

// opponentRecreatesUnbreakable: after our break capture, can the five's
// owner replay a captured cell and land an unbreakable five?
func (e *Engine) opponentRecreatesUnbreakable(sim *Board, rec *CaptureRecord, opp Cell) bool {
	for i := 0; i < rec.Count; i++ {
		cp := rec.Stones[i]
		sim.PlaceStone(cp, opp)
		recreates := false
		if HasFiveAt(sim, cp, opp) {
			if newFive, ok := FindFiveLineAt(sim, cp, opp); ok && !CanBreakFiveByCapture(sim, newFive, opp) {
				recreates = true
			}
		}
		sim.RemoveStone(cp)
		if recreates {
			return true
		}
	}
	return false
}

// findImmediateWin looks for a single placement that ends the game: an
// unbreakable (or illusory-breakable) five, or the fifth capture pair.
func (e *Engine) findImmediateWin(b *Board, side Cell) (Pos, bool) {
	nearCaptureWin := b.Captures(side) >= 4
	work := b.Clone()
	for r := 0; r < BoardSize; r++ {
		for cl := 0; cl < BoardSize; cl++ {
			p := Pos{Row: r, Col: cl}
			if !IsValidMove(b, p, side) {
				continue
			}
			work.PlaceStone(p, side)
			rec := ExecuteCaptures(work, p, side)

			won := false
			if HasFiveAt(work, p, side) {
				if five, ok := FindFiveLineAt(work, p, side); ok {
					if !CanBreakFiveByCapture(work, five, side) || IsIllusoryBreak(work, five, side) {
						won = true
					}
				}
			}
			if !won && nearCaptureWin && work.Captures(side) >= 5 {
				won = true
			}

			UndoCaptures(work, side, &rec)
			work.RemoveStone(p)
			if won {
				return p, true
			}
		}
	}
	return noPos, false
}

// findWinningMoves lists every immediate win for c, used to decide
// whether a single block suffices.
func (e *Engine) findWinningMoves(b *Board, c Cell) []Pos {
	var wins []Pos
	nearCaptureWin := b.Captures(c) >= 4
	work := b.Clone()
	for r := 0; r < BoardSize; r++ {
		for cl := 0; cl < BoardSize; cl++ {
			p := Pos{Row: r, Col: cl}
			if !IsValidMove(b, p, c) {
				continue
			}
			work.PlaceStone(p, c)
			rec := ExecuteCaptures(work, p, c)

			won := false
			if HasFiveAt(work, p, c) {
				if five, ok := FindFiveLineAt(work, p, c); ok && !CanBreakFiveByCapture(work, five, c) {
					won = true
				}
			}
			if !won && nearCaptureWin && work.Captures(c) >= 5 {
				won = true
			}

			UndoCaptures(work, c, &rec)
			work.RemoveStone(p)
			if won {
				wins = append(wins, p)
			}
		}
	}
	return wins
}

func anyLegalMove(b *Board, c Cell) (Pos, bool) {
	for r := 0; r < BoardSize; r++ {
		for cl := 0; cl < BoardSize; cl++ {
			p := Pos{Row: r, Col: cl}
			if IsValidMove(b, p, c) {
				return p, true
			}
		}
	}
	return noPos, false
}
