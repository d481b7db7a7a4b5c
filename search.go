package main

import (
	"math"
	"sync/atomic"
	"time"
)

// Core search: fail-soft PVS negamax over a make/unmake board, with a
// quiescence tail for forcing moves. Each worker owns its ordering
// tables; only the transposition table is shared.

const (
	maxPly       = 64
	scoreInf     = scoreFive + 1
	winThreshold = scoreFive - 100

	nodePollMask       = 1023
	maxQuiescenceDepth = 16
	quiescenceFourCap  = 6

	aspirationWindow = 100
	nullMoveR        = 2
)

// futilityMargins by remaining depth (index 1..3).
var futilityMargins = [4]int{0, 50_000, 100_000, 110_000}

type SearchStats struct {
	Nodes            int64
	TTProbes         int64
	TTHits           int64
	BetaCutoffs      int64
	FirstMoveCutoffs int64
}

func (s *SearchStats) add(o SearchStats) {
	s.Nodes += o.Nodes
	s.TTProbes += o.TTProbes
	s.TTHits += o.TTHits
	s.BetaCutoffs += o.BetaCutoffs
	s.FirstMoveCutoffs += o.FirstMoveCutoffs
}

// FirstMoveCutoffRate is the share of beta cutoffs delivered by the
// first ordered move; the health metric for move ordering.
func (s SearchStats) FirstMoveCutoffRate() float64 {
	if s.BetaCutoffs == 0 {
		return 0
	}
	return float64(s.FirstMoveCutoffs) * 100 / float64(s.BetaCutoffs)
}

type SearchResult struct {
	Move    Pos
	HasMove bool
	Score   int
	Depth   int
	Stats   SearchStats
	Stopped bool
}

// worker is one lazy-SMP search thread. The board is its private copy;
// killers, history, and countermoves are worker-local by design so that
// workers diversify.
type worker struct {
	board        *Board
	zobrist      *Zobrist
	tt           *TranspositionTable
	stop         *atomic.Bool
	hardDeadline time.Time

	stats   SearchStats
	stopped bool

	killers     [maxPly][2]Pos
	hasKiller   [maxPly][2]bool
	history     [2][BoardSize][BoardSize]int32
	countermove [2][BoardSize][BoardSize]Pos
	hasCounter  [2][BoardSize][BoardSize]bool

	candBuf  []Pos
	moveBufs [maxPly][]scoredMove
	rootBuf  []scoredMove
}

func newWorker(b *Board, z *Zobrist, tt *TranspositionTable, stop *atomic.Bool) *worker {
	return &worker{
		board:   b.Clone(),
		zobrist: z,
		tt:      tt,
		stop:    stop,
		candBuf: make([]Pos, 0, 128),
		rootBuf: make([]scoredMove, 0, 128),
	}
}

func (w *worker) frameBuf(ply int) []scoredMove {
	if ply >= maxPly {
		ply = maxPly - 1
	}
	if w.moveBufs[ply] == nil {
		w.moveBufs[ply] = make([]scoredMove, 0, 128)
	}
	return w.moveBufs[ply]
}

func (w *worker) checkStop() bool {
	if w.stopped {
		return true
	}
	if w.stats.Nodes&nodePollMask == 0 {
		if w.stop.Load() || time.Now().After(w.hardDeadline) {
			w.stopped = true
			return true
		}
	}
	return false
}

func (w *worker) halveHistory() {
	for ci := 0; ci < 2; ci++ {
		for r := 0; r < BoardSize; r++ {
			for c := 0; c < BoardSize; c++ {
				w.history[ci][r][c] /= 2
			}
		}
	}
}

func (w *worker) clearTables() {
	w.killers = [maxPly][2]Pos{}
	w.hasKiller = [maxPly][2]bool{}
	w.history = [2][BoardSize][BoardSize]int32{}
	w.countermove = [2][BoardSize][BoardSize]Pos{}
	w.hasCounter = [2][BoardSize][BoardSize]bool{}
}

// isThreatened: the side to move already faces a four or a near
// capture-win from the opponent, so null-move logic must stay off.
func isThreatened(b *Board, c Cell, lastMove Pos) bool {
	opp := c.Opponent()
	if b.Captures(opp) >= 4 {
		return true
	}
	if !lastMove.InBounds() {
		return false
	}
	for _, d := range lineDirs {
		count := 1
		for r, cl := lastMove.Row+d[0], lastMove.Col+d[1]; InBounds(r, cl) && b.Get(Pos{Row: r, Col: cl}) == opp; r, cl = r+d[0], cl+d[1] {
			count++
		}
		for r, cl := lastMove.Row-d[0], lastMove.Col-d[1]; InBounds(r, cl) && b.Get(Pos{Row: r, Col: cl}) == opp; r, cl = r-d[0], cl-d[1] {
			count++
		}
		if count >= 4 {
			return true
		}
	}
	return false
}

// createsFour: would a stone of c at p sit in a consecutive four with an
// open end? p itself is never read, so the check works before or after
// the stone is placed.
func createsFour(b *Board, p Pos, c Cell) bool {
	for _, d := range lineDirs {
		count := 1
		openEnds := 0
		for _, sign := range [2]int{1, -1} {
			r, cl := p.Row+d[0]*sign, p.Col+d[1]*sign
			for InBounds(r, cl) {
				cell := b.Get(Pos{Row: r, Col: cl})
				if cell == c {
					count++
				} else {
					if cell == CellEmpty {
						openEnds++
					}
					break
				}
				r, cl = r+d[0]*sign, cl+d[1]*sign
			}
		}
		if count == 4 && openEnds >= 1 {
			return true
		}
	}
	return false
}

// createsFiveConsec: placing c at p completes five-or-more in a row.
func createsFiveConsec(b *Board, p Pos, c Cell) bool {
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

// quiescence extends the leaf horizon with forcing moves only: fives,
// fours (while shallow), and capture wins.
func (w *worker) quiescence(c Cell, alpha, beta int, lastMove Pos, hash uint64, ply, qdepth int) int {
	w.stats.Nodes++
	if w.checkStop() {
		return 0
	}

	lastPlayer := c.Opponent()
	if w.board.Captures(lastPlayer) >= 5 {
		return -scoreFive
	}
	if lastMove.InBounds() && HasFiveAt(w.board, lastMove, lastPlayer) {
		return -scoreFive
	}

	w.stats.TTProbes++
	if score, _, _, usable := w.tt.Probe(hash, 0, alpha, beta); usable {
		w.stats.TTHits++
		return score
	}

	standPat := Evaluate(w.board, c)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}
	if qdepth >= maxQuiescenceDepth {
		return standPat
	}

	origAlpha := alpha
	best := standPat
	bestMove := noPos
	hasBest := false

	// Forcing moves go into a frame-local array: the shared candidate
	// buffer is reused by the recursion below.
	var forcing [64]Pos
	nForcing := 0
	w.candBuf = generateCandidates(w.board, c, w.candBuf)
	myCaps := w.board.Captures(c)
	for _, p := range w.candBuf {
		keep := createsFiveConsec(w.board, p, c)
		if !keep && qdepth < quiescenceFourCap && createsFour(w.board, p, c) {
			keep = true
		}
		if !keep {
			if pairs := CountCapturePairs(w.board, p, c); pairs > 0 && myCaps+pairs >= 5 {
				keep = true
			}
		}
		if keep && nForcing < len(forcing) {
			forcing[nForcing] = p
			nForcing++
		}
	}

	for i := 0; i < nForcing; i++ {
		p := forcing[i]
		w.board.PlaceStone(p, c)
		rec := ExecuteCaptures(w.board, p, c)
		childHash := w.zobrist.childHash(hash, p, c, &rec, w.board.Captures(c))

		score := -w.quiescence(c.Opponent(), -beta, -alpha, p, childHash, ply+1, qdepth+1)

		UndoCaptures(w.board, c, &rec)
		w.board.RemoveStone(p)

		if w.stopped {
			return 0
		}
		if score > best {
			best = score
			bestMove = p
			hasBest = true
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			w.stats.BetaCutoffs++
			break
		}
	}

	bound := BoundExact
	if best >= beta {
		bound = BoundLower
	} else if best <= origAlpha {
		bound = BoundUpper
	}
	w.tt.Store(hash, 0, best, bound, bestMove, hasBest)
	return best
}

// alphaBeta is the fail-soft PVS node. lastMove is the stone the
// opponent just played; hash is maintained incrementally by the caller.
func (w *worker) alphaBeta(c Cell, depth, alpha, beta int, lastMove Pos, hash uint64, ply int, allowNull bool) int {
	w.stats.Nodes++
	if w.checkStop() {
		return 0
	}

	lastPlayer := c.Opponent()
	if w.board.Captures(lastPlayer) >= 5 {
		return -scoreFive
	}
	if lastMove.InBounds() && HasFiveAt(w.board, lastMove, lastPlayer) {
		return -scoreFive
	}

	if depth <= 0 {
		return w.quiescence(c, alpha, beta, lastMove, hash, ply, 0)
	}
	if ply >= maxPly-1 {
		return Evaluate(w.board, c)
	}

	w.stats.TTProbes++
	ttScore, ttMove, hasTT, usable := w.tt.Probe(hash, depth, alpha, beta)
	if usable {
		w.stats.TTHits++
		return ttScore
	}

	isPV := beta-alpha > 1
	threatened := isThreatened(w.board, c, lastMove)

	staticEval := 0
	haveStatic := false
	getStatic := func() int {
		if !haveStatic {
			staticEval = Evaluate(w.board, c)
			haveStatic = true
		}
		return staticEval
	}

	if !isPV && !threatened && depth <= 3 {
		se := getStatic()
		// Reverse futility: far above beta with little depth left.
		if se-scoreOpenThree*depth >= beta {
			return se
		}
		// Razoring: hopeless even with the margin; confirm in quiescence.
		if se+scoreOpenThree*depth <= alpha {
			if qs := w.quiescence(c, alpha, beta, lastMove, hash, ply, 0); qs <= alpha {
				return qs
			}
		}
	}

	if allowNull && depth >= 3 && !threatened && getStatic() >= beta {
		nullHash := w.zobrist.ToggleSide(hash)
		nullScore := -w.alphaBeta(c.Opponent(), depth-1-nullMoveR, -beta, -beta+1, lastMove, nullHash, ply+1, false)
		if !w.stopped && nullScore >= beta {
			if depth <= 8 {
				return nullScore
			}
			verify := w.alphaBeta(c, depth-nullMoveR, beta-1, beta, lastMove, hash, ply, false)
			if !w.stopped && verify >= beta {
				return verify
			}
		}
	}

	// Internal iterative deepening seeds an ordering move when the TT
	// has none at a node that will be expensive anyway.
	if !hasTT && depth >= 6 {
		w.alphaBeta(c, depth-4, alpha, beta, lastMove, hash, ply, false)
		if w.stopped {
			return 0
		}
		ttMove, hasTT = w.tt.BestMove(hash)
	}

	moves := w.generateOrdered(w.board, c, ttMove, hasTT, ply, lastMove, w.frameBuf(ply))
	w.moveBufs[ply] = moves
	if len(moves) == 0 {
		return Evaluate(w.board, c)
	}
	if limit := adaptiveMoveLimit(depth, moves[0].score); len(moves) > limit {
		moves = moves[:limit]
	}

	best := -scoreInf
	bestMove := noPos
	hasBest := false
	bound := BoundUpper

	for i, m := range moves {
		quiet := m.score < 800_000
		if i > 0 && depth <= 3 && quiet {
			// Late move pruning: quiet stragglers at shallow depth.
			if i >= 3+2*depth {
				continue
			}
			if getStatic()+futilityMargins[depth] <= alpha {
				continue
			}
		}

		ext := 0
		if depth >= 2 && createsFour(w.board, m.pos, c) {
			ext = 1
		}

		w.board.PlaceStone(m.pos, c)
		rec := ExecuteCaptures(w.board, m.pos, c)
		childHash := w.zobrist.childHash(hash, m.pos, c, &rec, w.board.Captures(c))

		var score int
		if i == 0 {
			score = -w.alphaBeta(c.Opponent(), depth-1+ext, -beta, -alpha, m.pos, childHash, ply+1, true)
		} else {
			r := 0
			if rec.Pairs == 0 && ext == 0 && depth >= 3 {
				r = int(math.Sqrt(float64(depth)) * math.Sqrt(float64(i)) / 2)
				if m.score < killerScore0 {
					r++
				}
				if r < 1 {
					r = 1
				}
				if r > depth-2 {
					r = depth - 2
				}
			}
			score = -w.alphaBeta(c.Opponent(), depth-1-r, -(alpha + 1), -alpha, m.pos, childHash, ply+1, true)
			if !w.stopped && r > 0 && score > alpha {
				score = -w.alphaBeta(c.Opponent(), depth-1, -(alpha + 1), -alpha, m.pos, childHash, ply+1, true)
			}
			if !w.stopped && score > alpha && score < beta {
				score = -w.alphaBeta(c.Opponent(), depth-1+ext, -beta, -alpha, m.pos, childHash, ply+1, true)
			}
		}

		UndoCaptures(w.board, c, &rec)
		w.board.RemoveStone(m.pos)

		if w.stopped {
			return 0
		}

		if score > best {
			best = score
			bestMove = m.pos
			hasBest = true
		}
		if score >= beta {
			w.stats.BetaCutoffs++
			if i == 0 {
				w.stats.FirstMoveCutoffs++
			}
			if rec.Pairs == 0 && quiet && ply < maxPly {
				if !w.hasKiller[ply][0] || !w.killers[ply][0].Equals(m.pos) {
					w.killers[ply][1] = w.killers[ply][0]
					w.hasKiller[ply][1] = w.hasKiller[ply][0]
					w.killers[ply][0] = m.pos
					w.hasKiller[ply][0] = true
				}
				ci := colorIndex(c)
				w.history[ci][m.pos.Row][m.pos.Col] += int32(depth * depth)
				if lastMove.InBounds() {
					w.countermove[ci][lastMove.Row][lastMove.Col] = m.pos
					w.hasCounter[ci][lastMove.Row][lastMove.Col] = true
				}
			}
			bound = BoundLower
			break
		}
		if score > alpha {
			alpha = score
			bound = BoundExact
		}
	}

	w.tt.Store(hash, depth, best, bound, bestMove, hasBest)
	return best
}

// searchRoot runs one full-width iteration at the root. Root candidates
// keep the full width; no pruning or reductions apply here.
func (w *worker) searchRoot(c Cell, depth, alpha, beta int) (Pos, bool, int) {
	hash := w.zobrist.Hash(w.board, c)
	ttMove, hasTT := w.tt.BestMove(hash)

	moves := w.generateOrdered(w.board, c, ttMove, hasTT, 0, noPos, w.rootBuf)
	w.rootBuf = moves
	if len(moves) > maxRootMoves {
		moves = moves[:maxRootMoves]
	}

	best := -scoreInf
	bestMove := noPos
	hasBest := false

	for i, m := range moves {
		w.board.PlaceStone(m.pos, c)
		rec := ExecuteCaptures(w.board, m.pos, c)
		childHash := w.zobrist.childHash(hash, m.pos, c, &rec, w.board.Captures(c))

		var score int
		if i == 0 {
			score = -w.alphaBeta(c.Opponent(), depth-1, -beta, -alpha, m.pos, childHash, 1, true)
		} else {
			score = -w.alphaBeta(c.Opponent(), depth-1, -(alpha + 1), -alpha, m.pos, childHash, 1, true)
			if !w.stopped && score > alpha && score < beta {
				score = -w.alphaBeta(c.Opponent(), depth-1, -beta, -alpha, m.pos, childHash, 1, true)
			}
		}

		UndoCaptures(w.board, c, &rec)
		w.board.RemoveStone(m.pos)

		if w.stopped {
			// Scores from an aborted search are garbage; keep what the
			// completed prefix produced.
			break
		}
		if score > best {
			best = score
			bestMove = m.pos
			hasBest = true
		}
		if score > alpha {
			alpha = score
		}
	}

	if hasBest {
		w.tt.Store(hash, depth, best, BoundExact, bestMove, true)
	}
	return bestMove, hasBest, best
}

// iterate runs iterative deepening with aspiration windows and
// predictive time control. startDepth staggers lazy-SMP workers.
func (w *worker) iterate(c Cell, startDepth, maxDepth int, softDeadline time.Time) SearchResult {
	var result SearchResult

	minDepth := 10
	if w.board.StoneCount() <= 4 {
		minDepth = 8
	}

	prevDepthTime := time.Duration(0)
	prevScore := 0
	havePrev := false
	prevTerminalSign := 0

	if startDepth < 1 {
		startDepth = 1
	}
	for depth := startDepth; depth <= maxDepth; depth++ {
		if w.stopped || w.stop.Load() {
			break
		}
		w.halveHistory()
		depthStart := time.Now()

		alpha, beta := -scoreInf, scoreInf
		if depth >= 3 && havePrev && absInt(prevScore) < winThreshold {
			alpha, beta = prevScore-aspirationWindow, prevScore+aspirationWindow
		}

		move, hasMove, score := w.searchRoot(c, depth, alpha, beta)
		if !w.stopped && (score <= alpha || score >= beta) {
			// Fail outside the aspiration window: restart wide at once.
			move, hasMove, score = w.searchRoot(c, depth, -scoreInf, scoreInf)
		}
		if w.stopped {
			result.Stopped = true
			break
		}
		if !hasMove {
			break
		}

		result.Move = move
		result.HasMove = true
		result.Score = score
		result.Depth = depth
		prevScore = score
		havePrev = true

		terminalSign := 0
		if score >= winThreshold {
			terminalSign = 1
		} else if score <= -winThreshold {
			terminalSign = -1
		}
		// Two-depth confirmation: trust a terminal score only when two
		// consecutive iterations agree on its sign.
		if terminalSign != 0 && terminalSign == prevTerminalSign && depth >= minDepth {
			break
		}
		prevTerminalSign = terminalSign

		depthTime := time.Since(depthStart)
		if depth >= minDepth {
			remaining := time.Until(softDeadline)
			var estimate time.Duration
			if prevDepthTime > 0 && depthTime > 0 {
				bf := float64(depthTime) / float64(prevDepthTime)
				if bf < 1.5 {
					bf = 1.5
				}
				if bf > 5.0 {
					bf = 5.0
				}
				estimate = time.Duration(float64(depthTime) * bf)
			} else {
				estimate = depthTime * 3
			}
			if estimate > remaining {
				break
			}
		}
		prevDepthTime = depthTime
	}

	result.Stats = w.stats
	if w.stopped {
		result.Stopped = true
	}
	return result
}
