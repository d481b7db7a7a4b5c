package main

import (
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Lazy-SMP coordinator. Workers share the transposition table and a
// stop flag; diversity comes from staggered starting depths and each
// worker's private ordering tables. No work stealing.

const (
	maxWorkers   = 8
	hardBudgetMs = 150
	minBudgetMs  = 300
)

// Searcher owns the state that survives across moves: the shared TT,
// the Zobrist keys, and the worker pool configuration. It lives for the
// whole game so the table keeps paying off between turns.
type Searcher struct {
	tt      *TranspositionTable
	zobrist *Zobrist
	workers []*worker
	nworkers int
	stop    atomic.Bool
}

func NewSearcher(ttMegabytes, workers int) *Searcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return &Searcher{
		tt:       NewTranspositionTable(ttMegabytes),
		zobrist:  NewZobrist(),
		nworkers: workers,
	}
}

// Reset drops worker-local ordering tables but keeps the TT.
func (s *Searcher) Reset() {
	s.workers = nil
}

func (s *Searcher) ClearTT() {
	s.tt.Clear()
}

// softBudget scales the configured budget down in the trivial opening
// and floors the result.
func softBudget(b *Board, baseMs int64) int64 {
	pct := int64(100)
	switch stones := b.StoneCount(); {
	case stones <= 2:
		pct = 30
	case stones <= 4:
		pct = 60
	}
	ms := baseMs * pct / 100
	if ms < minBudgetMs {
		ms = minBudgetMs
	}
	return ms
}

// SearchTimed runs the worker pool against the time budget and merges
// the per-worker results: deepest completed iteration wins, ties broken
// by score. Node counts and quality counters are summed.
func (s *Searcher) SearchTimed(b *Board, c Cell, maxDepth int, baseBudgetMs int64) SearchResult {
	soft := softBudget(b, baseBudgetMs)
	start := time.Now()
	softDeadline := start.Add(time.Duration(soft) * time.Millisecond)
	hardDeadline := softDeadline.Add(hardBudgetMs * time.Millisecond)

	s.stop.Store(false)

	n := s.nworkers
	if len(s.workers) != n {
		s.workers = make([]*worker, n)
		for i := range s.workers {
			s.workers[i] = newWorker(b, s.zobrist, s.tt, &s.stop)
		}
	}

	results := make([]SearchResult, n)
	watchdog := time.AfterFunc(time.Until(hardDeadline), func() {
		s.stop.Store(true)
	})
	defer watchdog.Stop()

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		wk := s.workers[i]
		wk.board = b.Clone()
		wk.stats = SearchStats{}
		wk.stopped = false
		wk.hardDeadline = hardDeadline
		wk.clearTables()
		g.Go(func() error {
			results[i] = wk.iterate(c, 1+i, maxDepth, softDeadline)
			return nil
		})
	}
	_ = g.Wait()
	s.stop.Store(true)

	var merged SearchResult
	for _, r := range results {
		merged.Stats.add(r.Stats)
		if !r.HasMove {
			continue
		}
		better := !merged.HasMove ||
			r.Depth > merged.Depth ||
			(r.Depth == merged.Depth && r.Score > merged.Score)
		if better {
			merged.Move = r.Move
			merged.HasMove = true
			merged.Score = r.Score
			merged.Depth = r.Depth
		}
	}
	return merged
}
