package main

// Zobrist hashing with O(1) incremental updates. Keys come from a fixed
// LCG seed, so hashes are reproducible across runs and processes.

const zobristSeed uint64 = 0x123456789ABCDEF0

type Zobrist struct {
	black      [TotalCells]uint64
	white      [TotalCells]uint64
	sideToggle uint64
	captures   [2][6]uint64
}

func NewZobrist() *Zobrist {
	z := &Zobrist{}
	seed := zobristSeed
	next := func() uint64 {
		seed = seed*6364136223846793005 + 1
		return seed
	}
	for i := 0; i < TotalCells; i++ {
		z.black[i] = next()
		z.white[i] = next()
	}
	z.sideToggle = next()
	for c := 0; c < 2; c++ {
		for n := 0; n < 6; n++ {
			z.captures[c][n] = next()
		}
	}
	return z
}

func (z *Zobrist) stoneKey(p Pos, c Cell) uint64 {
	if c == CellWhite {
		return z.white[p.Index()]
	}
	return z.black[p.Index()]
}

func capClamp(n int) int {
	if n > 5 {
		return 5
	}
	if n < 0 {
		return 0
	}
	return n
}

// Hash recomputes the full hash from scratch. The search path uses the
// incremental updates below; this is the reference they must agree with.
func (z *Zobrist) Hash(b *Board, sideToMove Cell) uint64 {
	var h uint64
	b.black.ForEach(func(p Pos) {
		h ^= z.black[p.Index()]
	})
	b.white.ForEach(func(p Pos) {
		h ^= z.white[p.Index()]
	})
	if sideToMove == CellBlack {
		h ^= z.sideToggle
	}
	h ^= z.captures[0][capClamp(b.Captures(CellBlack))]
	h ^= z.captures[1][capClamp(b.Captures(CellWhite))]
	return h
}

// UpdatePlace folds one placement into the hash and flips the side to
// move. XOR is self-inverse, so removal uses the same call.
func (z *Zobrist) UpdatePlace(h uint64, p Pos, c Cell) uint64 {
	return h ^ z.stoneKey(p, c) ^ z.sideToggle
}

// UpdateCapture removes a captured stone from the hash without touching
// the side-to-move component.
func (z *Zobrist) UpdateCapture(h uint64, p Pos, c Cell) uint64 {
	return h ^ z.stoneKey(p, c)
}

// UpdateCaptureCount swaps the capture-counter component of the hash
// from oldCount to newCount for one colour.
func (z *Zobrist) UpdateCaptureCount(h uint64, c Cell, oldCount, newCount int) uint64 {
	ci := colorIndex(c)
	return h ^ z.captures[ci][capClamp(oldCount)] ^ z.captures[ci][capClamp(newCount)]
}

// ToggleSide flips only the side to move, used by null-move search.
func (z *Zobrist) ToggleSide(h uint64) uint64 {
	return h ^ z.sideToggle
}

// childHash applies a full make (placement + captures + counter) to the
// parent hash in O(1) per removed stone.
func (z *Zobrist) childHash(h uint64, p Pos, c Cell, rec *CaptureRecord, newCapCount int) uint64 {
	h = z.UpdatePlace(h, p, c)
	opp := c.Opponent()
	for i := 0; i < rec.Count; i++ {
		h = z.UpdateCapture(h, rec.Stones[i], opp)
	}
	if rec.Pairs > 0 {
		h = z.UpdateCaptureCount(h, c, newCapCount-rec.Pairs, newCapCount)
	}
	return h
}
