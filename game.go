package main

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Game session layer: one engine per game so the transposition table
// keeps its contents across turns.

var (
	errGameNotFound = errors.New("game not found")
	errGameOver     = errors.New("game is over")
	errIllegalMove  = errors.New("illegal move")
	errWrongTurn    = errors.New("not this player's turn")
)

type HistoryEntry struct {
	Move     Pos    `json:"move"`
	Player   uint8  `json:"player"`
	Captured []Pos  `json:"captured,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Depth    int    `json:"depth,omitempty"`
	Score    int    `json:"score,omitempty"`
}

type Game struct {
	mu       sync.Mutex
	ID       string
	board    *Board
	toMove   Cell
	winner   Cell
	lastMove Pos
	engine   *Engine
	history  []HistoryEntry
}

type GameManager struct {
	mu    sync.RWMutex
	games map[string]*Game
	cfg   Config
	log   zerolog.Logger
}

func NewGameManager(cfg Config, log zerolog.Logger) *GameManager {
	return &GameManager{
		games: make(map[string]*Game),
		cfg:   cfg,
		log:   log,
	}
}

func (m *GameManager) Create() *Game {
	g := &Game{
		ID:       uuid.NewString(),
		board:    NewBoard(),
		toMove:   CellBlack,
		lastMove: noPos,
		engine:   NewEngine(m.cfg.TTMegabytes, m.cfg.MaxDepth, m.cfg.TimeBudgetMs, m.log),
	}
	m.mu.Lock()
	m.games[g.ID] = g
	m.mu.Unlock()
	m.log.Info().Str("game_id", g.ID).Msg("game created")
	return g
}

func (m *GameManager) Get(id string) (*Game, error) {
	m.mu.RLock()
	g, ok := m.games[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errGameNotFound
	}
	return g, nil
}

func (m *GameManager) Delete(id string) {
	m.mu.Lock()
	delete(m.games, id)
	m.mu.Unlock()
}

// ApplyMove plays a human move for the given colour.
func (g *Game) ApplyMove(p Pos, c Cell) (HistoryEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.winner != CellEmpty {
		return HistoryEntry{}, errGameOver
	}
	if c != g.toMove {
		return HistoryEntry{}, errWrongTurn
	}
	if !IsValidMove(g.board, p, c) {
		return HistoryEntry{}, errIllegalMove
	}
	return g.playLocked(p, c, HistoryEntry{Move: p, Player: uint8(c)}), nil
}

// EngineMove asks the engine for the side to move and plays its answer.
func (g *Game) EngineMove() (HistoryEntry, MoveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.winner != CellEmpty {
		return HistoryEntry{}, MoveResult{}, errGameOver
	}
	side := g.toMove
	res := g.engine.GetMoveWithStats(g.board, side)
	if !res.HasMove {
		return HistoryEntry{}, res, errGameOver
	}
	entry := g.playLocked(res.Move, side, HistoryEntry{
		Move:   res.Move,
		Player: uint8(side),
		Stage:  res.Stage.String(),
		Depth:  res.Depth,
		Score:  res.Score,
	})
	return entry, res, nil
}

func (g *Game) playLocked(p Pos, c Cell, entry HistoryEntry) HistoryEntry {
	g.board.PlaceStone(p, c)
	rec := ExecuteCaptures(g.board, p, c)
	for i := 0; i < rec.Count; i++ {
		entry.Captured = append(entry.Captured, rec.Stones[i])
	}
	g.lastMove = p
	g.winner = CheckWinner(g.board, p)
	g.toMove = c.Opponent()
	g.engine.Reset()
	g.history = append(g.history, entry)
	return entry
}

func (g *Game) ResetBoard() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.board = NewBoard()
	g.toMove = CellBlack
	g.winner = CellEmpty
	g.lastMove = noPos
	g.history = nil
	g.engine.Reset()
	g.engine.ClearCache()
}

// Snapshot returns a consistent copy of the public game state.
func (g *Game) Snapshot() GameSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GameSnapshot{
		ID:            g.ID,
		Cells:         cellGrid(g.board),
		ToMove:        uint8(g.toMove),
		Winner:        uint8(g.winner),
		BlackCaptures: g.board.Captures(CellBlack),
		WhiteCaptures: g.board.Captures(CellWhite),
		History:       append([]HistoryEntry(nil), g.history...),
	}
}

type GameSnapshot struct {
	ID            string         `json:"id"`
	Cells         []uint8        `json:"cells"`
	ToMove        uint8          `json:"to_move"`
	Winner        uint8          `json:"winner"`
	BlackCaptures int            `json:"black_captures"`
	WhiteCaptures int            `json:"white_captures"`
	History       []HistoryEntry `json:"history"`
}
