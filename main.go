package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type server struct {
	cfg      Config
	log      zerolog.Logger
	games    *GameManager
	hub      *Hub
	analyser *Engine
	upgrader websocket.Upgrader
}

type moveRequest struct {
	Row    int   `json:"row"`
	Col    int   `json:"col"`
	Player uint8 `json:"player"`
}

type analyseRequest struct {
	Cells         []uint8 `json:"cells"`
	BlackCaptures int     `json:"black_captures"`
	WhiteCaptures int     `json:"white_captures"`
	SideToMove    uint8   `json:"side_to_move"`
}

type moveStatsDTO struct {
	GameID             string  `json:"game_id,omitempty"`
	Row                int     `json:"row"`
	Col                int     `json:"col"`
	Notation           string  `json:"notation"`
	HasMove            bool    `json:"has_move"`
	Score              int     `json:"score"`
	Depth              int     `json:"depth"`
	Nodes              int64   `json:"nodes"`
	ElapsedMs          int64   `json:"elapsed_ms"`
	NPS                int64   `json:"nps"`
	TTUsagePct         int     `json:"tt_usage_pct"`
	FirstMoveCutoffPct float64 `json:"first_move_cutoff_pct"`
	Stage              string  `json:"stage"`
}

func moveResultDTO(gameID string, res MoveResult) moveStatsDTO {
	return moveStatsDTO{
		GameID:             gameID,
		Row:                res.Move.Row,
		Col:                res.Move.Col,
		Notation:           res.Move.Notation(),
		HasMove:            res.HasMove,
		Score:              res.Score,
		Depth:              res.Depth,
		Nodes:              res.Nodes,
		ElapsedMs:          res.ElapsedMs,
		NPS:                res.NPS,
		TTUsagePct:         res.TTUsagePct,
		FirstMoveCutoffPct: res.FirstMoveCutoffPct,
		Stage:              res.Stage.String(),
	}
}

func main() {
	cfg := LoadConfig()
	log := newLogger(cfg)

	srv := &server{
		cfg:      cfg,
		log:      log,
		games:    NewGameManager(cfg, log),
		hub:      NewHub(log),
		analyser: NewEngine(cfg.TTMegabytes, cfg.MaxDepth, cfg.TimeBudgetMs, log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", srv.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/games", srv.handleCreateGame)
		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", srv.handleGameState)
			r.Post("/move", srv.handleMove)
			r.Post("/reset", srv.handleReset)
			r.Delete("/", srv.handleDeleteGame)
		})
		r.Post("/analyse", srv.handleAnalyse)
	})
	r.Get("/ws/analytics", srv.handleAnalytics)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.hub.Close()
		return httpServer.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCreateGame(w http.ResponseWriter, _ *http.Request) {
	g := s.games.Create()
	writeJSON(w, http.StatusCreated, g.Snapshot())
}

func (s *server) handleGameState(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

func (s *server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	s.games.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	g.ResetBoard()
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// handleMove applies the human move, then plays the engine's reply and
// broadcasts its statistics.
func (s *server) handleMove(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := g.ApplyMove(Pos{Row: req.Row, Col: req.Col}, Cell(req.Player)); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errGameOver) || errors.Is(err, errWrongTurn) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	snapshot := g.Snapshot()
	if snapshot.Winner == uint8(CellEmpty) {
		if _, res, err := g.EngineMove(); err == nil {
			s.hub.Broadcast(moveResultDTO(g.ID, res))
		} else if !errors.Is(err, errGameOver) {
			s.log.Error().Err(err).Str("game_id", g.ID).Msg("engine move failed")
		}
		snapshot = g.Snapshot()
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleAnalyse runs the stateless engine on an arbitrary position.
func (s *server) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	var req analyseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	side := Cell(req.SideToMove)
	if side != CellBlack && side != CellWhite {
		writeError(w, http.StatusBadRequest, errors.New("side_to_move must be 1 (black) or 2 (white)"))
		return
	}
	board, err := boardFromCells(req.Cells, req.BlackCaptures, req.WhiteCaptures)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := s.analyser.GetMoveWithStats(board, side)
	dto := moveResultDTO("", res)
	s.hub.Broadcast(dto)
	writeJSON(w, http.StatusOK, dto)
}

func (s *server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.hub.Register(conn)
	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
