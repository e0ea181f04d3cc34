package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dimaq12/minesweeper/game"
	"github.com/dimaq12/minesweeper/models"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the live game over a small JSON API.
type Server struct {
	service *game.MinesweeperService
	log     logrus.FieldLogger
}

func NewServer(service *game.MinesweeperService, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{service: service, log: log}
}

type newGameRequest struct {
	Difficulty string `json:"difficulty"`
}

type cellRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the API routes wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/get_game_state", s.HandleGetState)
	mux.HandleFunc("POST /api/new_game", s.HandleNewGame)
	mux.HandleFunc("POST /api/flag_cell", s.HandleFlagCell)
	mux.HandleFunc("POST /api/reveal_cell", s.HandleRevealCell)
	return s.logRequests(mux)
}

func (s *Server) HandleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.State())
}

func (s *Server) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	board, err := s.service.NewGame(req.Difficulty)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) HandleFlagCell(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, s.service.Flag)
}

func (s *Server) HandleRevealCell(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, s.service.Reveal)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, move func(row, col int) (models.DisplayBoard, error)) {
	var req cellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Row == nil || req.Col == nil {
		writeError(w, http.StatusBadRequest, errors.New("row and col are required"))
		return
	}
	if *req.Row < 0 || *req.Col < 0 {
		writeError(w, http.StatusBadRequest, errors.New("row and col must not be negative"))
		return
	}

	board, err := move(*req.Row, *req.Col)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidDifficulty):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrGameNotOngoing):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request served")
		}
	})
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves the API on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", ln.Addr().String()).Info("starting server")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
