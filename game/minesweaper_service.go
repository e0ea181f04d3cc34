package game

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dimaq12/minesweeper/models"
)

// BoardUpdateEvent names the notification sent to observers after every move.
const BoardUpdateEvent = "board:update"

// BoardObserver receives the board after every successful move or new game.
type BoardObserver func(models.DisplayBoard)

// MinesweeperService owns the one live game shared by the terminal UI and the
// HTTP API. All reads and moves are serialized by mu, including a whole reveal
// cascade, so nobody sees a half-applied move or a half-replaced board.
type MinesweeperService struct {
	mu   sync.Mutex
	game *models.Game

	observersMu    sync.Mutex
	observers      map[int]BoardObserver
	nextObserverID int

	log logrus.FieldLogger
}

func NewMinesweeperService(game *models.Game, log logrus.FieldLogger) *MinesweeperService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MinesweeperService{
		game:      game,
		observers: make(map[int]BoardObserver),
		log:       log,
	}
}

// NewGame starts a game for a difficulty name ("easy", "medium", "hard").
// Unknown names fail with models.ErrInvalidDifficulty and keep the current game.
func (s *MinesweeperService) NewGame(difficulty string) (models.DisplayBoard, error) {
	d, err := models.ParseDifficulty(difficulty)
	if err != nil {
		s.log.WithField("difficulty", difficulty).Warn("rejected new game")
		return models.DisplayBoard{}, err
	}
	return s.NewGameWithDifficulty(d)
}

// NewGameWithDifficulty replaces the live game with a freshly generated one.
func (s *MinesweeperService) NewGameWithDifficulty(d models.Difficulty) (models.DisplayBoard, error) {
	g, err := models.NewGame(d)
	if err != nil {
		return models.DisplayBoard{}, err
	}
	return s.ReplaceGame(g), nil
}

// ReplaceGame swaps in g as the live game and announces it.
func (s *MinesweeperService) ReplaceGame(g *models.Game) models.DisplayBoard {
	s.mu.Lock()
	s.game = g
	board := g.DisplayBoard()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"difficulty": g.Difficulty(),
		"rows":       g.Rows(),
		"cols":       g.Cols(),
		"mines":      g.MineCount(),
	}).Info("new game")
	s.notify(board)
	return board
}

// State returns the current board.
func (s *MinesweeperService) State() models.DisplayBoard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.DisplayBoard()
}

// Flag toggles the flag at row, col. When the game is over it returns
// models.ErrGameNotOngoing together with the unchanged board.
func (s *MinesweeperService) Flag(row, col int) (models.DisplayBoard, error) {
	return s.move("flag", row, col, (*models.Game).Flag)
}

// Reveal opens the cell at row, col. When the game is over it returns
// models.ErrGameNotOngoing together with the unchanged board.
func (s *MinesweeperService) Reveal(row, col int) (models.DisplayBoard, error) {
	return s.move("reveal", row, col, (*models.Game).Reveal)
}

func (s *MinesweeperService) move(name string, row, col int, apply func(*models.Game, int, int) error) (models.DisplayBoard, error) {
	fields := logrus.Fields{"move": name, "row": row, "col": col}

	// Apply the move and take the projection under one lock so the board we
	// return and announce is exactly the one the move produced.
	s.mu.Lock()
	before := s.game.State()
	err := apply(s.game, row, col)
	board := s.game.DisplayBoard()
	s.mu.Unlock()

	// A move on a finished game changes nothing, so there is nothing to announce.
	if err != nil {
		s.log.WithFields(fields).WithError(err).Debug("move rejected")
		return board, err
	}

	// Log the transition to Won or Lost once, with the time it took.
	entry := s.log.WithFields(fields).WithField("game_state", board.GameState)
	if before != board.GameState {
		var elapsed int64
		if board.TimeElapsed != nil {
			elapsed = *board.TimeElapsed
		}
		entry.WithField("elapsed_ms", elapsed).Info("game finished")
	} else {
		entry.Debug("move applied")
	}

	s.notify(board)
	return board, nil
}

// Subscribe registers fn for BoardUpdateEvent notifications. The returned
// function removes the subscription.
func (s *MinesweeperService) Subscribe(fn BoardObserver) (unsubscribe func()) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()

	id := s.nextObserverID
	s.nextObserverID++
	s.observers[id] = fn

	return func() {
		s.observersMu.Lock()
		defer s.observersMu.Unlock()
		delete(s.observers, id)
	}
}

// notify runs outside mu. Observer failures are logged and never reach the caller.
func (s *MinesweeperService) notify(board models.DisplayBoard) {
	// Copy the observers so one can unsubscribe while being notified.
	s.observersMu.Lock()
	observers := make([]BoardObserver, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.observersMu.Unlock()

	for _, fn := range observers {
		s.deliver(fn, board)
	}
}

func (s *MinesweeperService) deliver(fn BoardObserver, board models.DisplayBoard) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"event": BoardUpdateEvent,
				"panic": r,
			}).Error("board observer failed")
		}
	}()
	fn(board)
}
