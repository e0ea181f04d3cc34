package game

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/dimaq12/minesweeper/models"
)

// GameController is the terminal front end: it turns keys on the board table
// into service calls and keeps the table in sync with the live game.
type GameController struct {
	service  *MinesweeperService
	renderer *Renderer
	app      *tview.Application
	log      logrus.FieldLogger
}

func NewGameController(service *MinesweeperService, log logrus.FieldLogger) *GameController {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &GameController{
		service:  service,
		renderer: NewRenderer(),
		app:      tview.NewApplication(),
		log:      log,
	}
	c.renderer.boardTable.SetInputCapture(c.HandleKey)
	c.renderer.DrawBoard(service.State())
	return c
}

// Run shows the board until ctx is cancelled or the player quits. Moves made
// through other adapters are picked up from the service's board updates.
func (c *GameController) Run(ctx context.Context) error {
	unsubscribe := c.service.Subscribe(func(board models.DisplayBoard) {
		c.app.QueueUpdateDraw(func() {
			c.renderer.DrawBoard(board)
		})
	})
	defer unsubscribe()

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			// Stop is a no-op until Run has a screen, so go through the event loop.
			c.app.QueueUpdate(c.TerminateGame)
		case <-stopped:
		}
	}()

	c.app.SetRoot(c.renderer.Root(), true)
	return c.app.Run()
}

// SetScreen makes Run draw on screen instead of the terminal.
func (c *GameController) SetScreen(screen tcell.Screen) {
	c.app.SetScreen(screen)
}

func (c *GameController) TerminateGame() {
	c.log.Info("terminating the game")
	c.app.Stop()
}

// HandleKey dispatches a key pressed on the board. Navigation keys fall
// through to the table.
func (c *GameController) HandleKey(event *tcell.EventKey) *tcell.EventKey {
	row, col := c.renderer.boardTable.GetSelection()

	switch event.Key() {
	case tcell.KeyEnter:
		c.apply(c.service.Reveal(row, col))
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case ' ':
			c.apply(c.service.Reveal(row, col))
		case 'f', 'F':
			c.apply(c.service.Flag(row, col))
		case '1':
			c.apply(c.service.NewGameWithDifficulty(models.Easy))
		case '2':
			c.apply(c.service.NewGameWithDifficulty(models.Medium))
		case '3':
			c.apply(c.service.NewGameWithDifficulty(models.Hard))
		case 'q', 'Q':
			c.TerminateGame()
		default:
			return event
		}
		return nil
	}
	return event
}

func (c *GameController) apply(board models.DisplayBoard, err error) {
	switch {
	case err == nil:
		c.renderer.DrawBoard(board)
	case errors.Is(err, models.ErrGameNotOngoing):
		c.renderer.SetMessage(board, "game over, press 1, 2 or 3 for a new game")
	default:
		c.log.WithError(err).Error("move failed")
		c.renderer.SetMessage(c.service.State(), err.Error())
	}
}
