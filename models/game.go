package models

import (
	"fmt"
	"math/rand/v2"
	"time"
)

type cellState int

const (
	hidden cellState = iota
	revealed
	flagged
)

type cell struct {
	isMine      bool
	state       cellState
	nearbyMines int
}

type position struct {
	row, col int
}

// Game is a single minesweeper game: the board, its mines and the game state.
// A Game is not safe for concurrent use; callers serialize access.
type Game struct {
	difficulty Difficulty
	board      [][]cell
	startedAt  time.Time
	mineCount  int
	state      GameState
}

// NewGame creates a game for d with mines placed at random.
func NewGame(d Difficulty) (*Game, error) {
	return NewGameWithRand(d, nil)
}

// NewGameWithRand is like NewGame but draws mine positions from r.
// A nil r uses the package-level source.
func NewGameWithRand(d Difficulty, r *rand.Rand) (*Game, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}
	rows, cols, mines := d.Dimensions()

	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}

	g := newGame(d, rows, cols)
	g.placeMinesRandomly(mines, intN)
	g.countNearbyMines()
	return g, nil
}

// NewGameFromLayout creates a game whose mines are exactly the true entries of
// mines. The board takes the layout's dimensions; d is only carried as a label.
func NewGameFromLayout(d Difficulty, mines [][]bool) (*Game, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}
	if len(mines) == 0 || len(mines[0]) == 0 {
		return nil, fmt.Errorf("%w: empty board", ErrInvalidLayout)
	}
	cols := len(mines[0])
	for row, line := range mines {
		if len(line) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidLayout, row, len(line), cols)
		}
	}

	g := newGame(d, len(mines), cols)
	for row, line := range mines {
		for col, isMine := range line {
			if isMine {
				g.board[row][col].isMine = true
				g.mineCount++
			}
		}
	}
	g.countNearbyMines()
	return g, nil
}

func newGame(d Difficulty, rows, cols int) *Game {
	board := make([][]cell, rows)
	for i := range board {
		board[i] = make([]cell, cols)
	}
	return &Game{
		difficulty: d,
		board:      board,
		startedAt:  time.Now(),
		state:      Ongoing,
	}
}

// placeMinesRandomly picks uniform random cells until count distinct cells are mined.
func (g *Game) placeMinesRandomly(count int, intN func(int) int) {
	rows, cols := g.Rows(), g.Cols()
	placed := 0
	for placed < count && placed < rows*cols {
		// Draw a uniformly random cell; a cell that already holds a mine is
		// rejected and we draw again.
		row, col := intN(rows), intN(cols)
		if g.board[row][col].isMine {
			continue
		}
		g.board[row][col].isMine = true
		placed++
	}
	g.mineCount = placed
}

func (g *Game) countNearbyMines() {
	for row := range g.board {
		for col := range g.board[row] {
			// Mines keep a zero count; only safe cells show a number.
			if g.board[row][col].isMine {
				continue
			}
			nearby := 0
			// deltaRow and deltaCol walk the row above, the same row and the row
			// below, and the column to the left, the same column and the right.
			for deltaRow := -1; deltaRow <= 1; deltaRow++ {
				for deltaCol := -1; deltaCol <= 1; deltaCol++ {
					// Skip the cell itself.
					if deltaRow == 0 && deltaCol == 0 {
						continue
					}
					// Neighbours past the edge of the board are not counted.
					r, c := row+deltaRow, col+deltaCol
					if g.inBounds(r, c) && g.board[r][c].isMine {
						nearby++
					}
				}
			}
			g.board[row][col].nearbyMines = nearby
		}
	}
}

// inBounds uses the first row's length as the column bound; boards are rectangular.
func (g *Game) inBounds(row, col int) bool {
	return row >= 0 && row < len(g.board) && col >= 0 && col < len(g.board[0])
}

func (g *Game) Difficulty() Difficulty { return g.difficulty }
func (g *Game) Rows() int              { return len(g.board) }
func (g *Game) Cols() int              { return len(g.board[0]) }
func (g *Game) MineCount() int         { return g.mineCount }
func (g *Game) State() GameState       { return g.state }
func (g *Game) StartedAt() time.Time   { return g.startedAt }

// FlagCell toggles the flag on a hidden cell. Revealed and out-of-range cells are left alone.
func (g *Game) FlagCell(row, col int) {
	if !g.inBounds(row, col) {
		return
	}
	c := &g.board[row][col]
	switch c.state {
	case hidden:
		c.state = flagged
	case flagged:
		c.state = hidden
	}
}

// RevealCell opens a hidden cell. Opening a mine loses the game; opening a cell
// with no nearby mines opens its neighbours too, and so on through the connected
// zero region.
func (g *Game) RevealCell(row, col int) {
	// pending holds the cells still to open, starting with the clicked one.
	pending := []position{{row, col}}
	for len(pending) > 0 {
		// Pop the most recently queued cell.
		p := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		// Cells off the board, already revealed or flagged are skipped. This is
		// also what visits each cell at most once.
		if !g.inBounds(p.row, p.col) {
			continue
		}
		c := &g.board[p.row][p.col]
		if c.state != hidden {
			continue
		}
		c.state = revealed

		// A mine ends the game and opens nothing around it.
		if c.isMine {
			g.state = Lost
			continue
		}
		// A cell with no nearby mines queues all 8 neighbours, which spreads
		// through the connected empty region up to its numbered border.
		if c.nearbyMines == 0 {
			pending = append(pending, neighbours(p)...)
		}
	}
}

// neighbours clamps at zero instead of skipping, so an edge cell lists itself
// among its neighbours. The revisit is absorbed because the cell is already revealed.
func neighbours(p position) []position {
	up, left := saturatingDec(p.row), saturatingDec(p.col)
	down, right := p.row+1, p.col+1
	return []position{
		{up, left}, {up, p.col}, {up, right},
		{p.row, left}, {p.row, right},
		{down, left}, {down, p.col}, {down, right},
	}
}

func saturatingDec(v int) int {
	if v <= 0 {
		return 0
	}
	return v - 1
}

// ValidateBoard moves an ongoing game to Won once the cells left unrevealed
// number exactly the mines on the board.
func (g *Game) ValidateBoard() {
	if g.state != Ongoing {
		return
	}
	unrevealed := 0
	for _, line := range g.board {
		for _, c := range line {
			if c.state == hidden || c.state == flagged {
				unrevealed++
			}
		}
	}
	if unrevealed == g.mineCount {
		g.state = Won
	}
}

// Flag toggles a flag and re-evaluates the game. It fails with ErrGameNotOngoing
// once the game is over.
func (g *Game) Flag(row, col int) error {
	if g.state != Ongoing {
		return ErrGameNotOngoing
	}
	g.FlagCell(row, col)
	g.ValidateBoard()
	return nil
}

// Reveal opens a cell and re-evaluates the game. It fails with ErrGameNotOngoing
// once the game is over.
func (g *Game) Reveal(row, col int) error {
	if g.state != Ongoing {
		return ErrGameNotOngoing
	}
	g.RevealCell(row, col)
	g.ValidateBoard()
	return nil
}
