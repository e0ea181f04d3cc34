package models

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
	"time"
)

func mustLayout(t *testing.T, mines [][]bool) *Game {
	t.Helper()
	g, err := NewGameFromLayout(Easy, mines)
	if err != nil {
		t.Fatalf("new game from layout: %v", err)
	}
	return g
}

func countMines(g *Game) int {
	n := 0
	for _, line := range g.board {
		for _, c := range line {
			if c.isMine {
				n++
			}
		}
	}
	return n
}

func revealedPositions(g *Game) map[position]bool {
	out := make(map[position]bool)
	for row, line := range g.board {
		for col, c := range line {
			if c.state == revealed {
				out[position{row, col}] = true
			}
		}
	}
	return out
}

func TestNewGameDimensionsAndMines(t *testing.T) {
	tests := []struct {
		difficulty        Difficulty
		rows, cols, mines int
	}{
		{Easy, 9, 9, 10},
		{Medium, 16, 16, 40},
		{Hard, 16, 30, 99},
	}
	for _, tt := range tests {
		t.Run(tt.difficulty.String(), func(t *testing.T) {
			g, err := NewGameWithRand(tt.difficulty, rand.New(rand.NewPCG(7, 11)))
			if err != nil {
				t.Fatalf("new game: %v", err)
			}
			if g.Rows() != tt.rows || g.Cols() != tt.cols {
				t.Fatalf("expected %dx%d board, got %dx%d", tt.rows, tt.cols, g.Rows(), g.Cols())
			}
			for row, line := range g.board {
				if len(line) != tt.cols {
					t.Fatalf("row %d has %d columns, want %d", row, len(line), tt.cols)
				}
			}
			if got := countMines(g); got != tt.mines {
				t.Fatalf("expected %d mines, got %d", tt.mines, got)
			}
			if g.MineCount() != tt.mines {
				t.Fatalf("expected mine count %d, got %d", tt.mines, g.MineCount())
			}
			if g.State() != Ongoing {
				t.Fatalf("expected ongoing game, got %v", g.State())
			}
			if view := g.DisplayBoard(); view.TimeElapsed != nil {
				t.Fatalf("expected no elapsed time, got %d", *view.TimeElapsed)
			}
		})
	}
}

func TestNewGameAdjacencyCounts(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		g, err := NewGameWithRand(d, rand.New(rand.NewPCG(uint64(d), 99)))
		if err != nil {
			t.Fatalf("new game: %v", err)
		}
		for row, line := range g.board {
			for col, c := range line {
				if c.isMine {
					continue
				}
				want := 0
				for r := row - 1; r <= row+1; r++ {
					for cc := col - 1; cc <= col+1; cc++ {
						if (r != row || cc != col) && r >= 0 && r < g.Rows() && cc >= 0 && cc < g.Cols() && g.board[r][cc].isMine {
							want++
						}
					}
				}
				if c.nearbyMines != want {
					t.Fatalf("%s: cell (%d,%d) counts %d mines, want %d", d, row, col, c.nearbyMines, want)
				}
			}
		}
	}
}

func TestNewGameWithRandIsDeterministic(t *testing.T) {
	a, err := NewGameWithRand(Medium, rand.New(rand.NewPCG(3, 5)))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	b, err := NewGameWithRand(Medium, rand.New(rand.NewPCG(3, 5)))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if !reflect.DeepEqual(a.board, b.board) {
		t.Fatal("expected identical boards for identical seeds")
	}
}

func TestNewGameRejectsUnknownDifficulty(t *testing.T) {
	if _, err := NewGame(Difficulty(42)); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestNewGameFromLayoutRejectsBadLayouts(t *testing.T) {
	tests := map[string][][]bool{
		"empty":       nil,
		"empty row":   {{}},
		"ragged rows": {{false, false}, {false}},
	}
	for name, layout := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewGameFromLayout(Easy, layout); !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("expected ErrInvalidLayout, got %v", err)
			}
		})
	}
}

func TestRevealCornerOfSafeBoardWins(t *testing.T) {
	g := mustLayout(t, [][]bool{
		{false, false, false},
		{false, false, false},
		{false, false, false},
	})

	if err := g.Reveal(0, 0); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if got := len(revealedPositions(g)); got != 9 {
		t.Fatalf("expected all 9 cells revealed, got %d", got)
	}
	if g.State() != Won {
		t.Fatalf("expected won game, got %v", g.State())
	}
}

func TestRevealFloodFillStopsAtNumbers(t *testing.T) {
	// A wall of mines in column 2 splits the board in two.
	g := mustLayout(t, [][]bool{
		{false, false, true, false, false},
		{false, false, true, false, false},
		{false, false, true, false, false},
		{false, false, true, false, false},
	})

	g.RevealCell(3, 0)

	got := revealedPositions(g)
	if len(got) != 8 {
		t.Fatalf("expected 8 revealed cells, got %d: %v", len(got), got)
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 2; col++ {
			if !got[position{row, col}] {
				t.Fatalf("expected (%d,%d) revealed", row, col)
			}
		}
	}
	if g.State() != Ongoing {
		t.Fatalf("expected ongoing game, got %v", g.State())
	}

	view := g.DisplayBoard()
	wantCounts := map[position]int{{0, 0}: 0, {0, 1}: 2, {1, 1}: 3, {2, 1}: 3, {3, 1}: 2}
	for p, want := range wantCounts {
		n, ok := view.Cells[p.row][p.col].Count()
		if !ok || n != want {
			t.Fatalf("cell (%d,%d): expected Revealed(%d), got %v %d", p.row, p.col, want, view.Cells[p.row][p.col].Kind(), n)
		}
	}
}

func TestRevealMineLosesWithoutCascade(t *testing.T) {
	g := mustLayout(t, [][]bool{
		{true, false, false},
		{false, false, false},
		{false, false, false},
	})

	if err := g.Reveal(0, 0); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if g.State() != Lost {
		t.Fatalf("expected lost game, got %v", g.State())
	}
	view := g.DisplayBoard()
	if view.Cells[0][0].Kind() != CellBomb {
		t.Fatalf("expected bomb at (0,0), got %v", view.Cells[0][0].Kind())
	}
	if got := len(revealedPositions(g)); got != 1 {
		t.Fatalf("expected only the mine revealed, got %d cells", got)
	}
}

func TestValidateBoardWinsWhenAllSafeCellsRevealed(t *testing.T) {
	g, err := NewGameWithRand(Easy, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	for row := range g.board {
		for col := range g.board[row] {
			if g.board[row][col].isMine {
				g.board[row][col].state = flagged
			} else {
				g.board[row][col].state = revealed
			}
		}
	}

	g.ValidateBoard()
	if g.State() != Won {
		t.Fatalf("expected won game, got %v", g.State())
	}
}

func TestFlagDetectsWinLeftByUnvalidatedReveals(t *testing.T) {
	g := mustLayout(t, [][]bool{
		{true, false, false},
		{false, false, true},
	})
	for _, p := range []position{{0, 1}, {0, 2}, {1, 0}, {1, 1}} {
		g.RevealCell(p.row, p.col)
	}
	if g.State() != Ongoing {
		t.Fatalf("expected ongoing game before validation, got %v", g.State())
	}

	if err := g.Flag(0, 0); err != nil {
		t.Fatalf("flag: %v", err)
	}
	if g.State() != Won {
		t.Fatalf("expected flag to validate the board into a win, got %v", g.State())
	}
}

func TestValidateBoardKeepsTerminalState(t *testing.T) {
	g := mustLayout(t, [][]bool{{true, false}})
	g.RevealCell(0, 0)
	g.board[0][1].state = revealed

	g.ValidateBoard()
	if g.State() != Lost {
		t.Fatalf("expected lost to stick, got %v", g.State())
	}
}

func TestFlagToggle(t *testing.T) {
	g := mustLayout(t, [][]bool{{true, false}, {false, false}})

	g.FlagCell(1, 1)
	if g.board[1][1].state != flagged {
		t.Fatalf("expected flagged cell, got %v", g.board[1][1].state)
	}
	g.FlagCell(1, 1)
	if g.board[1][1].state != hidden {
		t.Fatalf("expected hidden cell, got %v", g.board[1][1].state)
	}
}

func TestFlaggedCellIsNotRevealed(t *testing.T) {
	g := mustLayout(t, [][]bool{{true, false}, {false, false}})
	g.FlagCell(0, 0)

	g.RevealCell(0, 0)
	if g.State() != Ongoing {
		t.Fatalf("expected ongoing game, got %v", g.State())
	}
	if g.board[0][0].state != flagged {
		t.Fatalf("expected flag to survive reveal, got %v", g.board[0][0].state)
	}
}

func TestMovesOnRevealedCellAreNoops(t *testing.T) {
	g := mustLayout(t, [][]bool{
		{true, false, false},
		{false, false, false},
		{false, false, true},
	})
	g.RevealCell(1, 1)
	now := time.Now()
	before := g.Display(now)

	g.FlagCell(1, 1)
	g.RevealCell(1, 1)

	if after := g.Display(now); !reflect.DeepEqual(before, after) {
		t.Fatalf("expected unchanged board, got %+v", after)
	}
}

func TestOutOfBoundsMovesAreNoops(t *testing.T) {
	g := mustLayout(t, [][]bool{
		{true, false, false},
		{false, false, false},
	})
	now := time.Now()
	before := g.Display(now)

	coords := []position{{2, 0}, {0, 3}, {-1, 0}, {0, -1}, {100, 100}}
	for _, p := range coords {
		if err := g.Reveal(p.row, p.col); err != nil {
			t.Fatalf("reveal (%d,%d): %v", p.row, p.col, err)
		}
		if err := g.Flag(p.row, p.col); err != nil {
			t.Fatalf("flag (%d,%d): %v", p.row, p.col, err)
		}
	}

	if after := g.Display(now); !reflect.DeepEqual(before, after) {
		t.Fatalf("expected unchanged board, got %+v", after)
	}
}

func TestMovesRejectedAfterGameEnds(t *testing.T) {
	g := mustLayout(t, [][]bool{{true, false}, {false, false}})
	if err := g.Reveal(0, 0); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	if err := g.Reveal(1, 1); !errors.Is(err, ErrGameNotOngoing) {
		t.Fatalf("expected ErrGameNotOngoing from reveal, got %v", err)
	}
	if err := g.Flag(1, 1); !errors.Is(err, ErrGameNotOngoing) {
		t.Fatalf("expected ErrGameNotOngoing from flag, got %v", err)
	}
	if g.board[1][1].state != hidden {
		t.Fatalf("expected rejected moves to leave the board alone, got %v", g.board[1][1].state)
	}
}

func TestNeighboursSaturateAtZero(t *testing.T) {
	got := neighbours(position{0, 0})
	self := 0
	for _, p := range got {
		if p.row < 0 || p.col < 0 {
			t.Fatalf("unexpected negative neighbour %+v", p)
		}
		if p == (position{0, 0}) {
			self++
		}
	}
	if self != 3 {
		t.Fatalf("expected the corner to list itself 3 times, got %d", self)
	}
}
