package game

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dimaq12/minesweeper/models"
)

const controlsHelp = "enter/space reveal · f flag · 1/2/3 new easy/medium/hard · q quit"

type Renderer struct {
	boardTable *tview.Table
	status     *tview.TextView
	layout     *tview.Flex
	rows, cols int
}

func NewRenderer() *Renderer {
	table := tview.NewTable().
		SetSelectable(true, true).
		SetBorders(false)
	status := tview.NewTextView().SetDynamicColors(true)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(table, 0, 1, true).
		AddItem(status, 2, 0, false)

	return &Renderer{
		boardTable: table,
		status:     status,
		layout:     layout,
	}
}

// Root is the primitive to hand to tview.Application.SetRoot.
func (r *Renderer) Root() tview.Primitive {
	return r.layout
}

// DrawBoard renders every cell of board and refreshes the status line.
func (r *Renderer) DrawBoard(board models.DisplayBoard) {
	rows := len(board.Cells)
	cols := 0
	if rows > 0 {
		cols = len(board.Cells[0])
	}
	if rows != r.rows || cols != r.cols {
		r.boardTable.Clear()
		r.rows, r.cols = rows, cols
		r.boardTable.Select(0, 0)
	}

	for row, line := range board.Cells {
		for col, cell := range line {
			r.RenderCell(cell, row, col)
		}
	}
	r.status.SetText(statusLine(board, ""))
}

// SetMessage shows msg beneath the board next to the current status.
func (r *Renderer) SetMessage(board models.DisplayBoard, msg string) {
	r.status.SetText(statusLine(board, msg))
}

func (r *Renderer) RenderCell(cell models.DisplayCell, row, col int) {
	text, color := cellText(cell)
	r.boardTable.SetCell(row, col, tview.NewTableCell(text).
		SetAlign(tview.AlignCenter).
		SetTextColor(color))
}

func cellText(cell models.DisplayCell) (string, tcell.Color) {
	switch cell.Kind() {
	case models.CellFlagged:
		return "F", tcell.ColorYellow
	case models.CellBomb:
		return "M", tcell.ColorRed
	case models.CellRevealed:
		n, _ := cell.Count()
		if n == 0 {
			return " ", tcell.ColorWhite
		}
		return strconv.Itoa(n), countColors[n]
	default:
		return ".", tcell.ColorGray
	}
}

var countColors = map[int]tcell.Color{
	1: tcell.ColorBlue,
	2: tcell.ColorGreen,
	3: tcell.ColorRed,
	4: tcell.ColorNavy,
	5: tcell.ColorMaroon,
	6: tcell.ColorTeal,
	7: tcell.ColorWhite,
	8: tcell.ColorGray,
}

func statusLine(board models.DisplayBoard, msg string) string {
	var state string
	switch board.GameState {
	case models.Won:
		state = "[green]Won[-]"
	case models.Lost:
		state = "[red]Lost[-]"
	default:
		state = board.GameState.String()
	}

	line := fmt.Sprintf("%s · %s", board.Difficulty, state)
	if board.TimeElapsed != nil {
		line += " · " + (time.Duration(*board.TimeElapsed) * time.Millisecond).Round(100*time.Millisecond).String()
	}
	if msg != "" {
		line += " · [yellow]" + tview.Escape(msg) + "[-]"
	}
	return line + "\n" + controlsHelp
}
