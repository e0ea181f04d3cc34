package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DisplayCellKind tags what a player can see of a cell.
type DisplayCellKind int

const (
	CellHidden DisplayCellKind = iota
	CellRevealed
	CellBomb
	CellFlagged
)

var displayCellNames = [...]string{
	CellHidden:   "Hidden",
	CellRevealed: "Revealed",
	CellBomb:     "Bomb",
	CellFlagged:  "Flagged",
}

func (k DisplayCellKind) String() string {
	if k >= 0 && int(k) < len(displayCellNames) {
		return displayCellNames[k]
	}
	return fmt.Sprintf("DisplayCellKind(%d)", int(k))
}

// DisplayCell is the visible state of one cell. Only a revealed safe cell
// carries a mine count; build values with the constructors below.
type DisplayCell struct {
	kind  DisplayCellKind
	count int
}

func HiddenCell() DisplayCell  { return DisplayCell{kind: CellHidden} }
func BombCell() DisplayCell    { return DisplayCell{kind: CellBomb} }
func FlaggedCell() DisplayCell { return DisplayCell{kind: CellFlagged} }

// RevealedCell is an opened safe cell with n mines among its neighbours.
func RevealedCell(n int) DisplayCell {
	return DisplayCell{kind: CellRevealed, count: n}
}

func (c DisplayCell) Kind() DisplayCellKind { return c.kind }

// Count returns the adjacent mine count; ok is false unless the cell is revealed and safe.
func (c DisplayCell) Count() (n int, ok bool) {
	if c.kind != CellRevealed {
		return 0, false
	}
	return c.count, true
}

type revealedPayload struct {
	Revealed int `json:"Revealed"`
}

type displayCellJSON struct {
	State json.RawMessage `json:"state"`
}

// MarshalJSON encodes {"state":"Hidden"} style tags, with revealed cells as
// {"state":{"Revealed":n}}.
func (c DisplayCell) MarshalJSON() ([]byte, error) {
	var state any
	switch c.kind {
	case CellRevealed:
		state = revealedPayload{Revealed: c.count}
	case CellHidden, CellBomb, CellFlagged:
		state = c.kind.String()
	default:
		return nil, fmt.Errorf("unknown display cell kind %d", int(c.kind))
	}
	return json.Marshal(struct {
		State any `json:"state"`
	}{state})
}

func (c *DisplayCell) UnmarshalJSON(data []byte) error {
	var raw displayCellJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode display cell: %w", err)
	}

	var tag string
	if err := json.Unmarshal(raw.State, &tag); err == nil {
		switch tag {
		case "Hidden":
			*c = HiddenCell()
		case "Bomb":
			*c = BombCell()
		case "Flagged":
			*c = FlaggedCell()
		default:
			return fmt.Errorf("decode display cell: unknown state %q", tag)
		}
		return nil
	}

	var payload map[string]int
	if err := json.Unmarshal(raw.State, &payload); err != nil {
		return fmt.Errorf("decode display cell: %w", err)
	}
	n, ok := payload["Revealed"]
	if !ok || len(payload) != 1 {
		return fmt.Errorf("decode display cell: unexpected state %s", string(raw.State))
	}
	if n < 0 || n > 8 {
		return fmt.Errorf("decode display cell: mine count %d out of range", n)
	}
	*c = RevealedCell(n)
	return nil
}

// DisplayBoard is the read-only view of a game handed to UIs and API clients.
// Mines stay hidden until revealed.
type DisplayBoard struct {
	Difficulty  Difficulty      `json:"difficulty"`
	Cells       [][]DisplayCell `json:"cells"`
	GameState   GameState       `json:"game_state"`
	TimeElapsed *int64          `json:"time_elapsed"`
}

// Display projects the game as seen at now. Elapsed time is only reported
// for finished games and is measured from the game's start to now.
func (g *Game) Display(now time.Time) DisplayBoard {
	cells := make([][]DisplayCell, len(g.board))
	for row, line := range g.board {
		cells[row] = make([]DisplayCell, len(line))
		for col, c := range line {
			cells[row][col] = c.display()
		}
	}

	var elapsed *int64
	if g.state.Terminal() {
		ms := now.Sub(g.startedAt).Milliseconds()
		elapsed = &ms
	}

	return DisplayBoard{
		Difficulty:  g.difficulty,
		Cells:       cells,
		GameState:   g.state,
		TimeElapsed: elapsed,
	}
}

// DisplayBoard projects the game at the current time.
func (g *Game) DisplayBoard() DisplayBoard {
	return g.Display(time.Now())
}

func (c cell) display() DisplayCell {
	switch c.state {
	case revealed:
		if c.isMine {
			return BombCell()
		}
		return RevealedCell(c.nearbyMines)
	case flagged:
		return FlaggedCell()
	default:
		return HiddenCell()
	}
}
