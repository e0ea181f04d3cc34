package models

import "fmt"

// Difficulty selects the board dimensions and mine count of a game.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

type dimensions struct {
	rows, cols, mines int
}

var difficulties = map[Difficulty]struct {
	name string
	dims dimensions
}{
	Easy:   {"easy", dimensions{9, 9, 10}},
	Medium: {"medium", dimensions{16, 16, 40}},
	Hard:   {"hard", dimensions{16, 30, 99}},
}

// ParseDifficulty maps "easy", "medium" and "hard" to a Difficulty.
// Names must match exactly; any other string, including one with surrounding
// whitespace or different case, is rejected with ErrInvalidDifficulty.
func ParseDifficulty(name string) (Difficulty, error) {
	for d, def := range difficulties {
		if def.name == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, name)
}

// Valid reports whether d is one of Easy, Medium or Hard.
func (d Difficulty) Valid() bool {
	_, ok := difficulties[d]
	return ok
}

// Dimensions returns the rows, columns and mine count for d.
func (d Difficulty) Dimensions() (rows, cols, mines int) {
	def := difficulties[d].dims
	return def.rows, def.cols, def.mines
}

func (d Difficulty) String() string {
	if def, ok := difficulties[d]; ok {
		return def.name
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
