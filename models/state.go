package models

import "fmt"

// GameState is the lifecycle of a game. Ongoing moves to exactly one of Won or Lost.
type GameState int

const (
	Ongoing GameState = iota
	Won
	Lost
)

var gameStateNames = [...]string{
	Ongoing: "Ongoing",
	Won:     "Won",
	Lost:    "Lost",
}

// Terminal reports whether s is Won or Lost.
func (s GameState) Terminal() bool {
	return s == Won || s == Lost
}

func (s GameState) String() string {
	if s >= 0 && int(s) < len(gameStateNames) {
		return gameStateNames[s]
	}
	return fmt.Sprintf("GameState(%d)", int(s))
}

func (s GameState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(gameStateNames) {
		return nil, fmt.Errorf("unknown game state %d", int(s))
	}
	return []byte(gameStateNames[s]), nil
}

func (s *GameState) UnmarshalText(text []byte) error {
	for i, name := range gameStateNames {
		if name == string(text) {
			*s = GameState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown game state %q", string(text))
}
