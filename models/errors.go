package models

import "errors"

var (
	// ErrInvalidDifficulty is returned for difficulty names other than easy, medium and hard.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrGameNotOngoing is returned when a move is attempted on a won or lost game.
	ErrGameNotOngoing = errors.New("game is not ongoing")
	// ErrInvalidLayout is returned when a mine layout is empty or not rectangular.
	ErrInvalidLayout = errors.New("invalid mine layout")
)
