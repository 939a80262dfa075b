package world

import "errors"

var (
	// ErrInvalidLevel is returned for level numbers below 1.
	ErrInvalidLevel = errors.New("invalid level number")

	// ErrSuperseded is returned when a later clear or load overtook the pass
	// before it reached the scene. The fetched records are discarded.
	ErrSuperseded = errors.New("load superseded")
)
