package game

import "errors"

var (
	ErrUnknownPiece  = errors.New("unknown piece type")
	ErrUnknownAction = errors.New("unknown action")
)
