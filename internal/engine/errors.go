package engine

import "errors"

var (
	// Configuration errors abort game setup.
	ErrMalformedEffect      = errors.New("malformed effect")
	ErrUnknownSlotReference = errors.New("unknown slot reference")
	ErrInvalidBoard         = errors.New("invalid board configuration")

	// In-play errors are returned to the turn controller.
	ErrIllegalPlacement  = errors.New("illegal placement")
	ErrAlreadyClaimed    = errors.New("objective already claimed")
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrAlreadyRevealed   = errors.New("slot already revealed")
	ErrReserveFull       = errors.New("objective reserve is full")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInvalidAction     = errors.New("invalid action")
	ErrWrongPhase        = errors.New("wrong phase for this action")
	ErrChoicePending     = errors.New("a choice must be resolved first")
	ErrNoPendingChoice   = errors.New("no pending choice")
	ErrInvalidChoice     = errors.New("invalid choice index")
	ErrNoCredit          = errors.New("no credit available")
	ErrGameOver          = errors.New("game is over")
)
