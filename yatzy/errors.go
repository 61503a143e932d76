package yatzy

import "errors"

var (
	ErrRollLimitExceeded     = errors.New("roll limit exceeded")
	ErrCategoryAlreadyFilled = errors.New("category already filled")
	ErrInvalidDieIndex       = errors.New("invalid die index")
	ErrInvalidCategory       = errors.New("invalid category")
	ErrHoldBeforeRoll        = errors.New("cannot hold before rolling")
	ErrNoRollYet             = errors.New("no roll this round")
	ErrGameOver              = errors.New("game over")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
