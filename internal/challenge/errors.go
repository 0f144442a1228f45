package challenge

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrUnknownExercise    = fmt.Errorf("%w: unknown exercise", ErrInvalidQuantity)
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrChallengeCompleted = errors.New("challenge already completed")
	ErrChallengeNotActive = errors.New("challenge is not active")
	ErrInvalidSetting     = errors.New("invalid setting")
)
