package mindmeld

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGenerationExhausted = errors.New("guess generation exhausted")
	ErrNotInDictionary     = errors.New("word not in dictionary")
	ErrAlreadyUsed         = errors.New("word already used")
	ErrEmptyWord           = errors.New("word is empty")
	ErrRecordingFailed     = errors.New("round recording failed")
	ErrSessionNotFound     = errors.New("game not found")
	ErrSessionClosed       = errors.New("game is over")
	ErrSubmitInProgress    = errors.New("a guess is already being judged")
	ErrRoundExpired        = errors.New("round time is up")
)

// ExhaustedError is returned when the retry bound is hit. It matches
// ErrGenerationExhausted with errors.Is.
type ExhaustedError struct {
	Attempts int
	Rejected []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts (rejected: %s)", ErrGenerationExhausted, e.Attempts, strings.Join(e.Rejected, ","))
}

func (e *ExhaustedError) Unwrap() error { return ErrGenerationExhausted }

// UsedWordError says which used word a candidate collided with.
type UsedWordError struct {
	Word string
	Used string
}

func (e *UsedWordError) Error() string {
	if e.Word == e.Used {
		return fmt.Sprintf("%q already used", e.Word)
	}
	return fmt.Sprintf("%q is too similar to previously used %q", e.Word, e.Used)
}

func (e *UsedWordError) Unwrap() error { return ErrAlreadyUsed }

// IsValidationError reports whether err is a word rejection rather than a
// dependency failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNotInDictionary) || errors.Is(err, ErrAlreadyUsed) || errors.Is(err, ErrEmptyWord)
}
