package mindmeld

import (
	"context"
	"sync"
)

// PendingGuess is an AI guess that may still be generating. It is resolved
// exactly once, with a word or an error.
type PendingGuess struct {
	done chan struct{}
	once sync.Once
	word string
	err  error
}

func NewPendingGuess() *PendingGuess {
	return &PendingGuess{done: make(chan struct{})}
}

// Resolve sets the outcome. Later calls are ignored.
func (p *PendingGuess) Resolve(word string, err error) {
	p.once.Do(func() {
		p.word = word
		p.err = err
		close(p.done)
	})
}

func (p *PendingGuess) Done() <-chan struct{} {
	return p.done
}

func (p *PendingGuess) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the guess is resolved or ctx ends.
func (p *PendingGuess) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.word, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
