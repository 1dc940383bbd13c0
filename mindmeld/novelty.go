package mindmeld

import (
	"context"
	"strings"

	"mindmeld/models"
)

// UniqueWords lists every word in records, lower-cased, in order of first
// appearance.
func UniqueWords(records []models.RoundRecord) []string {
	set := NewExclusionSet()
	for _, r := range records {
		set.Add(r.UserWord)
		set.Add(r.AiWord)
		set.Add(r.CorrectGuess)
	}
	return set.Words()
}

// NewWords returns the words of a finished game that known does not hold.
func NewWords(known []string, rounds []models.Round, finalWord string) []string {
	knownSet := NewExclusionSet(known...)
	seen := NewExclusionSet()
	var out []string
	add := func(w string) {
		w = strings.TrimSpace(w)
		if w == "" || knownSet.Contains(w) {
			return
		}
		if seen.Add(w) {
			out = append(out, w)
		}
	}
	for _, r := range rounds {
		add(r.UserWord)
		add(r.AiWord)
	}
	add(finalWord)
	return out
}

// Novelty answers "which words has the game ever seen".
type Novelty struct {
	store     RoundHistoryStore
	scanLimit int
}

func NewNovelty(store RoundHistoryStore, scanLimit int) *Novelty {
	return &Novelty{store: store, scanLimit: scanLimit}
}

func (n *Novelty) KnownWords(ctx context.Context) ([]string, error) {
	records, err := n.store.ScanAll(ctx, n.scanLimit)
	if err != nil {
		return nil, err
	}
	return UniqueWords(records), nil
}
