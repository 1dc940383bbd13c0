package mindmeld

import (
	"fmt"

	"mindmeld/models"
)

// Validator decides whether a word may be played: it must be in the
// dictionary and must not be a variant of a used word.
type Validator struct {
	dict WordList
}

func NewValidator(dict WordList) *Validator {
	return &Validator{dict: dict}
}

func (v *Validator) Check(word string, used ...string) error {
	w := normalizeWord(word)
	if w == "" {
		return ErrEmptyWord
	}
	if v.dict != nil && !v.dict.Contains(w) {
		return fmt.Errorf("%w: %q", ErrNotInDictionary, w)
	}
	return checkUnused(w, used)
}

// CheckUnused is Check without the dictionary. Player words go through it.
func (v *Validator) CheckUnused(word string, used ...string) error {
	w := normalizeWord(word)
	if w == "" {
		return ErrEmptyWord
	}
	return checkUnused(w, used)
}

func checkUnused(w string, used []string) error {
	if u, ok := FirstVariant(w, used); ok {
		return &UsedWordError{Word: w, Used: normalizeWord(u)}
	}
	return nil
}

// UsedWords lists the words of rounds plus extra, lower-cased and
// deduplicated, in order of appearance.
func UsedWords(rounds []models.Round, extra ...string) []string {
	set := NewExclusionSet()
	for _, r := range rounds {
		for _, w := range r.Words() {
			set.Add(w)
		}
	}
	for _, w := range extra {
		set.Add(w)
	}
	return set.Words()
}
