package mindmeld

import (
	"context"
	"errors"
	"testing"

	"mindmeld/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueWords(t *testing.T) {
	records := []models.RoundRecord{
		{UserWord: "Apple", AiWord: "banana", CorrectGuess: "apple"},
		{UserWord: "", AiWord: "BANANA", CorrectGuess: " "},
	}
	assert.Equal(t, []string{"apple", "banana"}, UniqueWords(records))
}

func TestNewWords(t *testing.T) {
	rounds := []models.Round{
		{UserWord: "Apple", AiWord: "Cherry"},
		{UserWord: "cherry", AiWord: "Date"},
	}
	assert.Equal(t, []string{"Cherry", "Date", "Fig"}, NewWords([]string{"apple", "banana"}, rounds, "Fig"))
	assert.Empty(t, NewWords([]string{"apple", "cherry", "date"}, rounds, "APPLE"))
}

func TestNovelty_KnownWords(t *testing.T) {
	store := &fakeStore{records: []models.RoundRecord{
		{UserWord: "apple", AiWord: "banana", CorrectGuess: "apple"},
		{UserWord: "kiwi", AiWord: "lime", CorrectGuess: "melon"},
	}}
	words, err := NewNovelty(store, 1).KnownWords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana"}, words)

	store.err = errors.New("down")
	_, err = NewNovelty(store, 0).KnownWords(context.Background())
	assert.Error(t, err)
}
