package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRoundsCSV(t *testing.T) {
	in := "userWord,aiWord,correctGuess,roundNumber,notes\n" +
		"sun,moon,sky,1,\n" +
		"fire,,water,2,missing ai\n" +
		"cat,dog,pet,x,bad number\n" +
		"salt,pepper,spice,3\n"

	rounds, skipped, err := ReadRoundsCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, rounds, 2)

	assert.Equal(t, 1, rounds[0].RoundNumber)
	assert.Equal(t, "sun", rounds[0].UserWord)
	assert.Equal(t, "moon", rounds[0].AiWord)
	assert.Equal(t, "sky", rounds[0].CorrectGuess)
	assert.Equal(t, "spice", rounds[1].CorrectGuess)
}

func TestReadRoundsCSV_MissingColumn(t *testing.T) {
	_, _, err := ReadRoundsCSV(strings.NewReader("userWord,aiWord,roundNumber\na,b,1\n"))
	assert.ErrorContains(t, err, "correctGuess")
}

func TestReadRoundsCSV_Empty(t *testing.T) {
	_, _, err := ReadRoundsCSV(strings.NewReader(""))
	assert.Error(t, err)
}
