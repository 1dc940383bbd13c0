package tools

import (
	"math/rand"
	"time"
)

// SeedAlphabet has every letter except x and z, which make first-round
// constraints nearly impossible to satisfy.
const SeedAlphabet = "abcdefghijklmnopqrstuvwy"

// SeedLength is how many shuffled letters a first-round seed carries.
const SeedLength = 16

// RandomSeed returns SeedLength distinct letters of SeedAlphabet in random order.
func RandomSeed() string {
	return RandomSeedFrom(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// RandomSeedFrom is RandomSeed with an explicit source, for reproducible games.
func RandomSeedFrom(r *rand.Rand) string {
	letters := []byte(SeedAlphabet)
	r.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
	n := SeedLength
	if n > len(letters) {
		n = len(letters)
	}
	return string(letters[:n])
}
