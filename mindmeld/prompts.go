package mindmeld

import (
	"fmt"
	"strings"

	"mindmeld/models"
)

const gameInstructions = "You are playing a word-association game. Your partner is about to guess a word. " +
	"The goal is for you and your play partner to independently guess the same word."

const judgeInstructions = "Determine if the following two words are the same. Ignore capitalization, spacing, " +
	"and allow for reasonable spelling mistakes. Words which have the same root but are different tenses or " +
	"grammatical forms may be considered the same, for example 'running' and 'runner', 'jumping' and 'jump', " +
	"'perform' and 'performance', 'vote' and 'votes', 'create' and 'creator', etc. would be considered the same. " +
	"Return only `true` or `false`."

// firstRoundInput constrains the opening word with seed letters. The last
// sentence lets the model escape when the letters admit no word.
func firstRoundInput(seed string) string {
	if len(seed) < 3 {
		return "This is the first round. Create your word. It should be a single English noun, verb, adverb, or adjective."
	}
	return fmt.Sprintf("This is the first round. Create your word. It should be a single English noun, verb, adverb, or adjective. "+
		"It must start with the letter '%c'. Either the second or third letter must be '%c'. "+
		"Use at least one other letter from the following: '%s'. "+
		"The only exception to these rules is if no words can be made with the assigned letters. In that case, create any word.",
		seed[0], seed[1], seed[2:])
}

func relationQuestion(prevUserWord, prevAiWord string) string {
	return fmt.Sprintf("What single word relates to both '%s' and '%s'?", prevUserWord, prevAiWord)
}

func candidateHints(candidates []models.CandidateGuess) string {
	if len(candidates) == 0 {
		return ""
	}
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, fmt.Sprintf("%s (score: %.3f)", c.Word, c.Score))
	}
	return "Most likely answers based on previous games, higher score is stronger evidence: " + strings.Join(parts, ", ") + "."
}

func strictRule(forbidden []string) string {
	rule := "# *STRICT RULE: Your response must be only a single word. Do not use any previous round's words.*"
	if len(forbidden) > 0 {
		rule += "\nFORBIDDEN WORDS: " + strings.Join(forbidden, ", ") + "!"
	}
	return rule
}

func judgeInput(a, b string) string {
	return fmt.Sprintf("Word 1: %s\nWord 2: %s", a, b)
}
