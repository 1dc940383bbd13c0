package models

import (
	"encoding/json"
	"strings"
)

/************************************************
/**** MARK: GAME STATES ****/
/************************************************/
const GAME_STATE_AWAITING_USER_GUESS = "awaiting_user_guess"
const GAME_STATE_WAITING_FOR_AI = "waiting_for_ai"
const GAME_STATE_WON = "won"
const GAME_STATE_LOST = "lost"
const GAME_STATE_FAILED = "failed"

// Round é uma troca do jogo: a palavra do usuário e a da IA na mesma rodada.
// CorrectGuess só é preenchido na hora de gravar (ver mindmeld.DeriveCorrectGuesses).
type Round struct {
	RoundNumber  int    `json:"roundNumber"`
	UserWord     string `json:"userWord"`
	AiWord       string `json:"aiWord"`
	CorrectGuess string `json:"correctGuess,omitempty"`
}

// UnmarshalJSON aceita também o formato antigo do front (round/userGuess/aiGuess).
func (r *Round) UnmarshalJSON(b []byte) error {
	var raw struct {
		RoundNumber  *int   `json:"roundNumber"`
		Round        *int   `json:"round"`
		UserWord     string `json:"userWord"`
		AiWord       string `json:"aiWord"`
		UserGuess    string `json:"userGuess"`
		AiGuess      string `json:"aiGuess"`
		CorrectGuess string `json:"correctGuess"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = Round{
		UserWord:     firstNonEmpty(raw.UserWord, raw.UserGuess),
		AiWord:       firstNonEmpty(raw.AiWord, raw.AiGuess),
		CorrectGuess: strings.TrimSpace(raw.CorrectGuess),
	}
	switch {
	case raw.RoundNumber != nil:
		r.RoundNumber = *raw.RoundNumber
	case raw.Round != nil:
		r.RoundNumber = *raw.Round
	}
	return nil
}

// Words devolve as palavras não vazias da rodada (usuário e IA).
func (r Round) Words() []string {
	out := make([]string, 0, 2)
	if w := strings.TrimSpace(r.UserWord); w != "" {
		out = append(out, w)
	}
	if w := strings.TrimSpace(r.AiWord); w != "" {
		out = append(out, w)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
