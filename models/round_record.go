package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// RoundRecord é a forma persistida de um Round, com o embedding de
// "<userWord> + <aiWord> = <correctGuess>". O id não é auto-increment:
// quem grava lê o max(id) antes e numera o lote (mindmeld.Recorder serializa isso).
type RoundRecord struct {
	ID           int64      `gorm:"primary_key;auto_increment:false" json:"id"`
	RoundNumber  int        `gorm:"not null;default:0" json:"roundNumber"`
	UserWord     string     `gorm:"type:text" json:"userWord"`
	AiWord       string     `gorm:"type:text" json:"aiWord"`
	CorrectGuess string     `gorm:"type:text;index" json:"correctGuess"`
	Vector       string     `gorm:"type:text" json:"-"` // JSON array (ex: [0.1,0.2,...])
	Dimension    int        `gorm:"not null;default:0" json:"dimension"`
	CreatedAt    *time.Time `json:"created_at"`
}

func (RoundRecord) TableName() string {
	return "round_data"
}

// SetVector serializa o embedding para a coluna texto e guarda a dimensão.
func (r *RoundRecord) SetVector(v []float64) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Vector = string(b)
	r.Dimension = len(v)
	return nil
}

// ParseVector devolve o embedding gravado; NaN/Inf invalidam o registro.
func (r RoundRecord) ParseVector() ([]float64, error) {
	s := strings.TrimSpace(r.Vector)
	if s == "" {
		return nil, fmt.Errorf("empty embedding string")
	}
	var arr []float64
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil, err
	}
	for _, v := range arr {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid embedding value")
		}
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("empty embedding array")
	}
	return arr, nil
}

// EmbeddingInput monta o texto que vira embedding de uma rodada gravada.
func EmbeddingInput(userWord, aiWord, correctGuess string) string {
	return userWord + " + " + aiWord + " = " + correctGuess
}

// ScoredRecord é um resultado da busca por similaridade. Similarity fica em [0,1]; maior é mais perto.
type ScoredRecord struct {
	Record     RoundRecord
	Similarity float64
}

// CandidateGuess é um acerto histórico recuperado, já com a nota do rerank.
type CandidateGuess struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}
