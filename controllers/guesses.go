package controllers

import (
	"errors"
	"net/http"
	"strings"

	"mindmeld/mindmeld"
	"mindmeld/models"

	"github.com/gin-gonic/gin"
)

type GenerateGuessRequest struct {
	PrevUserWord string         `json:"prevUserWord"`
	PrevAiWord   string         `json:"prevAiWord"`
	RoundHistory []models.Round `json:"roundHistory"`
}

type CheckMatchRequest struct {
	Word1 string `json:"word1"`
	Word2 string `json:"word2"`
}

type ValidateWordRequest struct {
	Word      string   `json:"word"`
	UsedWords []string `json:"usedWords"`
}

// POST /api/generate-guess
func GenerateGuess(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Generator == nil {
		respondUnconfigured(c, "generator")
		return
	}

	var req GenerateGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	trace, err := svc.Generator.Generate(c.Request.Context(), mindmeld.GuessRequest{
		PrevUserWord: req.PrevUserWord,
		PrevAiWord:   req.PrevAiWord,
		History:      req.RoundHistory,
	})
	if err != nil {
		var exhausted *mindmeld.ExhaustedError
		if errors.As(err, &exhausted) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "attempts": exhausted.Attempts})
			return
		}
		RespondError(c, err.Error(), http.StatusBadGateway)
		return
	}
	RespondSuccess(c, gin.H{"word": trace.Word, "attempts": trace.Attempts})
}

// POST /api/check-match
func CheckMatch(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Judge == nil {
		respondUnconfigured(c, "judge")
		return
	}

	var req CheckMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Word1) == "" || strings.TrimSpace(req.Word2) == "" {
		RespondError(c, "word1 and word2 are required", http.StatusBadRequest)
		return
	}

	match, err := svc.Judge.IsMatch(c.Request.Context(), req.Word1, req.Word2)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadGateway)
		return
	}
	RespondSuccess(c, gin.H{"match": match})
}

// POST /api/validate-word
func ValidateWord(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Validator == nil {
		respondUnconfigured(c, "validator")
		return
	}

	var req ValidateWordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if err := svc.Validator.Check(req.Word, req.UsedWords...); err != nil {
		RespondSuccess(c, gin.H{"valid": false, "reason": err.Error()})
		return
	}
	RespondSuccess(c, gin.H{"valid": true, "reason": ""})
}
