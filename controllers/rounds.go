package controllers

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"mindmeld/models"

	"github.com/gin-gonic/gin"
)

type RecordRoundRequest struct {
	RoundResults      []models.Round `json:"roundResults"`
	FinalCorrectGuess string         `json:"finalCorrectGuess"`
}

// GET /api/get-rounds?userWord=&aiWord=
// Também aceita o formato antigo ?word=a+b.
func GetRounds(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Retriever == nil {
		respondUnconfigured(c, "retrieval")
		return
	}

	userWord, aiWord, err := roundQueryWords(c)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	candidates := svc.Retriever.RetrieveContext(c.Request.Context(), userWord, aiWord)
	topGuesses := make([]string, 0, len(candidates))
	similarity := make([]float64, 0, len(candidates))
	for _, cand := range candidates {
		topGuesses = append(topGuesses, cand.Word)
		similarity = append(similarity, cand.Score)
	}
	RespondSuccess(c, gin.H{"topGuesses": topGuesses, "similarity": similarity})
}

func roundQueryWords(c *gin.Context) (string, string, error) {
	userWord := strings.TrimSpace(c.Query("userWord"))
	aiWord := strings.TrimSpace(c.Query("aiWord"))
	if userWord != "" && aiWord != "" {
		return userWord, aiWord, nil
	}

	// "+" cru na query chega como espaço
	legacy := strings.FieldsFunc(c.Query("word"), func(r rune) bool {
		return r == '+' || unicode.IsSpace(r)
	})
	if len(legacy) == 2 {
		return legacy[0], legacy[1], nil
	}
	return "", "", errors.New(`missing "userWord" and "aiWord" query parameters`)
}

// GET /api/get-all-words
func GetAllWords(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Words == nil {
		respondUnconfigured(c, "round store")
		return
	}

	words, err := svc.Words.KnownWords(c.Request.Context())
	if err != nil {
		RespondError(c, "could not read round history", http.StatusInternalServerError)
		return
	}
	if words == nil {
		words = []string{}
	}
	RespondSuccess(c, gin.H{"uniqueWords": words})
}

// POST /api/record-round
func RecordRound(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Recorder == nil {
		respondUnconfigured(c, "recorder")
		return
	}

	var req RecordRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, "Missing or invalid roundResults data", http.StatusBadRequest)
		return
	}
	if len(req.RoundResults) == 0 {
		RespondError(c, "Missing or invalid roundResults data", http.StatusBadRequest)
		return
	}

	res, err := svc.Recorder.Record(c.Request.Context(), req.RoundResults, req.FinalCorrectGuess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "message": res.Message, "inserted": res.Inserted})
		return
	}
	RespondSuccess(c, gin.H{"message": res.Message, "inserted": res.Inserted})
}
