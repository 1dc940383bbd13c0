package controllers

import (
	"errors"
	"net/http"

	"mindmeld/mindmeld"

	"github.com/gin-gonic/gin"
)

type SubmitGuessRequest struct {
	Word string `json:"word"`
}

// POST /api/games
func StartGame(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Games == nil {
		respondUnconfigured(c, "games")
		return
	}

	view, err := svc.Games.Start(c.Request.Context())
	if err != nil {
		RespondError(c, err.Error(), http.StatusServiceUnavailable)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"game": view})
}

// GET /api/games/:id
func GetGame(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Games == nil {
		respondUnconfigured(c, "games")
		return
	}

	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	view, err := svc.Games.Get(id)
	if err != nil {
		respondGameError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"game": view})
}

// POST /api/games/:id/guesses
func SubmitGuess(c *gin.Context) {
	svc := ServicesInstance(c)
	if svc == nil || svc.Games == nil {
		respondUnconfigured(c, "games")
		return
	}

	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	var req SubmitGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	view, err := svc.Games.Submit(c.Request.Context(), id, req.Word)
	if err != nil {
		if errors.Is(err, mindmeld.ErrRoundExpired) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "game": view})
			return
		}
		respondGameError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"game": view})
}

func respondGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mindmeld.ErrSessionNotFound):
		RespondError(c, "game not found", http.StatusNotFound)
	case mindmeld.IsValidationError(err):
		RespondError(c, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, mindmeld.ErrSessionClosed), errors.Is(err, mindmeld.ErrSubmitInProgress):
		RespondError(c, err.Error(), http.StatusConflict)
	default:
		RespondError(c, err.Error(), http.StatusInternalServerError)
	}
}
