package controllers

import (
	"context"

	"mindmeld/mindmeld"
	"mindmeld/models"

	"github.com/gin-gonic/gin"
)

type Retriever interface {
	RetrieveContext(ctx context.Context, prevUserWord, prevAiWord string) []models.CandidateGuess
}

type GuessGenerator interface {
	Generate(ctx context.Context, req mindmeld.GuessRequest) (mindmeld.GuessTrace, error)
}

type RoundRecorder interface {
	Record(ctx context.Context, rounds []models.Round, finalWord string) (mindmeld.RecordResult, error)
}

type GameSessions interface {
	Start(ctx context.Context) (mindmeld.SessionView, error)
	Get(id string) (mindmeld.SessionView, error)
	Submit(ctx context.Context, id, word string) (mindmeld.SessionView, error)
}

// Services é o que os handlers usam; o router injeta no contexto.
type Services struct {
	Retriever Retriever
	Generator GuessGenerator
	Judge     mindmeld.MatchJudge
	Recorder  RoundRecorder
	Validator mindmeld.WordChecker
	Words     mindmeld.KnownWordsSource
	Games     GameSessions
}

const servicesKey = "services"

func SetServicesToContext(s *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(servicesKey, s)
		c.Next()
	}
}

func ServicesInstance(c *gin.Context) *Services {
	v, ok := c.Get(servicesKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Services)
	return s
}
