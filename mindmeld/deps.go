package mindmeld

import (
	"context"

	"mindmeld/models"
	"mindmeld/tools"
)

// RoundHistoryStore is the read side of the round history.
type RoundHistoryStore interface {
	ScanAll(ctx context.Context, limit int) ([]models.RoundRecord, error)
	SimilaritySearch(ctx context.Context, query []float64, limit int) ([]models.ScoredRecord, error)
}

// RoundWriter is the write side used by the Recorder.
type RoundWriter interface {
	MaxID(ctx context.Context) (int64, bool, error)
	InsertBatch(ctx context.Context, records []models.RoundRecord) error
}

type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// ReplyGenerator is the language-model completion endpoint.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, r tools.ReplyRequest) (string, error)
}

// WordList is the dictionary.
type WordList interface {
	Contains(word string) bool
}

type ContextRetriever interface {
	RetrieveContext(ctx context.Context, prevUserWord, prevAiWord string) []models.CandidateGuess
}
