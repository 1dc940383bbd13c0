package mindmeld

import (
	"context"
	"sort"
	"strings"

	"mindmeld/logger"
	"mindmeld/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("mindmeld")

const (
	CombinedQueryLimit     = 5
	IndividualQueryLimit   = 3
	CombinedQueryWeight    = 1.0
	IndividualQueryWeight  = 0.5
	MaxRetrievedCandidates = 5
)

type retrievalQuery struct {
	text   string
	limit  int
	weight float64
}

type queryHits struct {
	weight float64
	hits   []models.ScoredRecord
}

// Engine turns the previous round's word pair into ranked historical
// correct guesses.
type Engine struct {
	store      RoundHistoryStore
	embedder   Embedder
	log        *logger.Logger
	individual bool
}

// NewEngine: individual enables the two single-word queries next to the
// combined pair query.
func NewEngine(store RoundHistoryStore, embedder Embedder, log *logger.Logger, individual bool) *Engine {
	return &Engine{
		store:      store,
		embedder:   embedder,
		log:        log.With("service", "RetrievalEngine"),
		individual: individual,
	}
}

// RetrieveContext never fails: a broken store or embedder yields fewer (or
// no) candidates.
func (e *Engine) RetrieveContext(ctx context.Context, prevUserWord, prevAiWord string) []models.CandidateGuess {
	prevUserWord = strings.TrimSpace(prevUserWord)
	prevAiWord = strings.TrimSpace(prevAiWord)
	if prevUserWord == "" || prevAiWord == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "mindmeld.RetrieveContext")
	defer span.End()

	queries := []retrievalQuery{
		{text: prevUserWord + " + " + prevAiWord, limit: CombinedQueryLimit, weight: CombinedQueryWeight},
	}
	if e.individual {
		queries = append(queries,
			retrievalQuery{text: prevUserWord, limit: IndividualQueryLimit, weight: IndividualQueryWeight},
			retrievalQuery{text: prevAiWord, limit: IndividualQueryLimit, weight: IndividualQueryWeight},
		)
	}

	results := make([]queryHits, len(queries))
	var g errgroup.Group
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			hits, err := e.search(ctx, q)
			if err != nil {
				e.log.Warn("retrieval query failed", "query", q.text, "error", err)
				return nil
			}
			results[i] = queryHits{weight: q.weight, hits: hits}
			return nil
		})
	}
	_ = g.Wait()

	out := mergeCandidates(results, prevUserWord, prevAiWord)
	span.SetAttributes(attribute.Int("mindmeld.queries", len(queries)), attribute.Int("mindmeld.candidates", len(out)))
	e.log.Debug("retrieved candidates", "user_word", prevUserWord, "ai_word", prevAiWord, "candidates", len(out))
	return out
}

func (e *Engine) search(ctx context.Context, q retrievalQuery) ([]models.ScoredRecord, error) {
	vec, err := e.embedder.EmbedText(ctx, q.text)
	if err != nil {
		return nil, err
	}
	return e.store.SimilaritySearch(ctx, vec, q.limit)
}

// mergeCandidates scores every hit as similarity*weight, drops guesses that
// are variants of the input words, keeps the best score per word and returns
// the top MaxRetrievedCandidates.
func mergeCandidates(results []queryHits, inputs ...string) []models.CandidateGuess {
	best := map[string]float64{}
	for _, r := range results {
		for _, h := range r.hits {
			word := normalizeWord(h.Record.CorrectGuess)
			if word == "" {
				continue
			}
			if _, clash := FirstVariant(word, inputs); clash {
				continue
			}
			score := h.Similarity * r.weight
			if cur, ok := best[word]; !ok || score > cur {
				best[word] = score
			}
		}
	}

	out := make([]models.CandidateGuess, 0, len(best))
	for w, s := range best {
		out = append(out, models.CandidateGuess{Word: w, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > MaxRetrievedCandidates {
		out = out[:MaxRetrievedCandidates]
	}
	return out
}
