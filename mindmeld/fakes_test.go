package mindmeld

import (
	"context"
	"errors"
	"sync"

	"mindmeld/models"
	"mindmeld/tools"
)

// fakeLLM replays replies in order and repeats the last one forever.
type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []tools.ReplyRequest
}

func (f *fakeLLM) GenerateReply(ctx context.Context, r tools.ReplyRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	out := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return out, nil
}

func (f *fakeLLM) Calls() []tools.ReplyRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tools.ReplyRequest(nil), f.calls...)
}

// fakeEmbedder maps text to a one-element vector used as a lookup key by fakeStore.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float64
	fail    map[string]error
	calls   []string
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if err, ok := f.fail[text]; ok {
		return nil, err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float64{0.5, 0.5}, nil
}

func (f *fakeEmbedder) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeStore struct {
	mu       sync.Mutex
	hits     map[float64][]models.ScoredRecord
	records  []models.RoundRecord
	err      error
	searches int
}

func (f *fakeStore) ScanAll(ctx context.Context, limit int) ([]models.RoundRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.records
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) SimilaritySearch(ctx context.Context, query []float64, limit int) ([]models.ScoredRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	if f.err != nil {
		return nil, f.err
	}
	out := f.hits[query[0]]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func hit(correct string, similarity float64) models.ScoredRecord {
	return models.ScoredRecord{Record: models.RoundRecord{CorrectGuess: correct}, Similarity: similarity}
}

type fakeWriter struct {
	mu      sync.Mutex
	maxID   int64
	hasRows bool
	maxErr  error
	failAt  int
	batches [][]models.RoundRecord
}

func (f *fakeWriter) MaxID(ctx context.Context) (int64, bool, error) {
	return f.maxID, f.hasRows, f.maxErr
}

func (f *fakeWriter) InsertBatch(ctx context.Context, records []models.RoundRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && len(f.batches)+1 == f.failAt {
		return errors.New("connection reset")
	}
	f.batches = append(f.batches, append([]models.RoundRecord(nil), records...))
	return nil
}

type staticRetriever []models.CandidateGuess

func (s staticRetriever) RetrieveContext(ctx context.Context, prevUserWord, prevAiWord string) []models.CandidateGuess {
	return s
}
