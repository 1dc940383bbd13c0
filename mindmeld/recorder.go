package mindmeld

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"mindmeld/logger"
	"mindmeld/models"
)

const DefaultRecordBatchSize = 20

// RecordResult summarises one Record call.
type RecordResult struct {
	Inserted      int
	Skipped       int
	EmbedFailures int
	Learned       []string
	Message       string
}

// DeriveCorrectGuesses fills CorrectGuess on a copy of rounds: the word
// the player said next, and finalWord for the last round.
func DeriveCorrectGuesses(rounds []models.Round, finalWord string) []models.Round {
	out := make([]models.Round, len(rounds))
	copy(out, rounds)
	for i := range out {
		if out[i].RoundNumber == 0 {
			out[i].RoundNumber = i + 1
		}
		if i+1 < len(out) {
			out[i].CorrectGuess = strings.TrimSpace(out[i+1].UserWord)
		} else {
			out[i].CorrectGuess = strings.TrimSpace(finalWord)
		}
	}
	return out
}

// Recorder writes rounds to the history store. Ids are MaxID+1 onwards, so
// id allocation and the inserts run under mu.
type Recorder struct {
	mu        sync.Mutex
	store     RoundWriter
	embedder  Embedder
	log       *logger.Logger
	batchSize int
}

func NewRecorder(store RoundWriter, embedder Embedder, log *logger.Logger, batchSize int) *Recorder {
	if batchSize <= 0 {
		batchSize = DefaultRecordBatchSize
	}
	return &Recorder{
		store:     store,
		embedder:  embedder,
		log:       log.With("service", "RoundRecorder"),
		batchSize: batchSize,
	}
}

// Record stores a finished game so later games can retrieve it.
func (r *Recorder) Record(ctx context.Context, rounds []models.Round, finalWord string) (RecordResult, error) {
	return r.Import(ctx, DeriveCorrectGuesses(rounds, finalWord))
}

// Import stores rounds whose CorrectGuess is already known. Rows missing a
// word or whose embedding fails are skipped. A failed batch stops the
// import; batches written before it stay written.
func (r *Recorder) Import(ctx context.Context, rounds []models.Round) (RecordResult, error) {
	var res RecordResult

	records := make([]models.RoundRecord, 0, len(rounds))
	for _, rd := range rounds {
		user := strings.TrimSpace(rd.UserWord)
		ai := strings.TrimSpace(rd.AiWord)
		correct := strings.TrimSpace(rd.CorrectGuess)
		if user == "" || ai == "" || correct == "" {
			res.Skipped++
			continue
		}

		vec, err := r.embedder.EmbedText(ctx, models.EmbeddingInput(user, ai, correct))
		if err != nil {
			r.log.Warn("embedding failed, round skipped", "user_word", user, "ai_word", ai, "error", err)
			res.EmbedFailures++
			continue
		}
		rec := models.RoundRecord{RoundNumber: rd.RoundNumber, UserWord: user, AiWord: ai, CorrectGuess: correct}
		if err := rec.SetVector(vec); err != nil {
			res.EmbedFailures++
			continue
		}
		records = append(records, rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	nextID := r.nextID(ctx)
	for i := range records {
		records[i].ID = nextID + int64(i)
	}

	for start := 0; start < len(records); start += r.batchSize {
		end := start + r.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		if err := r.store.InsertBatch(ctx, batch); err != nil {
			res.Message = learnedMessage(res.Learned)
			return res, fmt.Errorf("%w: batch at id %d: %w", ErrRecordingFailed, batch[0].ID, err)
		}
		res.Inserted += len(batch)
		for _, rec := range batch {
			res.Learned = append(res.Learned, fmt.Sprintf("%s | %s => %s", rec.UserWord, rec.AiWord, rec.CorrectGuess))
		}
	}

	res.Message = learnedMessage(res.Learned)
	r.log.Info("rounds recorded", "inserted", res.Inserted, "skipped", res.Skipped, "embed_failures", res.EmbedFailures)
	return res, nil
}

func (r *Recorder) nextID(ctx context.Context) int64 {
	max, ok, err := r.store.MaxID(ctx)
	if err != nil {
		r.log.Warn("max id lookup failed, numbering from 1", "error", err)
		return 1
	}
	if !ok {
		return 1
	}
	return max + 1
}

func learnedMessage(learned []string) string {
	if learned == nil {
		learned = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(learned)
	return fmt.Sprintf("Learning %d correct guesses: %s", len(learned), strings.TrimSpace(buf.String()))
}
