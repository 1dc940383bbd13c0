package mindmeld

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mindmeld/db"
	"mindmeld/logger"
	"mindmeld/models"

	"github.com/google/go-cmp/cmp"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gameRounds() []models.Round {
	return []models.Round{
		{UserWord: "a", AiWord: "x"},
		{UserWord: "b", AiWord: "y"},
		{UserWord: "c", AiWord: "z"},
	}
}

func TestDeriveCorrectGuesses(t *testing.T) {
	in := gameRounds()
	out := DeriveCorrectGuesses(in, "c")

	require.Len(t, out, 3)
	correct := []string{out[0].CorrectGuess, out[1].CorrectGuess, out[2].CorrectGuess}
	assert.Equal(t, []string{"b", "c", "c"}, correct)
	assert.Equal(t, []int{1, 2, 3}, []int{out[0].RoundNumber, out[1].RoundNumber, out[2].RoundNumber})
	assert.Empty(t, in[0].CorrectGuess)
	assert.Zero(t, in[0].RoundNumber)
}

func TestDeriveCorrectGuesses_FullRows(t *testing.T) {
	want := []models.Round{
		{RoundNumber: 1, UserWord: "a", AiWord: "x", CorrectGuess: "b"},
		{RoundNumber: 2, UserWord: "b", AiWord: "y", CorrectGuess: "c"},
		{RoundNumber: 3, UserWord: "c", AiWord: "z", CorrectGuess: "c"},
	}
	if diff := cmp.Diff(want, DeriveCorrectGuesses(gameRounds(), "c")); diff != "" {
		t.Errorf("DeriveCorrectGuesses mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveCorrectGuesses_KeepsRoundNumbers(t *testing.T) {
	out := DeriveCorrectGuesses([]models.Round{{RoundNumber: 7, UserWord: "a", AiWord: "x"}}, " final ")
	assert.Equal(t, 7, out[0].RoundNumber)
	assert.Equal(t, "final", out[0].CorrectGuess)
}

func TestRecorder_NumbersFromMaxIDAndBatches(t *testing.T) {
	w := &fakeWriter{maxID: 41, hasRows: true}
	emb := &fakeEmbedder{}
	r := NewRecorder(w, emb, logger.Nop(), 2)

	rounds := append(gameRounds(), models.Round{UserWord: "d", AiWord: "w"}, models.Round{UserWord: "e", AiWord: "v"})
	res, err := r.Record(context.Background(), rounds, "e")
	require.NoError(t, err)

	assert.Equal(t, 5, res.Inserted)
	require.Len(t, w.batches, 3)
	assert.Len(t, w.batches[0], 2)
	assert.Len(t, w.batches[2], 1)
	assert.Equal(t, int64(42), w.batches[0][0].ID)
	assert.Equal(t, int64(46), w.batches[2][0].ID)
	assert.Equal(t, 2, w.batches[0][0].Dimension)
	assert.Contains(t, emb.Calls(), "a + x = b")
	assert.Equal(t, `Learning 5 correct guesses: ["a | x => b","b | y => c","c | z => d","d | w => e","e | v => e"]`, res.Message)
}

func TestRecorder_EmptyTableStartsAtOne(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(w, &fakeEmbedder{}, logger.Nop(), 0)

	_, err := r.Record(context.Background(), gameRounds(), "c")
	require.NoError(t, err)
	require.Len(t, w.batches, 1)
	assert.Equal(t, int64(1), w.batches[0][0].ID)
	assert.Equal(t, int64(3), w.batches[0][2].ID)
}

func TestRecorder_MaxIDFailureStartsAtOne(t *testing.T) {
	w := &fakeWriter{maxID: 99, hasRows: true, maxErr: errors.New("timeout")}
	r := NewRecorder(w, &fakeEmbedder{}, logger.Nop(), 20)

	_, err := r.Record(context.Background(), gameRounds(), "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), w.batches[0][0].ID)
}

func TestRecorder_SkipsIncompleteAndUnembeddableRows(t *testing.T) {
	w := &fakeWriter{}
	emb := &fakeEmbedder{fail: map[string]error{"b + y = c": errors.New("rate limited")}}
	r := NewRecorder(w, emb, logger.Nop(), 20)

	rounds := []models.Round{
		{UserWord: "a", AiWord: "x"},
		{UserWord: "b", AiWord: "y"},
		{UserWord: "c", AiWord: ""},
	}
	res, err := r.Record(context.Background(), rounds, "d")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.EmbedFailures)
	assert.Equal(t, `Learning 1 correct guesses: ["a | x => b"]`, res.Message)
}

func TestRecorder_BatchFailure(t *testing.T) {
	w := &fakeWriter{failAt: 2}
	r := NewRecorder(w, &fakeEmbedder{}, logger.Nop(), 2)

	res, err := r.Record(context.Background(), gameRounds(), "c")
	require.ErrorIs(t, err, ErrRecordingFailed)
	assert.Equal(t, 2, res.Inserted)
	assert.Len(t, w.batches, 1)
}

func TestRecorder_NothingToRecord(t *testing.T) {
	w := &fakeWriter{}
	r := NewRecorder(w, &fakeEmbedder{}, logger.Nop(), 20)

	res, err := r.Record(context.Background(), nil, "c")
	require.NoError(t, err)
	assert.Zero(t, res.Inserted)
	assert.Equal(t, "Learning 0 correct guesses: []", res.Message)
	assert.Empty(t, w.batches)
}

// gatedWriter holds the first MaxID caller until a second caller reads
// MaxID too, or 50ms pass. Two writers numbering from the same max id
// collide on the primary key.
type gatedWriter struct {
	RoundWriter
	calls   atomic.Int32
	release chan struct{}
	once    sync.Once
}

func (g *gatedWriter) MaxID(ctx context.Context) (int64, bool, error) {
	if g.calls.Add(1) == 1 {
		select {
		case <-g.release:
		case <-time.After(50 * time.Millisecond):
		}
	} else {
		g.once.Do(func() { close(g.release) })
	}
	return g.RoundWriter.MaxID(ctx)
}

func TestRecorder_ConcurrentGamesGetDistinctIDs(t *testing.T) {
	database, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	database.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.EnsureSchema(database))
	store := db.NewRoundStore(database, logger.Nop(), 2, 0)

	writer := &gatedWriter{RoundWriter: store, release: make(chan struct{})}
	r := NewRecorder(writer, &fakeEmbedder{}, logger.Nop(), 0)

	games := []struct {
		rounds []models.Round
		final  string
	}{
		{[]models.Round{{UserWord: "sun", AiWord: "moon"}}, "sky"},
		{[]models.Round{{UserWord: "fire", AiWord: "ice"}}, "water"},
	}

	errs := make([]error, len(games))
	var wg sync.WaitGroup
	for i, g := range games {
		wg.Add(1)
		go func(i int, rounds []models.Round, final string) {
			defer wg.Done()
			_, errs[i] = r.Record(context.Background(), rounds, final)
		}(i, g.rounds, g.final)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	rows, err := store.ScanAll(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.ElementsMatch(t, []int64{1, 2}, []int64{rows[0].ID, rows[1].ID})
	assert.ElementsMatch(t, []string{"sky", "water"}, []string{rows[0].CorrectGuess, rows[1].CorrectGuess})
}
