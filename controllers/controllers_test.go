package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindmeld/mindmeld"
	"mindmeld/models"
	"mindmeld/tools"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	gotUser, gotAi string
	out            []models.CandidateGuess
}

func (f *fakeRetriever) RetrieveContext(ctx context.Context, u, a string) []models.CandidateGuess {
	f.gotUser, f.gotAi = u, a
	return f.out
}

type fakeGenerator struct {
	got   mindmeld.GuessRequest
	trace mindmeld.GuessTrace
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, req mindmeld.GuessRequest) (mindmeld.GuessTrace, error) {
	f.got = req
	return f.trace, f.err
}

type fakeJudge struct {
	match bool
	err   error
}

func (f *fakeJudge) IsMatch(ctx context.Context, a, b string) (bool, error) {
	return f.match, f.err
}

type fakeRecorder struct {
	gotRounds []models.Round
	gotFinal  string
	res       mindmeld.RecordResult
	err       error
}

func (f *fakeRecorder) Record(ctx context.Context, rounds []models.Round, final string) (mindmeld.RecordResult, error) {
	f.gotRounds, f.gotFinal = rounds, final
	return f.res, f.err
}

type fakeWords struct {
	words []string
	err   error
}

func (f *fakeWords) KnownWords(ctx context.Context) ([]string, error) {
	return f.words, f.err
}

type fakeGames struct {
	view mindmeld.SessionView
	err  error
}

func (f *fakeGames) Start(ctx context.Context) (mindmeld.SessionView, error) {
	return f.view, f.err
}

func (f *fakeGames) Get(id string) (mindmeld.SessionView, error) {
	return f.view, f.err
}

func (f *fakeGames) Submit(ctx context.Context, id, word string) (mindmeld.SessionView, error) {
	return f.view, f.err
}

const gameID = "7b0f7c9e-8a43-4b8e-9a59-2d1c3f6f2a10"

func newTestEngine(svc *Services) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SetServicesToContext(svc))
	r.GET("/get-rounds", GetRounds)
	r.GET("/get-all-words", GetAllWords)
	r.POST("/record-round", RecordRound)
	r.POST("/generate-guess", GenerateGuess)
	r.POST("/check-match", CheckMatch)
	r.POST("/validate-word", ValidateWord)
	r.POST("/games", StartGame)
	r.GET("/games/:id", GetGame)
	r.POST("/games/:id/guesses", SubmitGuess)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestGetRounds(t *testing.T) {
	ret := &fakeRetriever{out: []models.CandidateGuess{{Word: "sky", Score: 0.9}, {Word: "star", Score: 0.4}}}
	r := newTestEngine(&Services{Retriever: ret})

	w, out := do(t, r, http.MethodGet, "/get-rounds?userWord=sun&aiWord=moon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"sky", "star"}, out["topGuesses"])
	assert.Equal(t, []any{0.9, 0.4}, out["similarity"])
	assert.Equal(t, "sun", ret.gotUser)
	assert.Equal(t, "moon", ret.gotAi)
}

func TestGetRounds_LegacyWordParam(t *testing.T) {
	ret := &fakeRetriever{}
	r := newTestEngine(&Services{Retriever: ret})

	w, out := do(t, r, http.MethodGet, "/get-rounds?word=sun+%2B+moon", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sun", ret.gotUser)
	assert.Equal(t, "moon", ret.gotAi)
	assert.Equal(t, []any{}, out["topGuesses"])
}

func TestGetRounds_MissingWords(t *testing.T) {
	r := newTestEngine(&Services{Retriever: &fakeRetriever{}})

	w, out := do(t, r, http.MethodGet, "/get-rounds?userWord=sun", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, out["error"])
}

func TestGetAllWords(t *testing.T) {
	r := newTestEngine(&Services{Words: &fakeWords{words: []string{"apple", "banana"}}})
	w, out := do(t, r, http.MethodGet, "/get-all-words", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"apple", "banana"}, out["uniqueWords"])

	r = newTestEngine(&Services{Words: &fakeWords{err: errors.New("down")}})
	w, _ = do(t, r, http.MethodGet, "/get-all-words", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecordRound(t *testing.T) {
	rec := &fakeRecorder{res: mindmeld.RecordResult{Inserted: 1, Message: `Learning 1 correct guesses: ["a | x => b"]`}}
	r := newTestEngine(&Services{Recorder: rec})

	w, out := do(t, r, http.MethodPost, "/record-round", map[string]any{
		"roundResults":      []map[string]any{{"round": 1, "userGuess": "a", "aiGuess": "x"}},
		"finalCorrectGuess": "b",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `Learning 1 correct guesses: ["a | x => b"]`, out["message"])
	assert.Equal(t, []models.Round{{RoundNumber: 1, UserWord: "a", AiWord: "x"}}, rec.gotRounds)
	assert.Equal(t, "b", rec.gotFinal)
}

func TestRecordRound_EmptyIsBadRequest(t *testing.T) {
	r := newTestEngine(&Services{Recorder: &fakeRecorder{}})

	w, _ := do(t, r, http.MethodPost, "/record-round", map[string]any{"roundResults": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodPost, "/record-round", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordRound_Failure(t *testing.T) {
	rec := &fakeRecorder{err: mindmeld.ErrRecordingFailed}
	r := newTestEngine(&Services{Recorder: rec})

	w, _ := do(t, r, http.MethodPost, "/record-round", map[string]any{
		"roundResults": []map[string]any{{"userWord": "a", "aiWord": "x"}},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGenerateGuess(t *testing.T) {
	gen := &fakeGenerator{trace: mindmeld.GuessTrace{Word: "sky", Attempts: 2}}
	r := newTestEngine(&Services{Generator: gen})

	w, out := do(t, r, http.MethodPost, "/generate-guess", map[string]any{
		"prevUserWord": "sun",
		"prevAiWord":   "moon",
		"roundHistory": []map[string]any{{"roundNumber": 1, "userWord": "sun", "aiWord": "moon"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sky", out["word"])
	assert.Equal(t, "sun", gen.got.PrevUserWord)
	assert.Len(t, gen.got.History, 1)
}

func TestGenerateGuess_Exhausted(t *testing.T) {
	gen := &fakeGenerator{err: &mindmeld.ExhaustedError{Attempts: 25}}
	r := newTestEngine(&Services{Generator: gen})

	w, out := do(t, r, http.MethodPost, "/generate-guess", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, out["error"])
}

func TestGenerateGuess_UpstreamError(t *testing.T) {
	gen := &fakeGenerator{err: &tools.APIError{Status: 500, Body: "boom"}}
	r := newTestEngine(&Services{Generator: gen})

	w, _ := do(t, r, http.MethodPost, "/generate-guess", map[string]any{})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCheckMatch(t *testing.T) {
	r := newTestEngine(&Services{Judge: &fakeJudge{match: true}})

	w, out := do(t, r, http.MethodPost, "/check-match", map[string]any{"word1": "colour", "word2": "color"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["match"])

	w, _ = do(t, r, http.MethodPost, "/check-match", map[string]any{"word1": "colour"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateWord(t *testing.T) {
	v := mindmeld.NewValidator(tools.NewDictionary("ocean", "oceans"))
	r := newTestEngine(&Services{Validator: v})

	_, out := do(t, r, http.MethodPost, "/validate-word", map[string]any{"word": "ocean"})
	assert.Equal(t, true, out["valid"])

	_, out = do(t, r, http.MethodPost, "/validate-word", map[string]any{"word": "oceans", "usedWords": []string{"ocean"}})
	assert.Equal(t, false, out["valid"])
	assert.Contains(t, out["reason"], "ocean")

	_, out = do(t, r, http.MethodPost, "/validate-word", map[string]any{"word": "qwzx"})
	assert.Equal(t, false, out["valid"])
}

func TestGames(t *testing.T) {
	games := &fakeGames{view: mindmeld.SessionView{ID: gameID, State: models.GAME_STATE_AWAITING_USER_GUESS, Round: 1}}
	r := newTestEngine(&Services{Games: games})

	w, out := do(t, r, http.MethodPost, "/games", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, gameID, out["game"].(map[string]any)["id"])

	w, _ = do(t, r, http.MethodGet, "/games/"+gameID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodPost, "/games/"+gameID+"/guesses", map[string]any{"word": "sun"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/games/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGames_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{mindmeld.ErrSessionNotFound, http.StatusNotFound},
		{mindmeld.ErrNotInDictionary, http.StatusUnprocessableEntity},
		{&mindmeld.UsedWordError{Word: "cats", Used: "cat"}, http.StatusUnprocessableEntity},
		{mindmeld.ErrSessionClosed, http.StatusConflict},
		{mindmeld.ErrSubmitInProgress, http.StatusConflict},
		{mindmeld.ErrRoundExpired, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := newTestEngine(&Services{Games: &fakeGames{err: tc.err}})
		w, _ := do(t, r, http.MethodPost, "/games/"+gameID+"/guesses", map[string]any{"word": "sun"})
		assert.Equal(t, tc.code, w.Code, "error %v", tc.err)
	}
}

func TestUnconfiguredServices(t *testing.T) {
	r := newTestEngine(&Services{})
	w, _ := do(t, r, http.MethodGet, "/get-all-words", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
