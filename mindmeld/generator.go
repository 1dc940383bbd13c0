package mindmeld

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"mindmeld/config"
	"mindmeld/logger"
	"mindmeld/models"
	"mindmeld/tools"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultMaxAttempts = 25

// GuessRequest is the state the AI needs to pick its next word. Both
// previous words empty means first round.
type GuessRequest struct {
	PrevUserWord string
	PrevAiWord   string
	History      []models.Round
}

func (r GuessRequest) firstRound() bool {
	return strings.TrimSpace(r.PrevUserWord) == "" || strings.TrimSpace(r.PrevAiWord) == ""
}

// GuessTrace is what a generation run went through.
type GuessTrace struct {
	Word       string
	Attempts   int
	Rejected   []string
	Candidates []models.CandidateGuess
	Seed       string
}

type Generator struct {
	llm         ReplyGenerator
	retriever   ContextRetriever
	validator   *Validator
	log         *logger.Logger
	maxAttempts int
	model       string
	temperature float64
	maxTokens   int
	seed        func() string
}

func NewGenerator(llm ReplyGenerator, retriever ContextRetriever, validator *Validator, log *logger.Logger, conf config.Configuration) *Generator {
	attempts := conf.Game.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &Generator{
		llm:         llm,
		retriever:   retriever,
		validator:   validator,
		log:         log.With("service", "GuessGenerator"),
		maxAttempts: attempts,
		model:       conf.OpenAI.Model,
		temperature: conf.OpenAI.Temperature,
		maxTokens:   conf.OpenAI.MaxOutputTokens,
		seed:        tools.RandomSeed,
	}
}

// SetSeedSource replaces the first-round letter source.
func (g *Generator) SetSeedSource(f func() string) {
	if f != nil {
		g.seed = f
	}
}

func (g *Generator) GenerateGuess(ctx context.Context, req GuessRequest) (string, error) {
	trace, err := g.Generate(ctx, req)
	return trace.Word, err
}

// Generate runs the generate-validate-retry loop. Rejected words join the
// exclusion list of every later attempt. Model errors end the run at once;
// running out of attempts returns *ExhaustedError.
func (g *Generator) Generate(ctx context.Context, req GuessRequest) (trace GuessTrace, err error) {
	ctx, span := tracer.Start(ctx, "mindmeld.GenerateGuess")
	defer func() {
		span.SetAttributes(attribute.Int("mindmeld.attempts", trace.Attempts), attribute.Int("mindmeld.rejected", len(trace.Rejected)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	prevUser := strings.TrimSpace(req.PrevUserWord)
	prevAi := strings.TrimSpace(req.PrevAiWord)
	history := append([]models.Round(nil), req.History...)
	exclusion := NewExclusionSet(UsedWords(history, prevUser, prevAi)...)

	var question string
	if req.firstRound() {
		trace.Seed = g.seed()
		question = firstRoundInput(trace.Seed)
	} else {
		if g.retriever != nil {
			trace.Candidates = g.retriever.RetrieveContext(ctx, prevUser, prevAi)
		}
		question = relationQuestion(prevUser, prevAi)
		if hints := candidateHints(trace.Candidates); hints != "" {
			question += "\n" + hints
		}
	}

	for trace.Attempts < g.maxAttempts {
		if err := ctx.Err(); err != nil {
			return trace, err
		}
		trace.Attempts++

		raw, err := g.llm.GenerateReply(ctx, tools.ReplyRequest{
			Model:           g.model,
			Instructions:    gameInstructions,
			Input:           question + "\n\n" + strictRule(exclusion.Words()),
			Temperature:     g.temperature,
			MaxOutputTokens: g.maxTokens,
		})
		if err != nil {
			return trace, fmt.Errorf("generate guess: %w", err)
		}

		word := NormalizeGuess(raw)
		if err := g.validator.Check(word, exclusion.Words()...); err != nil {
			g.log.Debug("guess rejected", "attempt", trace.Attempts, "raw", raw, "reason", err)
			if exclusion.Add(word) {
				trace.Rejected = append(trace.Rejected, word)
			}
			continue
		}

		trace.Word = word
		g.log.Info("guess generated", "word", word, "attempts", trace.Attempts, "candidates", len(trace.Candidates))
		return trace, nil
	}

	g.log.Warn("guess generation exhausted", "attempts", trace.Attempts, "rejected", trace.Rejected)
	return trace, &ExhaustedError{Attempts: trace.Attempts, Rejected: trace.Rejected}
}

// NormalizeGuess reduces a model reply to one lower-case word.
func NormalizeGuess(raw string) string {
	fields := strings.Fields(stripPunct(raw))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(stripPunct(fields[0]))
}

func stripPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
