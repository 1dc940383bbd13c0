package mindmeld

import (
	"context"
	"fmt"
	"strings"

	"mindmeld/config"
	"mindmeld/tools"
)

// Judge decides whether the player and the AI said the same word.
type Judge struct {
	llm   ReplyGenerator
	model string
}

func NewJudge(llm ReplyGenerator, conf config.OpenAIConfig) *Judge {
	model := conf.JudgeModel
	if model == "" {
		model = conf.Model
	}
	return &Judge{llm: llm, model: model}
}

// IsMatch: suffix variants match without a model call. Otherwise only a
// bare "true" from the model counts.
func (j *Judge) IsMatch(ctx context.Context, a, b string) (bool, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false, nil
	}
	if IsSameWord(a, b) {
		return true, nil
	}
	if j.llm == nil {
		return false, nil
	}

	out, err := j.llm.GenerateReply(ctx, tools.ReplyRequest{
		Model:        j.model,
		Instructions: judgeInstructions,
		Input:        judgeInput(a, b),
		Temperature:  0,
	})
	if err != nil {
		return false, fmt.Errorf("check match: %w", err)
	}
	return strings.TrimSpace(out) == "true", nil
}
