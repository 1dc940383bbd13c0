package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mindmeld/config"

	"golang.org/x/time/rate"
)

// ReplyRequest is one Responses API call: instructions + input(string).
type ReplyRequest struct {
	Model           string
	Instructions    string
	Input           string
	Temperature     float64
	MaxOutputTokens int
}

// APIError is a non-2xx answer from the OpenAI API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai error %d: %s", e.Status, e.Body)
}

// OpenAIClient calls the Responses and Embeddings endpoints. All calls share
// one rate limiter so a retry loop cannot hammer the API.
type OpenAIClient struct {
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	dimension      int
	httpClient     *http.Client
	limiter        *rate.Limiter
}

func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(cfg.ApiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &OpenAIClient{
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		dimension:      cfg.EmbeddingDimension,
		httpClient:     &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}, nil
}

// GenerateReply calls OpenAI Responses API and returns assistant text.
func (c *OpenAIClient) GenerateReply(ctx context.Context, r ReplyRequest) (string, error) {
	model := r.Model
	if model == "" {
		model = c.model
	}

	reqBody := map[string]any{
		"model":        model,
		"instructions": r.Instructions,
		"input":        r.Input,
		"temperature":  r.Temperature,
	}
	if r.MaxOutputTokens > 0 {
		reqBody["max_output_tokens"] = r.MaxOutputTokens
	}

	var parsed struct {
		Output []struct {
			Type    string `json:"type"`
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := c.post(ctx, "/v1/responses", reqBody, &parsed); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, item := range parsed.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, ct := range item.Content {
				if ct.Type == "output_text" && strings.TrimSpace(ct.Text) != "" {
					if sb.Len() > 0 {
						sb.WriteString("\n")
					}
					sb.WriteString(ct.Text)
				}
			}
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("empty response from model (no output_text items found)")
	}
	return out, nil
}

// EmbedText calls OpenAI Embeddings API and returns the vector.
func (c *OpenAIClient) EmbedText(ctx context.Context, text string) ([]float64, error) {
	reqBody := map[string]any{
		"model": c.embeddingModel,
		"input": text,
	}

	var parsed struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/v1/embeddings", reqBody, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	vec := parsed.Data[0].Embedding
	if c.dimension > 0 && len(vec) != c.dimension {
		return nil, fmt.Errorf("embedding dimension %d, expected %d", len(vec), c.dimension)
	}
	return vec, nil
}

// EmbeddingModel identifies the vectors this client produces.
func (c *OpenAIClient) EmbeddingModel() string {
	return c.embeddingModel
}

func (c *OpenAIClient) post(ctx context.Context, path string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
