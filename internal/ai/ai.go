package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/01moynul/koodos-golang/internal/circuitbreaker"
	"github.com/01moynul/koodos-golang/internal/logger"
	"github.com/01moynul/koodos-golang/internal/metrics"
)

const defaultModel = "gemini-1.5-flash"

var ErrNoCandidates = errors.New("ai: response contained no text candidates")

// textModel is the slice of *genai.GenerativeModel the service needs.
type textModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// AIService holds the Gemini client used to write meta descriptions.
// It satisfies seo.Generator.
type AIService struct {
	Client  *genai.Client
	model   textModel
	breaker *circuitbreaker.CircuitBreaker
}

// NewAIService initializes the Gemini client for modelName.
func NewAIService(ctx context.Context, apiKey, modelName string, breaker *circuitbreaker.CircuitBreaker) (*AIService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if modelName == "" {
		modelName = defaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(
			"You are the KOODOS SEO assistant. You write concise, accurate meta descriptions for gaming and entertainment pages.",
		)},
	}
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(120)

	return &AIService{Client: client, model: model, breaker: breaker}, nil
}

// Generate sends prompt to Gemini and returns the first text candidate.
// While the breaker is open it fails fast with circuitbreaker.ErrCircuitOpen.
func (s *AIService) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	call := func() error {
		metrics.GenerationRequests.Inc()
		out, err := s.generateOnce(ctx, prompt)
		if err != nil {
			metrics.GenerationErrors.Inc()
			return err
		}
		text = out
		return nil
	}

	var err error
	if s.breaker != nil {
		err = s.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		logger.Log.Debug("gemini generation failed", zap.Error(err))
		return "", err
	}
	return text, nil
}

func (s *AIService) generateOnce(ctx context.Context, prompt string) (string, error) {
	res, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("error sending message: %w", err)
	}
	return responseText(res)
}

func responseText(res *genai.GenerateContentResponse) (string, error) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", ErrNoCandidates
	}

	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrNoCandidates
	}
	return b.String(), nil
}

// Close releases the underlying client.
func (s *AIService) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}
