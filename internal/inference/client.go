// Package inference provides the Gemini client used for image analysis and
// problem generation.
package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quizdeck/quizdeck/pkg/lifecycle"
)

// System provides text and vision generation against configured Gemini
// models.
type System interface {
	// GenerateText runs the generation model over a text prompt and returns
	// the concatenated text response.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// AnalyzeImage runs the analysis model over an image plus instruction
	// prompt and returns the concatenated text response.
	AnalyzeImage(ctx context.Context, mimeType string, data []byte, prompt string) (string, error)
	// Start registers a shutdown hook that closes the client.
	Start(lc *lifecycle.Coordinator) error
}

type gemini struct {
	client          *genai.Client
	analysisModel   string
	generationModel string
	timeout         time.Duration
	logger          *slog.Logger
}

// New creates a Gemini inference system from the given configuration.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &gemini{
		client:          client,
		analysisModel:   cfg.AnalysisModel,
		generationModel: cfg.GenerationModel,
		timeout:         cfg.RequestTimeoutDuration(),
		logger:          logger.With("system", "inference"),
	}, nil
}

func (g *gemini) Start(lc *lifecycle.Coordinator) error {
	g.logger.Info("inference system ready",
		"analysisModel", g.analysisModel,
		"generationModel", g.generationModel,
	)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := g.client.Close(); err != nil {
			g.logger.Error("inference client close failed", "error", err)
		}
	})

	return nil
}

func (g *gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, g.generationModel, genai.Text(prompt))
}

func (g *gemini) AnalyzeImage(ctx context.Context, mimeType string, data []byte, prompt string) (string, error) {
	image := genai.Blob{MIMEType: mimeType, Data: data}
	return g.generate(ctx, g.analysisModel, image, genai.Text(prompt))
}

func (g *gemini) generate(ctx context.Context, modelName string, parts ...genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(modelName)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			result += string(txt)
		}
	}

	return result, nil
}
