package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "text-embedding-004"
	// Upper bound on contents per EmbedContent call.
	geminiBatchSize = 100
)

// contentEmbedder is the slice of *genai.Models used here.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiEmbedder produces embeddings with the Gemini API.
type GeminiEmbedder struct {
	models    contentEmbedder
	modelName string
	dims      int32
}

// NewGeminiEmbedder creates an embedder backed by the Gemini API.
// dims <= 0 keeps the model's native output width.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dims int) (*GeminiEmbedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", ErrMissingConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiEmbedder(client.Models, model, dims), nil
}

func newGeminiEmbedder(models contentEmbedder, model string, dims int) *GeminiEmbedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	g := &GeminiEmbedder{models: models, modelName: model}
	if dims > 0 {
		g.dims = int32(dims) //nolint:gosec // bounded by config validation
	}
	return g
}

// Model returns the embedding model name.
func (g *GeminiEmbedder) Model() string { return g.modelName }

// Embed implements embedding.Embedder.
func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for lo := 0; lo < len(texts); lo += geminiBatchSize {
		hi := min(lo+geminiBatchSize, len(texts))
		vecs, err := g.embedBatch(ctx, texts[lo:hi])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (g *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		// The API rejects empty parts.
		if strings.TrimSpace(t) == "" {
			t = " "
		}
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	cfg := &genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"}
	if g.dims > 0 {
		dims := g.dims
		cfg.OutputDimensionality = &dims
	}

	start := time.Now()
	resp, err := g.models.EmbedContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		recordCall("gemini_embed", start, err)
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		err = fmt.Errorf("%w: gemini returned %d embeddings for %d texts", ErrBadResponse, embeddingCount(resp), len(texts))
		recordCall("gemini_embed", start, err)
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil {
			err = fmt.Errorf("%w: nil embedding at %d", ErrBadResponse, i)
			recordCall("gemini_embed", start, err)
			return nil, err
		}
		out[i] = e.Values
	}
	recordCall("gemini_embed", start, nil)
	return out, nil
}

func embeddingCount(resp *genai.EmbedContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Embeddings)
}
