package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TJ-dotcom/ApexMatchAI/pkg/metrics"
)

const (
	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 512
)

// TEIClient talks to a text-embeddings-inference server. The same type
// serves the /embed route of an embedding model and the /rerank route of a
// cross-encoder model.
type TEIClient struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// TEIOption configures a TEIClient.
type TEIOption func(*TEIClient)

// WithTEITimeout sets the per-request timeout.
func WithTEITimeout(d time.Duration) TEIOption {
	return func(c *TEIClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTEIHTTPClient sets a custom HTTP client.
func WithTEIHTTPClient(hc *http.Client) TEIOption {
	return func(c *TEIClient) {
		c.httpClient = hc
	}
}

// NewTEIClient creates a client for the server at endpoint, e.g. "http://localhost:8080".
func NewTEIClient(endpoint string, opts ...TEIOption) *TEIClient {
	c := &TEIClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

type embedRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

// Embed implements embedding.Embedder via POST /embed.
func (c *TEIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	start := time.Now()
	var out [][]float32
	err := c.post(ctx, "/embed", embedRequest{Inputs: texts, Truncate: true}, &out)
	recordCall("tei_embed", start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	RawScores bool     `json:"raw_scores"`
	Truncate  bool     `json:"truncate"`
}

type rerankHit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Score implements rerank.CrossEncoder via POST /rerank. The server returns
// hits sorted by score; they are mapped back to candidate order here.
func (c *TEIClient) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return []float64{}, nil
	}
	start := time.Now()
	var hits []rerankHit
	err := c.post(ctx, "/rerank", rerankRequest{Query: query, Texts: candidates, RawScores: true, Truncate: true}, &hits)
	if err == nil {
		var scores []float64
		scores, err = scatter(hits, len(candidates))
		recordCall("tei_rerank", start, err)
		return scores, err
	}
	recordCall("tei_rerank", start, err)
	return nil, err
}

func scatter(hits []rerankHit, n int) ([]float64, error) {
	if len(hits) != n {
		return nil, fmt.Errorf("%w: %d scores for %d candidates", ErrBadResponse, len(hits), n)
	}
	scores := make([]float64, n)
	seen := make([]bool, n)
	for _, h := range hits {
		if h.Index < 0 || h.Index >= n || seen[h.Index] {
			return nil, fmt.Errorf("%w: bad index %d", ErrBadResponse, h.Index)
		}
		seen[h.Index] = true
		scores[h.Index] = h.Score
	}
	return scores, nil
}

func (c *TEIClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("%w: %s %d: %s", ErrBadStatus, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrBadResponse, path, err)
	}
	return nil
}

func recordCall(model string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordModelCall(model, outcome, float64(time.Since(start).Milliseconds()))
}
