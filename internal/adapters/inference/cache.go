package inference

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/TJ-dotcom/ApexMatchAI/internal/domain/embedding"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/logger"
	"github.com/TJ-dotcom/ApexMatchAI/pkg/metrics"
)

const defaultCacheTTL = 24 * time.Hour

// redisKV is the subset of redis.Cmdable the cache needs.
type redisKV interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedEmbedder memoises vectors in Redis keyed by model and text.
// Concurrent misses for the same batch share a single upstream call.
// Redis failures are logged and bypassed; they never fail an Embed call.
type CachedEmbedder struct {
	next   embedding.Embedder
	kv     redisKV
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	log    logger.Logger
}

// CacheOption configures a CachedEmbedder.
type CacheOption func(*CachedEmbedder)

// WithCacheTTL sets the expiry of cached vectors.
func WithCacheTTL(d time.Duration) CacheOption {
	return func(c *CachedEmbedder) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithCacheLogger sets the logger used to report cache failures.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachedEmbedder) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCachedEmbedder wraps next. The model name namespaces the keys so that
// switching models never serves stale vectors.
func NewCachedEmbedder(next embedding.Embedder, kv redisKV, modelName string, opts ...CacheOption) *CachedEmbedder {
	c := &CachedEmbedder{
		next:   next,
		kv:     kv,
		prefix: "apexmatch:emb:" + modelName + ":",
		ttl:    defaultCacheTTL,
		log:    logger.Named("embedding-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Embed implements embedding.Embedder.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	out := make([][]float32, len(texts))
	var missIdx []int
	vals, err := c.kv.MGet(ctx, keys...).Result()
	if err != nil || len(vals) != len(keys) {
		if err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn(ctx, "embedding cache read failed", logger.Error(err))
		}
		metrics.RecordEmbeddingCache("error")
		vals = nil
	}
	for i := range texts {
		if vals != nil {
			if s, ok := vals[i].(string); ok {
				if v, ok := decodeVector(s); ok {
					out[i] = v
					metrics.RecordEmbeddingCache("hit")
					continue
				}
			}
		}
		metrics.RecordEmbeddingCache("miss")
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	missTexts := make([]string, len(missIdx))
	missKeys := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
		missKeys[j] = keys[i]
	}

	v, err, _ := c.group.Do(strings.Join(missKeys, "|"), func() (interface{}, error) {
		return c.next.Embed(ctx, missTexts)
	})
	if err != nil {
		return nil, err
	}
	fresh := v.([][]float32)
	if len(fresh) != len(missIdx) {
		return nil, fmt.Errorf("%w: %d vectors for %d texts", embedding.ErrDegenerateOutput, len(fresh), len(missIdx))
	}

	for j, i := range missIdx {
		out[i] = fresh[j]
		if len(fresh[j]) == 0 {
			continue
		}
		if err := c.kv.Set(ctx, missKeys[j], encodeVector(fresh[j]), c.ttl).Err(); err != nil {
			c.log.Debug(ctx, "embedding cache write failed", logger.Error(err))
		}
	}
	return out, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(s string) ([]float32, bool) {
	if len(s) == 0 || len(s)%4 != 0 {
		return nil, false
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, true
}
