package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mindmeld/config"
	"mindmeld/logger"

	goredis "github.com/redis/go-redis/v9"
)

type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// CachedEmbedder keeps embeddings in Redis. The same word pairs come back
// game after game, so most retrieval queries are cache hits. Redis failures
// are logged and fall through to the wrapped embedder.
type CachedEmbedder struct {
	next  Embedder
	rdb   *goredis.Client
	log   *logger.Logger
	model string
	ttl   time.Duration
}

// NewRedisClient connects and pings; callers decide whether to run without a cache.
func NewRedisClient(cfg config.RedisConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewCachedEmbedder(next Embedder, rdb *goredis.Client, log *logger.Logger, model string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		next:  next,
		rdb:   rdb,
		log:   log.With("service", "EmbeddingCache"),
		model: model,
		ttl:   ttl,
	}
}

func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	key := c.key(text)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float64
		if jerr := json.Unmarshal(raw, &vec); jerr == nil && len(vec) > 0 {
			return vec, nil
		}
		c.log.Warn("embedding cache entry unreadable", "key", key)
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn("embedding cache get failed", "error", err)
	}

	vec, err := c.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	if b, jerr := json.Marshal(vec); jerr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.log.Warn("embedding cache set failed", "error", serr)
		}
	}
	return vec, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "mindmeld:emb:" + c.model + ":" + hex.EncodeToString(sum[:])
}
