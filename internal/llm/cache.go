package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one cached completion. Metadata travels with the response so
// cache hits can still report usage.
type Entry struct {
	Response string        `json:"response"`
	Metadata EntryMetadata `json:"metadata"`
	Model    string        `json:"model"`
}

type EntryMetadata struct {
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	StopReason   string `json:"stop_reason,omitempty"`
}

// Cache is the storage behind deterministic response reuse. Read misses
// and write failures are both non-fatal to the caller.
type Cache interface {
	Read(key string) (*Entry, bool)
	Write(key string, entry *Entry)
}

// CacheKey derives the deterministic key for one generation: SHA-256
// over the prompt and a canonical JSON encoding of the call parameters.
// Map keys are sorted by the encoder, so equal parameter sets always
// produce equal keys.
func CacheKey(prompt string, params map[string]any) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		encoded = []byte("{}")
	}
	sum := sha256.Sum256([]byte(prompt + ":" + string(encoded)))
	return hex.EncodeToString(sum[:])
}

// ── FileCache ──────────────────────────────────────────────

type FileCache struct {
	dir string
}

func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache) Read(key string) (*Entry, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Printf("WARN: corrupt cache entry %s: %v", key, err)
		return nil, false
	}
	return &entry, true
}

func (c *FileCache) Write(key string, entry *Entry) {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		log.Printf("WARN: cache encode failed for %s: %v", key, err)
		return
	}
	// Write-then-rename so a crash never leaves a half-written entry.
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Printf("WARN: cache write failed for %s: %v", key, err)
		return
	}
	if err := os.Rename(tmp, c.path(key)); err != nil {
		log.Printf("WARN: cache rename failed for %s: %v", key, err)
	}
}

// ── RedisCache ─────────────────────────────────────────────

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl, prefix: "llmcache:"}, nil
}

func (c *RedisCache) Read(key string) (*Entry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("WARN: redis cache read failed for %s: %v", key, err)
		}
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Printf("WARN: corrupt redis cache entry %s: %v", key, err)
		return nil, false
	}
	return &entry, true
}

func (c *RedisCache) Write(key string, entry *Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("WARN: cache encode failed for %s: %v", key, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		log.Printf("WARN: redis cache write failed for %s: %v", key, err)
	}
}
