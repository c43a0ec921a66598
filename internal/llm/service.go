package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.8
	jsonTemperature    = 0.5
	defaultAttempts    = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

// GenerateOptions tunes one generation. Zero values take the service
// defaults. Extra parameters participate in the cache key, so two calls
// that differ only in Extra never share an entry.
type GenerateOptions struct {
	System        string
	MaxTokens     int
	Temperature   float64
	SchemaVersion string
	Extra         map[string]any
}

// Service wraps a provider Client with deterministic caching, retry on
// transient failures, and per-key request collapsing.
type Service struct {
	client      Client
	cache       Cache // nil disables caching
	model       string
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration

	group singleflight.Group
	sleep func(time.Duration)
}

func NewService(client Client, cache Cache, model string) *Service {
	return &Service{
		client:      client,
		cache:       cache,
		model:       model,
		maxAttempts: defaultAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		sleep:       time.Sleep,
	}
}

func (s *Service) ModelName() string {
	return s.model
}

// Generate returns the completion text for prompt, serving identical
// requests from the cache. Concurrent callers with the same key share a
// single provider call.
func (s *Service) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}

	key := s.cacheKey(prompt, opts)

	if s.cache != nil {
		if entry, ok := s.cache.Read(key); ok {
			log.Printf("[llm] cache hit %s", key[:12])
			return entry.Response, nil
		}
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		// Another goroutine may have filled the cache while this one
		// waited on the flight group.
		if s.cache != nil {
			if entry, ok := s.cache.Read(key); ok {
				return entry.Response, nil
			}
		}

		resp, err := s.completeWithRetry(ctx, CompletionRequest{
			System:      opts.System,
			Prompt:      prompt,
			MaxTokens:   opts.MaxTokens,
			Temperature: opts.Temperature,
		})
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			s.cache.Write(key, &Entry{
				Response: resp.Text,
				Metadata: EntryMetadata{
					InputTokens:  resp.InputTokens,
					OutputTokens: resp.OutputTokens,
					StopReason:   resp.StopReason,
				},
				Model: s.model,
			})
		}

		log.Printf("[llm] generated %d in / %d out tokens", resp.InputTokens, resp.OutputTokens)
		return resp.Text, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// GenerateJSON runs a generation pinned to the structured-output
// temperature and extracts the JSON payload from the response.
func (s *Service) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (raw []byte, err error) {
	opts.Temperature = jsonTemperature

	text, err := s.Generate(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}

	extracted, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	return extracted, nil
}

func (s *Service) completeWithRetry(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := s.baseDelay << uint(attempt-1)
			if delay > s.maxDelay {
				delay = s.maxDelay
			}
			log.Printf("[llm] retrying in %v (attempt %d/%d)", delay, attempt+1, s.maxAttempts)
			s.sleep(delay)
		}

		resp, err := s.client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return nil, fmt.Errorf("llm call: %w", err)
		}
		log.Printf("WARN: llm attempt %d failed: %v", attempt+1, err)
	}
	return nil, &GenerationError{Attempts: s.maxAttempts, Err: lastErr}
}

func (s *Service) cacheKey(prompt string, opts GenerateOptions) string {
	params := map[string]any{
		"model":       s.model,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
	}
	if opts.System != "" {
		params["system"] = opts.System
	}
	if opts.SchemaVersion != "" {
		params["schema_version"] = opts.SchemaVersion
	}
	for k, v := range opts.Extra {
		params[k] = v
	}
	return CacheKey(prompt, params)
}
