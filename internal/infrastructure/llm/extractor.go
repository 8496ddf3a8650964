package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pricescout/backend/internal/domain"
)

const extractionSystemPrompt = `You extract product details from shopping queries.
Reply with a single JSON object and nothing else, using these keys:
  "brand": manufacturer name, properly capitalized, or "" if none
  "model": product model without the brand, lowercase, or "" if none
  "specs": capacity, size or variant details as one string, or ""
  "category": one of smartphone, tablet, laptop, audio, wearable, gaming, television, camera, appliance, footwear, grocery, general
  "keywords": up to 5 lowercase search keywords`

const defaultTimeout = 15 * time.Second

// ExtractorConfig holds configuration for building an extractor
type ExtractorConfig struct {
	Enabled         bool
	Providers       []string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	Timeout         time.Duration
}

// Extractor implements domain.LanguageService over an ordered list of providers
type Extractor struct {
	providers []Provider
	breakers  map[string]*CircuitBreaker
	timeout   time.Duration
}

// NewExtractor creates an extractor that tries providers in order
func NewExtractor(providers []Provider, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	breakers := make(map[string]*CircuitBreaker, len(providers))
	for _, p := range providers {
		breakers[p.Name()] = NewCircuitBreaker(p.Name())
	}
	return &Extractor{providers: providers, breakers: breakers, timeout: timeout}
}

// NewExtractorFromConfig builds the configured providers. Providers without
// credentials are skipped. It returns nil when none are usable, which leaves
// interpretation to the rule parser.
func NewExtractorFromConfig(ctx context.Context, config ExtractorConfig) *Extractor {
	if !config.Enabled {
		log.Println("[LLM] disabled by configuration")
		return nil
	}

	var providers []Provider
	for _, name := range config.Providers {
		switch name {
		case "gemini":
			p, err := NewGeminiProvider(ctx, config.GeminiAPIKey, config.GeminiModel)
			if err != nil {
				log.Printf("[LLM] skipping gemini: %v", err)
				continue
			}
			providers = append(providers, p)
		case "claude":
			p, err := NewClaudeProvider(config.AnthropicAPIKey, config.AnthropicModel)
			if err != nil {
				log.Printf("[LLM] skipping claude: %v", err)
				continue
			}
			providers = append(providers, p)
		default:
			log.Printf("[LLM] unknown provider %q", name)
		}
	}

	if len(providers) == 0 {
		log.Println("[LLM] no provider configured, using rule-based parsing only")
		return nil
	}
	return NewExtractor(providers, config.Timeout)
}

// Extract asks each available provider in turn for a JSON descriptor of text.
// The first reply that decodes to a JSON object wins.
func (e *Extractor) Extract(ctx context.Context, text string) (map[string]any, error) {
	var errs []error

	for _, p := range e.providers {
		breaker := e.breakers[p.Name()]
		if !breaker.Allow() {
			errs = append(errs, fmt.Errorf("%s: circuit open", p.Name()))
			continue
		}

		fields, err := e.extractWith(ctx, p, text)
		if err != nil {
			breaker.RecordFailure()
			log.Printf("[LLM] %s failed: %v", p.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		breaker.RecordSuccess()
		return fields, nil
	}

	if len(errs) == 0 {
		return nil, domain.ErrProviderUnavailable
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, errors.Join(errs...))
}

// Close releases providers that hold client resources
func (e *Extractor) Close() error {
	var errs []error
	for _, p := range e.providers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (e *Extractor) extractWith(ctx context.Context, p Provider, text string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := p.Complete(ctx, &CompletionRequest{
		SystemPrompt: extractionSystemPrompt,
		UserPrompt:   fmt.Sprintf("Query: %q", text),
		MaxTokens:    256,
	})
	if err != nil {
		return nil, err
	}
	return decodeObject(resp.Content)
}

// decodeObject parses a reply that should hold one JSON object,
// tolerating markdown code fences around it
func decodeObject(content string) (map[string]any, error) {
	body := stripCodeFence(content)
	if body == "" {
		return nil, fmt.Errorf("empty reply")
	}

	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil, fmt.Errorf("reply is not JSON: %w", err)
	}
	fields, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("reply is not a JSON object")
	}
	return fields, nil
}

func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
