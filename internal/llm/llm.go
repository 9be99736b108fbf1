// Package llm defines the text-analysis provider capability. Providers are
// free-text generators; everything structured about their output lives in
// parse.go so the rest of the system only ever sees a typed Analysis or a
// typed parse failure.
package llm

import (
	"context"
	"fmt"

	"github.com/pvandamm/misinfowatch/internal/config"
	"github.com/pvandamm/misinfowatch/internal/llm/providers"
)

// Provider generates a raw text completion for an analysis prompt. It may
// fail on auth, network or quota errors; callers are expected to degrade
// rather than abort.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, prompt string) (string, error)
}

// New selects a provider once at startup based on configuration. Unknown
// provider names are an error; the mock provider is valid and counts as
// disabled for scoring and drafting.
func New(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderMock, "":
		return providers.NewMock(), nil
	case config.ProviderOpenAI:
		return providers.NewOpenAI(cfg.APIKey, cfg.Model), nil
	case config.ProviderAnthropic:
		return providers.NewAnthropic(cfg.APIKey, cfg.Model), nil
	case config.ProviderOllama:
		return providers.NewOllama(cfg.OllamaURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

// Disabled reports whether p should be treated as "no provider": scoring
// stays heuristic-only and drafting stays template-only.
func Disabled(p Provider) bool {
	return p == nil || p.Name() == config.ProviderMock
}
