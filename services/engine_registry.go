// services/engine_registry.go
package services

import (
	"fmt"

	"github.com/BrandSignal-AI/brandsignal-workflows/internal/config"
)

// engineRegistry maps engine identifiers to adapters. Resolution failure
// is a plain not-found result so the runner can record it per pair.
type engineRegistry struct {
	adapters map[string]EngineAdapter
}

// NewEngineRegistry builds the registry with every supported engine.
func NewEngineRegistry(cfg *config.Config, costService CostService) EngineResolver {
	adapters := make(map[string]EngineAdapter)
	for _, adapter := range []EngineAdapter{
		NewOpenAIEngine(cfg, costService),
		NewAnthropicEngine(cfg, costService),
		NewPerplexityEngine(cfg, costService),
		NewGeminiEngine(cfg, costService),
	} {
		adapters[adapter.Name()] = adapter
	}
	fmt.Printf("[NewEngineRegistry] Registered %d engines\n", len(adapters))
	return &engineRegistry{adapters: adapters}
}

// NewEngineRegistryWith builds a registry from explicit adapters.
func NewEngineRegistryWith(adapters ...EngineAdapter) EngineResolver {
	m := make(map[string]EngineAdapter, len(adapters))
	for _, adapter := range adapters {
		m[adapter.Name()] = adapter
	}
	return &engineRegistry{adapters: m}
}

func (r *engineRegistry) Resolve(engineID string) (EngineAdapter, bool) {
	adapter, ok := r.adapters[engineID]
	return adapter, ok
}
