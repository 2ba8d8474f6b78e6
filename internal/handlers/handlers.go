package handlers

import (
	"context"

	"citypulse/internal/cache"
	"citypulse/internal/engine"
	"citypulse/internal/models"
	"citypulse/internal/store"
)

// Searcher is the deep-search backend. Optional; the handler falls back
// to the in-memory snapshot when absent.
type Searcher interface {
	Search(ctx context.Context, query string, size int) ([]models.Event, error)
}

// PreferenceWriter persists the durable half of session preferences.
type PreferenceWriter interface {
	SetBool(ctx context.Context, key string, value bool) error
}

type Handlers struct {
	engine       *engine.Engine
	guard        *engine.Guard
	events       *store.EventStore
	searcher     Searcher
	preferences  PreferenceWriter
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(eng *engine.Engine, guard *engine.Guard, events *store.EventStore, searcher Searcher, preferences PreferenceWriter, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		engine:       eng,
		guard:        guard,
		events:       events,
		searcher:     searcher,
		preferences:  preferences,
		valkeyClient: valkeyClient,
	}
}
