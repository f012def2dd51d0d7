package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/clausetrack/backend/config"
	"github.com/clausetrack/backend/model"
)

// Registry is the clause type catalog. The catalog is read-mostly: it is
// loaded once and cached; creating a clause type invalidates the cache.
type Registry struct {
	store *ContractStore

	mu     sync.RWMutex
	cached []model.ClauseType
}

func NewRegistry(store *ContractStore) *Registry {
	return &Registry{store: store}
}

// Seed populates an empty catalog from configuration. A non-empty catalog is
// left untouched so operator edits survive restarts.
func (r *Registry) Seed(ctx context.Context, seeds []config.ClauseTypeSeed) error {
	existing, err := r.store.ListClauseTypes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 || len(seeds) == 0 {
		return nil
	}

	for _, seed := range seeds {
		ct := model.ClauseType{Name: strings.TrimSpace(seed.Name)}
		for _, p := range seed.Patterns {
			ct.Patterns = append(ct.Patterns, model.ClausePattern{
				Pattern: strings.TrimSpace(p.Pattern),
				IsRegex: p.IsRegex,
			})
		}
		if err := r.store.CreateClauseType(ctx, &ct); err != nil {
			return err
		}
	}
	slog.Info("clause type catalog seeded", "count", len(seeds))
	return nil
}

// All returns every clause type with patterns, ordered by id
func (r *Registry) All(ctx context.Context) ([]model.ClauseType, error) {
	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	types, err := r.store.ListClauseTypes(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cached = types
	r.mu.Unlock()
	return types, nil
}

// Get returns one clause type by id
func (r *Registry) Get(ctx context.Context, id uint) (*model.ClauseType, error) {
	types, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].ID == id {
			return &types[i], nil
		}
	}
	return nil, notFoundError("clause type %d not found", id)
}

// Create adds a clause type to the catalog
func (r *Registry) Create(ctx context.Context, name string, patterns []model.ClausePattern) (*model.ClauseType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("clause type name is required")
	}
	if len(name) > 200 {
		return nil, validationError("clause type name exceeds 200 characters")
	}
	for _, p := range patterns {
		if strings.TrimSpace(p.Pattern) == "" {
			return nil, validationError("pattern text is required")
		}
		if len(p.Pattern) > 500 {
			return nil, validationError("pattern exceeds 500 characters")
		}
	}

	exists, err := r.store.ClauseTypeNameExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictError("clause type %q already exists", name)
	}

	ct := model.ClauseType{Name: name}
	for _, p := range patterns {
		ct.Patterns = append(ct.Patterns, model.ClausePattern{
			Pattern: strings.TrimSpace(p.Pattern),
			IsRegex: p.IsRegex,
		})
	}
	if err := r.store.CreateClauseType(ctx, &ct); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
	return &ct, nil
}
