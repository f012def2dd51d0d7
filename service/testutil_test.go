package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clausetrack/backend/config"
	"github.com/clausetrack/backend/model"
)

func newTestStore(t *testing.T) *ContractStore {
	t.Helper()
	db, err := Connect(&config.DatabaseConfig{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}
	return NewContractStore(db)
}

// seedCatalog installs the three-type catalog used across the service tests:
// 1 Confidentiality, 2 Indemnity, 5 Termination.
func seedCatalog(t *testing.T, store *ContractStore) *Registry {
	t.Helper()
	ctx := context.Background()

	types := []model.ClauseType{
		{ID: 1, Name: "Confidentiality", Patterns: []model.ClausePattern{
			{Pattern: "confidential"},
			{Pattern: `non[- ]disclosure`, IsRegex: true},
		}},
		{ID: 2, Name: "Indemnity", Patterns: []model.ClausePattern{
			{Pattern: "indemnif"},
		}},
		{ID: 5, Name: "Termination", Patterns: []model.ClausePattern{
			{Pattern: `terminat(e|ion)`, IsRegex: true},
		}},
	}
	for i := range types {
		if err := store.CreateClauseType(ctx, &types[i]); err != nil {
			t.Fatalf("Failed to seed clause type %s: %v", types[i].Name, err)
		}
	}
	return NewRegistry(store)
}

type fakeDetector struct {
	detected map[uint]bool
	err      error
	calls    int
}

func (d *fakeDetector) Detect(ctx context.Context, text string) (map[uint]bool, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.detected, nil
}

func newTestLifecycle(t *testing.T, detector Detector) (*Lifecycle, *ContractStore, *Registry) {
	t.Helper()
	store := newTestStore(t)
	registry := seedCatalog(t, store)

	storage, err := NewLocalStorage(&config.LocalConfig{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}

	return NewLifecycle(store, registry, storage, detector), store, registry
}

func submitContract(t *testing.T, l *Lifecycle, filename, text string) *model.Contract {
	t.Helper()
	contract, err := l.Submit(context.Background(), filename, strings.NewReader(text))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return contract
}
