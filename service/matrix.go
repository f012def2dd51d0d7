package service

import (
	"context"

	"github.com/clausetrack/backend/model"
)

// MatrixEngine computes the per-clause-type effective matrix for a contract
// and owns the override mutation contract.
type MatrixEngine struct {
	store    *ContractStore
	registry *Registry
}

func NewMatrixEngine(store *ContractStore, registry *Registry) *MatrixEngine {
	return &MatrixEngine{store: store, registry: registry}
}

// MatrixResult is a contract's matrix plus the status the rows were computed
// under. For a contract that hasn't finished processing the rows carry no
// detections yet; the status tells the caller apart "not detected" from "not
// processed".
type MatrixResult struct {
	ProcessingStatus string            `json:"processing_status"`
	Ready            bool              `json:"ready"`
	Rows             []model.MatrixRow `json:"rows"`
}

// Get returns one row per clause type in the catalog, ordered by id. The
// merge is a left join over the catalog: a missing detection reads as false,
// a missing override as nil, and a non-nil override always wins.
func (m *MatrixEngine) Get(ctx context.Context, contractID uint) (*MatrixResult, error) {
	contract, err := m.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	types, err := m.registry.All(ctx)
	if err != nil {
		return nil, err
	}
	detections, err := m.store.GetDetections(ctx, contractID)
	if err != nil {
		return nil, err
	}
	overrides, err := m.store.GetOverrides(ctx, contractID)
	if err != nil {
		return nil, err
	}

	rows := make([]model.MatrixRow, 0, len(types))
	for _, ct := range types {
		detected := detections[ct.ID]
		confirmed := overrides[ct.ID]
		rows = append(rows, model.MatrixRow{
			ClauseType: model.MatrixClauseType{ID: ct.ID, Name: ct.Name},
			Detected:   detected,
			Confirmed:  confirmed,
			Effective:  model.Effective(detected, confirmed),
		})
	}

	return &MatrixResult{
		ProcessingStatus: contract.ProcessingStatus,
		Ready:            model.IsTerminal(contract.ProcessingStatus),
		Rows:             rows,
	}, nil
}

// SetOverride upserts a reviewer's verdict for one clause type on one
// contract. Accepted at any processing status, so a reviewer may annotate
// before detection runs; the verdict merges in once detections exist. The
// operation is idempotent.
func (m *MatrixEngine) SetOverride(ctx context.Context, contractID, clauseTypeID uint, confirmed *bool) error {
	if _, err := m.store.GetContract(ctx, contractID); err != nil {
		return err
	}
	if _, err := m.registry.Get(ctx, clauseTypeID); err != nil {
		return err
	}
	return m.store.UpsertOverride(ctx, contractID, clauseTypeID, confirmed)
}
