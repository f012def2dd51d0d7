package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clausetrack/backend/config"
	"github.com/clausetrack/backend/model"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Connect establishes a database connection based on the configured type
func Connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.ClauseType{},
		&model.ClausePattern{},
		&model.Contract{},
		&model.DetectionResult{},
		&model.ClauseOverride{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	slog.Info("database connected", "type", cfg.Type)
	return db, nil
}

// ContractStore is the persistence surface for contracts, detections and overrides
type ContractStore struct {
	db *gorm.DB
}

func NewContractStore(db *gorm.DB) *ContractStore {
	return &ContractStore{db: db}
}

// Ping verifies database connectivity
func (s *ContractStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateContract inserts a new contract record
func (s *ContractStore) CreateContract(ctx context.Context, c *model.Contract) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// GetContract returns a contract by id
func (s *ContractStore) GetContract(ctx context.Context, id uint) (*model.Contract, error) {
	var c model.Contract
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("contract %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListContracts returns all contracts, newest-created first
func (s *ContractStore) ListContracts(ctx context.Context) ([]model.Contract, error) {
	var contracts []model.Contract
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&contracts).Error
	return contracts, err
}

// UpdateStatusIf atomically moves a contract from an expected status to the
// next one, updating processed_at and error_message in the same statement.
// It reports whether the conditional update matched; a false return means the
// contract was not in the expected status (or does not exist).
func (s *ContractStore) UpdateStatusIf(ctx context.Context, id uint, expect, next string, processedAt *time.Time, errMsg *string) (bool, error) {
	if !model.CanTransition(expect, next) {
		return false, fmt.Errorf("illegal transition %s -> %s", expect, next)
	}
	res := s.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("id = ? AND processing_status = ?", id, expect).
		Updates(map[string]any{
			"processing_status": next,
			"processed_at":      processedAt,
			"error_message":     errMsg,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// PutDetections writes the full detection set for a contract in one
// transaction so readers never observe a partial set.
func (s *ContractStore) PutDetections(ctx context.Context, contractID uint, detected map[uint]bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", contractID).
			Delete(&model.DetectionResult{}).Error; err != nil {
			return err
		}
		rows := make([]model.DetectionResult, 0, len(detected))
		for clauseTypeID, d := range detected {
			rows = append(rows, model.DetectionResult{
				ContractID:   contractID,
				ClauseTypeID: clauseTypeID,
				Detected:     d,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// GetDetections returns the detection map for a contract, keyed by clause type id
func (s *ContractStore) GetDetections(ctx context.Context, contractID uint) (map[uint]bool, error) {
	var rows []model.DetectionResult
	if err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uint]bool, len(rows))
	for _, r := range rows {
		result[r.ClauseTypeID] = r.Detected
	}
	return result, nil
}

// UpsertOverride creates or updates the override row for one (contract, clause
// type) pair. Last write wins; a nil confirmed is stored, not deleted.
func (s *ContractStore) UpsertOverride(ctx context.Context, contractID, clauseTypeID uint, confirmed *bool) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contract_id"}, {Name: "clause_type_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"confirmed", "updated_at"}),
		}).
		Create(&model.ClauseOverride{
			ContractID:   contractID,
			ClauseTypeID: clauseTypeID,
			Confirmed:    confirmed,
		}).Error
}

// GetOverrides returns the override map for a contract, keyed by clause type id
func (s *ContractStore) GetOverrides(ctx context.Context, contractID uint) (map[uint]*bool, error) {
	var rows []model.ClauseOverride
	if err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uint]*bool, len(rows))
	for _, r := range rows {
		result[r.ClauseTypeID] = r.Confirmed
	}
	return result, nil
}

// ListClauseTypes returns the catalog with patterns, ordered by id
func (s *ContractStore) ListClauseTypes(ctx context.Context) ([]model.ClauseType, error) {
	var types []model.ClauseType
	err := s.db.WithContext(ctx).
		Preload("Patterns").
		Order("id").
		Find(&types).Error
	return types, err
}

// CreateClauseType inserts a clause type with its patterns
func (s *ContractStore) CreateClauseType(ctx context.Context, ct *model.ClauseType) error {
	return s.db.WithContext(ctx).Create(ct).Error
}

// ClauseTypeNameExists reports whether a clause type with the name exists
func (s *ContractStore) ClauseTypeNameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.ClauseType{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}
