package model

import (
	"time"
)

// ClauseType is a catalog entry for a contractual provision the scanner can detect
type ClauseType struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string          `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Patterns  []ClausePattern `gorm:"constraint:OnDelete:CASCADE" json:"patterns"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// ClausePattern is a match rule belonging to a clause type. Plain patterns are
// matched as case-insensitive substrings, regex patterns as case-insensitive
// regular expressions.
type ClausePattern struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ClauseTypeID uint      `gorm:"not null;index" json:"-"`
	Pattern      string    `gorm:"size:500;not null" json:"pattern"`
	IsRegex      bool      `gorm:"not null;default:false" json:"is_regex"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// DetectionResult records the automatic finding for one (contract, clause type)
// pair. The full set for a contract is written in one transaction when
// processing completes and is immutable afterwards.
type DetectionResult struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	ContractID   uint `gorm:"not null;uniqueIndex:idx_detection_contract_clause"`
	ClauseTypeID uint `gorm:"not null;uniqueIndex:idx_detection_contract_clause"`
	Detected     bool `gorm:"not null"`
}

// ClauseOverride is a reviewer's verdict for one (contract, clause type) pair.
// A nil Confirmed defers to detection; the row is kept so an explicit clear is
// still an upsert, not a delete.
type ClauseOverride struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	ContractID   uint      `gorm:"not null;uniqueIndex:idx_override_contract_clause"`
	ClauseTypeID uint      `gorm:"not null;uniqueIndex:idx_override_contract_clause"`
	Confirmed    *bool
	UpdatedAt    time.Time `json:"-"`
}

// MatrixRow is the derived per-clause-type view for one contract. It is
// computed on read and never persisted.
type MatrixRow struct {
	ClauseType MatrixClauseType `json:"clause_type"`
	Detected   bool             `json:"detected"`
	Confirmed  *bool            `json:"confirmed"`
	Effective  bool             `json:"effective"`
}

// MatrixClauseType is the clause type summary embedded in a matrix row
type MatrixClauseType struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Effective merges an override with a detection: a non-nil override wins,
// otherwise the detection stands.
func Effective(detected bool, confirmed *bool) bool {
	if confirmed != nil {
		return *confirmed
	}
	return detected
}
