package model

import (
	"time"
)

// Contract represents an uploaded contract document and its processing state
type Contract struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	OriginalFilename string     `gorm:"size:255;not null" json:"original_filename"`
	StorageBackend   string     `gorm:"size:32;not null" json:"-"`
	StorageKey       string     `gorm:"size:128;not null" json:"-"`
	SizeBytes        int64      `gorm:"not null" json:"size_bytes"`
	SHA256Hex        string     `gorm:"size:64;not null" json:"sha256"`
	ProcessingStatus string     `gorm:"size:16;not null;index" json:"processing_status"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ProcessedAt      *time.Time `json:"processed_at"`
}

// Processing status constants
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// CanTransition reports whether a contract may move from one status to another.
// Processed and failed are terminal; a failed contract is re-uploaded, never retried in place.
func CanTransition(from, to string) bool {
	switch from {
	case StatusUploaded:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusProcessed || to == StatusFailed
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further transitions
func IsTerminal(status string) bool {
	return status == StatusProcessed || status == StatusFailed
}
