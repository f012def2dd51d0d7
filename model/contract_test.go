package model

import (
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"uploaded to processing", StatusUploaded, StatusProcessing, true},
		{"processing to processed", StatusProcessing, StatusProcessed, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"uploaded to processed", StatusUploaded, StatusProcessed, false},
		{"uploaded to failed", StatusUploaded, StatusFailed, false},
		{"processed is terminal", StatusProcessed, StatusProcessing, false},
		{"failed is terminal", StatusFailed, StatusProcessing, false},
		{"failed cannot complete", StatusFailed, StatusProcessed, false},
		{"no self transition", StatusProcessing, StatusProcessing, false},
		{"unknown status", "bogus", StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(StatusUploaded) || IsTerminal(StatusProcessing) {
		t.Error("uploaded and processing must not be terminal")
	}
	if !IsTerminal(StatusProcessed) || !IsTerminal(StatusFailed) {
		t.Error("processed and failed must be terminal")
	}
}
