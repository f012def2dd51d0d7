package model

import (
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestEffective(t *testing.T) {
	tests := []struct {
		name      string
		detected  bool
		confirmed *bool
		want      bool
	}{
		{"override true wins over not detected", false, boolPtr(true), true},
		{"override false wins over detected", true, boolPtr(false), false},
		{"override agrees with detection", true, boolPtr(true), true},
		{"nil override defers to detected", true, nil, true},
		{"nil override defers to not detected", false, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Effective(tt.detected, tt.confirmed); got != tt.want {
				t.Errorf("Effective(%v, %v) = %v, want %v", tt.detected, tt.confirmed, got, tt.want)
			}
		})
	}
}
