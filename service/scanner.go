package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/clausetrack/backend/model"
)

// Detector is the boundary to the clause detection engine: contract text in,
// set of detected clause type ids out. A single bounded call, no partial or
// streaming results.
type Detector interface {
	Detect(ctx context.Context, text string) (map[uint]bool, error)
}

// Scanner is the built-in pattern detector. A clause type is detected when
// any of its patterns matches the text; a type without patterns is never
// detected. Plain patterns match as case-insensitive substrings, regex
// patterns as case-insensitive regular expressions.
type Scanner struct {
	registry *Registry
}

func NewScanner(registry *Registry) *Scanner {
	return &Scanner{registry: registry}
}

func (s *Scanner) Detect(ctx context.Context, text string) (map[uint]bool, error) {
	types, err := s.registry.All(ctx)
	if err != nil {
		return nil, err
	}

	hayLower := strings.ToLower(text)
	detected := make(map[uint]bool, len(types))
	for _, ct := range types {
		match, err := matchAny(text, hayLower, ct.Patterns)
		if err != nil {
			return nil, err
		}
		if match {
			detected[ct.ID] = true
		}
	}
	return detected, nil
}

func matchAny(text, textLower string, patterns []model.ClausePattern) (bool, error) {
	for _, p := range patterns {
		if p.IsRegex {
			re, err := regexp.Compile("(?im)" + p.Pattern)
			if err != nil {
				return false, fmt.Errorf("invalid pattern %q: %w", p.Pattern, err)
			}
			if re.MatchString(text) {
				return true, nil
			}
		} else if strings.Contains(textLower, strings.ToLower(p.Pattern)) {
			return true, nil
		}
	}
	return false, nil
}
