// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package route decides which request paths are exempt from authentication.
//
// # Pattern Syntax
//
// Patterns are Ant-style and matched segment by segment:
//
//   - a literal segment matches itself exactly
//   - "*" matches exactly one non-empty segment
//   - "**" matches zero or more segments
//
// The allow-list is fixed when the [Classifier] is built and never changes
// afterwards, so a single instance is shared by every request goroutine.
package route

import (
	"slices"
	"strings"
)

// DefaultExemptPatterns is the public surface of the API.
var DefaultExemptPatterns = []string{
	"/api/auth/register",
	"/api/auth/login",
	"/api/files/download/**",
}

// Classifier matches request paths against a static allow-list.
type Classifier struct {
	patterns [][]string
}

// NewClassifier compiles the given patterns into segment lists.
func NewClassifier(patterns ...string) *Classifier {
	compiled := make([][]string, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, split(pattern))
	}
	return &Classifier{patterns: compiled}
}

// IsExempt reports whether path matches any pattern of the allow-list.
// Paths with "." or ".." segments are never exempt.
func (classifier *Classifier) IsExempt(path string) bool {
	segments := split(path)
	if slices.ContainsFunc(segments, isDotSegment) {
		return false
	}

	for _, pattern := range classifier.patterns {
		if match(pattern, segments) {
			return true
		}
	}
	return false
}

// split breaks a path into its non-empty segments.
// A trailing slash does not create an extra segment.
func split(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

func isDotSegment(segment string) bool {
	return segment == "." || segment == ".."
}

// match runs a backtracking match of pattern segments against path segments.
func match(pattern, segments []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]

		if head == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for skip := 0; skip <= len(segments); skip++ {
				if match(rest, segments[skip:]) {
					return true
				}
			}
			return false
		}

		if len(segments) == 0 {
			return false
		}
		if head != "*" && head != segments[0] {
			return false
		}

		pattern = pattern[1:]
		segments = segments[1:]
	}

	return len(segments) == 0
}
