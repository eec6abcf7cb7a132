// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer holds small generic helpers for the optional fields of
request and entity structs (description, pdfUrl, image, age).
*/
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Changed reports whether after is set and differs from before.
//
// It answers "did this update assign a new value", which is what decides
// whether an uploaded file needs to be marked as referenced.
func Changed[T comparable](before, after *T) bool {
	if after == nil {
		return false
	}
	return before == nil || *before != *after
}
