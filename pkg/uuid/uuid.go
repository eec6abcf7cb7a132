// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid mints opaque identifiers for request IDs, stored upload names
and lock owners. Database rows use BIGINT identity keys instead.
*/
package uuid

import "github.com/google/uuid"

// New returns a UUIDv7 string, so names minted later sort later.
// If the clock-based generator fails it falls back to a random v4.
func New() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Valid reports whether s parses as a UUID in canonical form.
func Valid(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}
