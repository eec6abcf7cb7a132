// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookhub/pkg/pointer"
)

/*
TestChanged covers every combination of set and unset values.
*/
func TestChanged(t *testing.T) {
	tests := []struct {
		name   string
		before *string
		after  *string
		want   bool
	}{
		{"both_nil", nil, nil, false},
		{"cleared", pointer.To("a"), nil, false},
		{"newly_set", nil, pointer.To("a"), true},
		{"same", pointer.To("a"), pointer.To("a"), false},
		{"different", pointer.To("a"), pointer.To("b"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pointer.Changed(tt.before, tt.after))
		})
	}
}

/*
TestVal returns the zero value for nil.
*/
func TestVal(t *testing.T) {
	assert.Equal(t, 0, pointer.Val[int](nil))
	assert.Equal(t, 7, pointer.Val(pointer.To(7)))
}
