// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookhub/pkg/pagination"
)

/*
TestFromRequest covers defaults, the size alias and clamping.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"explicit", "?page=3&limit=5", pagination.Params{Page: 3, Limit: 5}},
		{"size_alias", "?page=2&size=15", pagination.Params{Page: 2, Limit: 15}},
		{"limit_wins_over_size", "?limit=4&size=9", pagination.Params{Page: 1, Limit: 4}},
		{"capped", "?limit=1000", pagination.Params{Page: 1, Limit: pagination.MaxLimit}},
		{"negative", "?page=-2&limit=0", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"garbage", "?page=abc&limit=x", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/api/books"+tt.query, nil)
			assert.Equal(t, tt.want, pagination.FromRequest(request))
		})
	}
}

/*
TestParams_Window checks offsets and the derived metadata.
*/
func TestParams_Window(t *testing.T) {
	params := pagination.Params{Page: 3, Limit: 10}
	assert.Equal(t, 20, params.Offset())

	meta := params.Meta(25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.False(t, meta.HasNext)

	meta = pagination.Params{Page: 1, Limit: 10}.Meta(25)
	assert.True(t, meta.HasNext)

	assert.Equal(t, 0, pagination.NewMeta(1, 10, 0).TotalPages)
}
