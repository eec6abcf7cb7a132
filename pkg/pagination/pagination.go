// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pagination parses page windows for list endpoints and builds the
"meta" block returned alongside a page of results.

Pages are 1-indexed. The page size is read from "limit", with "size"
accepted as an alias for clients written against page/size APIs.
*/
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultPage  = 1
)

// Params is one page window.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before this page.
func (params Params) Offset() int {
	if params.Page <= 1 {
		return 0
	}
	return (params.Page - 1) * params.Limit
}

// Meta builds the response metadata for this window and a total row count.
func (params Params) Meta(total int) Meta {
	return NewMeta(params.Page, params.Limit, total)
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
}

// NewMeta derives the page count from total and limit.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

/*
FromRequest reads "page" and "limit" (or "size") from the query string.

Unparseable or non-positive values fall back to the defaults. A limit above
[MaxLimit] is capped rather than reset.
*/
func FromRequest(request *http.Request) Params {
	query := request.URL.Query()

	page := parsePositive(query.Get("page"), DefaultPage)

	rawLimit := query.Get("limit")
	if rawLimit == "" {
		rawLimit = query.Get("size")
	}
	limit := min(parsePositive(rawLimit, DefaultLimit), MaxLimit)

	return Params{Page: page, Limit: limit}
}

func parsePositive(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
