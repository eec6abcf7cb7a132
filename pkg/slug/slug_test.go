// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookhub/pkg/slug"
)

func TestFrom(t *testing.T) {
	assert.Equal(t, "tieng-viet-co-dau", slug.From("Tiếng Việt có dấu"))
	assert.Equal(t, "hello-world", slug.From("  Hello,   World!  "))
	assert.Empty(t, slug.From("!!!"))
}

/*
TestFileName keeps extensions and strips directory components.
*/
func TestFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"report.pdf", "report.pdf"},
		{"Báo Cáo (final).PDF", "bao-cao-final.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\a\My Photo.JPG`, "my-photo.jpg"},
		{".bashrc", "file.bashrc"},
		{"???.png", "file.png"},
		{"no_extension", "no-extension"},
		{"", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.FileName(tt.input))
		})
	}
}
