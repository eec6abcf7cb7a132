// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII-safe names from arbitrary Unicode strings.
//
// # Usage
//
// Uploaded files are stored on disk and served from a public URL under a name
// derived from the client-supplied file name. [FileName] turns that name into
// a single safe path segment while keeping the extension readable.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// maxBaseLength bounds the slugged part of a file name.
const maxBaseLength = 80

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces non-alphanumeric characters with hyphens.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
func From(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Replace whitespace and special chars with hyphens
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	// 4. Clean up hyphenation
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// FileName slugs the base name and the extension of an uploaded file separately.
//
// Directory components are dropped, so the result never escapes the upload
// directory. An empty base becomes "file".
//
// Example:
//
//	slug.FileName("../Báo Cáo (final).PDF") // "bao-cao-final.pdf"
func FileName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	extension := filepath.Ext(base)
	stem := strings.TrimSuffix(base, extension)

	sluggedStem := From(stem)
	if len(sluggedStem) > maxBaseLength {
		sluggedStem = strings.Trim(sluggedStem[:maxBaseLength], "-")
	}
	if sluggedStem == "" {
		sluggedStem = "file"
	}

	sluggedExtension := From(strings.TrimPrefix(extension, "."))
	if sluggedExtension == "" {
		return sluggedStem
	}
	return sluggedStem + "." + sluggedExtension
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
