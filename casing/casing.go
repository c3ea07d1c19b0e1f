/*
 * Copyright 2026 brunodmn.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package casing converts identifiers and nested records between the storage
// naming convention (snake_case) and the application naming convention
// (camelCase). The canonical storage form is all-lowercase snake_case, so
// ToStorage is a fixpoint: ToStorage(ToStorage(s)) == ToStorage(s).
package casing

import (
	"strings"
	"unicode"
)

// ToStorage converts an application-case identifier to its storage form.
// Uppercase letters become an underscore plus the lowercase letter. Input
// that already contains underscores is normalized to lowercase, so mixed
// identifiers such as "user_ID" collapse to "user_id".
func ToStorage(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevUnderscore := false
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !prevUnderscore {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
			continue
		}
		b.WriteRune(r)
		prevUnderscore = r == '_'
	}
	return b.String()
}

// ToApplication converts a storage-case identifier to its application form,
// merging each underscore+letter pair into an uppercase letter. Leading and
// trailing underscores stay as-is, and so does an underscore followed by a
// digit: "address_line_1" keeps its last separator so ToStorage maps the
// result back to the same storage key.
func ToApplication(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '_' && i > 0 && i < len(runes)-1 && unicode.IsLetter(runes[i+1]) {
			i++
			b.WriteRune(unicode.ToUpper(runes[i]))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MapToStorage recursively renames the keys of v into storage case.
// Maps have each key converted and each value recursed into; slices are
// converted element-wise preserving order and length; every other value
// (scalars, nil, typed opaque values) is returned unchanged.
func MapToStorage(v any) any {
	return convert(v, ToStorage)
}

// MapToApplication recursively renames the keys of v into application case.
// Behaves like MapToStorage with the inverse identifier rule.
func MapToApplication(v any) any {
	return convert(v, ToApplication)
}

func convert(v any, rename func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[rename(k)] = convert(val, rename)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = convert(val, rename)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = convert(val, rename)
		}
		return out
	default:
		return v
	}
}
