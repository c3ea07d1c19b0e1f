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

package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	cause := errors.New("driver says no")

	tests := []struct {
		err   error
		match error
	}{
		{NewNotFound("user", "42"), ErrNotFound},
		{NewConflict("task", "42", 3), ErrConflict},
		{NewAlreadyExists("user", "email", "a@b.com", cause), ErrAlreadyExists},
		{&ValidationError{Issues: []FieldIssue{{Field: "x", Message: "unknown"}}}, ErrValidation},
		{&RetryExhaustedError{Attempts: 3, Cause: cause}, ErrDeadlockRetryExhausted},
		{&TimeoutError{}, ErrTransactionTimeout},
		{NewInternal("select", cause), ErrInternal},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.match)
		// wrapping keeps sentinel matching intact
		assert.ErrorIs(t, fmt.Errorf("outer: %w", tt.err), tt.match)
	}
}

func TestAlreadyExistsDetail(t *testing.T) {
	err := NewAlreadyExists("user", "email", "a@b.com", errors.New("dup"))

	var exists *AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "user", exists.Entity)
	assert.Equal(t, "email", exists.Field)
	assert.Equal(t, "a@b.com", exists.Value)
	assert.Contains(t, err.Error(), `email "a@b.com"`)
}

func TestInternalRedactsCause(t *testing.T) {
	err := NewInternal("insert", errors.New("password=hunter2 in dsn"))
	assert.NotContains(t, err.Error(), "hunter2")
	assert.ErrorContains(t, errors.Unwrap(err.(*InternalError)), "hunter2")
}

func TestValidationAggregation(t *testing.T) {
	err := &ValidationError{Issues: []FieldIssue{
		{Field: "bogus", Message: "unknown field"},
		{Field: "active", Message: "operator like not allowed"},
	}}
	assert.Contains(t, err.Error(), "bogus")
	assert.Contains(t, err.Error(), "active")
	assert.True(t, IsValidation(err))
}

func TestClassified(t *testing.T) {
	classified := []error{
		NewNotFound("user", "42"),
		NewConflict("user", "42", 1),
		NewAlreadyExists("user", "email", "a@b.com", nil),
		&ValidationError{Issues: []FieldIssue{{Field: "x", Message: "unknown field"}}},
		&RetryExhaustedError{Attempts: 3, Cause: errors.New("deadlock")},
		&TimeoutError{},
		NewInternal("insert", errors.New("boom")),
		fmt.Errorf("wrapped: %w", NewInternal("insert", errors.New("boom"))),
	}
	for _, err := range classified {
		assert.True(t, Classified(err), "Classified(%v)", err)
	}

	assert.False(t, Classified(errors.New("sql: database is closed")))
	assert.False(t, Classified(nil))
}
