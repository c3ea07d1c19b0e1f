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

package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind SQLErrorKind
		ok   bool
	}{
		{"nil", nil, UnknownErr, false},
		{"plain", errors.New("boom"), UnknownErr, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'users.email'"}, DuplicateKeyErr, true},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}, SerializationErr, true},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, SerializationErr, true},
		{"pq unique", &pq.Error{Code: "23505"}, DuplicateKeyErr, true},
		{"pq serialization", &pq.Error{Code: "40001"}, SerializationErr, true},
		{"pq deadlock", &pq.Error{Code: "40P01"}, SerializationErr, true},
		{"pq not null", &pq.Error{Code: "23502"}, NotNullViolationErr, true},
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), DuplicateKeyErr, true},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), SerializationErr, true},
		{"sqlite fk", errors.New("FOREIGN KEY constraint failed"), ForeignKeyViolationErr, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := Classify(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestClassifyWrappedError(t *testing.T) {
	inner := &pq.Error{Code: "40001"}
	wrapped := fmt.Errorf("exec failed: %w", inner)
	assert.True(t, IsRetryable(wrapped))
	assert.False(t, IsDuplicateKey(wrapped))
}

func TestUniqueViolationExtraction(t *testing.T) {
	t.Run("postgres detail", func(t *testing.T) {
		err := &pq.Error{
			Code:   "23505",
			Detail: "Key (email)=(a@b.com) already exists.",
		}
		field, value, ok := UniqueViolation(err)
		require.True(t, ok)
		assert.Equal(t, "email", field)
		assert.Equal(t, "a@b.com", value)
	})

	t.Run("mysql message", func(t *testing.T) {
		err := &mysql.MySQLError{
			Number:  1062,
			Message: "Duplicate entry 'a@b.com' for key 'users.email'",
		}
		field, value, ok := UniqueViolation(err)
		require.True(t, ok)
		assert.Equal(t, "email", field)
		assert.Equal(t, "a@b.com", value)
	})

	t.Run("sqlite message has field only", func(t *testing.T) {
		err := errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")
		field, value, ok := UniqueViolation(err)
		require.True(t, ok)
		assert.Equal(t, "email", field)
		assert.Empty(t, value)
	})

	t.Run("not a duplicate", func(t *testing.T) {
		_, _, ok := UniqueViolation(errors.New("syntax error"))
		assert.False(t, ok)
	})
}
