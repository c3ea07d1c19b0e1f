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
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// SQLErrorKind classifies a driver error into a portable category.
type SQLErrorKind int

const (
	UnknownErr SQLErrorKind = iota
	DuplicateKeyErr
	SerializationErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
)

// Classify inspects a driver error and reports its portable category.
// The boolean is false when the error is not a recognized SQL error.
func Classify(err error) (SQLErrorKind, bool) {
	if err == nil {
		return UnknownErr, false
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return DuplicateKeyErr, true
		case 1213, 1205:
			return SerializationErr, true
		case 1048:
			return NotNullViolationErr, true
		case 1216, 1217, 1451, 1452:
			return ForeignKeyViolationErr, true
		case 3819:
			return CheckConstraintViolationErr, true
		default:
			return UnknownErr, true
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return DuplicateKeyErr, true
		case "40001", "40P01":
			return SerializationErr, true
		case "23502":
			return NotNullViolationErr, true
		case "23503":
			return ForeignKeyViolationErr, true
		case "23514":
			return CheckConstraintViolationErr, true
		default:
			return UnknownErr, true
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "sqlstate 23505"):
		return DuplicateKeyErr, true
	case strings.Contains(s, "database is locked"),
		strings.Contains(s, "database table is locked"),
		strings.Contains(s, "deadlock detected"),
		strings.Contains(s, "could not serialize access"),
		strings.Contains(s, "sqlstate 40001"),
		strings.Contains(s, "sqlstate 40p01"):
		return SerializationErr, true
	case strings.Contains(s, "not null constraint failed"),
		strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "sqlstate 23502"):
		return NotNullViolationErr, true
	case strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "sqlstate 23503"):
		return ForeignKeyViolationErr, true
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return CheckConstraintViolationErr, true
	}
	return UnknownErr, false
}

// IsDuplicateKey reports whether err is a uniqueness violation.
func IsDuplicateKey(err error) bool {
	kind, ok := Classify(err)
	return ok && kind == DuplicateKeyErr
}

// IsRetryable reports whether err is a transient concurrency conflict
// (deadlock or serialization failure) worth retrying from scratch.
func IsRetryable(err error) bool {
	kind, ok := Classify(err)
	return ok && kind == SerializationErr
}

var (
	// lib/pq detail: Key (email)=(a@b.com) already exists.
	pqDetailRe = regexp.MustCompile(`Key \(([^)]+)\)=\((.*)\) already exists`)
	// mysql message: Duplicate entry 'a@b.com' for key 'users.email'
	mysqlDupRe = regexp.MustCompile(`Duplicate entry '(.*)' for key '([^']+)'`)
	// sqlite message: UNIQUE constraint failed: users.email
	sqliteDupRe = regexp.MustCompile(`UNIQUE constraint failed: (?:\w+\.)?(\w+)`)
)

// UniqueViolation extracts the offending column and value from a duplicate
// key error. Value may be empty for drivers that do not report it (SQLite).
func UniqueViolation(err error) (field, value string, ok bool) {
	if !IsDuplicateKey(err) {
		return "", "", false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if m := pqDetailRe.FindStringSubmatch(pqErr.Detail); m != nil {
			return m[1], m[2], true
		}
		return pqErr.Constraint, "", true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if m := mysqlDupRe.FindStringSubmatch(mysqlErr.Message); m != nil {
			// key name is table.index or table.column; keep the last segment
			key := m[2]
			if i := strings.LastIndex(key, "."); i >= 0 {
				key = key[i+1:]
			}
			return key, m[1], true
		}
		return "", "", true
	}

	if m := sqliteDupRe.FindStringSubmatch(err.Error()); m != nil {
		return m[1], "", true
	}
	return "", "", true
}
