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

// Package errs defines the structured error kinds surfaced by the data-access
// core. Every failure crossing the repository, filter, or transaction boundary
// is one of these kinds; raw driver errors never leak past it. Callers match
// with errors.Is against the Err* sentinels or errors.As against the concrete
// types when they need the attached detail.
package errs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound reports a missing or inactive entity.
	ErrNotFound = errors.New("egret: entity not found")

	// ErrConflict reports an optimistic concurrency version mismatch.
	ErrConflict = errors.New("egret: version conflict")

	// ErrAlreadyExists reports a uniqueness violation.
	ErrAlreadyExists = errors.New("egret: entity already exists")

	// ErrValidation reports a rejected filter payload.
	ErrValidation = errors.New("egret: validation failed")

	// ErrDeadlockRetryExhausted reports a transient conflict that survived
	// every retry attempt.
	ErrDeadlockRetryExhausted = errors.New("egret: deadlock retries exhausted")

	// ErrTransactionTimeout reports a transaction aborted for exceeding its
	// configured duration.
	ErrTransactionTimeout = errors.New("egret: transaction timeout")

	// ErrInternal reports an unrecognized storage failure. The cause is
	// logged in full and redacted from the message.
	ErrInternal = errors.New("egret: internal storage error")
)

func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool      { return errors.Is(err, ErrConflict) }
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }
func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsRetryExhausted(err error) bool {
	return errors.Is(err, ErrDeadlockRetryExhausted)
}
func IsTransactionTimeout(err error) bool { return errors.Is(err, ErrTransactionTimeout) }
func IsInternal(err error) bool           { return errors.Is(err, ErrInternal) }

// Classified reports whether err already carries one of the package's error
// kinds. Boundaries use it to decide whether a failure still needs mapping
// before it crosses into calling code.
func Classified(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound, ErrConflict, ErrAlreadyExists, ErrValidation,
		ErrDeadlockRetryExhausted, ErrTransactionTimeout, ErrInternal,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// NotFoundError reports that no active entity matched the request.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound builds a NotFoundError for the given entity and identifier.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports an update against a stale version.
type ConflictError struct {
	Entity          string
	ID              string
	ExpectedVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q version %d is stale", e.Entity, e.ID, e.ExpectedVersion)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NewConflict builds a ConflictError for a stale-version update.
func NewConflict(entity, id string, expected int64) error {
	return &ConflictError{Entity: entity, ID: id, ExpectedVersion: expected}
}

// AlreadyExistsError reports a uniqueness violation mapped from the storage
// driver, carrying the offending field and value when the driver exposes them.
type AlreadyExistsError struct {
	Entity string
	Field  string
	Value  string
	Cause  error
}

func (e *AlreadyExistsError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s already exists", e.Entity)
	}
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }
func (e *AlreadyExistsError) Unwrap() error        { return e.Cause }

// NewAlreadyExists builds an AlreadyExistsError with the offending field.
func NewAlreadyExists(entity, field, value string, cause error) error {
	return &AlreadyExistsError{Entity: entity, Field: field, Value: value, Cause: cause}
}

// FieldIssue is one offending key inside a rejected filter payload.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every offending key of a filter payload so the
// caller sees the full list in a single rejection.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Message)
	}
	return "invalid filter payload: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RetryExhaustedError reports that a transient concurrency conflict persisted
// through every retry attempt of the outermost transaction.
type RetryExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("transaction failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetryExhaustedError) Is(target error) bool { return target == ErrDeadlockRetryExhausted }
func (e *RetryExhaustedError) Unwrap() error        { return e.Cause }

// TimeoutError reports a transaction aborted and rolled back for running
// longer than its configured limit.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction exceeded %s and was rolled back", e.Limit)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTransactionTimeout }

// InternalError wraps an unrecognized storage failure. Error() redacts the
// cause; the repository logs the full detail before returning it.
type InternalError struct {
	Op    string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("storage failure during %s", e.Op)
}

func (e *InternalError) Is(target error) bool { return target == ErrInternal }
func (e *InternalError) Unwrap() error        { return e.Cause }

// NewInternal wraps cause for the named operation.
func NewInternal(op string, cause error) error {
	return &InternalError{Op: op, Cause: cause}
}
