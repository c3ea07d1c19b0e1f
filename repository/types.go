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

package repository

import (
	"context"

	"github.com/brunodmn/egret/filter"
	"github.com/brunodmn/egret/types"
	"github.com/google/uuid"
)

// EntityConstraint ties a value type to its pointer form carrying the base
// record. Entities embed types.Record, so *T satisfies types.Entity by
// promotion.
type EntityConstraint[T any] interface {
	*T
	types.Entity
}

// Criteria is an exact-match query keyed by application-case field names.
type Criteria map[string]any

// QueryOption adjusts the scope of a single repository call.
type QueryOption func(*queryScope)

type queryScope struct {
	includeInactive bool
	columns         []string
}

// IncludeInactive lifts the default active-only scope, making soft-deleted
// records visible to the call.
func IncludeInactive() QueryOption {
	return func(s *queryScope) { s.includeInactive = true }
}

// Columns restricts an update to the named application-case fields. The
// lifecycle columns (version, updated_at) are always written.
func Columns(fields ...string) QueryOption {
	return func(s *queryScope) { s.columns = fields }
}

func resolveScope(opts []QueryOption) queryScope {
	var scope queryScope
	for _, opt := range opts {
		if opt != nil {
			opt(&scope)
		}
	}
	return scope
}

// CrudRepository defines the lifecycle operations for a generic entity type.
// Reads default to active records only; no operation ever issues a physical
// delete.
type CrudRepository[T any] interface {
	// Create persists a new entity inside a transaction, assigning its id
	// and lifecycle fields, and returns it fully populated including the
	// storage-assigned sequential id.
	Create(ctx context.Context, entity *T) (*T, error)

	// FindByID returns the active entity with the given id, or nil without
	// error when there is none.
	FindByID(ctx context.Context, id uuid.UUID, opts ...QueryOption) (*T, error)

	// Update applies the entity's changes if its version matches the stored
	// row: version increments by one and the update timestamp refreshes.
	Update(ctx context.Context, entity *T, opts ...QueryOption) (*T, error)

	// Remove soft-deletes the active entity with the given id.
	Remove(ctx context.Context, id uuid.UUID) error

	// FindAll returns entities matching the exact-match criteria.
	FindAll(ctx context.Context, criteria Criteria, opts ...QueryOption) ([]*T, error)

	// Count counts entities matching the exact-match criteria.
	Count(ctx context.Context, criteria Criteria, opts ...QueryOption) (int, error)
}

// SearchRepository defines the filtered query path and its introspection.
type SearchRepository[T any] interface {
	// Search validates the client filter payload against the entity's
	// schema and executes the resulting predicate set with pagination.
	Search(ctx context.Context, payload filter.Payload, page *types.PageRequest, opts ...QueryOption) (*types.Pagination[T], error)

	// Schema exposes the resolved filter schema for clients.
	Schema() filter.Description
}

// Repository combines lifecycle CRUD with the filtered search path.
type Repository[T any] interface {
	CrudRepository[T]
	SearchRepository[T]
}
