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

// Package egret is a generic entity data-access core built on Bun: soft
// delete, optimistic versioning, snake_case/camelCase conversion at the
// storage boundary, a transaction manager with savepoint nesting and
// deadlock retry, and a filter engine turning client payloads into
// parameterized predicates.
package egret

import (
	"context"

	"github.com/brunodmn/egret/database"
	"github.com/brunodmn/egret/filter"
	"github.com/brunodmn/egret/repository"
	"github.com/brunodmn/egret/types"
	"github.com/google/uuid"
)

// Service is the application-facing surface over one entity's repository.
type Service[T any] interface {
	// Get returns the active entity by id, or nil when there is none.
	Get(ctx context.Context, id uuid.UUID) (*T, error)

	// GetAny returns the entity by id regardless of its active flag.
	GetAny(ctx context.Context, id uuid.UUID) (*T, error)

	// List returns active entities matching the exact-match criteria.
	List(ctx context.Context, criteria repository.Criteria) ([]*T, error)

	// Count counts active entities matching the exact-match criteria.
	Count(ctx context.Context, criteria repository.Criteria) (int, error)

	// Search executes a validated client filter payload with pagination.
	Search(ctx context.Context, payload filter.Payload, page *types.PageRequest) (*types.Pagination[T], error)

	// FilterSchema exposes the entity's filterable fields and relations.
	FilterSchema() filter.Description

	// Save persists a new entity and returns it fully populated.
	Save(ctx context.Context, model *T) (*T, error)

	// Update applies changes under optimistic concurrency control.
	Update(ctx context.Context, model *T, opts ...repository.QueryOption) (*T, error)

	// Remove soft-deletes the entity by id.
	Remove(ctx context.Context, id uuid.UUID) error

	// InTx runs fn inside a transactional boundary shared by every service
	// call made through the same context.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type baseServiceImpl[T any] struct {
	repo repository.Repository[T]
	txm  *database.TxManager
}

// NewService returns a Service over a fresh generic repository. The entity
// pointer type is inferred: NewService[entity.Task](txm, cfg).
func NewService[T any, PT repository.EntityConstraint[T]](txm *database.TxManager, cfg repository.Config) Service[T] {
	return &baseServiceImpl[T]{
		repo: repository.NewRepository[T, PT](txm, cfg),
		txm:  txm,
	}
}

// NewServiceWithRepository wraps an existing repository, letting callers
// compose entity-specific extensions by delegation.
func NewServiceWithRepository[T any](txm *database.TxManager, repo repository.Repository[T]) Service[T] {
	return &baseServiceImpl[T]{repo: repo, txm: txm}
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *baseServiceImpl[T]) GetAny(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.repo.FindByID(ctx, id, repository.IncludeInactive())
}

func (s *baseServiceImpl[T]) List(ctx context.Context, criteria repository.Criteria) ([]*T, error) {
	return s.repo.FindAll(ctx, criteria)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, criteria repository.Criteria) (int, error) {
	return s.repo.Count(ctx, criteria)
}

func (s *baseServiceImpl[T]) Search(ctx context.Context, payload filter.Payload, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.repo.Search(ctx, payload, page)
}

func (s *baseServiceImpl[T]) FilterSchema() filter.Description {
	return s.repo.Schema()
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model *T) (*T, error) {
	return s.repo.Create(ctx, model)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T, opts ...repository.QueryOption) (*T, error) {
	return s.repo.Update(ctx, model, opts...)
}

func (s *baseServiceImpl[T]) Remove(ctx context.Context, id uuid.UUID) error {
	return s.repo.Remove(ctx, id)
}

func (s *baseServiceImpl[T]) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.txm.Run(ctx, fn)
}
