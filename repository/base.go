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
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/brunodmn/egret/casing"
	"github.com/brunodmn/egret/database"
	"github.com/brunodmn/egret/errs"
	"github.com/brunodmn/egret/filter"
	"github.com/brunodmn/egret/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Config wires a repository to its entity.
type Config struct {
	// Name identifies the entity in structured errors, e.g. "user".
	Name string
	// Schema is the filter allow-list. Its alias must match the entity's
	// bun table alias.
	Schema *filter.Schema
	Logger database.Logger
	// Clock and NewID default to UTC time and random UUIDs.
	Clock func() time.Time
	NewID func() uuid.UUID
}

type baseRepository[T any, PT EntityConstraint[T]] struct {
	txm    *database.TxManager
	name   string
	schema *filter.Schema
	logger database.Logger
	clock  func() time.Time
	newID  func() uuid.UUID
}

// NewRepository returns a generic repository backed by the transaction
// manager's connection. The second type parameter is inferred: use
// NewRepository[entity.Task](txm, cfg).
func NewRepository[T any, PT EntityConstraint[T]](txm *database.TxManager, cfg Config) Repository[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = database.NewDefaultLogger(database.LogLevelInfo)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.New
	}
	return &baseRepository[T, PT]{
		txm:    txm,
		name:   cfg.Name,
		schema: cfg.Schema,
		logger: logger,
		clock:  clock,
		newID:  newID,
	}
}

func (r *baseRepository[T, PT]) meta(entity *T) *types.Record {
	return PT(entity).Meta()
}

func (r *baseRepository[T, PT]) Create(ctx context.Context, entity *T) (*T, error) {
	rec := r.meta(entity)
	rec.Stamp(r.newID(), r.clock())

	created := new(T)
	err := r.txm.Run(ctx, func(ctx context.Context) error {
		db := r.txm.DB(ctx)
		if _, err := db.NewInsert().Model(entity).Exec(ctx); err != nil {
			return r.mapStorageErr("insert", err)
		}
		// re-read for the storage-assigned sequential id
		err := db.NewSelect().Model(created).
			Where("?TableAlias.id = ?", rec.ID).
			Scan(ctx)
		if err != nil {
			return r.mapStorageErr("insert readback", err)
		}
		return nil
	})
	if err != nil {
		return nil, r.mapBoundaryErr("insert", err)
	}
	return created, nil
}

func (r *baseRepository[T, PT]) FindByID(ctx context.Context, id uuid.UUID, opts ...QueryOption) (*T, error) {
	scope := resolveScope(opts)
	entity := new(T)

	q := r.txm.DB(ctx).NewSelect().Model(entity).
		Where("?TableAlias.id = ?", id)
	if !scope.includeInactive {
		q = q.Where("?TableAlias.active = ?", true)
	}

	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.mapStorageErr("select", err)
	}
	return entity, nil
}

func (r *baseRepository[T, PT]) Update(ctx context.Context, entity *T, opts ...QueryOption) (*T, error) {
	scope := resolveScope(opts)
	rec := r.meta(entity)
	expected := rec.Version

	err := r.txm.Run(ctx, func(ctx context.Context) error {
		db := r.txm.DB(ctx)

		current := new(T)
		q := db.NewSelect().Model(current).
			Where("?TableAlias.id = ?", rec.ID)
		if !scope.includeInactive {
			q = q.Where("?TableAlias.active = ?", true)
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.NewNotFound(r.name, rec.ID.String())
			}
			return r.mapStorageErr("select", err)
		}

		stored := r.meta(current)
		if stored.Version != expected {
			return errs.NewConflict(r.name, rec.ID.String(), expected)
		}

		// identity and creation fields never change through an update
		rec.SequentialID = stored.SequentialID
		rec.CreatedAt = stored.CreatedAt
		rec.Active = stored.Active
		rec.Touch(r.clock())

		upd := db.NewUpdate().Model(entity).
			Where("id = ?", rec.ID).
			Where("version = ?", expected)
		if len(scope.columns) > 0 {
			columns := make([]string, 0, len(scope.columns)+2)
			for _, field := range scope.columns {
				columns = append(columns, casing.ToStorage(field))
			}
			upd = upd.Column(append(columns, "version", "updated_at")...)
		}

		res, err := upd.Exec(ctx)
		if err != nil {
			return r.mapStorageErr("update", err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			// a concurrent writer advanced the version between read and write
			return errs.NewConflict(r.name, rec.ID.String(), expected)
		}
		return nil
	})
	if err != nil {
		return nil, r.mapBoundaryErr("update", err)
	}
	return entity, nil
}

func (r *baseRepository[T, PT]) Remove(ctx context.Context, id uuid.UUID) error {
	err := r.txm.Run(ctx, func(ctx context.Context) error {
		db := r.txm.DB(ctx)
		entity := new(T)

		res, err := db.NewUpdate().Model(entity).
			Set("active = ?", false).
			Set("version = version + 1").
			Set("updated_at = ?", r.clock()).
			Where("id = ?", id).
			Where("active = ?", true).
			Exec(ctx)
		if err != nil {
			return r.mapStorageErr("soft delete", err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return errs.NewNotFound(r.name, id.String())
		}
		return nil
	})
	return r.mapBoundaryErr("soft delete", err)
}

func (r *baseRepository[T, PT]) FindAll(ctx context.Context, criteria Criteria, opts ...QueryOption) ([]*T, error) {
	entities := make([]*T, 0)
	q := r.criteriaQuery(ctx, &entities, criteria, resolveScope(opts))
	if err := q.Scan(ctx); err != nil {
		return nil, r.mapStorageErr("select", err)
	}
	return entities, nil
}

func (r *baseRepository[T, PT]) Count(ctx context.Context, criteria Criteria, opts ...QueryOption) (int, error) {
	var entities []*T
	n, err := r.criteriaQuery(ctx, &entities, criteria, resolveScope(opts)).Count(ctx)
	if err != nil {
		return 0, r.mapStorageErr("count", err)
	}
	return n, nil
}

func (r *baseRepository[T, PT]) criteriaQuery(ctx context.Context, model any, criteria Criteria, scope queryScope) *bun.SelectQuery {
	q := r.txm.DB(ctx).NewSelect().Model(model)
	for _, field := range sortedCriteriaKeys(criteria) {
		q = q.Where("?TableAlias.? = ?", bun.Ident(casing.ToStorage(field)), criteria[field])
	}
	if !scope.includeInactive {
		q = q.Where("?TableAlias.active = ?", true)
	}
	return q
}

func (r *baseRepository[T, PT]) Search(ctx context.Context, payload filter.Payload, page *types.PageRequest, opts ...QueryOption) (*types.Pagination[T], error) {
	scope := resolveScope(opts)
	if page == nil {
		page = types.NewDefaultPageRequest(1, 10)
	}

	fq, err := r.schema.Parse(payload)
	if err != nil {
		return nil, err
	}

	entities := make([]*T, 0)
	q := fq.Apply(r.txm.DB(ctx).NewSelect().Model(&entities))
	if !scope.includeInactive {
		q = q.Where("?TableAlias.active = ?", true)
	}

	pagination := types.NewDefaultPagination[T](page.GetPage(), page.GetPageSize())
	total, err := q.Count(ctx)
	if err != nil {
		return nil, r.mapStorageErr("count", err)
	}
	if total == 0 {
		return pagination, nil
	}

	err = q.
		Offset(page.GetOffset()).
		Limit(page.GetPageSize()).
		Order(page.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, r.mapStorageErr("select", err)
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepository[T, PT]) Schema() filter.Description {
	return r.schema.Describe()
}

// mapStorageErr classifies a storage failure before it crosses the
// repository boundary. Transient concurrency conflicts pass through
// untouched so the transaction manager can retry them; uniqueness violations
// become structured AlreadyExists errors; everything else is logged in full
// and surfaced redacted.
func (r *baseRepository[T, PT]) mapStorageErr(op string, err error) error {
	if database.IsRetryable(err) {
		return err
	}
	if field, value, ok := database.UniqueViolation(err); ok {
		return errs.NewAlreadyExists(r.name, casing.ToApplication(field), value, err)
	}
	r.logger.Error("storage failure",
		"entity", r.name,
		"op", op,
		"error", err,
	)
	return errs.NewInternal(op, err)
}

// mapBoundaryErr classifies failures that surface from the transaction
// boundary itself, such as a failed begin or commit. Errors already carrying
// a structured kind, and the caller's own cancellation, pass through.
func (r *baseRepository[T, PT]) mapBoundaryErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errs.Classified(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return r.mapStorageErr(op, err)
}

func sortedCriteriaKeys(criteria Criteria) []string {
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
