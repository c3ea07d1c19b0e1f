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

package entity

import (
	"context"
	"testing"

	"github.com/brunodmn/egret/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arenaLookup(divisions map[uuid.UUID]*Division) DivisionLookup {
	return func(_ context.Context, id uuid.UUID) (*Division, error) {
		return divisions[id], nil
	}
}

func TestValidateParentChange(t *testing.T) {
	root := uuid.New()
	child := uuid.New()
	grandchild := uuid.New()
	arena := map[uuid.UUID]*Division{
		root:       {Code: "ROOT"},
		child:      {Code: "CHILD", ParentID: &root},
		grandchild: {Code: "GRAND", ParentID: &child},
	}
	find := arenaLookup(arena)
	ctx := context.Background()

	t.Run("detach is always valid", func(t *testing.T) {
		assert.NoError(t, ValidateParentChange(ctx, find, child, nil))
	})

	t.Run("reparent under sibling branch", func(t *testing.T) {
		assert.NoError(t, ValidateParentChange(ctx, find, grandchild, &root))
	})

	t.Run("self parent rejected", func(t *testing.T) {
		err := ValidateParentChange(ctx, find, child, &child)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("descendant parent rejected", func(t *testing.T) {
		// root under its own grandchild closes a cycle
		err := ValidateParentChange(ctx, find, root, &grandchild)
		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("missing parent rejected", func(t *testing.T) {
		orphan := uuid.New()
		err := ValidateParentChange(ctx, find, child, &orphan)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("malformed loop terminates", func(t *testing.T) {
		a := uuid.New()
		b := uuid.New()
		looped := map[uuid.UUID]*Division{
			a: {Code: "A", ParentID: &b},
			b: {Code: "B", ParentID: &a},
		}
		err := ValidateParentChange(ctx, arenaLookup(looped), uuid.New(), &a)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}
