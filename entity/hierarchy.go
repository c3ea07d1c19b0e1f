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

	"github.com/brunodmn/egret/errs"
	"github.com/google/uuid"
)

// DivisionLookup resolves a division by id, returning nil when there is
// none visible to the caller.
type DivisionLookup func(ctx context.Context, id uuid.UUID) (*Division, error)

// ValidateParentChange checks that re-parenting the division id under
// newParent keeps the division tree acyclic. It walks the ancestor chain of
// the proposed parent with an explicit visited set, so malformed data can
// never loop, and rejects the change when id appears among the ancestors.
func ValidateParentChange(ctx context.Context, find DivisionLookup, id uuid.UUID, newParent *uuid.UUID) error {
	if newParent == nil {
		return nil
	}
	if *newParent == id {
		return cycleIssue(id)
	}

	visited := map[uuid.UUID]struct{}{id: {}}
	cursor := *newParent
	for {
		if _, seen := visited[cursor]; seen {
			return cycleIssue(id)
		}
		visited[cursor] = struct{}{}

		parent, err := find(ctx, cursor)
		if err != nil {
			return err
		}
		if parent == nil {
			return errs.NewNotFound("division", cursor.String())
		}
		if parent.ParentID == nil {
			return nil
		}
		cursor = *parent.ParentID
	}
}

func cycleIssue(id uuid.UUID) error {
	return &errs.ValidationError{Issues: []errs.FieldIssue{{
		Field:   "parentId",
		Message: "would create a cycle through division " + id.String(),
	}}}
}
