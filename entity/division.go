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

// Package entity declares the sample domain entities persisted through the
// generic repository: divisions (hierarchical), users, and tasks.
package entity

import (
	"github.com/brunodmn/egret/filter"
	"github.com/brunodmn/egret/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Division is an organizational unit. Divisions form a tree through
// ParentID; cycles are rejected on write.
type Division struct {
	bun.BaseModel `bun:"table:divisions,alias:d"`
	types.Record

	Code        string     `bun:"code,notnull,unique" json:"code"`
	Description string     `bun:"description,notnull" json:"description"`
	ParentID    *uuid.UUID `bun:"parent_id,type:uuid,nullzero" json:"parentId"`
}

// DivisionSchema returns the filter allow-list for divisions. The alias
// matches the entity's bun table alias.
func DivisionSchema() *filter.Schema {
	return filter.NewSchema("divisions", "d").
		WithField("code", filter.TypeString, false).
		WithField("description", filter.TypeString, false).
		WithField("sequentialId", filter.TypeNumber, false).
		WithField("createdAt", filter.TypeDate, false).
		WithField("updatedAt", filter.TypeDate, false)
}

// Defaults carries fallback values resolved once at process start and
// passed explicitly to whatever needs them. There is no cached global.
type Defaults struct {
	DivisionID uuid.UUID
}

// FillUser assigns the default division to a user that has none.
func (d Defaults) FillUser(u *User) {
	if u.DivisionID == uuid.Nil {
		u.DivisionID = d.DivisionID
	}
}

// FillTask assigns the default division to a task that has none.
func (d Defaults) FillTask(t *Task) {
	if t.DivisionID == uuid.Nil {
		t.DivisionID = d.DivisionID
	}
}
