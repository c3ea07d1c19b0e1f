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
	"time"

	"github.com/brunodmn/egret/filter"
	"github.com/brunodmn/egret/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Task is a unit of work assigned to a user within a division.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`
	types.Record

	Title      string        `bun:"title,notnull" json:"title"`
	Status     string        `bun:"status,notnull" json:"status"`
	Priority   int64         `bun:"priority,notnull" json:"priority"`
	DueDate    *time.Time    `bun:"due_date,nullzero" json:"dueDate"`
	Metadata   types.JSONMap `bun:"metadata,nullzero" json:"metadata"`
	UserID     uuid.UUID     `bun:"user_id,type:uuid,notnull" json:"userId"`
	DivisionID uuid.UUID     `bun:"division_id,type:uuid,notnull" json:"divisionId"`
}

// TaskSchema returns the filter allow-list for tasks: scalar fields plus
// the one-level assignee and division relations.
func TaskSchema() *filter.Schema {
	return filter.NewSchema("tasks", "t").
		WithField("title", filter.TypeString, false).
		WithField("status", filter.TypeString, false).
		WithField("priority", filter.TypeNumber, false).
		WithField("dueDate", filter.TypeDate, true).
		WithField("sequentialId", filter.TypeNumber, false).
		WithField("createdAt", filter.TypeDate, false).
		WithRelation("assignee", UserSchema(), "user_id", "id").
		WithRelation("division", DivisionSchema(), "division_id", "id")
}
