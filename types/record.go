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

package types

import (
	"time"

	"github.com/google/uuid"
)

// Record is the lifecycle contract every stored entity embeds. Rows are
// never physically deleted: Active=false marks a record as removed, and
// Version arbitrates concurrent updates (exactly one writer per version).
type Record struct {
	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	SequentialID int64     `bun:"sequential_id,unique,nullzero" json:"sequentialId"`
	Active       bool      `bun:"active,notnull" json:"active"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updatedAt"`
	Version      int64     `bun:"version,notnull" json:"version"`
}

// Meta returns the embedded record, satisfying Entity by promotion.
func (r *Record) Meta() *Record { return r }

// Entity is satisfied by any struct pointer that embeds Record.
type Entity interface {
	Meta() *Record
}

// Stamp initializes the lifecycle fields for a brand new record. The
// sequential id is left zero so storage assigns it on insert.
func (r *Record) Stamp(id uuid.UUID, now time.Time) {
	r.ID = id
	r.SequentialID = 0
	r.Active = true
	r.CreatedAt = now.UTC()
	r.UpdatedAt = r.CreatedAt
	r.Version = 0
}

// Touch advances the record after a successful mutation.
func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now.UTC()
	r.Version++
}
