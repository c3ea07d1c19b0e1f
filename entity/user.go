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
	"github.com/brunodmn/egret/filter"
	"github.com/brunodmn/egret/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is an account holder. Email is unique across active and inactive
// users alike.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	types.Record

	Email      string    `bun:"email,notnull,unique" json:"email"`
	Name       string    `bun:"name,notnull" json:"name"`
	DivisionID uuid.UUID `bun:"division_id,type:uuid,notnull" json:"divisionId"`
}

// UserSchema returns the filter allow-list for users, with the division
// filterable one level deep.
func UserSchema() *filter.Schema {
	return filter.NewSchema("users", "u").
		WithField("email", filter.TypeString, false).
		WithField("name", filter.TypeString, false).
		WithField("sequentialId", filter.TypeNumber, false).
		WithField("createdAt", filter.TypeDate, false).
		WithRelation("division", DivisionSchema(), "division_id", "id")
}
