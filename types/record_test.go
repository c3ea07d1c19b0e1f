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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStampInitializesLifecycle(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 3, 14, 17, 0, 0, 0, loc)
	id := uuid.New()

	var r Record
	r.SequentialID = 42 // stale caller value is discarded
	r.Stamp(id, now)

	assert.Equal(t, id, r.ID)
	assert.Zero(t, r.SequentialID)
	assert.True(t, r.Active)
	assert.EqualValues(t, 0, r.Version)
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
	assert.True(t, r.CreatedAt.Equal(now))
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)
}

func TestTouchAdvancesVersion(t *testing.T) {
	var r Record
	r.Stamp(uuid.New(), time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	created := r.CreatedAt

	r.Touch(time.Date(2026, 3, 14, 9, 0, 1, 0, time.UTC))
	assert.EqualValues(t, 1, r.Version)
	assert.Equal(t, created, r.CreatedAt)
	assert.True(t, r.UpdatedAt.After(created))

	r.Touch(time.Date(2026, 3, 14, 9, 0, 2, 0, time.UTC))
	assert.EqualValues(t, 2, r.Version)
}

func TestPageRequestBounds(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, 10, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())
	assert.Equal(t, []string{"sequential_id ASC"}, p.GetOrders())

	p = NewPageRequest(3, 20, "created_at DESC")
	assert.Equal(t, 40, p.GetOffset())
	assert.Equal(t, []string{"created_at DESC"}, p.GetOrders())
}
