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

package filter

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/brunodmn/egret/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func testSchema() *Schema {
	user := NewSchema("users", "u").
		WithField("name", TypeString, false).
		WithField("email", TypeString, false)

	return NewSchema("tasks", "t").
		WithField("title", TypeString, false).
		WithField("status", TypeString, false).
		WithField("priority", TypeNumber, false).
		WithField("done", TypeBoolean, false).
		WithField("dueDate", TypeDate, true).
		WithRelation("assignee", user, "user_id", "id")
}

func TestParseAcceptsValidPayload(t *testing.T) {
	q, err := testSchema().Parse(Payload{
		"status":   map[string]any{"eq": "open"},
		"priority": map[string]any{"gte": float64(2)},
		"dueDate":  map[string]any{"lt": "2026-09-01T00:00:00Z", "isNull": false},
		"assignee": map[string]any{
			"email": map[string]any{"like": "%@example.com"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, q.Predicates, 5)
	require.Len(t, q.Joins, 1)
	assert.Equal(t, "users", q.Joins[0].Table)
	assert.Equal(t, "assignee", q.Joins[0].Alias)

	// dueDate lt arrives as a UTC time.Time, due_date in storage case
	var due *Predicate
	for i := range q.Predicates {
		if q.Predicates[i].Column == "due_date" && q.Predicates[i].Op == OpLt {
			due = &q.Predicates[i]
		}
	}
	require.NotNil(t, due)
	_, isTime := due.Value.(time.Time)
	assert.True(t, isTime)
}

func TestParseBindsJSONNumbersNumerically(t *testing.T) {
	q, err := testSchema().Parse(Payload{
		"priority": map[string]any{
			"gte": json.Number("2"),
			"lt":  json.Number("7.5"),
		},
	})
	require.NoError(t, err)
	require.Len(t, q.Predicates, 2)

	values := map[Operator]any{}
	for _, p := range q.Predicates {
		values[p.Op] = p.Value
	}
	assert.Equal(t, int64(2), values[OpGte])
	assert.Equal(t, 7.5, values[OpLt])

	_, err = testSchema().Parse(Payload{
		"priority": map[string]any{"eq": json.Number("not-a-number")},
	})
	assert.True(t, errs.IsValidation(err))
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := testSchema().Parse(Payload{
		"drop table": map[string]any{"eq": "x"},
	})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestParseRejectsDisallowedOperator(t *testing.T) {
	// like on a boolean field
	_, err := testSchema().Parse(Payload{
		"done": map[string]any{"like": "%x%"},
	})
	require.ErrorIs(t, err, errs.ErrValidation)

	// ordering on a string field
	_, err = testSchema().Parse(Payload{
		"title": map[string]any{"gt": "a"},
	})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestParseRejectsShapeMismatch(t *testing.T) {
	tests := []Payload{
		{"priority": map[string]any{"eq": "high"}},      // string for number
		{"priority": map[string]any{"in": []any{}}},     // empty list
		{"priority": map[string]any{"in": "2"}},         // scalar for in
		{"done": map[string]any{"isNull": "yes"}},       // non-boolean isNull
		{"done": map[string]any{"isNull": true}},        // isNull on non-nullable
		{"dueDate": map[string]any{"eq": "not-a-date"}}, // bad timestamp
		{"title": "open"},                               // missing operator object
	}
	for _, payload := range tests {
		_, err := testSchema().Parse(payload)
		assert.ErrorIs(t, err, errs.ErrValidation, "payload %v", payload)
	}
}

func TestParseAggregatesAllIssues(t *testing.T) {
	_, err := testSchema().Parse(Payload{
		"bogus":    map[string]any{"eq": "x"},
		"done":     map[string]any{"like": "%x%"},
		"assignee": map[string]any{"secret": map[string]any{"eq": 1}},
	})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 3)

	fields := make([]string, len(verr.Issues))
	for i, issue := range verr.Issues {
		fields[i] = issue.Field
	}
	assert.Contains(t, fields, "bogus")
	assert.Contains(t, fields, "done")
	assert.Contains(t, fields, "assignee.secret")
}

func TestRelationDepthStopsAtOne(t *testing.T) {
	division := NewSchema("divisions", "d").
		WithField("code", TypeString, false)
	user := NewSchema("users", "u").
		WithField("name", TypeString, false).
		WithRelation("division", division, "division_id", "id")
	task := NewSchema("tasks", "t").
		WithField("title", TypeString, false).
		WithRelation("assignee", user, "user_id", "id")

	// the relation's own relation is not filterable
	_, err := task.Parse(Payload{
		"assignee": map[string]any{
			"division": map[string]any{"code": map[string]any{"eq": "DIV1"}},
		},
	})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestApplyBuildsParameterizedSQL(t *testing.T) {
	sqlDB, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	q, err := testSchema().Parse(Payload{
		"status":   map[string]any{"eq": "open'; DROP TABLE tasks;--"},
		"priority": map[string]any{"in": []any{float64(1), float64(2)}},
		"dueDate":  map[string]any{"isNull": true},
		"assignee": map[string]any{
			"name": map[string]any{"eq": "ann"},
		},
	})
	require.NoError(t, err)

	sel := db.NewSelect().TableExpr("tasks AS t")
	text := q.Apply(sel).String()

	assert.Contains(t, text, `JOIN "users" AS "assignee"`)
	assert.Contains(t, text, `"assignee"."id" = "t"."user_id"`)
	assert.Contains(t, text, `"t"."status" = 'open''; DROP TABLE tasks;--'`)
	assert.Contains(t, text, `"t"."priority" IN (1, 2)`)
	assert.Contains(t, text, `"t"."due_date" IS NULL`)
	assert.Contains(t, text, `"assignee"."name" = 'ann'`)
	assert.NotContains(t, text, "OR ")
}

func TestDescribe(t *testing.T) {
	d := testSchema().Describe()

	require.Contains(t, d.Fields, "priority")
	assert.Equal(t, TypeNumber, d.Fields["priority"].Type)
	assert.Contains(t, d.Fields["priority"].Operators, OpGte)
	assert.False(t, d.Fields["priority"].Nullable)

	require.Contains(t, d.Fields, "dueDate")
	assert.True(t, d.Fields["dueDate"].Nullable)

	require.Contains(t, d.Relationships, "assignee")
	assert.Contains(t, d.Relationships["assignee"].Fields, "email")
	assert.NotContains(t, d.Fields, "secret")
}
