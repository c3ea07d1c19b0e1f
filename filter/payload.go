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
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/brunodmn/egret/casing"
	"github.com/brunodmn/egret/errs"
)

// Payload is the decoded client filter document: field name (or relation
// name) to operator/value map (or nested field map for relations).
type Payload map[string]any

// Predicate is one validated, parameterized comparison. Value is normalized
// to the field's Go representation (time.Time for dates, []any for in,
// bool for isNull).
type Predicate struct {
	Alias  string
	Column string
	Op     Operator
	Value  any
}

// Join is one validated relation join.
type Join struct {
	Table         string
	Alias         string
	BaseAlias     string
	LocalColumn   string
	ForeignColumn string
}

// Query is a validated filter ready to be applied to a select statement.
// All predicates, base and joined, combine with AND.
type Query struct {
	Joins      []Join
	Predicates []Predicate
}

// Parse validates a payload against the schema and builds the predicate set.
// Every offending key is collected; a payload with any unknown field,
// disallowed operator, or mismatched value shape is rejected as a whole with
// a single aggregated validation error.
func (s *Schema) Parse(payload Payload) (*Query, error) {
	q := &Query{}
	var issues []errs.FieldIssue

	for _, key := range sortedKeys(payload) {
		raw := payload[key]

		if field, ok := s.Fields[key]; ok {
			issues = append(issues, parseField(q, s.Alias, key, field, raw)...)
			continue
		}
		if rel, ok := s.Relations[key]; ok {
			issues = append(issues, parseRelation(q, s.Alias, key, rel, raw)...)
			continue
		}
		issues = append(issues, errs.FieldIssue{
			Field:   key,
			Message: "unknown field",
		})
	}

	if len(issues) > 0 {
		return nil, &errs.ValidationError{Issues: issues}
	}
	return q, nil
}

func parseField(q *Query, alias, name string, field Field, raw any) []errs.FieldIssue {
	ops, ok := raw.(map[string]any)
	if !ok {
		return []errs.FieldIssue{{
			Field:   name,
			Message: "expected an operator object",
		}}
	}

	var issues []errs.FieldIssue
	for _, opName := range sortedKeys(ops) {
		op := Operator(opName)
		if !field.allows(op) {
			issues = append(issues, errs.FieldIssue{
				Field:   name,
				Message: fmt.Sprintf("operator %s not allowed", opName),
			})
			continue
		}
		value, issue := normalizeValue(name, field, op, ops[opName])
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		q.Predicates = append(q.Predicates, Predicate{
			Alias:  alias,
			Column: casing.ToStorage(name),
			Op:     op,
			Value:  value,
		})
	}
	return issues
}

func parseRelation(q *Query, baseAlias, name string, rel Relation, raw any) []errs.FieldIssue {
	nested, ok := raw.(map[string]any)
	if !ok {
		return []errs.FieldIssue{{
			Field:   name,
			Message: "expected a nested field object",
		}}
	}

	joined := false
	var issues []errs.FieldIssue
	for _, fieldName := range sortedKeys(nested) {
		field, ok := rel.Fields[fieldName]
		if !ok {
			issues = append(issues, errs.FieldIssue{
				Field:   name + "." + fieldName,
				Message: "unknown field",
			})
			continue
		}
		fieldIssues := parseField(q, rel.Alias, fieldName, field, nested[fieldName])
		for _, issue := range fieldIssues {
			issue.Field = name + "." + issue.Field
			issues = append(issues, issue)
		}
		if len(fieldIssues) == 0 {
			joined = true
		}
	}

	if joined {
		q.Joins = append(q.Joins, Join{
			Table:         rel.Table,
			Alias:         rel.Alias,
			BaseAlias:     baseAlias,
			LocalColumn:   rel.LocalColumn,
			ForeignColumn: rel.ForeignColumn,
		})
	}
	return issues
}

// normalizeValue checks the operator's value shape against the field type and
// converts it to the representation the query builder binds.
func normalizeValue(name string, field Field, op Operator, raw any) (any, *errs.FieldIssue) {
	fail := func(msg string) (any, *errs.FieldIssue) {
		return nil, &errs.FieldIssue{Field: name, Message: msg}
	}

	switch op {
	case OpIsNull:
		want, ok := raw.(bool)
		if !ok {
			return fail("isNull requires a boolean")
		}
		if !field.Nullable {
			return fail("field is not nullable")
		}
		return want, nil

	case OpIn:
		list, ok := raw.([]any)
		if !ok {
			return fail("in requires a list")
		}
		if len(list) == 0 {
			return fail("in requires a non-empty list")
		}
		values := make([]any, len(list))
		for i, item := range list {
			v, issue := scalarValue(name, field.Type, item)
			if issue != nil {
				return nil, issue
			}
			values[i] = v
		}
		return values, nil

	case OpLike:
		if field.Type != TypeString {
			return fail("like requires a string field")
		}
		pattern, ok := raw.(string)
		if !ok {
			return fail("like requires a string pattern")
		}
		return pattern, nil

	case OpGt, OpGte, OpLt, OpLte:
		if field.Type != TypeNumber && field.Type != TypeDate {
			return fail(fmt.Sprintf("operator %s requires an orderable field", op))
		}
		return scalarValue(name, field.Type, raw)

	case OpEq, OpNe:
		return scalarValue(name, field.Type, raw)

	default:
		return fail(fmt.Sprintf("unsupported operator %s", op))
	}
}

func scalarValue(name string, t FieldType, raw any) (any, *errs.FieldIssue) {
	fail := func(msg string) (any, *errs.FieldIssue) {
		return nil, &errs.FieldIssue{Field: name, Message: msg}
	}

	switch t {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return fail("expected a string")
		}
		return s, nil
	case TypeNumber:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return v, nil
		case int64:
			return v, nil
		case json.Number:
			// bind a numeric value, not the textual form
			if i, err := v.Int64(); err == nil {
				return i, nil
			}
			f, err := v.Float64()
			if err != nil {
				return fail("expected a number")
			}
			return f, nil
		default:
			return fail("expected a number")
		}
	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return fail("expected a boolean")
		}
		return b, nil
	case TypeDate:
		switch v := raw.(type) {
		case time.Time:
			return v.UTC(), nil
		case string:
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return fail("expected an RFC 3339 timestamp")
			}
			return ts.UTC(), nil
		default:
			return fail("expected an RFC 3339 timestamp")
		}
	default:
		return fail("unsupported field type")
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
