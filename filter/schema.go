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

// Package filter translates untrusted client filter payloads into bounded,
// parameterized predicate sets over a repository's entity. A schema is the
// allow-list: only declared fields, their permitted operators, and declared
// one-level relations can appear in a payload; everything else is rejected.
package filter

import (
	"sort"

	"github.com/brunodmn/egret/casing"
)

// FieldType is the closed set of filterable value types.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeDate    FieldType = "date"
)

// Operator is the closed set of predicate operators.
type Operator string

const (
	OpEq     Operator = "eq"
	OpNe     Operator = "ne"
	OpGt     Operator = "gt"
	OpGte    Operator = "gte"
	OpLt     Operator = "lt"
	OpLte    Operator = "lte"
	OpLike   Operator = "like"
	OpIn     Operator = "in"
	OpIsNull Operator = "isNull"
)

// DefaultOperators returns the operators permitted for a field type when the
// schema does not narrow them further. Ordering operators require an
// orderable type; like requires a string.
func DefaultOperators(t FieldType) []Operator {
	switch t {
	case TypeString:
		return []Operator{OpEq, OpNe, OpLike, OpIn, OpIsNull}
	case TypeNumber, TypeDate:
		return []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpIsNull}
	case TypeBoolean:
		return []Operator{OpEq, OpNe, OpIsNull}
	default:
		return nil
	}
}

// Field declares one filterable field.
type Field struct {
	Type      FieldType
	Operators []Operator
	Nullable  bool
}

func (f Field) allows(op Operator) bool {
	for _, o := range f.Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Relation declares a one-level join target. The related entity's own
// relations are not filterable.
type Relation struct {
	Table         string
	Alias         string
	LocalColumn   string // FK column on the base table, storage case
	ForeignColumn string // key column on the related table, storage case
	Fields        map[string]Field
}

// Schema is the resolved filter allow-list for one entity.
type Schema struct {
	Table     string
	Alias     string
	Fields    map[string]Field
	Relations map[string]Relation
}

// NewSchema starts a schema for the given storage table and query alias.
func NewSchema(table, alias string) *Schema {
	return &Schema{
		Table:     table,
		Alias:     alias,
		Fields:    make(map[string]Field),
		Relations: make(map[string]Relation),
	}
}

// WithField declares a filterable field under its application-case name.
// When no operators are listed, the defaults for the type apply.
func (s *Schema) WithField(name string, t FieldType, nullable bool, ops ...Operator) *Schema {
	if len(ops) == 0 {
		ops = DefaultOperators(t)
	}
	s.Fields[name] = Field{Type: t, Operators: ops, Nullable: nullable}
	return s
}

// WithRelation declares a one-level relation under its application-case name.
// The related schema's fields become filterable through the relation; its own
// relations are dropped.
func (s *Schema) WithRelation(name string, related *Schema, localColumn, foreignColumn string) *Schema {
	fields := make(map[string]Field, len(related.Fields))
	for k, v := range related.Fields {
		fields[k] = v
	}
	s.Relations[name] = Relation{
		Table:         related.Table,
		Alias:         casing.ToStorage(name),
		LocalColumn:   localColumn,
		ForeignColumn: foreignColumn,
		Fields:        fields,
	}
	return s
}

// FieldDescription is the wire shape of one field in the introspection view.
type FieldDescription struct {
	Type      FieldType  `json:"type"`
	Operators []Operator `json:"operators"`
	Nullable  bool       `json:"nullable"`
}

// RelationDescription is the wire shape of one relation.
type RelationDescription struct {
	Fields map[string]FieldDescription `json:"fields"`
}

// Description is the read-only introspection view a caller can surface to
// clients: which fields, types, operators, and relations are filterable.
type Description struct {
	Fields        map[string]FieldDescription    `json:"fields"`
	Relationships map[string]RelationDescription `json:"relationships"`
}

// Describe returns the introspection view of the schema.
func (s *Schema) Describe() Description {
	d := Description{
		Fields:        make(map[string]FieldDescription, len(s.Fields)),
		Relationships: make(map[string]RelationDescription, len(s.Relations)),
	}
	for name, f := range s.Fields {
		d.Fields[name] = describeField(f)
	}
	for name, rel := range s.Relations {
		fields := make(map[string]FieldDescription, len(rel.Fields))
		for fname, f := range rel.Fields {
			fields[fname] = describeField(f)
		}
		d.Relationships[name] = RelationDescription{Fields: fields}
	}
	return d
}

func describeField(f Field) FieldDescription {
	ops := make([]Operator, len(f.Operators))
	copy(ops, f.Operators)
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return FieldDescription{Type: f.Type, Operators: ops, Nullable: f.Nullable}
}
