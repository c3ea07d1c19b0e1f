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
	"github.com/uptrace/bun"
)

// Apply attaches the validated joins and predicates to a select statement.
// Columns are quoted as identifiers and values bound as placeholders; the
// builder never concatenates a client value into SQL text.
func (q *Query) Apply(sel *bun.SelectQuery) *bun.SelectQuery {
	for _, j := range q.Joins {
		sel = sel.
			Join("JOIN ? AS ?", bun.Ident(j.Table), bun.Ident(j.Alias)).
			JoinOn("?.? = ?.?",
				bun.Ident(j.Alias), bun.Ident(j.ForeignColumn),
				bun.Ident(j.BaseAlias), bun.Ident(j.LocalColumn))
	}
	for _, p := range q.Predicates {
		sel = applyPredicate(sel, p)
	}
	return sel
}

func applyPredicate(sel *bun.SelectQuery, p Predicate) *bun.SelectQuery {
	col := []any{bun.Ident(p.Alias), bun.Ident(p.Column)}

	switch p.Op {
	case OpEq:
		return sel.Where("?.? = ?", append(col, p.Value)...)
	case OpNe:
		return sel.Where("?.? != ?", append(col, p.Value)...)
	case OpGt:
		return sel.Where("?.? > ?", append(col, p.Value)...)
	case OpGte:
		return sel.Where("?.? >= ?", append(col, p.Value)...)
	case OpLt:
		return sel.Where("?.? < ?", append(col, p.Value)...)
	case OpLte:
		return sel.Where("?.? <= ?", append(col, p.Value)...)
	case OpLike:
		return sel.Where("?.? LIKE ?", append(col, p.Value)...)
	case OpIn:
		values, _ := p.Value.([]any)
		return sel.Where("?.? IN (?)", append(col, bun.In(values))...)
	case OpIsNull:
		if want, _ := p.Value.(bool); want {
			return sel.Where("?.? IS NULL", col...)
		}
		return sel.Where("?.? IS NOT NULL", col...)
	default:
		return sel
	}
}
