// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Row returns the value of a column for in-memory evaluation.
type Row func(column string) any

// Matches evaluates p against row with the same semantics the SQL
// rendering has in PostgreSQL. A nil predicate matches every row.
func Matches(p Predicate, row Row) bool {
	switch p := p.(type) {
	case nil:
		return true
	case Eq:
		return sameValue(row(p.Column), p.Value)
	case Contains:
		s, _ := row(p.Column).(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(p.Value))
	case In:
		v := row(p.Column)
		for _, want := range p.Values {
			if sameValue(v, want) {
				return true
			}
		}
		return false
	case JSONContains:
		return jsonContains(row(p.Column), p.Value)
	case Range:
		t, ok := row(p.Column).(time.Time)
		if !ok {
			return false
		}
		if !p.From.IsZero() && t.Before(p.From) {
			return false
		}
		return p.Before.IsZero() || t.Before(p.Before)
	case And:
		for _, c := range p {
			if c != nil && !Matches(c, row) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range p {
			if c != nil && Matches(c, row) {
				return true
			}
		}
		return false
	}
	return false
}

// sameValue compares by printed form so named string types and UUIDs
// match their plain string values.
func sameValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// jsonContains implements the jsonb @> operator over Go values.
func jsonContains(have, want any) bool {
	l, err := roundTrip(have)
	if err != nil {
		return false
	}
	r, err := roundTrip(want)
	if err != nil {
		return false
	}
	return contains(l, r)
}

func roundTrip(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(raw, &out)
	return out, err
}

func contains(have, want any) bool {
	switch w := want.(type) {
	case []any:
		h, ok := have.([]any)
		if !ok {
			return false
		}
		for _, we := range w {
			found := false
			for _, he := range h {
				if contains(he, we) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case map[string]any:
		h, ok := have.(map[string]any)
		if !ok {
			return false
		}
		for k, wv := range w {
			hv, ok := h[k]
			if !ok || !contains(hv, wv) {
				return false
			}
		}
		return true
	default:
		return have == want
	}
}
