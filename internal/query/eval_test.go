package query

import (
	"testing"
	"time"
)

func TestMatches(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	values := map[string]any{
		"title":      "Go Concurrency Patterns",
		"category":   "tech",
		"tags":       []string{"go", "concurrency"},
		"created_at": created,
	}
	row := func(col string) any { return values[col] }

	tests := []struct {
		name string
		p    Predicate
		want bool
	}{
		{name: "nil", p: nil, want: true},
		{name: "eq", p: Eq{Column: "category", Value: "tech"}, want: true},
		{name: "eq miss", p: Eq{Column: "category", Value: "life"}, want: false},
		{name: "contains case-insensitive", p: Contains{Column: "title", Value: "concurrency"}, want: true},
		{name: "contains wildcard literal", p: Contains{Column: "title", Value: "Go%"}, want: false},
		{name: "in", p: In{Column: "category", Values: []any{"life", "tech"}}, want: true},
		{name: "in empty", p: In{Column: "category"}, want: false},
		{name: "json contains", p: JSONContains{Column: "tags", Value: []string{"go"}}, want: true},
		{name: "json contains all", p: JSONContains{Column: "tags", Value: []string{"go", "rust"}}, want: false},
		{name: "range inside", p: Range{Column: "created_at", From: created.AddDate(0, 0, -1), Before: created.AddDate(0, 0, 1)}, want: true},
		{name: "range before is exclusive", p: Range{Column: "created_at", Before: created}, want: false},
		{name: "range from is inclusive", p: Range{Column: "created_at", From: created}, want: true},
		{name: "empty and", p: And{}, want: true},
		{name: "empty or", p: Or{}, want: false},
		{name: "or", p: Or{Eq{Column: "category", Value: "life"}, Contains{Column: "title", Value: "go"}}, want: true},
		{name: "and", p: And{Eq{Column: "category", Value: "tech"}, Contains{Column: "title", Value: "rust"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.p, row); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
