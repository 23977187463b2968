package models

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestCategoryValid(t *testing.T) {
	tests := []struct {
		name string
		c    Category
		want bool
	}{
		{name: "tech", c: CategoryTech, want: true},
		{name: "note", c: CategoryNote, want: true},
		{name: "empty", c: Category(""), want: false},
		{name: "unknown", c: Category("recipes"), want: false},
		{name: "uppercase TECH", c: Category("TECH"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Valid(); got != tt.want {
				t.Errorf("Category(%q).Valid() = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestPostRouteKey(t *testing.T) {
	id := uuid.MustParse("8f14e45f-ceea-467f-a0e6-3b1f1a5e0c11")
	slug := "hello-world"
	empty := ""

	tests := []struct {
		name string
		slug *string
		want string
	}{
		{name: "slug set", slug: &slug, want: "hello-world"},
		{name: "slug nil", slug: nil, want: id.String()},
		{name: "slug empty", slug: &empty, want: id.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Post{ID: id, Slug: tt.slug}
			if got := p.RouteKey(); got != tt.want {
				t.Errorf("RouteKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"#Go", " rust ", "go", "", "##", "Web Dev"})
	want := []string{"go", "rust", "web dev"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags = %v, want %v", got, want)
	}
}

func TestTagsText(t *testing.T) {
	if got := TagsText([]string{"#Go", "Postgres"}); got != "go postgres" {
		t.Errorf("TagsText = %q, want %q", got, "go postgres")
	}
	if got := TagsText(nil); got != "" {
		t.Errorf("TagsText(nil) = %q, want empty", got)
	}
}
