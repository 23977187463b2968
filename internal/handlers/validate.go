package handlers

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"folio/internal/models"
	"folio/internal/search"
	"folio/internal/series"
)

// Validation limits for post fields.
const (
	maxTitleLen   = 300
	maxSlugLen    = 200
	maxContentLen = 100_000
	maxExcerptLen = 1_000
	maxTags       = 20
	maxTagLen     = 40
)

// seriesInput is the optional series block of a post write.
type seriesInput struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Position *int   `json:"position"`
}

// postInput is the body of POST /api/posts and PUT /api/posts/{id}.
type postInput struct {
	Title    string       `json:"title"`
	Slug     string       `json:"slug"`
	Content  string       `json:"content"`
	Excerpt  string       `json:"excerpt"`
	Category string       `json:"category"`
	Tags     []string     `json:"tags"`
	Series   *seriesInput `json:"series"`
}

func categoryValues() []any {
	out := make([]any, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = string(c)
	}
	return out
}

// Validate checks the post body and returns the failing fields.
func (in postInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.By(notBlank), validation.RuneLength(1, maxTitleLen)),
		validation.Field(&in.Slug, validation.RuneLength(0, maxSlugLen)),
		validation.Field(&in.Content, validation.RuneLength(0, maxContentLen)),
		validation.Field(&in.Excerpt, validation.RuneLength(0, maxExcerptLen)),
		validation.Field(&in.Category, validation.Required, validation.In(categoryValues()...)),
		validation.Field(&in.Tags,
			validation.Length(0, maxTags),
			validation.Each(validation.RuneLength(1, maxTagLen)),
		),
		validation.Field(&in.Series),
	)
}

// Validate checks the series block.
func (in seriesInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.RuneLength(0, series.MaxTitleRunes)),
		validation.Field(&in.Slug, validation.RuneLength(0, series.MaxSlugLength)),
		validation.Field(&in.Position, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// listParams is the query string of GET /api/posts.
type listParams struct {
	Category string `json:"category"`
	Tag      string `json:"tag"`
	Page     string `json:"page"`
	PageSize string `json:"pageSize"`
}

// parseListing validates the listing query string.
func parseListing(values url.Values) (search.Listing, error) {
	raw := listParams{
		Category: strings.TrimSpace(values.Get("category")),
		Tag:      strings.TrimSpace(values.Get("tag")),
		Page:     strings.TrimSpace(values.Get("page")),
		PageSize: strings.TrimSpace(values.Get("pageSize")),
	}
	err := validation.ValidateStruct(&raw,
		validation.Field(&raw.Category, validation.In(categoryValues()...)),
		validation.Field(&raw.Tag, validation.RuneLength(0, maxTagLen)),
		validation.Field(&raw.Page, is.Int),
		validation.Field(&raw.PageSize, is.Int),
	)
	if err != nil {
		return search.Listing{}, err
	}

	l := search.Listing{
		Category: models.Category(raw.Category),
		Tag:      raw.Tag,
		Page:     atoiOr(raw.Page, search.DefaultPage),
		PageSize: atoiOr(raw.PageSize, search.DefaultPageSize),
	}
	err = validation.Errors{
		"page":     validation.Validate(l.Page, validation.Min(1), validation.Max(search.MaxPage)),
		"pageSize": validation.Validate(l.PageSize, validation.Min(1), validation.Max(search.MaxPageSize)),
	}.Filter()
	if err != nil {
		return search.Listing{}, err
	}
	return l, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
