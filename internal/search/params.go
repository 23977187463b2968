// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Mode selects which resolver operation a request runs.
type Mode string

const (
	ModeSearch      Mode = "search"
	ModeSuggestions Mode = "suggestions"
	ModePopularTags Mode = "popular-tags"
)

// Sort is the result ordering of a search.
type Sort string

const (
	SortRelevance Sort = "relevance"
	SortLatest    Sort = "latest"
)

// Request limits.
const (
	DefaultPage     = 1
	MaxPage         = 500
	DefaultPageSize = 10
	MaxPageSize     = 50
	MaxRawQuery     = 200
	MaxTags         = 10
	MaxLimit        = 20

	DefaultSuggestionLimit = 6
	DefaultPopularLimit    = 8

	dateLayout = "2006-01-02"
)

// ErrInvalidParams marks request validation failures.
var ErrInvalidParams = errors.New("invalid search parameters")

// Params is a validated search request.
type Params struct {
	Mode  Mode
	Query Query
	// Raw is the unnormalized q parameter, used by suggestions.
	Raw   string
	Limit int
}

// rawParams mirrors the query string before conversion. The json tags name
// fields in validation messages.
type rawParams struct {
	Mode     string   `json:"mode"`
	Q        string   `json:"q"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Sort     string   `json:"sort"`
	Page     string   `json:"page"`
	PageSize string   `json:"pageSize"`
	Limit    string   `json:"limit"`
	Tags     []string `json:"tags"`
}

// ParseParams validates query-string values and converts them into Params.
// Every failure wraps ErrInvalidParams; nothing reaches the resolver
// unless the whole request is valid.
func ParseParams(values url.Values) (Params, error) {
	raw := rawParams{
		Mode:     strings.TrimSpace(values.Get("mode")),
		Q:        values.Get("q"),
		From:     strings.TrimSpace(values.Get("from")),
		To:       strings.TrimSpace(values.Get("to")),
		Sort:     strings.TrimSpace(values.Get("sort")),
		Page:     strings.TrimSpace(values.Get("page")),
		PageSize: strings.TrimSpace(values.Get("pageSize")),
		Limit:    strings.TrimSpace(values.Get("limit")),
		Tags:     splitTags(values["tags"]),
	}

	err := validation.ValidateStruct(&raw,
		validation.Field(&raw.Mode, validation.In(string(ModeSearch), string(ModeSuggestions), string(ModePopularTags))),
		validation.Field(&raw.Q, validation.RuneLength(0, MaxRawQuery)),
		validation.Field(&raw.From, validation.Date(dateLayout).Error("must be a date formatted as YYYY-MM-DD")),
		validation.Field(&raw.To, validation.Date(dateLayout).Error("must be a date formatted as YYYY-MM-DD")),
		validation.Field(&raw.Sort, validation.In(string(SortRelevance), string(SortLatest))),
		validation.Field(&raw.Page, validation.By(intBetween(1, MaxPage))),
		validation.Field(&raw.PageSize, validation.By(intBetween(1, MaxPageSize))),
		validation.Field(&raw.Limit, validation.By(intBetween(1, MaxLimit))),
		validation.Field(&raw.Tags, validation.Length(0, MaxTags)),
	)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	p := Params{
		Mode: Mode(raw.Mode),
		Raw:  raw.Q,
		Query: Query{
			Q:        NormalizeQuery(raw.Q),
			Tags:     raw.Tags,
			Sort:     Sort(raw.Sort),
			Page:     atoiOr(raw.Page, DefaultPage),
			PageSize: atoiOr(raw.PageSize, DefaultPageSize),
		},
	}
	if p.Mode == "" {
		p.Mode = ModeSearch
	}
	if p.Query.Sort == "" {
		p.Query.Sort = SortRelevance
	}

	switch p.Mode {
	case ModeSuggestions:
		p.Limit = atoiOr(raw.Limit, DefaultSuggestionLimit)
	case ModePopularTags:
		p.Limit = atoiOr(raw.Limit, DefaultPopularLimit)
	}

	if raw.From != "" {
		from, _ := time.Parse(dateLayout, raw.From)
		p.Query.From = &from
	}
	if raw.To != "" {
		to, _ := time.Parse(dateLayout, raw.To)
		p.Query.To = &to
	}
	if p.Query.From != nil && p.Query.To != nil && p.Query.From.After(*p.Query.To) {
		return Params{}, fmt.Errorf("%w: %w", ErrInvalidParams,
			validation.Errors{"from": errors.New("must not be after to")})
	}

	return p, nil
}

// intBetween validates an optional decimal integer string.
func intBetween(min, max int) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("must be an integer")
		}
		if n < min || n > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// splitTags accepts repeated ?tags= parameters and comma-separated lists.
func splitTags(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
