// Package pagination provides page request parsing and paged result types.
package pagination

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/quizdeck/quizdeck/pkg/query"
)

// PageRequest describes a requested page of results.
type PageRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Search   string `json:"search"`
	Sort     string `json:"sort"`
}

// Normalize clamps the request against the given configuration. Page floors
// at 1; PageSize falls back to the default and is capped at the maximum.
func (r *PageRequest) Normalize(cfg *Config) {
	if r.Page < 1 {
		r.Page = 1
	}

	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}

	if r.PageSize > cfg.MaxPageSize {
		r.PageSize = cfg.MaxPageSize
	}
}

// Offset returns the row offset for the requested page.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// SortFields parses the Sort string into query sort fields.
func (r *PageRequest) SortFields() []query.SortField {
	return query.ParseSortFields(r.Sort)
}

// SearchTerm returns a pointer to the trimmed search term, nil when empty.
func (r *PageRequest) SearchTerm() *string {
	term := strings.TrimSpace(r.Search)
	if term == "" {
		return nil
	}
	return &term
}

// PageRequestFromQuery builds a PageRequest from URL query parameters:
// page, pageSize, search, sort.
func PageRequestFromQuery(values url.Values, cfg *Config) PageRequest {
	request := PageRequest{
		Search: values.Get("search"),
		Sort:   values.Get("sort"),
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		request.Page = page
	}

	if pageSize, err := strconv.Atoi(values.Get("pageSize")); err == nil {
		request.PageSize = pageSize
	}

	request.Normalize(cfg)
	return request
}

// PageResult is a page of results with total counts for client paging.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPageResult assembles a PageResult from items and a total count.
func NewPageResult[T any](items []T, request PageRequest, totalItems int) PageResult[T] {
	totalPages := 0
	if request.PageSize > 0 {
		totalPages = (totalItems + request.PageSize - 1) / request.PageSize
	}

	return PageResult[T]{
		Items:      items,
		Page:       request.Page,
		PageSize:   request.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
