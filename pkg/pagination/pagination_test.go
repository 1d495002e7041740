package pagination

import (
	"net/url"
	"testing"
)

func testConfig() Config {
	return Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestPageRequestNormalize(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name         string
		request      PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"defaults applied", PageRequest{}, 1, 20},
		{"negative page floors at one", PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size capped", PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"valid request unchanged", PageRequest{Page: 4, PageSize: 25}, 4, 25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.request.Normalize(&cfg)

			if tc.request.Page != tc.wantPage {
				t.Fatalf("Page = %d, want %d", tc.request.Page, tc.wantPage)
			}
			if tc.request.PageSize != tc.wantPageSize {
				t.Fatalf("PageSize = %d, want %d", tc.request.PageSize, tc.wantPageSize)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := testConfig()

	values := url.Values{}
	values.Set("page", "3")
	values.Set("pageSize", "10")
	values.Set("search", "verbs")
	values.Set("sort", "-createdAt")

	request := PageRequestFromQuery(values, &cfg)

	if request.Page != 3 || request.PageSize != 10 {
		t.Fatalf("page = %d/%d, want 3/10", request.Page, request.PageSize)
	}
	if request.Search != "verbs" {
		t.Fatalf("Search = %q, want %q", request.Search, "verbs")
	}
	if request.Offset() != 20 {
		t.Fatalf("Offset() = %d, want 20", request.Offset())
	}

	sort := request.SortFields()
	if len(sort) != 1 || sort[0].Field != "createdAt" || !sort[0].Descending {
		t.Fatalf("SortFields() = %v, want descending createdAt", sort)
	}
}

func TestSearchTerm(t *testing.T) {
	request := PageRequest{Search: "  tense  "}
	term := request.SearchTerm()
	if term == nil || *term != "tense" {
		t.Fatalf("SearchTerm() = %v, want trimmed %q", term, "tense")
	}

	request = PageRequest{Search: "   "}
	if request.SearchTerm() != nil {
		t.Fatal("SearchTerm() for blank input should be nil")
	}
}

func TestNewPageResult(t *testing.T) {
	request := PageRequest{Page: 2, PageSize: 10}
	result := NewPageResult([]int{1, 2, 3}, request, 25)

	if result.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", result.TotalPages)
	}
	if result.TotalItems != 25 {
		t.Fatalf("TotalItems = %d, want 25", result.TotalItems)
	}
	if result.Page != 2 || result.PageSize != 10 {
		t.Fatalf("page = %d/%d, want 2/10", result.Page, result.PageSize)
	}
}
