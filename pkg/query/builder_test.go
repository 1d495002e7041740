package query

import (
	"reflect"
	"testing"
	"time"
)

func testProjection() *ProjectionMap {
	return NewProjectionMap("public", "widgets", "w").
		Project("id", "ID").
		Project("name", "Name").
		Project("owner_id", "OwnerID").
		Project("created_at", "CreatedAt")
}

func TestBuildNoConditions(t *testing.T) {
	sql, args := NewBuilder(testProjection()).Build()

	want := "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v, want none", args)
	}
}

func TestBuildParameterNumbering(t *testing.T) {
	owner := "u1"
	name := "alpha"

	sql, args := NewBuilder(testProjection()).
		WhereEquals("OwnerID", owner).
		WhereContains("Name", &name).
		Build()

	want := "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w" +
		" WHERE w.owner_id = $1 AND w.name ILIKE $2"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}

	wantArgs := []any{"u1", "%alpha%"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %v, want %v", args, wantArgs)
	}
}

func TestBuildWhereIn(t *testing.T) {
	sql, args := NewBuilder(testProjection()).
		WhereEquals("OwnerID", "u1").
		WhereIn("Name", []any{"a", "b", "c"}).
		Build()

	want := "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w" +
		" WHERE w.owner_id = $1 AND w.name IN ($2, $3, $4)"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 4 {
		t.Fatalf("len(args) = %d, want 4", len(args))
	}
}

func TestBuildWhereAtOrAfter(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sql, args := NewBuilder(testProjection()).
		WhereAtOrAfter("CreatedAt", since).
		Build()

	want := "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w" +
		" WHERE w.created_at >= $1"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{since}) {
		t.Fatalf("args = %v, want [%v]", args, since)
	}

	sql, _ = NewBuilder(testProjection()).
		WhereAtOrAfter("CreatedAt", time.Time{}).
		Build()
	if sql != "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w" {
		t.Fatalf("zero time should be a no-op, got %q", sql)
	}
}

func TestBuildNilConditionsSkipped(t *testing.T) {
	var name *string

	sql, args := NewBuilder(testProjection()).
		WhereEquals("Name", name).
		WhereContains("Name", name).
		WhereSearch(nil, "Name").
		WhereIn("Name", nil).
		Build()

	want := "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v, want none", args)
	}
}

func TestBuildOrderingAndLimit(t *testing.T) {
	sql, _ := NewBuilder(testProjection(), SortField{Field: "CreatedAt", Descending: true}).
		Limit(15).
		Build()

	want := "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w" +
		" ORDER BY w.created_at DESC LIMIT 15"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}

	sql, _ = NewBuilder(testProjection(), SortField{Field: "CreatedAt", Descending: true}).
		OrderByFields([]SortField{{Field: "Name"}}).
		Build()

	want = "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w" +
		" ORDER BY w.name ASC"
	if sql != want {
		t.Fatalf("explicit sort should override default, got %q", sql)
	}
}

func TestBuildPage(t *testing.T) {
	sql, args := NewBuilder(testProjection(), SortField{Field: "CreatedAt", Descending: true}).
		WhereEquals("OwnerID", "u1").
		BuildPage(3, 20)

	want := "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w" +
		" WHERE w.owner_id = $1 ORDER BY w.created_at DESC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"u1"}) {
		t.Fatalf("args = %v, want [u1]", args)
	}
}

func TestBuildCount(t *testing.T) {
	sql, _ := NewBuilder(testProjection(), SortField{Field: "CreatedAt"}).
		WhereEquals("OwnerID", "u1").
		BuildCount()

	want := "SELECT COUNT(*) FROM public.widgets w WHERE w.owner_id = $1"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := NewBuilder(testProjection()).BuildSingle("ID", "abc")

	want := "SELECT w.id, w.name, w.owner_id, w.created_at FROM public.widgets w WHERE w.id = $1"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"abc"}) {
		t.Fatalf("args = %v, want [abc]", args)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []SortField
	}{
		{"empty", "", nil},
		{"single ascending", "name", []SortField{{Field: "name"}}},
		{"single descending", "-createdAt", []SortField{{Field: "createdAt", Descending: true}}},
		{
			"mixed with spaces",
			"name, -createdAt",
			[]SortField{{Field: "name"}, {Field: "createdAt", Descending: true}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseSortFields(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseSortFields(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}
