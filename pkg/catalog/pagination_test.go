package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPaginationWindow(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"first page of 20", 1, 20, []int{1, 2, 3, 4, 5}},
		{"second page of 20", 2, 20, []int{1, 2, 3, 4, 5}},
		{"third page of 20", 3, 20, []int{1, 2, 3, 4, 5}},
		{"middle of 20", 10, 20, []int{8, 9, 10, 11, 12}},
		{"page 18 of 20", 18, 20, []int{16, 17, 18, 19, 20}},
		{"page 19 of 20", 19, 20, []int{16, 17, 18, 19, 20}},
		{"last page of 20", 20, 20, []int{16, 17, 18, 19, 20}},
		{"fewer pages than window", 2, 3, []int{1, 2, 3}},
		{"single page", 1, 1, []int{1}},
		{"exactly window", 5, 5, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPagination(tt.current, tt.total, DefaultWindow)
			assert.Equal(t, tt.want, p.Pages)
			assert.LessOrEqual(t, len(p.Pages), min(DefaultWindow, tt.total))
			assert.True(t, p.IsActive(tt.current))
		})
	}
}

func TestBuildPaginationDisabledButtons(t *testing.T) {
	p := BuildPagination(1, 3, DefaultWindow)
	assert.True(t, p.PrevDisabled)
	assert.False(t, p.NextDisabled)

	p = BuildPagination(3, 3, DefaultWindow)
	assert.False(t, p.PrevDisabled)
	assert.True(t, p.NextDisabled)

	p = BuildPagination(1, 0, DefaultWindow)
	assert.True(t, p.PrevDisabled)
	assert.True(t, p.NextDisabled)
	assert.Empty(t, p.Pages)
}

func TestBuildPaginationDefaultsWindow(t *testing.T) {
	p := BuildPagination(1, 10, 0)
	assert.Len(t, p.Pages, DefaultWindow)

	p = BuildPagination(4, 10, 3)
	assert.Equal(t, []int{3, 4, 5}, p.Pages)
}

func TestBuildCategoryMenu(t *testing.T) {
	assert.Nil(t, BuildCategoryMenu(nil))

	menu := BuildCategoryMenu([]string{"jewelery", "électronique"})
	assert.Equal(t, []CategoryEntry{
		{Label: AllCategoriesLabel, All: true},
		{Label: "Jewelery", Value: "jewelery"},
		{Label: "Électronique", Value: "électronique"},
	}, menu)
}

func TestCategoryLabelEmpty(t *testing.T) {
	assert.Equal(t, "", CategoryLabel(""))
}

func TestParseQueryState(t *testing.T) {
	tests := []struct {
		raw  string
		want QueryState
	}{
		{"", QueryState{Page: 1}},
		{"query=phone&page=2", QueryState{SearchTerm: "phone", Page: 2}},
		{"category=books", QueryState{Category: "books", Page: 1}},
		{"page=abc", QueryState{Page: 1}},
		{"page=0", QueryState{Page: 1}},
		{"page=-3", QueryState{Page: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := url.ParseQuery(tt.raw)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParseQueryState(v))
		})
	}
}

func TestQueryStateNormalize(t *testing.T) {
	assert.Equal(t, QueryState{Page: 1}, QueryState{Page: -3}.Normalize())
	assert.Equal(t, QueryState{Category: "books", Page: 2}, QueryState{SearchTerm: "x", Category: "books", Page: 2}.Normalize())
	assert.Equal(t, QueryState{SearchTerm: "x", Page: 1}, QueryState{SearchTerm: "x"}.Normalize())
}

func TestQueryStateValues(t *testing.T) {
	assert.Equal(t, "page=1", QueryState{Page: 1}.String())
	assert.Equal(t, "page=3&query=red+shoes", QueryState{SearchTerm: "red shoes", Page: 3}.String())
	assert.Equal(t, "category=books&page=1", QueryState{Category: "books", Page: 1}.String())

	round := ParseQueryState(QueryState{SearchTerm: "a&b", Page: 7}.Values())
	assert.Equal(t, QueryState{SearchTerm: "a&b", Page: 7}, round)
}
