package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names shared by the location and the product API.
//
// 位置和产品API共用的查询参数名称。
const (
	ParamQuery    = "query"
	ParamCategory = "category"
	ParamPage     = "page"
	ParamLimit    = "limit"
)

// QueryState is the tuple driving the current product listing.
// The controller keeps SearchTerm and Category mutually exclusive; the type does not.
//
// QueryState 是驱动当前产品列表的元组。
// 控制器保证SearchTerm和Category互斥，类型本身不做此约束。
type QueryState struct {
	SearchTerm string
	Category   string
	Page       int
}

// ParseQueryState reads query, category and page from location query values.
// Missing values default to "", "" and 1; a page that is not an integer is 1.
//
// ParseQueryState 从位置查询参数中读取query、category和page。
// 缺失值默认为""、""和1；非整数的页码为1。
func ParseQueryState(values url.Values) QueryState {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamPage)))
	if err != nil || page == 0 {
		page = 1
	}
	return QueryState{
		SearchTerm: values.Get(ParamQuery),
		Category:   values.Get(ParamCategory),
		Page:       page,
	}
}

// Normalize clamps the page to at least 1 and applies the exclusivity policy:
// a non-empty category clears the search term.
//
// Normalize 将页码限制为至少1，并应用互斥策略：非空分类会清除搜索词。
func (s QueryState) Normalize() QueryState {
	s.Page = max(1, s.Page)
	if s.Category != "" {
		s.SearchTerm = ""
	}
	return s
}

// Values encodes the state as location query values.
// query and category are omitted when empty; page is always present.
//
// Values 将状态编码为位置查询参数。
// query和category为空时省略；page始终存在。
func (s QueryState) Values() url.Values {
	v := url.Values{}
	if s.SearchTerm != "" {
		v.Set(ParamQuery, s.SearchTerm)
	}
	if s.Category != "" {
		v.Set(ParamCategory, s.Category)
	}
	v.Set(ParamPage, strconv.Itoa(s.Page))
	return v
}

// String returns the encoded query string.
func (s QueryState) String() string {
	return s.Values().Encode()
}
