package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultWindow is the maximum number of page-number affordances.
//
// DefaultWindow 是页码按钮的最大数量。
const DefaultWindow = 5

// Pagination describes the pagination controls for one rendered page.
//
// Pagination 描述一个已渲染页面的分页控件。
type Pagination struct {
	Current      int
	TotalPages   int
	Pages        []int
	PrevDisabled bool
	NextDisabled bool
}

// IsActive reports whether page n is the current page.
//
// IsActive 报告第n页是否为当前页。
func (p Pagination) IsActive(n int) bool {
	return n == p.Current
}

// BuildPagination computes the controls for the current page.
// At most window page numbers are shown, centered on current and clamped to
// [1, totalPages]; near either edge the window slides instead of shrinking.
//
// BuildPagination 计算当前页的分页控件。
// 最多显示window个页码，以当前页为中心并限制在[1, totalPages]内；
// 靠近任一边缘时窗口滑动而不是缩小。
//
// Parameters:
//   - current: The current page (1-based)
//   - totalPages: Total number of pages, 0 for an empty result
//   - window: Maximum number of page numbers, DefaultWindow when <= 0
//
// Returns:
//   - Pagination: The controls to render
func BuildPagination(current, totalPages, window int) Pagination {
	if window <= 0 {
		window = DefaultWindow
	}
	totalPages = max(0, totalPages)

	p := Pagination{
		Current:      current,
		TotalPages:   totalPages,
		PrevDisabled: current <= 1,
		NextDisabled: totalPages == 0 || current >= totalPages,
	}
	if totalPages == 0 {
		return p
	}

	start, end := PageWindow(current, totalPages, window)
	p.Pages = make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		p.Pages = append(p.Pages, i)
	}
	return p
}

// PageWindow returns the first and last page number of the visible window.
//
// PageWindow 返回可见窗口的第一个和最后一个页码。
func PageWindow(current, totalPages, width int) (start, end int) {
	start = max(1, current-width/2)
	end = start + width - 1
	if end > totalPages {
		end = totalPages
		start = max(1, end-width+1)
	}
	return start, end
}

// CategoryEntry is one item of the category menu.
// The entry with All set resets the category filter.
//
// CategoryEntry 是分类菜单中的一项。
// All为true的条目会重置分类过滤。
type CategoryEntry struct {
	Label string
	Value string
	All   bool
}

// AllCategoriesLabel is the label of the synthetic "all categories" entry.
//
// AllCategoriesLabel 是合成的"全部分类"条目的标签。
const AllCategoriesLabel = "All categories"

// BuildCategoryMenu builds the menu for the given categories.
// An empty category list yields an empty menu.
//
// BuildCategoryMenu 为给定分类构建菜单。
// 分类列表为空时返回空菜单。
func BuildCategoryMenu(categories []string) []CategoryEntry {
	if len(categories) == 0 {
		return nil
	}
	menu := make([]CategoryEntry, 0, len(categories)+1)
	menu = append(menu, CategoryEntry{Label: AllCategoriesLabel, All: true})
	for _, c := range categories {
		menu = append(menu, CategoryEntry{Label: CategoryLabel(c), Value: c})
	}
	return menu
}

// CategoryLabel upper-cases the first letter of a category for display.
//
// CategoryLabel 将分类的首字母大写用于展示。
func CategoryLabel(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if r == utf8.RuneError {
		return category
	}
	var b strings.Builder
	b.WriteRune(unicode.ToUpper(r))
	b.WriteString(category[size:])
	return b.String()
}
