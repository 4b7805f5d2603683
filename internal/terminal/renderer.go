// Package terminal is the text front end of the catalog browser. It renders
// the catalog, the product detail page and the category menu on an io.Writer,
// and its Shell routes locations and typed commands to the catalog controller.
//
// Package terminal 是目录浏览器的文本前端。它在io.Writer上渲染目录、产品详情页和分类菜单，
// 其Shell将位置和输入的命令路由到目录控制器。
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/yourusername/storefront/pkg/catalog"
	serrors "github.com/yourusername/storefront/pkg/errors"
)

// DescriptionLimit is the number of runes of a description shown in the list.
//
// DescriptionLimit 是列表中显示的描述的最大字符数。
const DescriptionLimit = 100

// Renderer writes the controller's render calls as text. It implements both
// catalog.Renderer and catalog.DetailRenderer, and remembers the search input,
// the category menu and the last pagination so the shell can act on them.
//
// Renderer 把控制器的渲染调用写成文本，同时实现 catalog.Renderer 与 catalog.DetailRenderer，
// 并记住搜索框、分类菜单和最近的分页控件，供Shell使用。
type Renderer struct {
	mu          sync.Mutex
	out         io.Writer
	searchInput string
	menu        []catalog.CategoryEntry
	pagination  catalog.Pagination
	dropdown    *Toggle
}

// NewRenderer creates a renderer writing to out.
//
// Parameters:
//   - out: Destination of the rendered text
//
// Returns:
//   - *Renderer: A new renderer with a closed dropdown
//
// NewRenderer 创建写入out的终端渲染器。
//
// 参数:
//   - out: 渲染文本的输出目标
//
// 返回:
//   - *Renderer: 一个下拉菜单处于关闭状态的新渲染器
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, dropdown: NewToggle()}
}

// Dropdown returns the category dropdown toggle.
//
// Dropdown 返回分类下拉菜单的开关。
func (r *Renderer) Dropdown() *Toggle {
	return r.dropdown
}

// SearchInput returns the current search input.
//
// SearchInput 返回搜索框当前内容。
func (r *Renderer) SearchInput() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.searchInput
}

// Menu returns a copy of the rendered category menu.
//
// Menu 返回已渲染分类菜单的副本。
func (r *Renderer) Menu() []catalog.CategoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]catalog.CategoryEntry(nil), r.menu...)
}

// Pagination returns the last rendered pagination; it is zero while hidden.
//
// Pagination 返回最近渲染的分页控件，隐藏时为零值。
func (r *Renderer) Pagination() catalog.Pagination {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pagination
}

// SetSearchInput replaces the search input.
//
// SetSearchInput 替换搜索框内容。
func (r *Renderer) SetSearchInput(term string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchInput = term
}

// RenderLoading shows the loading placeholder.
//
// RenderLoading 显示加载占位符。
func (r *Renderer) RenderLoading(state catalog.QueryState) {
	r.printf("Loading products...\n")
}

// RenderProducts prints a heading for state followed by one entry per product,
// with descriptions cut to DescriptionLimit.
//
// RenderProducts 打印state对应的标题，然后每个产品一行，描述截断到DescriptionLimit。
func (r *Renderer) RenderProducts(state catalog.QueryState, products []catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s\n", heading(state))
	for _, p := range products {
		fmt.Fprintf(r.out, "  #%d %s  $%s\n", p.ID, p.Name, p.Price.StringFixed(2))
		if p.Description != "" {
			fmt.Fprintf(r.out, "      %s\n", Truncate(p.Description, DescriptionLimit))
		}
	}
}

// RenderEmpty shows the no-results placeholder.
//
// RenderEmpty 显示无结果占位符。
func (r *Renderer) RenderEmpty(state catalog.QueryState) {
	r.printf("No products match your search or filters.\n")
}

// RenderError shows the error placeholder with a user-facing message.
//
// RenderError 显示带有用户可读消息的错误占位符。
func (r *Renderer) RenderError(state catalog.QueryState, err error) {
	r.printf("Error loading products: %s. Please try again.\n", serrors.UserMessage(err))
}

// RenderPagination prints the prev and next buttons around the page numbers.
// Disabled buttons are shown in parentheses and the active page in brackets.
//
// RenderPagination 打印页码及两侧的上一页和下一页按钮。
// 禁用的按钮显示在圆括号中，当前页显示在方括号中。
func (r *Renderer) RenderPagination(p catalog.Pagination) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pagination = p

	var b strings.Builder
	b.WriteString(button("< prev", p.PrevDisabled))
	for _, n := range p.Pages {
		if p.IsActive(n) {
			fmt.Fprintf(&b, " [%d]", n)
		} else {
			fmt.Fprintf(&b, " %d", n)
		}
	}
	b.WriteString(" ")
	b.WriteString(button("next >", p.NextDisabled))
	fmt.Fprintln(r.out, b.String())
}

// HidePagination clears the pagination controls.
//
// HidePagination 清除分页控件。
func (r *Renderer) HidePagination() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pagination = catalog.Pagination{}
}

// RenderCategories stores the category menu; PrintMenu shows it.
//
// RenderCategories 保存分类菜单，由PrintMenu显示。
func (r *Renderer) RenderCategories(menu []catalog.CategoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.menu = menu
}

// RenderCategoriesError drops the menu and reports the failure.
//
// RenderCategoriesError 清空菜单并报告失败。
func (r *Renderer) RenderCategoriesError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.menu = nil
	fmt.Fprintln(r.out, "Error loading categories.")
}

// PrintMenu prints the category menu with the numbers used by the pick command.
//
// PrintMenu 输出分类菜单及pick命令使用的编号。
func (r *Renderer) PrintMenu() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.menu) == 0 {
		fmt.Fprintln(r.out, "No categories available.")
		return
	}
	for i, e := range r.menu {
		fmt.Fprintf(r.out, "  %d) %s\n", i, e.Label)
	}
}

// RenderDetailLoading shows the detail loading placeholder.
//
// RenderDetailLoading 显示详情加载占位符。
func (r *Renderer) RenderDetailLoading(id string) {
	r.printf("Loading product details...\n")
}

// RenderDetail prints a product page.
//
// RenderDetail 打印产品详情页。
func (r *Renderer) RenderDetail(p catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(r.out, "%s\n", p.Description)
	}
	if p.Category != "" {
		fmt.Fprintf(r.out, "Category: %s\n", catalog.CategoryLabel(p.Category))
	}
	fmt.Fprintf(r.out, "Origin: %s\n", catalog.OriginLabel(p))
	fmt.Fprintf(r.out, "Price: $%s\n", p.Price.StringFixed(2))
	if p.Rating.Count > 0 {
		fmt.Fprintf(r.out, "Rating: %.1f (%d reviews)\n", p.Rating.Rate, p.Rating.Count)
	}
}

// RenderDetailNotFound shows the not-found placeholder.
//
// RenderDetailNotFound 显示产品不存在占位符。
func (r *Renderer) RenderDetailNotFound(id string) {
	r.printf("Product %s not found.\n", id)
}

// RenderDetailMissingID shows the missing-id placeholder.
//
// RenderDetailMissingID 显示缺少产品ID占位符。
func (r *Renderer) RenderDetailMissingID() {
	r.printf("No product id provided.\n")
}

// RenderDetailError shows the detail error placeholder.
//
// RenderDetailError 显示详情错误占位符。
func (r *Renderer) RenderDetailError(id string, err error) {
	r.printf("Error loading product details: %s.\n", serrors.UserMessage(err))
}

func (r *Renderer) printf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

// Truncate cuts s to limit runes and appends "..." only when s was longer.
//
// Parameters:
//   - s: Text to shorten
//   - limit: Maximum number of runes kept
//
// Returns:
//   - string: s itself, or its first limit runes followed by "..."
//
// Truncate 将s截断到limit个字符，仅在s更长时追加"..."。
//
// 参数:
//   - s: 要缩短的文本
//   - limit: 保留的最大字符数
//
// 返回:
//   - string: s本身，或其前limit个字符加"..."
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func heading(state catalog.QueryState) string {
	switch {
	case state.Category != "":
		return fmt.Sprintf("Category %s, page %d", catalog.CategoryLabel(state.Category), state.Page)
	case state.SearchTerm != "":
		return fmt.Sprintf("Results for %q, page %d", state.SearchTerm, state.Page)
	default:
		return fmt.Sprintf("All products, page %d", state.Page)
	}
}

func button(label string, disabled bool) string {
	if disabled {
		return "(" + label + ")"
	}
	return label
}

var (
	_ catalog.Renderer       = (*Renderer)(nil)
	_ catalog.DetailRenderer = (*Renderer)(nil)
)
