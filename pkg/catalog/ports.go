package catalog

import (
	"context"
	"net/url"
	"time"
)

// Source fetches product pages and categories from the storefront API.
//
// Source 从店面API获取产品分页和分类。
type Source interface {
	ListProducts(ctx context.Context, req ListRequest) (*PageResult, error)
	Categories(ctx context.Context) ([]string, error)
}

// Renderer is the render host of the catalog. The controller calls it while
// holding its lock, so implementations must not call back into the controller.
//
// Renderer 是目录的渲染宿主。控制器在持有锁时调用它，
// 因此实现不得回调控制器。
type Renderer interface {
	// SetSearchInput replaces the text of the search input.
	SetSearchInput(term string)
	// RenderLoading shows the loading placeholder in the list area.
	RenderLoading(state QueryState)
	// RenderProducts replaces the list with products.
	RenderProducts(state QueryState, products []Product)
	// RenderEmpty shows the "no results" placeholder.
	RenderEmpty(state QueryState)
	// RenderError shows the error placeholder.
	RenderError(state QueryState, err error)
	// RenderPagination draws prev/next and the page numbers.
	RenderPagination(p Pagination)
	// HidePagination removes the pagination controls.
	HidePagination()
	// RenderCategories fills the category menu. An empty menu means no categories.
	RenderCategories(menu []CategoryEntry)
	// RenderCategoriesError replaces the menu with an error line.
	RenderCategoriesError(err error)
}

// History is the location/history API. Push adds an entry without navigating.
//
// History 是位置/历史记录API。Push 添加一条记录但不触发导航。
type History interface {
	Location() url.Values
	Push(values url.Values)
}

// Outcome classifies how a product fetch ended.
//
// Outcome 对产品请求的结束方式进行分类。
type Outcome string

const (
	OutcomeRendered Outcome = "rendered"
	OutcomeEmpty    Outcome = "empty"
	OutcomeFailed   Outcome = "failed"
	OutcomeStale    Outcome = "stale"
)

// Observer receives one call per settled product fetch.
//
// Observer 在每个产品请求结束时接收一次调用。
type Observer interface {
	ObserveFetch(outcome Outcome, latency time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(Outcome, time.Duration) {}

type blankHistory struct{}

func (blankHistory) Location() url.Values { return url.Values{} }
func (blankHistory) Push(url.Values)      {}

// SourceFuncs adapts a pair of functions to the Source interface.
// A nil Cats yields no categories.
//
// SourceFuncs 将一对函数适配为Source接口。Cats为nil时不返回分类。
type SourceFuncs struct {
	List func(ctx context.Context, req ListRequest) (*PageResult, error)
	Cats func(ctx context.Context) ([]string, error)
}

// ListProducts calls List.
func (f SourceFuncs) ListProducts(ctx context.Context, req ListRequest) (*PageResult, error) {
	return f.List(ctx, req)
}

// Categories calls Cats.
func (f SourceFuncs) Categories(ctx context.Context) ([]string, error) {
	if f.Cats == nil {
		return nil, nil
	}
	return f.Cats(ctx)
}
