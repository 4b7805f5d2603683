// Package catalog implements the catalog browsing controller of the storefront:
// it owns the search/category/page state, fetches matching pages from the
// product API, renders them through a Renderer, and keeps the location in sync.
//
// Every fetch runs in its own goroutine and is tagged with a sequence number.
// Only the response to the most recently issued request is rendered; replies
// to superseded requests are dropped.
//
// Package catalog 实现店面的目录浏览控制器：
// 它维护搜索/分类/页码状态，从产品API获取匹配的分页，
// 通过Renderer渲染结果，并保持位置同步。
//
// 每个请求在独立的goroutine中运行并带有序列号。
// 只有最近发出的请求的响应会被渲染；被取代请求的响应会被丢弃。
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	serrors "github.com/yourusername/storefront/pkg/errors"
	"github.com/yourusername/storefront/pkg/notify"
)

// Status is the controller's position in its Idle → Loading → {Rendered, Errored} cycle.
//
// Status 表示控制器在 Idle → Loading → {Rendered, Errored} 循环中的位置。
type Status int

const (
	Idle Status = iota
	Loading
	Rendered
	Errored
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Controller is the catalog browsing controller.
// All fields below mu are guarded by it; render calls are made while holding it.
//
// Controller 是目录浏览控制器。
// mu以下的所有字段都受其保护；渲染调用在持有该锁时进行。
type Controller struct {
	source   Source
	renderer Renderer
	notifier notify.Notifier
	history  History
	observer Observer
	logger   *zap.Logger
	window   int
	timeout  time.Duration

	mu         sync.Mutex
	active     bool
	generation uint64
	pageSize   int
	state      QueryState
	totalPages int
	status     Status
	seq        uint64
	cancel     context.CancelFunc
	categories []string

	wg sync.WaitGroup
}

// New creates a controller reading from source.
//
// New 创建一个从source读取数据的控制器。
//
// Parameters:
//   - source: The product/category API
//   - opts: Functional options
//
// Returns:
//   - *Controller: A controller in the Idle state; call Initialize to start it
func New(source Source, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		notifier: notify.Discard,
		history:  blankHistory{},
		observer: nopObserver{},
		logger:   zap.NewNop(),
		pageSize: DefaultPageSize,
		window:   DefaultWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize seeds the state from the current location, loads the category
// menu and performs the first fetch. It does not push a history entry.
// Without a render host it does nothing and the controller stays inert.
//
// Initialize 从当前位置初始化状态，加载分类菜单并执行首次请求。
// 它不会添加历史记录。没有渲染宿主时它什么也不做，控制器保持惰性。
func (c *Controller) Initialize(ctx context.Context) {
	if c.renderer == nil {
		c.logger.Debug("catalog host not present, skipping initialization")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = true
	c.generation++
	c.totalPages = 0
	c.categories = nil

	state := ParseQueryState(c.history.Location()).Normalize()
	c.renderer.SetSearchInput(state.SearchTerm)
	c.logger.Info("catalog initialized",
		zap.String("query", state.SearchTerm),
		zap.String("category", state.Category),
		zap.Int("page", state.Page))

	c.loadCategoriesLocked(ctx)
	c.applyLocked(ctx, state, false)
}

// SetFilter is the single entry point every user action funnels through.
// The page is clamped to at least 1 and a non-empty category clears the search
// term. On success the new state is pushed to the history.
//
// SetFilter 是所有用户操作的唯一入口。
// 页码被限制为至少1，非空分类会清除搜索词。成功后新状态会被推入历史记录。
func (c *Controller) SetFilter(ctx context.Context, searchTerm, category string, page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(ctx, QueryState{SearchTerm: searchTerm, Category: category, Page: page}, true)
}

// Search submits a search term and mirrors it into the search input.
// It clears any active category.
//
// Search 提交搜索词并同步到搜索输入框，同时清除当前分类。
func (c *Controller) Search(ctx context.Context, term string) {
	term = strings.TrimSpace(term)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.renderer.SetSearchInput(term)
	c.applyLocked(ctx, QueryState{SearchTerm: term, Page: 1}, true)
}

// SelectCategory filters by category, clearing the search term and the search input.
//
// SelectCategory 按分类过滤，清除搜索词和搜索输入框。
func (c *Controller) SelectCategory(ctx context.Context, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.renderer.SetSearchInput("")
	c.applyLocked(ctx, QueryState{Category: category, Page: 1}, true)
}

// ClearCategory is the "all categories" entry: it drops the category filter
// and keeps the active search term.
//
// ClearCategory 对应"全部分类"条目：去除分类过滤并保留当前搜索词。
func (c *Controller) ClearCategory(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(ctx, QueryState{SearchTerm: c.state.SearchTerm, Page: 1}, true)
}

// Choose activates a category menu entry.
//
// Choose 激活一个分类菜单条目。
func (c *Controller) Choose(ctx context.Context, entry CategoryEntry) {
	if entry.All {
		c.ClearCategory(ctx)
		return
	}
	c.SelectCategory(ctx, entry.Value)
}

// GoToPage moves to page n. It is a no-op, and reports false, when n is
// outside [1, totalPages] or already the current page.
//
// GoToPage 跳转到第n页。当n不在[1, totalPages]范围内或已是当前页时，
// 它不执行任何操作并返回false。
func (c *Controller) GoToPage(ctx context.Context, n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || n < 1 || n > c.totalPages || n == c.state.Page {
		return false
	}
	c.applyLocked(ctx, QueryState{SearchTerm: c.state.SearchTerm, Category: c.state.Category, Page: n}, true)
	return true
}

// Next moves to the following page.
//
// Next 跳转到下一页。
func (c *Controller) Next(ctx context.Context) bool {
	return c.GoToPage(ctx, c.State().Page+1)
}

// Prev moves to the previous page.
//
// Prev 跳转到上一页。
func (c *Controller) Prev(ctx context.Context) bool {
	return c.GoToPage(ctx, c.State().Page-1)
}

// Reload re-issues the request for the current state without touching the history.
//
// Reload 重新发出当前状态的请求，不修改历史记录。
func (c *Controller) Reload(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(ctx, c.state, false)
}

// Navigate handles browser back/forward: it reseeds the state from the
// history's current location and fetches without pushing a new entry.
//
// Navigate 处理浏览器的后退/前进：它从历史记录的当前位置重新初始化状态，
// 并在不添加新记录的情况下发出请求。
func (c *Controller) Navigate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	state := ParseQueryState(c.history.Location()).Normalize()
	c.renderer.SetSearchInput(state.SearchTerm)
	c.applyLocked(ctx, state, false)
}

// SetPageSize changes the limit used by subsequent requests.
//
// SetPageSize 修改后续请求使用的limit。
func (c *Controller) SetPageSize(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	c.pageSize = n
	c.mu.Unlock()
}

// State returns the most recently requested state.
//
// State 返回最近请求的状态。
func (c *Controller) State() QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the current lifecycle status.
//
// Status 返回当前的生命周期状态。
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// TotalPages returns the page count of the last rendered result.
//
// TotalPages 返回最近一次渲染结果的总页数。
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Categories returns the loaded categories.
//
// Categories 返回已加载的分类。
func (c *Controller) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.categories...)
}

// Wait blocks until every in-flight fetch has settled.
//
// Wait 阻塞直到所有进行中的请求都已结束。
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close detaches the controller from its host and cancels the in-flight fetch.
// A later Initialize re-attaches it with fresh state.
//
// Close 将控制器从宿主分离并取消进行中的请求。
// 之后调用Initialize会以全新状态重新附加。
func (c *Controller) Close() {
	c.mu.Lock()
	c.active = false
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.status = Idle
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) applyLocked(ctx context.Context, requested QueryState, push bool) {
	if !c.active {
		return
	}
	state := requested.Normalize()
	if requested.Category != "" && requested.SearchTerm != "" {
		c.logger.Debug("category takes precedence over search term",
			zap.String("dropped_query", requested.SearchTerm),
			zap.String("category", requested.Category))
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	c.state = state
	c.status = Loading
	c.renderer.RenderLoading(state)

	var (
		fetchCtx context.Context
		cancel   context.CancelFunc
	)
	if c.timeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		fetchCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel

	req := ListRequest{State: state, Limit: c.pageSize}
	c.logger.Debug("fetching products",
		zap.Uint64("seq", seq),
		zap.String("params", state.String()),
		zap.Int("limit", req.Limit))

	c.wg.Add(1)
	go c.fetch(fetchCtx, cancel, seq, req, push)
}

func (c *Controller) fetch(ctx context.Context, cancel context.CancelFunc, seq uint64, req ListRequest, push bool) {
	defer c.wg.Done()
	defer cancel()

	start := time.Now()
	result, err := c.source.ListProducts(ctx, req)
	latency := time.Since(start)
	if err == nil && result == nil {
		err = serrors.ErrDecode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq || !c.active {
		c.observer.ObserveFetch(OutcomeStale, latency)
		c.logger.Debug("discarding stale response", zap.Uint64("seq", seq), zap.Uint64("latest", c.seq))
		return
	}
	c.cancel = nil
	state := req.State

	if err != nil {
		c.status = Errored
		c.observer.ObserveFetch(OutcomeFailed, latency)
		c.logger.Warn("failed to load products", zap.String("params", state.String()), zap.Error(err))
		c.renderer.RenderError(state, err)
		c.renderer.HidePagination()
		c.notifier.Notify(loadErrorMessage(err), notify.Error)
		return
	}

	c.totalPages = max(0, result.TotalPages)
	c.status = Rendered
	if len(result.Items) == 0 {
		c.observer.ObserveFetch(OutcomeEmpty, latency)
		c.renderer.RenderEmpty(state)
		c.notifier.Notify("No products match your search or filters.", notify.Info)
	} else {
		c.observer.ObserveFetch(OutcomeRendered, latency)
		c.renderer.RenderProducts(state, result.Items)
	}
	c.renderer.RenderPagination(BuildPagination(state.Page, c.totalPages, c.window))
	if push {
		c.history.Push(state.Values())
	}
	c.logger.Debug("products rendered",
		zap.Uint64("seq", seq),
		zap.Int("items", len(result.Items)),
		zap.Int("total_pages", c.totalPages),
		zap.Duration("latency", latency))
}

func (c *Controller) loadCategoriesLocked(ctx context.Context) {
	gen := c.generation
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		categories, err := c.source.Categories(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.active || gen != c.generation {
			return
		}
		if err != nil {
			c.logger.Warn("failed to load categories", zap.Error(err))
			c.renderer.RenderCategoriesError(err)
			return
		}
		c.categories = categories
		c.renderer.RenderCategories(BuildCategoryMenu(categories))
	}()
}

func loadErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Error loading products: the request timed out."
	}
	return "Error loading products: " + serrors.UserMessage(err)
}
