package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront/internal/history"
	serrors "github.com/yourusername/storefront/pkg/errors"
	"github.com/yourusername/storefront/pkg/notify"
)

type reply struct {
	result *PageResult
	err    error
}

type pendingCall struct {
	req   ListRequest
	ctx   context.Context
	reply chan reply
}

func (p *pendingCall) respond(result *PageResult, err error) {
	p.reply <- reply{result: result, err: err}
}

// blockingSource parks every ListProducts call until the test answers it.
type blockingSource struct {
	calls      chan *pendingCall
	categories []string
	catErr     error
}

func newBlockingSource(categories ...string) *blockingSource {
	return &blockingSource{calls: make(chan *pendingCall, 16), categories: categories}
}

func (s *blockingSource) ListProducts(ctx context.Context, req ListRequest) (*PageResult, error) {
	call := &pendingCall{req: req, ctx: ctx, reply: make(chan reply, 1)}
	s.calls <- call
	r := <-call.reply
	return r.result, r.err
}

func (s *blockingSource) Categories(context.Context) ([]string, error) {
	return s.categories, s.catErr
}

func (s *blockingSource) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a product request")
		return nil
	}
}

func (s *blockingSource) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case call := <-s.calls:
		t.Fatalf("unexpected product request: %+v", call.req)
	case <-time.After(20 * time.Millisecond):
	}
}

type recordingRenderer struct {
	mu            sync.Mutex
	events        []string
	searchInput   string
	products      []Product
	pagination    *Pagination
	hidden        bool
	menu          []CategoryEntry
	categoriesErr error
	lastErr       error
}

func (r *recordingRenderer) record(event string) {
	r.events = append(r.events, event)
}

func (r *recordingRenderer) SetSearchInput(term string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchInput = term
}

func (r *recordingRenderer) RenderLoading(state QueryState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("loading " + state.String())
}

func (r *recordingRenderer) RenderProducts(state QueryState, products []Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
	r.record(fmt.Sprintf("products %s n=%d", state.String(), len(products)))
}

func (r *recordingRenderer) RenderEmpty(state QueryState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = nil
	r.record("empty " + state.String())
}

func (r *recordingRenderer) RenderError(state QueryState, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = err
	r.record("error " + state.String())
}

func (r *recordingRenderer) RenderPagination(p Pagination) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pagination = &p
	r.hidden = false
	r.record("pagination")
}

func (r *recordingRenderer) HidePagination() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hidden = true
	r.record("hide pagination")
}

func (r *recordingRenderer) RenderCategories(menu []CategoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.menu = menu
}

func (r *recordingRenderer) RenderCategoriesError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categoriesErr = err
}

func (r *recordingRenderer) snapshot() (events []string, pagination *Pagination) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...), r.pagination
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *recordingNotifier) Notify(message string, kind notify.Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, notify.Message{Text: message, Kind: kind})
}

func (n *recordingNotifier) count(kind notify.Kind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, m := range n.messages {
		if m.Kind == kind {
			total++
		}
	}
	return total
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
}

func (o *countingObserver) ObserveFetch(outcome Outcome, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = make(map[Outcome]int)
	}
	o.outcomes[outcome]++
}

func (o *countingObserver) get(outcome Outcome) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[outcome]
}

type fixture struct {
	ctrl     *Controller
	source   *blockingSource
	renderer *recordingRenderer
	notifier *recordingNotifier
	observer *countingObserver
	history  *history.Memory
}

func newFixture(t *testing.T, rawURL string, categories ...string) *fixture {
	t.Helper()
	h, err := history.Parse(rawURL)
	require.NoError(t, err)

	f := &fixture{
		source:   newBlockingSource(categories...),
		renderer: &recordingRenderer{},
		notifier: &recordingNotifier{},
		observer: &countingObserver{},
		history:  h,
	}
	f.ctrl = New(f.source,
		WithRenderer(f.renderer),
		WithNotifier(f.notifier),
		WithHistory(f.history),
		WithObserver(f.observer),
	)
	t.Cleanup(f.ctrl.Close)
	return f
}

// start initializes the controller and answers the initial fetch.
func (f *fixture) start(t *testing.T, result *PageResult) {
	t.Helper()
	f.ctrl.Initialize(context.Background())
	f.source.next(t).respond(result, nil)
	f.ctrl.Wait()
}

func productsNamed(names ...string) []Product {
	out := make([]Product, 0, len(names))
	for i, n := range names {
		out = append(out, Product{ID: i + 1, Name: n, Price: decimal.NewFromInt(int64(10 * (i + 1)))})
	}
	return out
}

func page(total int, names ...string) *PageResult {
	return &PageResult{Items: productsNamed(names...), TotalPages: total}
}

func TestLastIssuedRequestWins(t *testing.T) {
	f := newFixture(t, "/products")
	f.start(t, page(5, "seed"))
	ctx := context.Background()

	f.ctrl.SetFilter(ctx, "a", "", 1)
	callA := f.source.next(t)
	f.ctrl.SetFilter(ctx, "b", "", 2)
	callB := f.source.next(t)

	// superseded request has its context cancelled
	select {
	case <-callA.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded request context was not cancelled")
	}

	callB.respond(page(5, "from-b"), nil)
	callA.respond(page(5, "from-a"), nil)
	f.ctrl.Wait()

	require.Len(t, f.renderer.products, 1)
	assert.Equal(t, "from-b", f.renderer.products[0].Name)
	assert.Equal(t, QueryState{SearchTerm: "b", Page: 2}, f.ctrl.State())
	assert.Equal(t, "b", f.history.Location().Get(ParamQuery))
	assert.Equal(t, "2", f.history.Location().Get(ParamPage))
	assert.Equal(t, 1, f.observer.get(OutcomeStale))
	assert.Equal(t, Rendered, f.ctrl.Status())
}

func TestStaleErrorIsDiscardedSilently(t *testing.T) {
	f := newFixture(t, "/products")
	f.start(t, page(3, "seed"))
	ctx := context.Background()

	f.ctrl.SetFilter(ctx, "old", "", 1)
	old := f.source.next(t)
	f.ctrl.SetFilter(ctx, "new", "", 1)
	latest := f.source.next(t)

	old.respond(nil, serrors.NewNetworkError("/api/products", errors.New("boom")))
	latest.respond(page(1, "fresh"), nil)
	f.ctrl.Wait()

	assert.Equal(t, 0, f.notifier.count(notify.Error))
	assert.Equal(t, Rendered, f.ctrl.Status())
	assert.Equal(t, "fresh", f.renderer.products[0].Name)
}

func TestGoToPageBounds(t *testing.T) {
	f := newFixture(t, "/products")
	f.start(t, page(3, "p1"))
	ctx := context.Background()

	assert.False(t, f.ctrl.GoToPage(ctx, 0))
	assert.False(t, f.ctrl.GoToPage(ctx, 4))
	assert.False(t, f.ctrl.GoToPage(ctx, 1), "current page is a no-op")
	assert.False(t, f.ctrl.Prev(ctx))
	f.source.assertIdle(t)

	require.True(t, f.ctrl.GoToPage(ctx, 3))
	call := f.source.next(t)
	assert.Equal(t, 3, call.req.State.Page)
	call.respond(page(3, "p3"), nil)
	f.ctrl.Wait()

	assert.False(t, f.ctrl.Next(ctx))
	require.True(t, f.ctrl.Prev(ctx))
	call = f.source.next(t)
	assert.Equal(t, 2, call.req.State.Page)
	call.respond(page(3, "p2"), nil)
	f.ctrl.Wait()
}

func TestCategoryAndSearchAreExclusive(t *testing.T) {
	f := newFixture(t, "/products", "books", "phones")
	f.start(t, page(1, "seed"))
	ctx := context.Background()

	f.ctrl.Search(ctx, "  phone  ")
	call := f.source.next(t)
	assert.Equal(t, QueryState{SearchTerm: "phone", Page: 1}, call.req.State)
	call.respond(page(1, "x"), nil)
	f.ctrl.Wait()

	f.ctrl.SelectCategory(ctx, "books")
	call = f.source.next(t)
	assert.Equal(t, QueryState{Category: "books", Page: 1}, call.req.State)
	assert.Empty(t, f.renderer.searchInput)
	call.respond(page(1, "x"), nil)
	f.ctrl.Wait()

	f.ctrl.Search(ctx, "lamp")
	call = f.source.next(t)
	assert.Equal(t, QueryState{SearchTerm: "lamp", Page: 1}, call.req.State)
	call.respond(page(1, "x"), nil)
	f.ctrl.Wait()

	// both supplied: the category wins
	f.ctrl.SetFilter(ctx, "lamp", "books", 1)
	call = f.source.next(t)
	assert.Equal(t, QueryState{Category: "books", Page: 1}, call.req.State)
	call.respond(page(1, "x"), nil)
	f.ctrl.Wait()

	loc := f.history.Location()
	assert.Equal(t, "books", loc.Get(ParamCategory))
	assert.False(t, loc.Has(ParamQuery))
}

func TestClearCategoryKeepsSearch(t *testing.T) {
	f := newFixture(t, "/products?query=phone&page=3", "books")
	f.start(t, page(4, "seed"))
	ctx := context.Background()

	f.ctrl.Choose(ctx, CategoryEntry{Label: AllCategoriesLabel, All: true})
	call := f.source.next(t)
	assert.Equal(t, QueryState{SearchTerm: "phone", Page: 1}, call.req.State)
	call.respond(page(1, "x"), nil)
	f.ctrl.Wait()

	f.ctrl.Choose(ctx, CategoryEntry{Label: "Books", Value: "books"})
	call = f.source.next(t)
	assert.Equal(t, QueryState{Category: "books", Page: 1}, call.req.State)
	call.respond(page(1, "x"), nil)
	f.ctrl.Wait()
}

func TestSearchUpdatesSearchInput(t *testing.T) {
	f := newFixture(t, "/products", "books")
	f.start(t, page(1, "seed"))
	ctx := context.Background()

	f.ctrl.SelectCategory(ctx, "books")
	call := f.source.next(t)
	call.respond(page(1, "x"), nil)
	f.ctrl.Wait()
	assert.Empty(t, f.renderer.searchInput)

	f.ctrl.Search(ctx, " ring ")
	call = f.source.next(t)
	assert.Equal(t, "ring", call.req.State.SearchTerm)
	assert.Equal(t, "ring", f.renderer.searchInput, "input follows the submitted term")
	call.respond(page(1, "ring"), nil)
	f.ctrl.Wait()

	assert.Equal(t, f.ctrl.State().SearchTerm, f.renderer.searchInput)
	assert.Equal(t, "ring", f.history.Location().Get(ParamQuery))
}

func TestInitialLocationSeedsState(t *testing.T) {
	f := newFixture(t, "/products?query=phone&page=2")
	f.ctrl.Initialize(context.Background())

	call := f.source.next(t)
	assert.Equal(t, ListRequest{State: QueryState{SearchTerm: "phone", Page: 2}, Limit: DefaultPageSize}, call.req)
	assert.Equal(t, "phone", f.renderer.searchInput)

	call.respond(page(4, "a", "b"), nil)
	f.ctrl.Wait()

	_, p := f.renderer.snapshot()
	require.NotNil(t, p)
	assert.True(t, p.IsActive(2))
	assert.Equal(t, []int{1, 2, 3, 4}, p.Pages)
	assert.Equal(t, 1, f.history.Len(), "initial load does not push history")
}

func TestEmptyResult(t *testing.T) {
	f := newFixture(t, "/products?query=zzz")
	f.start(t, &PageResult{Items: []Product{}, TotalPages: 0})

	events, p := f.renderer.snapshot()
	assert.Contains(t, events, "empty page=1&query=zzz")
	require.NotNil(t, p)
	assert.True(t, p.PrevDisabled)
	assert.True(t, p.NextDisabled)
	assert.Empty(t, p.Pages)
	assert.Equal(t, 0, f.ctrl.TotalPages())
	assert.Equal(t, 1, f.notifier.count(notify.Info))
	assert.Equal(t, 1, f.observer.get(OutcomeEmpty))
}

func TestNetworkErrorNotifiesOncePerFailure(t *testing.T) {
	f := newFixture(t, "/products")
	f.start(t, page(2, "seed"))
	ctx := context.Background()

	netErr := serrors.NewNetworkError("/api/products", errors.New("connection refused"))

	f.ctrl.SetFilter(ctx, "a", "", 1)
	f.source.next(t).respond(nil, netErr)
	f.ctrl.Wait()

	events, _ := f.renderer.snapshot()
	assert.Contains(t, events, "error page=1&query=a")
	assert.True(t, f.renderer.hidden)
	assert.Equal(t, Errored, f.ctrl.Status())
	assert.Equal(t, 1, f.notifier.count(notify.Error))
	assert.Equal(t, "Error loading products: connection refused", f.notifier.messages[0].Text)
	assert.Equal(t, 2, f.ctrl.TotalPages(), "total pages survive an error")
	assert.Equal(t, 1, f.history.Len(), "failed fetches are not pushed")

	f.ctrl.Reload(ctx)
	f.source.next(t).respond(nil, serrors.NewAPIError(500, "database down"))
	f.ctrl.Wait()
	assert.Equal(t, 2, f.notifier.count(notify.Error))

	f.ctrl.Reload(ctx)
	f.source.next(t).respond(page(2, "back"), nil)
	f.ctrl.Wait()
	assert.Equal(t, Rendered, f.ctrl.Status())
	assert.False(t, f.renderer.hidden)
}

func TestNilResultIsDecodeError(t *testing.T) {
	f := newFixture(t, "/products")
	f.ctrl.Initialize(context.Background())
	f.source.next(t).respond(nil, nil)
	f.ctrl.Wait()

	assert.ErrorIs(t, f.renderer.lastErr, serrors.ErrDecode)
	assert.Equal(t, Errored, f.ctrl.Status())
}

func TestNavigateDoesNotPush(t *testing.T) {
	f := newFixture(t, "/products")
	f.start(t, page(3, "p1"))
	ctx := context.Background()

	require.True(t, f.ctrl.GoToPage(ctx, 2))
	f.source.next(t).respond(page(3, "p2"), nil)
	f.ctrl.Wait()
	require.Equal(t, 2, f.history.Len())

	require.True(t, f.history.Back())
	f.ctrl.Navigate(ctx)
	call := f.source.next(t)
	assert.Equal(t, 1, call.req.State.Page)
	call.respond(page(3, "p1"), nil)
	f.ctrl.Wait()

	assert.Equal(t, 2, f.history.Len())
	assert.True(t, f.history.Forward())
}

func TestCategoriesMenu(t *testing.T) {
	f := newFixture(t, "/products", "electronics", "books")
	f.start(t, page(1, "seed"))

	f.renderer.mu.Lock()
	menu := f.renderer.menu
	f.renderer.mu.Unlock()
	require.Len(t, menu, 3)
	assert.True(t, menu[0].All)
	assert.Equal(t, "Electronics", menu[1].Label)
	assert.Equal(t, "books", menu[2].Value)
	assert.Equal(t, []string{"electronics", "books"}, f.ctrl.Categories())
}

func TestCategoriesError(t *testing.T) {
	f := newFixture(t, "/products")
	f.source.catErr = serrors.NewAPIError(500, "")
	f.start(t, page(1, "seed"))

	f.renderer.mu.Lock()
	defer f.renderer.mu.Unlock()
	assert.Error(t, f.renderer.categoriesErr)
	assert.Nil(t, f.renderer.menu)
}

func TestWithoutRendererIsInert(t *testing.T) {
	src := newBlockingSource()
	ctrl := New(src)
	ctx := context.Background()

	ctrl.Initialize(ctx)
	ctrl.SetFilter(ctx, "a", "", 1)
	ctrl.SelectCategory(ctx, "books")
	assert.False(t, ctrl.GoToPage(ctx, 2))
	src.assertIdle(t)
	assert.Equal(t, Idle, ctrl.Status())
}

func TestCloseDropsInFlightResponse(t *testing.T) {
	f := newFixture(t, "/products")
	f.ctrl.Initialize(context.Background())
	call := f.source.next(t)

	go func() {
		<-call.ctx.Done()
		call.respond(page(1, "late"), nil)
	}()
	f.ctrl.Close()

	assert.Nil(t, f.renderer.products)
	assert.Equal(t, Idle, f.ctrl.Status())
}

func TestRequestTimeout(t *testing.T) {
	src := SourceFuncs{
		List: func(ctx context.Context, _ ListRequest) (*PageResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	renderer := &recordingRenderer{}
	notifier := &recordingNotifier{}
	ctrl := New(src, WithRenderer(renderer), WithNotifier(notifier), WithRequestTimeout(10*time.Millisecond))

	ctrl.Initialize(context.Background())
	ctrl.Wait()

	assert.Equal(t, Errored, ctrl.Status())
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "Error loading products: the request timed out.", notifier.messages[0].Text)
}

func TestSetPageSize(t *testing.T) {
	f := newFixture(t, "/products")
	f.ctrl.SetPageSize(25)
	f.ctrl.Initialize(context.Background())
	call := f.source.next(t)
	assert.Equal(t, 25, call.req.Limit)
	call.respond(page(1, "x"), nil)
	f.ctrl.Wait()
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
