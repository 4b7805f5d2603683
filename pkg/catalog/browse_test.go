package catalog_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/storefront/configs"
	"github.com/yourusername/storefront/internal/devapi"
	"github.com/yourusername/storefront/internal/history"
	"github.com/yourusername/storefront/internal/terminal"
	"github.com/yourusername/storefront/pkg/catalog"
	"github.com/yourusername/storefront/pkg/client"
	"github.com/yourusername/storefront/pkg/notify"
)

type notes struct {
	mu   sync.Mutex
	list []string
}

func (n *notes) Notify(message string, _ notify.Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, message)
}

func (n *notes) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.list...)
}

func startAPI(t *testing.T) *client.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := devapi.NewServer(configs.DefaultConfig().Server)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return client.New(ts.URL, client.WithTimeout(2*time.Second))
}

func TestBrowseAgainstDevAPI(t *testing.T) {
	api := startAPI(t)
	ctx := context.Background()

	var out bytes.Buffer
	renderer := terminal.NewRenderer(&out)
	hist, err := history.Parse("/products?query=watch")
	require.NoError(t, err)
	n := &notes{}

	c := catalog.New(api,
		catalog.WithRenderer(renderer),
		catalog.WithHistory(hist),
		catalog.WithNotifier(n))
	defer c.Close()

	c.Initialize(ctx)
	c.Wait()

	assert.Equal(t, "watch", renderer.SearchInput())
	assert.Equal(t, catalog.Rendered, c.Status())
	assert.Contains(t, out.String(), "Smart Watch")
	assert.Len(t, renderer.Menu(), 1+len(devapi.SampleCategories))
	assert.Equal(t, 1, hist.Len(), "initial load must not push history")

	// selecting a category drops the search term
	c.SelectCategory(ctx, "jewelery")
	c.Wait()
	assert.Equal(t, catalog.QueryState{Category: "jewelery", Page: 1}, c.State())
	assert.Equal(t, "", renderer.SearchInput())
	assert.Equal(t, 2, c.TotalPages())
	assert.Equal(t, []int{1, 2}, renderer.Pagination().Pages)
	assert.Equal(t, "jewelery", hist.Location().Get("category"))

	require.True(t, c.Next(ctx))
	c.Wait()
	assert.Equal(t, 2, c.State().Page)
	assert.True(t, renderer.Pagination().NextDisabled)
	assert.False(t, c.Next(ctx))

	// back to page one through history
	require.True(t, hist.Back())
	c.Navigate(ctx)
	c.Wait()
	assert.Equal(t, 1, c.State().Page)

	c.Search(ctx, "no such product")
	c.Wait()
	assert.Equal(t, 0, c.TotalPages())
	assert.Contains(t, n.all(), "No products match your search or filters.")
}

func TestDetailAgainstDevAPI(t *testing.T) {
	api := startAPI(t)
	ctx := context.Background()

	var out bytes.Buffer
	n := &notes{}
	view := catalog.NewDetailView(api.ProductLoader(time.Minute), terminal.NewRenderer(&out), n, nil)

	require.NoError(t, view.Load(ctx, catalog.ProductIDFromPath(catalog.ProductPath(3))))
	assert.Contains(t, out.String(), "Price: $")

	err := view.Load(ctx, "999")
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Product 999 not found.")
	assert.Empty(t, n.all())
}
