package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	serrors "github.com/yourusername/storefront/pkg/errors"
	"github.com/yourusername/storefront/pkg/loader"
	"github.com/yourusername/storefront/pkg/notify"
)

type mockDetailRenderer struct {
	mock.Mock
}

func (m *mockDetailRenderer) RenderDetailLoading(id string)          { m.Called(id) }
func (m *mockDetailRenderer) RenderDetail(p Product)                 { m.Called(p) }
func (m *mockDetailRenderer) RenderDetailNotFound(id string)         { m.Called(id) }
func (m *mockDetailRenderer) RenderDetailMissingID()                 { m.Called() }
func (m *mockDetailRenderer) RenderDetailError(id string, err error) { m.Called(id, err) }

func productLoader(products map[int]Product, failWith error) loader.Loader[Product] {
	return loader.NewFunctionLoader(func(_ context.Context, key string) (Product, error) {
		if failWith != nil {
			return Product{}, failWith
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			return Product{}, serrors.NewAPIError(http.StatusNotFound, "Producto no encontrado.")
		}
		p, ok := products[id]
		if !ok {
			return Product{}, serrors.NewAPIError(http.StatusNotFound, "Producto no encontrado.")
		}
		return p, nil
	})
}

func TestDetailViewRendersProduct(t *testing.T) {
	lamp := Product{ID: 7, Name: "Lamp", Price: decimal.RequireFromString("19.9")}
	r := &mockDetailRenderer{}
	r.On("RenderDetailLoading", "7").Once()
	r.On("RenderDetail", lamp).Once()

	v := NewDetailView(productLoader(map[int]Product{7: lamp}, nil), r, nil, nil)
	assert.NoError(t, v.Load(context.Background(), " 7 "))
	r.AssertExpectations(t)
}

func TestDetailViewNotFound(t *testing.T) {
	r := &mockDetailRenderer{}
	r.On("RenderDetailLoading", "42").Once()
	r.On("RenderDetailNotFound", "42").Once()
	n := &recordingNotifier{}

	v := NewDetailView(productLoader(nil, nil), r, n, nil)
	err := v.Load(context.Background(), "42")
	assert.True(t, serrors.IsNotFound(err))
	assert.Empty(t, n.messages)
	r.AssertExpectations(t)
}

func TestDetailViewMissingID(t *testing.T) {
	r := &mockDetailRenderer{}
	r.On("RenderDetailMissingID").Once()

	v := NewDetailView(productLoader(nil, nil), r, nil, nil)
	assert.ErrorIs(t, v.Load(context.Background(), ""), serrors.ErrMissingID)
	r.AssertExpectations(t)
}

func TestDetailViewError(t *testing.T) {
	cause := serrors.NewNetworkError("/api/products/1", errors.New("connection reset"))
	r := &mockDetailRenderer{}
	r.On("RenderDetailLoading", "1").Once()
	r.On("RenderDetailError", "1", mock.Anything).Once()
	n := &recordingNotifier{}

	v := NewDetailView(productLoader(nil, cause), r, n, nil)
	assert.ErrorIs(t, v.Load(context.Background(), "1"), serrors.ErrNetwork)
	assert.Equal(t, 1, n.count(notify.Error))
	assert.Equal(t, "Error loading product: connection reset", n.messages[0].Text)
	r.AssertExpectations(t)
}

func TestDetailViewUsesCache(t *testing.T) {
	calls := 0
	backend := loader.NewFunctionLoader(func(_ context.Context, key string) (Product, error) {
		calls++
		return Product{ID: 1, Name: "Mug"}, nil
	})
	r := &mockDetailRenderer{}
	r.On("RenderDetailLoading", "1").Twice()
	r.On("RenderDetail", mock.Anything).Twice()

	v := NewDetailView(loader.NewCachedLoader(backend, time.Minute), r, nil, nil)
	assert.NoError(t, v.Load(context.Background(), "1"))
	assert.NoError(t, v.Load(context.Background(), "1"))
	assert.Equal(t, 1, calls)
	r.AssertExpectations(t)
}

func TestAddToCart(t *testing.T) {
	n := &recordingNotifier{}
	v := NewDetailView(productLoader(nil, nil), &mockDetailRenderer{}, n, nil)
	v.AddToCart()
	assert.Equal(t, 1, n.count(notify.Info))
}

func TestProductIDFromPath(t *testing.T) {
	assert.Equal(t, "12", ProductIDFromPath("/product/12"))
	assert.Equal(t, "12", ProductIDFromPath("/product/12/"))
	assert.Equal(t, "12", ProductIDFromPath("/product/12/reviews"))
	assert.Equal(t, "", ProductIDFromPath("/product/"))
	assert.Equal(t, "", ProductIDFromPath("/products"))
	assert.Equal(t, "/product/3", ProductPath(3))
}

func TestOriginLabel(t *testing.T) {
	assert.Equal(t, "not specified", OriginLabel(Product{}))
	assert.Equal(t, "Italy", OriginLabel(Product{Origin: "Italy"}))
}
