package catalog

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	serrors "github.com/yourusername/storefront/pkg/errors"
	"github.com/yourusername/storefront/pkg/loader"
	"github.com/yourusername/storefront/pkg/notify"
)

// DetailRenderer is the render host of the product detail page.
//
// DetailRenderer 是产品详情页的渲染宿主。
type DetailRenderer interface {
	RenderDetailLoading(id string)
	RenderDetail(p Product)
	RenderDetailNotFound(id string)
	RenderDetailMissingID()
	RenderDetailError(id string, err error)
}

// DetailView loads and renders a single product.
//
// DetailView 加载并渲染单个产品。
type DetailView struct {
	products loader.Loader[Product]
	renderer DetailRenderer
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewDetailView creates a detail view.
//
// NewDetailView 创建一个详情视图。
//
// Parameters:
//   - products: Loader keyed by product id, usually a loader.CachedLoader
//   - renderer: The render host
//   - notifier: Toast notifier, may be nil
//   - logger: Structured logger, may be nil
//
// Returns:
//   - *DetailView: A new detail view
func NewDetailView(products loader.Loader[Product], renderer DetailRenderer, notifier notify.Notifier, logger *zap.Logger) *DetailView {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailView{
		products: products,
		renderer: renderer,
		notifier: notifier,
		logger:   logger,
	}
}

// Load fetches the product with the given id and renders it.
// An empty id renders the "no product id" placeholder and returns ErrMissingID.
// A 404 renders the "not found" placeholder. Other errors render the error
// placeholder and raise an error notification.
//
// Load 获取给定id的产品并渲染。
// 空id会渲染"无产品id"占位符并返回ErrMissingID。
// 404会渲染"未找到"占位符。其他错误渲染错误占位符并发出错误通知。
func (v *DetailView) Load(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		v.renderer.RenderDetailMissingID()
		return serrors.ErrMissingID
	}

	v.renderer.RenderDetailLoading(id)
	p, _, err := v.products.Load(ctx, id)
	switch {
	case err == nil:
		v.renderer.RenderDetail(p)
		return nil
	case serrors.IsNotFound(err):
		v.logger.Info("product not found", zap.String("id", id))
		v.renderer.RenderDetailNotFound(id)
		return err
	default:
		v.logger.Warn("failed to load product", zap.String("id", id), zap.Error(err))
		v.renderer.RenderDetailError(id, err)
		v.notifier.Notify("Error loading product: "+serrors.UserMessage(err), notify.Error)
		return err
	}
}

// AddToCart is a placeholder; the cart is not implemented.
//
// AddToCart 是占位实现；购物车尚未实现。
func (v *DetailView) AddToCart() {
	v.notifier.Notify("Add to cart is not available yet.", notify.Info)
}

// ProductIDFromPath extracts the id from a "/product/{id}" path.
// It returns "" when the path does not name a product.
//
// ProductIDFromPath 从"/product/{id}"路径中提取id。
// 路径未指定产品时返回""。
func ProductIDFromPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/product/")
	if !ok {
		return ""
	}
	rest = strings.Trim(rest, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// OriginLabel returns the product origin, or "not specified".
//
// OriginLabel 返回产品产地，未指定时返回"not specified"。
func OriginLabel(p Product) string {
	if strings.TrimSpace(p.Origin) == "" {
		return "not specified"
	}
	return p.Origin
}

// ProductPath returns the detail path of a product.
func ProductPath(id int) string {
	return "/product/" + strconv.Itoa(id)
}
