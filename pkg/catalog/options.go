package catalog

import (
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/storefront/pkg/notify"
)

// DefaultPageSize is the number of products requested per page.
//
// DefaultPageSize 是每页请求的产品数量。
const DefaultPageSize = 10

// Option is a function that configures a Controller.
//
// Option 是配置Controller的函数。
type Option func(*Controller)

// WithRenderer sets the render host. Without one the controller is a no-op.
//
// WithRenderer 设置渲染宿主。没有渲染宿主时控制器不执行任何操作。
func WithRenderer(r Renderer) Option {
	return func(c *Controller) {
		c.renderer = r
	}
}

// WithNotifier sets the toast notifier.
//
// WithNotifier 设置提示框通知器。
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithHistory sets the location/history API.
//
// WithHistory 设置位置/历史记录API。
func WithHistory(h History) Option {
	return func(c *Controller) {
		if h != nil {
			c.history = h
		}
	}
}

// WithObserver sets the fetch observer (usually metrics).
//
// WithObserver 设置请求观察者（通常为指标）。
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the structured logger.
//
// WithLogger 设置结构化日志记录器。
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPageSize sets the limit sent with every listing request.
//
// WithPageSize 设置每个列表请求发送的limit。
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithWindow sets the maximum number of page-number affordances.
//
// WithWindow 设置页码按钮的最大数量。
func WithWindow(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.window = n
		}
	}
}

// WithRequestTimeout bounds every product fetch. Zero means no timeout.
//
// WithRequestTimeout 限制每个产品请求的时长。零表示不超时。
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}
