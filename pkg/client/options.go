package client

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/storefront/pkg/codec"
)

// DefaultTimeout bounds every request unless overridden.
//
// DefaultTimeout 是默认的单次请求超时时间。
const DefaultTimeout = 10 * time.Second

type options struct {
	timeout        time.Duration
	userAgent      string
	productsPath   string
	categoriesPath string
	codec          codec.Codec
	logger         *zap.Logger
	httpClient     *http.Client
	retries        int
	retryWait      time.Duration
}

func defaultOptions() *options {
	return &options{
		timeout:        DefaultTimeout,
		productsPath:   DefaultProductsPath,
		categoriesPath: DefaultCategoriesPath,
		codec:          codec.DefaultCodec(),
		logger:         zap.NewNop(),
		retryWait:      100 * time.Millisecond,
	}
}

// Option is a function that configures a Client.
//
// Option 是配置Client的函数。
type Option func(*options)

// WithTimeout sets the per-request timeout.
//
// WithTimeout 设置单次请求超时。
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
//
// WithUserAgent 设置User-Agent请求头。
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithProductsPath overrides the product listing path.
//
// WithProductsPath 覆盖产品列表路径。
func WithProductsPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.productsPath = path
		}
	}
}

// WithCategoriesPath overrides the category list path.
// Some deployments serve it under /api/products/categories.
//
// WithCategoriesPath 覆盖分类列表路径。
// 部分部署将其放在/api/products/categories下。
func WithCategoriesPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.categoriesPath = path
		}
	}
}

// WithCodec sets the payload codec.
//
// WithCodec 设置负载编解码器。
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets the logger.
//
// WithLogger 设置日志记录器。
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPClient sets the underlying *http.Client.
//
// WithHTTPClient 设置底层的*http.Client。
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithRetry retries transport failures and 5xx replies count times.
//
// WithRetry 对传输失败和5xx响应重试count次。
func WithRetry(count int, wait time.Duration) Option {
	return func(o *options) {
		o.retries = count
		if wait > 0 {
			o.retryWait = wait
		}
	}
}
