// Package client implements the storefront HTTP API client.
// It satisfies catalog.Source for product listings and categories, loads
// single products for the detail view, and carries the form and JSON posts
// used by the auth package.
//
// Package client 实现店面HTTP API客户端。
// 它为产品列表和分类实现catalog.Source，为详情视图加载单个产品，
// 并提供认证包使用的表单和JSON请求。
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/storefront/pkg/catalog"
	"github.com/yourusername/storefront/pkg/codec"
	serrors "github.com/yourusername/storefront/pkg/errors"
	"github.com/yourusername/storefront/pkg/loader"
)

// Default API paths.
//
// 默认API路径。
const (
	DefaultProductsPath   = "/api/products"
	DefaultCategoriesPath = "/api/categories"
)

// Client talks to the storefront API. It is safe for concurrent use.
//
// Client 与店面API通信，可安全地并发使用。
type Client struct {
	http           *resty.Client
	codec          codec.Codec
	logger         *zap.Logger
	productsPath   string
	categoriesPath string

	group singleflight.Group
}

// New creates a client for the API at baseURL.
//
// New 为位于baseURL的API创建客户端。
//
// Parameters:
//   - baseURL: Scheme and host of the storefront API, e.g. "http://localhost:8080"
//   - opts: Functional options
//
// Returns:
//   - *Client: A new client
func New(baseURL string, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(o.timeout).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetHeader("Accept", o.codec.ContentType()).
		SetLogger(o.logger.Sugar()).
		SetJSONMarshaler(o.codec.Marshal).
		SetJSONUnmarshaler(o.codec.Unmarshal)
	if o.userAgent != "" {
		rc.SetHeader("User-Agent", o.userAgent)
	}
	if o.retries > 0 {
		rc.SetRetryCount(o.retries).
			SetRetryWaitTime(o.retryWait).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err == nil && r.StatusCode() >= http.StatusInternalServerError
			})
	}

	return &Client{
		http:           rc,
		codec:          o.codec,
		logger:         o.logger,
		productsPath:   o.productsPath,
		categoriesPath: o.categoriesPath,
	}
}

// ListProducts fetches one page of products for the request.
//
// ListProducts 获取请求对应的一页产品。
func (c *Client) ListProducts(ctx context.Context, req catalog.ListRequest) (*catalog.PageResult, error) {
	params := req.State.Values()
	if req.Limit > 0 {
		params.Set(catalog.ParamLimit, strconv.Itoa(req.Limit))
	}

	var result catalog.PageResult
	r := c.request(ctx).SetQueryParamsFromValues(params)
	if err := c.do(r, http.MethodGet, c.productsPath, &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []catalog.Product{}
	}
	return &result, nil
}

// Categories fetches the category list. Concurrent callers share one request;
// a caller that gives up does not cancel it for the others.
//
// Categories 获取分类列表。并发调用者共享同一个请求，某个调用者放弃时不会取消其他调用者的请求。
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	v, err := c.shared(ctx, "categories", c.categoriesPath, func(ctx context.Context) (interface{}, error) {
		var categories []string
		if err := c.do(c.request(ctx), http.MethodGet, c.categoriesPath, &categories); err != nil {
			return nil, err
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

// GetProduct fetches a single product. A missing product yields an error
// for which errors.IsNotFound is true.
//
// GetProduct 获取单个产品。产品不存在时返回的错误满足errors.IsNotFound。
func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return catalog.Product{}, serrors.ErrMissingID
	}
	path := c.productsPath + "/" + url.PathEscape(id)
	v, err := c.shared(ctx, "product:"+id, path, func(ctx context.Context) (interface{}, error) {
		var p catalog.Product
		if err := c.do(c.request(ctx), http.MethodGet, path, &p); err != nil {
			return catalog.Product{}, err
		}
		return p, nil
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return v.(catalog.Product), nil
}

// ProductLoader exposes GetProduct as a loader, optionally cached for ttl.
//
// ProductLoader 将GetProduct暴露为加载器，ttl大于零时带缓存。
func (c *Client) ProductLoader(ttl time.Duration) loader.Loader[catalog.Product] {
	backend := loader.NewFunctionLoader(c.GetProduct)
	if ttl <= 0 {
		return backend
	}
	return loader.NewCachedLoader(backend, ttl)
}

// PostForm sends a form-encoded POST and decodes the JSON reply into out.
//
// PostForm 发送表单编码的POST请求，并将JSON响应解码到out。
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	r := c.request(ctx).SetFormDataFromValues(form)
	return c.do(r, http.MethodPost, path, out)
}

// PostJSON sends body as JSON and decodes the JSON reply into out.
//
// PostJSON 以JSON发送body，并将JSON响应解码到out。
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	r := c.request(ctx).
		SetHeader("Content-Type", c.codec.ContentType()).
		SetBody(body)
	return c.do(r, http.MethodPost, path, out)
}

// shared runs fn once for all concurrent callers of key. The shared request
// runs on a context detached from any single caller and is bounded by the
// client timeout; each caller still stops waiting when its own ctx is done.
//
// shared 为key的所有并发调用者只执行一次fn。共享请求使用与单个调用者解耦的上下文，
// 并受客户端超时限制；每个调用者在自己的ctx结束时仍会停止等待。
func (c *Client) shared(ctx context.Context, key, path string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, serrors.NewNetworkError(path, ctx.Err())
	}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
}

func (c *Client) do(r *resty.Request, method, path string, out interface{}) error {
	resp, err := r.Execute(method, path)
	if err != nil {
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return serrors.NewNetworkError(path, err)
	}
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("url", resp.Request.URL),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", resp.Time()))

	if !resp.IsSuccess() {
		return c.apiError(resp)
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := c.codec.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s: %v", serrors.ErrDecode, path, err)
	}
	return nil
}

// apiError prefers a JSON message, then the raw body, then the status text.
func (c *Client) apiError(resp *resty.Response) error {
	body := resp.Body()
	if msg, ok := codec.DecodeMessage(c.codec, body); ok {
		return serrors.NewAPIError(resp.StatusCode(), msg)
	}
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		text = ""
	}
	return serrors.NewAPIError(resp.StatusCode(), text)
}

var _ catalog.Source = (*Client)(nil)
