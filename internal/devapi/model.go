// Package devapi serves the storefront HTTP API over an in-memory catalog so
// the catalog browser can run without the real backend. It is laid out in
// layers: storage, service, handler and middleware, plus a Server that wires
// them to gin.
//
// Package devapi 基于内存目录提供店面HTTP API，使目录浏览器无需真实后端即可运行。
// 它按层组织：存储、服务、处理器和中间件，再由 Server 将它们接入 gin。
package devapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/yourusername/storefront/pkg/catalog"
)

// Default and maximum page size for list requests.
//
// 列表请求的默认值与上限。
const (
	DefaultLimit = catalog.DefaultPageSize
	MaxLimit     = 100
)

// ListFilter holds the query parameters of GET /api/products.
// Missing or invalid values are replaced by defaults before use.
//
// ListFilter 保存 GET /api/products 的查询参数。
// 缺失或无效的值在使用前会被替换为默认值。
type ListFilter struct {
	Query    string `form:"query"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// normalize 补齐默认值并限制 limit
func (f ListFilter) normalize() ListFilter {
	f.Query = strings.TrimSpace(f.Query)
	f.Category = strings.TrimSpace(f.Category)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// key 返回用作列表缓存键的规范化查询串
func (f ListFilter) key() string {
	v := url.Values{}
	v.Set(catalog.ParamQuery, f.Query)
	v.Set(catalog.ParamCategory, f.Category)
	v.Set(catalog.ParamPage, strconv.Itoa(f.Page))
	v.Set(catalog.ParamLimit, strconv.Itoa(f.Limit))
	return v.Encode()
}

// parseKey 是 key 的逆操作
func parseKey(key string) (ListFilter, error) {
	v, err := url.ParseQuery(key)
	if err != nil {
		return ListFilter{}, err
	}
	page, _ := strconv.Atoi(v.Get(catalog.ParamPage))
	limit, _ := strconv.Atoi(v.Get(catalog.ParamLimit))
	return ListFilter{
		Query:    v.Get(catalog.ParamQuery),
		Category: v.Get(catalog.ParamCategory),
		Page:     page,
		Limit:    limit,
	}.normalize(), nil
}

// ListResponse is the body returned by GET /api/products.
//
// ListResponse 是 GET /api/products 的响应体。
type ListResponse struct {
	Products       []catalog.Product `json:"products"`
	TotalProducts  int               `json:"total_products"`
	TotalPages     int               `json:"total_pages"`
	CurrentPage    int               `json:"current_page"`
	ProductsOnPage int               `json:"products_on_page"`
}

// TotalPages computes the page count for total results at limit per page.
// It is at least 1 whenever there is a result, and 0 otherwise.
//
// Parameters:
//   - total: Number of matching products
//   - limit: Page size
//
// Returns:
//   - int: ceil(total/limit), or 0 when total or limit is not positive
//
// TotalPages 计算每页 limit 条时 total 条结果的总页数。
// 有结果时至少为 1，否则为 0。
//
// 参数:
//   - total: 匹配的产品数量
//   - limit: 每页大小
//
// 返回:
//   - int: ceil(total/limit)，total 或 limit 非正时为 0
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// MessageResponse is the body shared by error replies and the auth endpoints.
//
// MessageResponse 是错误和认证接口共用的响应体。
type MessageResponse struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// User is an account known to the dev server.
//
// User 是开发服务器中的用户记录。
type User struct {
	Email        string
	Name         string
	PasswordHash string
	Google       bool
}

// googleLoginRequest 是 POST /api/auth/google-login 的请求体
type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// googleCallbackRequest 是 POST /api/auth/google/callback 的请求体
type googleCallbackRequest struct {
	Code        string `json:"code"`
	State       string `json:"state"`
	RedirectURI string `json:"redirect_uri"`
}
