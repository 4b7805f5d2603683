package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a catalog entry as returned by the product API. It is display-only.
//
// Product 是产品API返回的目录条目，仅用于展示。
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category,omitempty"`
	Origin      string          `json:"origin,omitempty"`
	Rating      Rating          `json:"rating"`
}

// Rating is the aggregated customer rating of a product.
//
// Rating 是产品的汇总用户评分。
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// PageResult is one server page of products plus pagination metadata.
// TotalPages is the pagination source of truth; TotalProducts is informational.
//
// PageResult 是服务器返回的一页产品及分页元数据。
// TotalPages 是分页的唯一依据；TotalProducts 仅供参考。
type PageResult struct {
	Items         []Product `json:"products"`
	TotalPages    int       `json:"total_pages"`
	TotalProducts int       `json:"total_products,omitempty"`
	CurrentPage   int       `json:"current_page,omitempty"`
}

// ListRequest is a product listing request for one QueryState.
//
// ListRequest 是针对一个QueryState的产品列表请求。
type ListRequest struct {
	State QueryState
	Limit int
}
