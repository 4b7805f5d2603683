package devapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	serrors "github.com/yourusername/storefront/pkg/errors"
)

// ProductHandler translates HTTP requests into ProductService calls and
// maps service errors to status codes.
//
// ProductHandler 将 HTTP 请求转换为 ProductService 调用，并把服务错误映射为状态码。
type ProductHandler struct {
	service *ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a handler for service.
//
// Parameters:
//   - service: The product service to use for business logic
//   - logger: Logger, nil for none
//
// Returns:
//   - *ProductHandler: A new product handler instance
//
// NewProductHandler 为 service 创建处理器。
//
// 参数:
//   - service: 用于业务逻辑的产品服务
//   - logger: 日志记录器，nil 表示不记录
//
// 返回:
//   - *ProductHandler: 一个新的产品处理器实例
func NewProductHandler(service *ProductService, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{service: service, logger: logger}
}

// Register mounts every endpoint under /api on r.
//
// Register 在 r 的 /api 下注册所有接口。
func (h *ProductHandler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/products", h.ListProducts)
	api.GET("/products/categories", h.Categories)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/categories", h.Categories)

	api.POST("/login", h.Login)
	api.POST("/register", h.RegisterUser)
	api.POST("/auth/google-login", h.GoogleLogin)
	api.POST("/auth/google/callback", h.GoogleCallback)
}

// ListProducts handles GET /api/products.
//
// Parameters:
//   - c: The Gin context containing the HTTP request and response
//
// ListProducts 处理 GET /api/products。
//
// 参数:
//   - c: 包含HTTP请求和响应的Gin上下文
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid listing parameters."})
		return
	}

	resp, err := h.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "list products", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct handles GET /api/products/:id.
//
// GetProduct 处理 GET /api/products/:id。
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Categories handles GET /api/categories and its /api/products/categories alias.
//
// Categories 处理 GET /api/categories 及其别名 /api/products/categories。
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Login handles the form POST /api/login.
//
// Login 处理表单提交的 POST /api/login。
func (h *ProductHandler) Login(c *gin.Context) {
	resp, err := h.service.Login(c.PostForm("email"), c.PostForm("password"))
	h.reply(c, "login", http.StatusOK, resp, err)
}

// RegisterUser handles the form POST /api/register.
//
// RegisterUser 处理表单提交的 POST /api/register。
func (h *ProductHandler) RegisterUser(c *gin.Context) {
	resp, err := h.service.Register(c.PostForm("email"), c.PostForm("password"), c.PostForm("confirm_password"))
	h.reply(c, "register", http.StatusCreated, resp, err)
}

// GoogleLogin handles the JSON POST /api/auth/google-login.
//
// GoogleLogin 处理 JSON 格式的 POST /api/auth/google-login。
func (h *ProductHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "No token received."})
		return
	}
	resp, err := h.service.GoogleLogin(req.IDToken)
	h.reply(c, "google login", http.StatusOK, resp, err)
}

// GoogleCallback handles the JSON POST /api/auth/google/callback.
//
// GoogleCallback 处理 JSON 格式的 POST /api/auth/google/callback。
func (h *ProductHandler) GoogleCallback(c *gin.Context) {
	var req googleCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid callback request."})
		return
	}
	resp, err := h.service.GoogleCallback(req.Code, req.State)
	h.reply(c, "google callback", http.StatusOK, resp, err)
}

func (h *ProductHandler) reply(c *gin.Context, action string, status int, resp MessageResponse, err error) {
	if err != nil {
		h.fail(c, action, err)
		return
	}
	c.JSON(status, resp)
}

// fail 将错误映射为状态码和用户可读的消息
func (h *ProductHandler) fail(c *gin.Context, action string, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(action+" failed", zap.Error(err))
	} else {
		h.logger.Debug(action+" rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, MessageResponse{Message: message})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, serrors.ErrNotFound):
		return http.StatusNotFound, "Product not found."
	case errors.Is(err, ErrMissingFields):
		return http.StatusBadRequest, "Email and password are required."
	case errors.Is(err, serrors.ErrPasswordMismatch):
		return http.StatusBadRequest, "Passwords do not match."
	case errors.Is(err, serrors.ErrMissingCredential):
		return http.StatusBadRequest, "No token received."
	case errors.Is(err, serrors.ErrInvalidState):
		return http.StatusBadRequest, "Invalid request state."
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, ErrUserExists):
		return http.StatusConflict, "Email already registered."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Service unavailable."
	default:
		return http.StatusInternalServerError, "Internal server error."
	}
}
