// Package errors provides standardized error types for the storefront client.
// It defines the sentinel errors returned by the API client, the auth glue and
// the catalog controller, a wrapping type for non-2xx API responses, and helper
// functions for error checking and for producing user-facing messages.
//
// Package errors 提供店面客户端的标准化错误类型。
// 它定义了API客户端、认证逻辑和目录控制器返回的哨兵错误、用于非2xx API响应的包装类型，
// 以及用于错误检查和生成面向用户消息的辅助函数。
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Standard errors that can be returned by the storefront packages.
//
// 店面相关包可能返回的标准错误。
var (
	// ErrNotFound is returned when the requested product does not exist.
	// 当请求的产品不存在时返回ErrNotFound。
	ErrNotFound = errors.New("storefront: not found")

	// ErrNetwork is returned when a request could not complete at the transport level.
	// 当请求在传输层无法完成时返回ErrNetwork。
	ErrNetwork = errors.New("storefront: network failure")

	// ErrDecode is returned when a 2xx response body cannot be decoded.
	// 当2xx响应体无法解码时返回ErrDecode。
	ErrDecode = errors.New("storefront: malformed response")

	// ErrPasswordMismatch is returned when the register form passwords differ.
	// 当注册表单的两次密码不一致时返回ErrPasswordMismatch。
	ErrPasswordMismatch = errors.New("storefront: passwords do not match")

	// ErrMissingCredential is returned when a Google credential is empty or malformed.
	// 当Google凭证为空或格式错误时返回ErrMissingCredential。
	ErrMissingCredential = errors.New("storefront: missing credential")

	// ErrInvalidState is returned when an OAuth callback state does not match.
	// 当OAuth回调的state不匹配时返回ErrInvalidState。
	ErrInvalidState = errors.New("storefront: invalid oauth state")

	// ErrMissingID is returned when a detail view is opened without a product id.
	// 当打开详情视图但未提供产品ID时返回ErrMissingID。
	ErrMissingID = errors.New("storefront: missing product id")
)

// APIError represents a non-2xx response from the storefront API.
// Message holds the server supplied message when one could be parsed.
//
// APIError 表示店面API返回的非2xx响应。
// Message 保存可解析时由服务器提供的消息。
type APIError struct {
	Status  int    // HTTP status code / HTTP状态码
	Message string // Server message or raw body / 服务器消息或原始响应体
}

// Error returns the error message.
//
// Error 返回错误消息。
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Unwrap maps a 404 onto ErrNotFound so errors.Is works across layers.
//
// Unwrap 将404映射为ErrNotFound，使errors.Is可以跨层工作。
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// NewAPIError creates a new APIError. Surrounding whitespace of the message is dropped.
//
// NewAPIError 创建一个新的APIError。消息两端的空白会被去除。
//
// Parameters:
//   - status: The HTTP status code
//   - message: The parsed server message or raw body
//
// Returns:
//   - *APIError: A new API error instance
func NewAPIError(status int, message string) *APIError {
	return &APIError{Status: status, Message: strings.TrimSpace(message)}
}

// NetworkError wraps a transport failure with the request path that caused it.
//
// NetworkError 用导致错误的请求路径包装传输失败。
type NetworkError struct {
	Path string // Request path / 请求路径
	Err  error  // The underlying error / 底层错误
}

// Error returns the error message.
//
// Error 返回错误消息。
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrNetwork, e.Path, e.Err)
}

// Unwrap returns both ErrNetwork and the transport error.
//
// Unwrap 同时返回ErrNetwork和传输错误。
func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// NewNetworkError creates a new NetworkError.
//
// NewNetworkError 创建一个新的NetworkError。
func NewNetworkError(path string, err error) *NetworkError {
	return &NetworkError{Path: path, Err: err}
}

// IsNotFound returns true if the error indicates that a product was not found.
//
// IsNotFound 如果错误表示未找到产品，则返回true。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNetwork returns true if the error is a transport failure.
//
// IsNetwork 如果错误是传输失败，则返回true。
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsCanceled returns true if the error comes from a cancelled context.
//
// IsCanceled 如果错误来自已取消的上下文，则返回true。
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// AsAPIError extracts an *APIError from the chain.
//
// AsAPIError 从错误链中提取*APIError。
//
// Returns:
//   - *APIError: The API error, or nil
//   - bool: True if the chain contains an API error
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// UserMessage returns the text shown to a user for err.
// API errors show the server message when present, everything else its Error text.
//
// UserMessage 返回向用户展示的错误文本。
// API错误在有服务器消息时展示该消息，其余错误展示其Error文本。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Err.Error()
	}
	return err.Error()
}
