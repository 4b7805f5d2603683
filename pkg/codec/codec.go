// Package codec provides interfaces and implementations for encoding and
// decoding the payloads exchanged with the storefront API.
//
// Package codec 提供与店面API交换的负载数据的编码和解码接口及实现。
package codec

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Codec defines the interface for encoding and decoding API payloads.
//
// Codec 定义了编码和解码API负载的接口。
type Codec interface {
	// Marshal serializes a value into bytes.
	//
	// Marshal 将值序列化为字节。
	//
	// Parameters:
	//   - value: The value to serialize
	//
	// Returns:
	//   - []byte: The serialized bytes
	//   - error: An error if serialization fails
	Marshal(value interface{}) ([]byte, error)

	// Unmarshal deserializes bytes into a value.
	// The value parameter should be a pointer to the target type.
	//
	// Unmarshal 将字节反序列化为值。
	// value参数应该是目标类型的指针。
	Unmarshal(data []byte, value interface{}) error

	// Name returns the name of this codec.
	//
	// Name 返回此编解码器的名称。
	Name() string

	// ContentType returns the media type produced by Marshal.
	//
	// ContentType 返回Marshal产生的媒体类型。
	ContentType() string
}

// JSONCodec implements Codec using JSON serialization.
//
// JSONCodec 使用JSON序列化实现Codec。
type JSONCodec struct {
	// Pretty determines whether to use indented JSON encoding.
	// Pretty 决定是否使用缩进的JSON编码。
	Pretty bool
}

// Marshal serializes a value to JSON.
//
// Marshal 将值序列化为JSON。
func (c *JSONCodec) Marshal(value interface{}) ([]byte, error) {
	if c.Pretty {
		return json.MarshalIndent(value, "", "  ")
	}
	return json.Marshal(value)
}

// Unmarshal deserializes JSON into a value.
//
// Unmarshal 将JSON反序列化为值。
func (c *JSONCodec) Unmarshal(data []byte, value interface{}) error {
	return json.Unmarshal(data, value)
}

// Name returns "json".
//
// Name 返回"json"。
func (c *JSONCodec) Name() string {
	return "json"
}

// ContentType returns the JSON media type.
//
// ContentType 返回JSON媒体类型。
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// NewJSONCodec creates a new JSON codec.
//
// NewJSONCodec 创建一个新的JSON编解码器。
//
// Parameters:
//   - pretty: Whether to use indented JSON encoding
//
// Returns:
//   - *JSONCodec: A new JSON codec instance
func NewJSONCodec(pretty bool) *JSONCodec {
	return &JSONCodec{Pretty: pretty}
}

// DefaultCodec returns the default codec (compact JSON).
//
// DefaultCodec 返回默认编解码器（紧凑JSON）。
func DefaultCodec() Codec {
	return NewJSONCodec(false)
}

// GetCodec returns a codec by name.
// Supported names: "json", "json-pretty".
//
// GetCodec 通过名称返回编解码器。
// 支持的名称："json"、"json-pretty"。
func GetCodec(name string) (Codec, error) {
	switch name {
	case "json", "":
		return NewJSONCodec(false), nil
	case "json-pretty":
		return NewJSONCodec(true), nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}

// DecodeMessage extracts a human readable message from an error body.
// It tries the JSON shapes {"message": ...} and {"error": ...} and reports
// false when neither is present so callers can fall back to the raw text.
//
// DecodeMessage 从错误响应体中提取可读消息。
// 它尝试JSON结构{"message": ...}和{"error": ...}，两者都不存在时返回false，
// 以便调用方回退到原始文本。
func DecodeMessage(c Codec, body []byte) (string, bool) {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := c.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	if payload.Message != "" {
		return payload.Message, true
	}
	if payload.Error != "" {
		return payload.Error, true
	}
	return "", false
}
