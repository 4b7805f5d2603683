// Package configs provides configuration structures and utilities for the storefront.
// It offers mechanisms for loading, validating, and saving configuration from various sources
// including JSON and YAML files, environment variables and .env files. The package defines
// one configuration structure shared by the catalog browser and the dev storefront API.
//
// Package configs 提供店面的配置结构和工具。
// 它提供从各种来源（包括JSON和YAML文件、环境变量和.env文件）加载、验证和保存配置的机制。
// 该包定义了目录浏览器和开发店面API共用的配置结构。
package configs

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config represents the complete storefront configuration,
// organized into logical sections for different components.
//
// Config 表示店面的完整配置，按不同组件的逻辑部分进行组织。
type Config struct {
	// Client configures the storefront API client
	// Client 配置店面API客户端
	Client ClientConfig `json:"client" yaml:"client" mapstructure:"client"`

	// Catalog configures the catalog controller and detail view
	// Catalog 配置目录控制器和详情视图
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`

	// Notify configures toast notifications
	// Notify 配置提示框通知
	Notify NotifyConfig `json:"notify" yaml:"notify" mapstructure:"notify"`

	// Auth configures login redirects and Google sign-in
	// Auth 配置登录重定向和Google登录
	Auth AuthConfig `json:"auth" yaml:"auth" mapstructure:"auth"`

	// Server configures the dev storefront API
	// Server 配置开发店面API
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`

	// Metrics configures Prometheus metrics
	// Metrics 配置Prometheus指标
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// Log configures the logging behavior
	// Log 配置日志行为
	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`

	// Extensions configures optional features like hot reloading
	// Extensions 配置可选功能，如热重载
	Extensions ExtensionsConfig `json:"extensions" yaml:"extensions" mapstructure:"extensions"`

	// Extra allows for custom configuration options
	// Extra 允许自定义配置选项
	Extra map[string]interface{} `json:"extra" yaml:"extra" mapstructure:"extra"`
}

// ClientConfig contains settings for the API client.
//
// ClientConfig 包含API客户端的设置。
type ClientConfig struct {
	// BaseURL is the scheme and host of the storefront API
	// BaseURL 是店面API的协议和主机
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PageSize is the limit sent with every listing request
	// PageSize 是每个列表请求发送的limit
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// RequestTimeout bounds every request (0 = no timeout)
	// RequestTimeout 限制每个请求的时长（0 = 不超时）
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`

	// ProductsPath is the product listing endpoint
	// ProductsPath 是产品列表端点
	ProductsPath string `json:"products_path" yaml:"products_path" mapstructure:"products_path"`

	// CategoriesPath is the category list endpoint
	// CategoriesPath 是分类列表端点
	CategoriesPath string `json:"categories_path" yaml:"categories_path" mapstructure:"categories_path"`

	// UserAgent is sent with every request
	// UserAgent 随每个请求发送
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// Retries is how many times transport failures and 5xx replies are retried
	// Retries 是传输失败和5xx响应的重试次数
	Retries int `json:"retries" yaml:"retries" mapstructure:"retries"`
}

// CatalogConfig contains settings for the catalog controller.
//
// CatalogConfig 包含目录控制器的设置。
type CatalogConfig struct {
	// WindowSize is the maximum number of page-number buttons
	// WindowSize 是页码按钮的最大数量
	WindowSize int `json:"window_size" yaml:"window_size" mapstructure:"window_size"`

	// DetailCacheTTL is how long a loaded product stays cached (0 = no cache)
	// DetailCacheTTL 是已加载产品的缓存时长（0 = 不缓存）
	DetailCacheTTL time.Duration `json:"detail_cache_ttl" yaml:"detail_cache_ttl" mapstructure:"detail_cache_ttl"`

	// StartURL is the location the browser opens first
	// StartURL 是浏览器首先打开的位置
	StartURL string `json:"start_url" yaml:"start_url" mapstructure:"start_url"`
}

// NotifyConfig contains settings for toast notifications.
//
// NotifyConfig 包含提示框通知的设置。
type NotifyConfig struct {
	// Duration is how long a toast stays visible
	// Duration 是提示框保持可见的时长
	Duration time.Duration `json:"duration" yaml:"duration" mapstructure:"duration"`

	// Color enables ANSI colors
	// Color 启用ANSI颜色
	Color bool `json:"color" yaml:"color" mapstructure:"color"`
}

// AuthConfig contains settings for the auth flows.
//
// AuthConfig 包含认证流程的设置。
type AuthConfig struct {
	GoogleClientID    string `json:"google_client_id" yaml:"google_client_id" mapstructure:"google_client_id"`
	GoogleRedirectURL string `json:"google_redirect_url" yaml:"google_redirect_url" mapstructure:"google_redirect_url"`
	AfterLoginPath    string `json:"after_login_path" yaml:"after_login_path" mapstructure:"after_login_path"`
	AfterRegisterPath string `json:"after_register_path" yaml:"after_register_path" mapstructure:"after_register_path"`
}

// ServerConfig contains settings for the dev storefront API.
//
// ServerConfig 包含开发店面API的设置。
type ServerConfig struct {
	// Addr is the listen address
	// Addr 是监听地址
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Latency delays every product response, to exercise out-of-order replies
	// Latency 延迟每个产品响应，用于模拟乱序响应
	Latency time.Duration `json:"latency" yaml:"latency" mapstructure:"latency"`

	// ListCacheTTL is how long a computed listing page is cached (0 = no cache)
	// ListCacheTTL 是计算出的列表页的缓存时长（0 = 不缓存）
	ListCacheTTL time.Duration `json:"list_cache_ttl" yaml:"list_cache_ttl" mapstructure:"list_cache_ttl"`

	// SeedFile is an optional JSON file with the products to serve
	// SeedFile 是可选的JSON文件，包含要提供的产品
	SeedFile string `json:"seed_file" yaml:"seed_file" mapstructure:"seed_file"`
}

// MetricsConfig contains settings for metrics collection.
//
// MetricsConfig 包含指标收集的设置。
type MetricsConfig struct {
	// Enable determines whether metrics collection is active
	// Enable 确定是否启用指标收集
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// Level controls the detail of metrics collection ("basic", "detailed", "disabled")
	// Level 控制指标收集的详细程度（"basic"、"detailed"、"disabled"）
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Addr is where the browser exposes /metrics ("" = not exposed)
	// Addr 是浏览器暴露/metrics的地址（"" = 不暴露）
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Namespace is the metric name prefix
	// Namespace 是指标名称前缀
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
}

// LogConfig contains settings for logging.
// These settings control the logging behavior, including
// log level, format, and output destination.
//
// LogConfig 包含日志记录的设置。
// 这些设置控制日志行为，包括日志级别、格式和输出目的地。
type LogConfig struct {
	// Level sets the minimum log level ("debug", "info", "warn", "error")
	// Level 设置最低日志级别（"debug"、"info"、"warn"、"error"）
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format specifies the log format ("text", "json")
	// Format 指定日志格式（"text"、"json"）
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output determines where logs are written ("stdout", "stderr", "file")
	// Output 确定日志写入的位置（"stdout"、"stderr"、"file"）
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// FilePath is the path to the log file when Output is "file"
	// FilePath 是当Output为"file"时的日志文件路径
	FilePath string `json:"file_path" yaml:"file_path" mapstructure:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation
	// MaxSizeMB 是轮换前的最大日志文件大小（MB）
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated log files to keep
	// MaxBackups 是要保留的轮换日志文件数量
	MaxBackups int `json:"max_backups" yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays is the maximum age of log files in days
	// MaxAgeDays 是日志文件的最大保留天数
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days" mapstructure:"max_age_days"`
}

// ExtensionsConfig contains settings for extensions.
//
// ExtensionsConfig 包含扩展的设置。
type ExtensionsConfig struct {
	// HotReload contains settings for dynamic configuration reloading
	// HotReload 包含动态配置重新加载的设置
	HotReload HotReloadConfig `json:"hot_reload" yaml:"hot_reload" mapstructure:"hot_reload"`
}

// HotReloadConfig contains settings for hot reloading.
// These settings control how configuration changes are
// detected and applied without restart.
//
// HotReloadConfig 包含热重载的设置。
// 这些设置控制如何检测和应用配置更改而无需重启。
type HotReloadConfig struct {
	// Enable determines whether hot reloading is active
	// Enable 确定是否启用热重载
	Enable bool `json:"enable" yaml:"enable" mapstructure:"enable"`

	// Mode selects the change detector ("fsnotify", "poll")
	// Mode 选择变更检测方式（"fsnotify"、"poll"）
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// WatchInterval is how often to check for changes in poll mode
	// WatchInterval 是轮询模式下检查配置更改的频率
	WatchInterval time.Duration `json:"watch_interval" yaml:"watch_interval" mapstructure:"watch_interval"`
}

// DefaultConfig returns a new Config with default values.
//
// DefaultConfig 返回具有默认值的新Config。
//
// Returns:
//   - *Config: A new configuration instance with default values
//
// 返回：
//   - *Config: 具有默认值的新配置实例
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			BaseURL:        "http://localhost:8080",
			PageSize:       10,
			RequestTimeout: 10 * time.Second,
			ProductsPath:   "/api/products",
			CategoriesPath: "/api/categories",
			UserAgent:      "storefront-browser/1.0",
			Retries:        0,
		},
		Catalog: CatalogConfig{
			WindowSize:     5,
			DetailCacheTTL: time.Minute,
			StartURL:       "/products",
		},
		Notify: NotifyConfig{
			Duration: 3 * time.Second,
			Color:    true,
		},
		Auth: AuthConfig{
			GoogleRedirectURL: "http://localhost:8080/auth/google/callback",
			AfterLoginPath:    "/products",
			AfterRegisterPath: "/login",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ListCacheTTL: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enable:    true,
			Level:     "basic",
			Namespace: "storefront",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   "storefront.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Extensions: ExtensionsConfig{
			HotReload: HotReloadConfig{
				Enable:        false,
				Mode:          "fsnotify",
				WatchInterval: 30 * time.Second,
			},
		},
		Extra: make(map[string]interface{}),
	}
}

// LoadFromFile loads configuration from a file.
// It supports both YAML and JSON formats, automatically
// detecting the format based on the file extension.
//
// LoadFromFile 从文件加载配置。
// 它支持YAML和JSON格式，根据文件扩展名自动检测格式。
//
// Parameters:
//   - filename: Path to the configuration file
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if loading fails
func LoadFromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer file.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "yaml", "yml", "json":
		return LoadFromReader(file, ext)
	default:
		return nil, fmt.Errorf("unsupported configuration file format: .%s", ext)
	}
}

// LoadFromReader loads configuration from an io.Reader.
//
// LoadFromReader 从io.Reader加载配置。
//
// Parameters:
//   - r: The reader providing the configuration data
//   - format: The format of the data ("json", "yaml", or "yml")
//
// Returns:
//   - *Config: The loaded configuration
//   - error: An error if loading fails
func LoadFromReader(r io.Reader, format string) (*Config, error) {
	config := DefaultConfig()
	var err error

	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(config)
	case "json":
		err = json.NewDecoder(r).Decode(config)
	default:
		return nil, fmt.Errorf("unsupported configuration format: %s", format)
	}

	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
// It supports both YAML and JSON formats, automatically
// selecting the format based on the file extension.
//
// SaveToFile 将配置保存到文件。
// 它支持YAML和JSON格式，根据文件扩展名自动选择格式。
//
// Parameters:
//   - filename: Path where the configuration will be saved
//
// Returns:
//   - error: An error if saving fails
func (c *Config) SaveToFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return fmt.Errorf("unsupported configuration file format: %s", ext)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer file.Close()

	switch ext {
	case ".yaml", ".yml":
		encoder := yaml.NewEncoder(file)
		defer encoder.Close()
		err = encoder.Encode(c)
	case ".json":
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(c)
	}

	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	return nil
}

// Validate validates the configuration.
//
// Validate 验证配置。
//
// Returns:
//   - error: An error describing the validation failure, or nil if valid
func (c *Config) Validate() error {
	// Validate client settings
	// 验证客户端设置
	u, err := url.Parse(c.Client.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("client.base_url must be an absolute URL")
	}
	if c.Client.PageSize <= 0 {
		return fmt.Errorf("client.page_size must be positive")
	}
	if c.Client.RequestTimeout < 0 {
		return fmt.Errorf("client.request_timeout must be non-negative")
	}
	if !strings.HasPrefix(c.Client.ProductsPath, "/") || !strings.HasPrefix(c.Client.CategoriesPath, "/") {
		return fmt.Errorf("client.products_path and client.categories_path must start with '/'")
	}
	if c.Client.Retries < 0 {
		return fmt.Errorf("client.retries must be non-negative")
	}

	// Validate catalog settings
	// 验证目录设置
	if c.Catalog.WindowSize <= 0 {
		return fmt.Errorf("catalog.window_size must be positive")
	}
	if c.Catalog.DetailCacheTTL < 0 {
		return fmt.Errorf("catalog.detail_cache_ttl must be non-negative")
	}

	if c.Notify.Duration <= 0 {
		return fmt.Errorf("notify.duration must be positive")
	}

	// Validate server settings
	// 验证服务器设置
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be specified")
	}
	if c.Server.Latency < 0 || c.Server.ListCacheTTL < 0 {
		return fmt.Errorf("server.latency and server.list_cache_ttl must be non-negative")
	}

	// Validate metrics settings
	// 验证指标设置
	switch c.Metrics.Level {
	case "basic", "detailed", "disabled":
	default:
		return fmt.Errorf("metrics.level must be one of: basic, detailed, disabled")
	}

	// Validate log settings
	// 验证日志设置
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be one of: text, json")
	}
	switch c.Log.Output {
	case "stdout", "stderr", "file":
	default:
		return fmt.Errorf("log.output must be one of: stdout, stderr, file")
	}
	if c.Log.Output == "file" && c.Log.FilePath == "" {
		return fmt.Errorf("log.file_path must be specified when log.output is 'file'")
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be positive")
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_backups must be non-negative")
	}
	if c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log.max_age_days must be non-negative")
	}

	// Validate extensions settings
	// 验证扩展设置
	if c.Extensions.HotReload.Enable {
		switch c.Extensions.HotReload.Mode {
		case "fsnotify":
		case "poll":
			if c.Extensions.HotReload.WatchInterval < time.Second {
				return fmt.Errorf("extensions.hot_reload.watch_interval must be at least 1 second")
			}
		default:
			return fmt.Errorf("extensions.hot_reload.mode must be one of: fsnotify, poll")
		}
	}

	return nil
}
