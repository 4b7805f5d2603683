// Package configs provides configuration structures and utilities for the storefront.
// This file implements Viper-based configuration management with environment
// overrides and hot reloading support.
//
// Package configs 提供店面的配置结构和工具。
// 本文件实现基于Viper的配置管理，支持环境变量覆盖和热重载。
package configs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. STOREFRONT_CLIENT_BASE_URL.
//
// EnvPrefix 是环境变量覆盖的前缀，例如STOREFRONT_CLIENT_BASE_URL。
const EnvPrefix = "STOREFRONT"

// ViperConfig wraps a Config with Viper functionality for hot reloading.
// It provides thread-safe access to configuration and supports dynamic
// updates when the underlying configuration file changes.
//
// ViperConfig 使用Viper功能包装Config以支持热重载。
// 它提供对配置的线程安全访问，并支持在底层配置文件更改时进行动态更新。
type ViperConfig struct {
	*Config                     // Embedded configuration / 嵌入的配置
	viper       *viper.Viper    // Viper instance for configuration management / 用于配置管理的Viper实例
	configFile  string          // Path to the configuration file, may be empty / 配置文件路径，可为空
	mu          sync.RWMutex    // Mutex for thread-safe access / 用于线程安全访问的互斥锁
	subscribers []func(*Config) // List of subscribers to notify on config changes / 配置更改时要通知的订阅者列表
	stop        chan struct{}   // Closes the poll watcher / 关闭轮询监视器
	stopOnce    sync.Once
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set are not overwritten.
//
// LoadDotEnv 将.env文件中的变量加载到进程环境中。
// 忽略不存在的文件；已设置的变量不会被覆盖。
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// NewViperConfig creates a new ViperConfig.
// Every key has a default, so STOREFRONT_* variables override any setting
// even when the file omits it. An empty configFile means defaults plus environment.
//
// NewViperConfig 创建一个新的ViperConfig。
// 每个键都有默认值，因此即使文件中没有该设置，STOREFRONT_*变量也能覆盖它。
// configFile为空表示只使用默认值和环境变量。
//
// Parameters:
//   - configFile: Path to the configuration file, or ""
//
// Returns:
//   - *ViperConfig: A new ViperConfig instance
//   - error: An error if loading or validation fails
func NewViperConfig(configFile string) (*ViperConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		ext := filepath.Ext(configFile)
		v.SetConfigType(strings.TrimPrefix(ext, "."))

		// Read the config file
		// 读取配置文件
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}

	return &ViperConfig{
		Config:      config,
		viper:       v,
		configFile:  configFile,
		subscribers: make([]func(*Config), 0),
		stop:        make(chan struct{}),
	}, nil
}

// newViper returns a viper instance with env overrides and every default registered.
func newViper() (*viper.Viper, error) {
	raw, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to encode defaults: %w", err)
	}
	defaults := viper.New()
	defaults.SetConfigType("yaml")
	if err := defaults.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to read defaults: %w", err)
	}

	v := viper.New()
	for _, key := range defaults.AllKeys() {
		v.SetDefault(key, defaults.Get(key))
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()

	// Unmarshal the merged settings into the config struct
	// 将合并后的设置解析到配置结构中
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// EnableHotReload enables hot reloading of the configuration file.
// When the configuration file changes, the configuration is automatically
// reloaded and all subscribers are notified. Invalid edits are logged and ignored.
//
// EnableHotReload 启用配置文件的热重载。
// 当配置文件更改时，配置会自动重新加载，并通知所有订阅者。无效的修改会被记录并忽略。
func (vc *ViperConfig) EnableHotReload() {
	if vc.configFile == "" {
		return
	}
	vc.viper.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Info("config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		newConfig, err := decode(vc.viper)
		if err != nil {
			zap.L().Warn("ignoring config change", zap.Error(err))
			return
		}
		vc.apply(newConfig)
	})
	vc.viper.WatchConfig()
}

// StartPolling re-reads the configuration file every interval and notifies
// subscribers when the decoded configuration differs. It is an alternative to
// fsnotify for file systems where notifications are unreliable.
//
// StartPolling 每隔interval重新读取配置文件，当解码后的配置不同时通知订阅者。
// 它是fsnotify的替代方案，适用于文件系统通知不可靠的环境。
func (vc *ViperConfig) StartPolling(interval time.Duration) {
	if vc.configFile == "" || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-vc.stop:
				return
			case <-ticker.C:
			}
			if err := vc.viper.ReadInConfig(); err != nil {
				zap.L().Warn("failed to read config file", zap.Error(err))
				continue
			}
			newConfig, err := decode(vc.viper)
			if err != nil {
				zap.L().Warn("ignoring config change", zap.Error(err))
				continue
			}
			if configsEqual(vc.Get(), newConfig) {
				continue
			}
			zap.L().Info("config file changed", zap.String("file", vc.configFile))
			vc.apply(newConfig)
		}
	}()
}

// Watch starts the change detector selected by extensions.hot_reload.
//
// Watch 启动extensions.hot_reload选择的变更检测方式。
func (vc *ViperConfig) Watch() {
	hr := vc.Get().Extensions.HotReload
	if !hr.Enable {
		return
	}
	if hr.Mode == "poll" {
		vc.StartPolling(hr.WatchInterval)
		return
	}
	vc.EnableHotReload()
}

// Close stops the poll watcher.
//
// Close 停止轮询监视器。
func (vc *ViperConfig) Close() {
	vc.stopOnce.Do(func() { close(vc.stop) })
}

func (vc *ViperConfig) apply(newConfig *Config) {
	vc.mu.Lock()
	vc.Config = newConfig
	subscribers := make([]func(*Config), len(vc.subscribers))
	copy(subscribers, vc.subscribers)
	vc.mu.Unlock()

	// Notify subscribers
	// 通知订阅者
	for _, subscriber := range subscribers {
		subscriber(newConfig)
	}
}

// Subscribe adds a subscriber that will be notified when the configuration changes.
// The subscriber function is called with the new configuration as its argument.
//
// Subscribe 添加一个在配置更改时将被通知的订阅者。
// 订阅者函数将以新配置作为其参数被调用。
func (vc *ViperConfig) Subscribe(subscriber func(*Config)) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.subscribers = append(vc.subscribers, subscriber)
}

// Get returns the current configuration.
// This method is thread-safe and can be called concurrently.
//
// Get 返回当前配置。
// 此方法是线程安全的，可以并发调用。
func (vc *ViperConfig) Get() *Config {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.Config
}

// LoadViperConfig loads .env, then the configuration file, and starts the
// watcher selected by the file's hot reload settings.
//
// LoadViperConfig 加载.env和配置文件，并启动配置中热重载设置选择的监视器。
//
// Parameters:
//   - configFile: Path to the configuration file, or ""
//
// Returns:
//   - *ViperConfig: A new ViperConfig instance
//   - error: An error if loading fails
func LoadViperConfig(configFile string) (*ViperConfig, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	vc, err := NewViperConfig(configFile)
	if err != nil {
		return nil, err
	}
	vc.Watch()
	return vc, nil
}

// configsEqual reports whether two configs hold the same settings.
//
// configsEqual 检查两个配置是否相同。
func configsEqual(c1, c2 *Config) bool {
	return reflect.DeepEqual(c1, c2)
}
