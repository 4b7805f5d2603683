package devapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/storefront/configs"
	"github.com/yourusername/storefront/internal/metrics"
)

// SampleSize is the number of sample products served when no seed file is set.
//
// SampleSize 是未指定种子文件时生成的样例产品数量。
const SampleSize = 48

// shutdownTimeout 优雅关闭的最长等待时间
const shutdownTimeout = 5 * time.Second

// Server is the dev storefront API: a gin engine over a ProductService.
//
// Server 是开发店面API服务器：基于 ProductService 的 gin 引擎。
type Server struct {
	cfg     configs.ServerConfig
	engine  *gin.Engine
	service *ProductService
	logger  *zap.Logger
}

// ServerOption configures a Server.
//
// ServerOption 配置 Server。
type ServerOption func(*serverOptions)

type serverOptions struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// WithServerLogger sets the logger used by every layer of the server.
//
// WithServerLogger 设置服务器各层使用的日志记录器。
func WithServerLogger(l *zap.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithServerMetrics records request metrics and exposes them on /metrics.
//
// WithServerMetrics 记录请求指标并在 /metrics 暴露。
func WithServerMetrics(m *metrics.Metrics) ServerOption {
	return func(o *serverOptions) {
		o.metrics = m
	}
}

// NewServer creates a server from configuration. Products come from
// cfg.SeedFile when set, otherwise SampleSize sample products are used.
//
// Parameters:
//   - cfg: Server configuration
//   - opts: Functional options
//
// Returns:
//   - *Server: A new server, not yet listening
//   - error: Seed file error
//
// NewServer 根据配置创建服务器。配置了 SeedFile 时从文件加载产品，否则使用 SampleSize 个样例产品。
//
// 参数:
//   - cfg: 服务器配置
//   - opts: 函数式选项
//
// 返回:
//   - *Server: 一个尚未监听的新服务器
//   - error: 种子文件错误
func NewServer(cfg configs.ServerConfig, opts ...ServerOption) (*Server, error) {
	o := serverOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	products := SampleProducts(SampleSize)
	if cfg.SeedFile != "" {
		seeded, err := LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		products = seeded
	}

	storage := NewProductStorage(products, cfg.Latency)
	service := NewProductService(storage, NewUserStore(), cfg.ListCacheTTL, o.logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), RequestLogger(o.logger))
	if o.metrics != nil {
		engine.Use(o.metrics.GinMiddleware())
		engine.GET("/metrics", gin.WrapH(o.metrics.Handler()))
	}
	NewProductHandler(service, o.logger).Register(engine)

	o.logger.Info("storefront api ready",
		zap.Int("products", storage.Len()),
		zap.Duration("latency", cfg.Latency),
		zap.Duration("list_cache_ttl", cfg.ListCacheTTL))

	return &Server{cfg: cfg, engine: engine, service: service, logger: o.logger}, nil
}

// Handler returns the HTTP handler, for use with httptest.
//
// Handler 返回 HTTP 处理器，便于配合 httptest 使用。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Service returns the underlying service.
//
// Service 返回底层服务。
func (s *Server) Service() *ProductService {
	return s.service
}

// Run serves until ctx is done and then shuts down gracefully. The list
// cache is warmed in the background; a warm-up failure is only logged.
//
// Run 启动服务器直到 ctx 结束，然后优雅关闭。
// 列表缓存在后台预热，预热失败只记录日志。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if s.cfg.ListCacheTTL <= 0 {
			return nil
		}
		if err := s.service.Warm(gctx); err != nil && gctx.Err() == nil {
			s.logger.Warn("failed to warm listing cache", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
