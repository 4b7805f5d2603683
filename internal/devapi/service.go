package devapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/storefront/pkg/auth"
	"github.com/yourusername/storefront/pkg/catalog"
	serrors "github.com/yourusername/storefront/pkg/errors"
	"github.com/yourusername/storefront/pkg/loader"
)

// ErrMissingFields reports a login or registration without email or password.
//
// ErrMissingFields 表示缺少邮箱或密码。
var ErrMissingFields = errors.New("devapi: email and password are required")

const (
	// warmConcurrency 限制预热时的并发查询数
	warmConcurrency = 4
	// listCacheEntries 限制列表缓存的键数，键来自任意客户端查询串
	listCacheEntries = 1024
)

// ProductService implements the listing, detail and auth logic of the dev API.
// List pages are cached through a loader.CachedLoader and concurrent category
// lookups share one storage call.
//
// ProductService 实现开发API的列表、详情和认证逻辑。
// 列表页经过 loader.CachedLoader 缓存，并发的分类查询共享一次存储调用。
type ProductService struct {
	storage *ProductStorage
	users   *UserStore
	lists   *loader.CachedLoader[ListResponse]
	group   singleflight.Group
	logger  *zap.Logger
}

// NewProductService creates the service.
//
// Parameters:
//   - storage: Product storage
//   - users: Account storage
//   - listTTL: Lifetime of cached list pages, zero disables the cache
//   - logger: Logger, nil for none
//
// Returns:
//   - *ProductService: A new service instance
//
// NewProductService 创建服务。
//
// 参数:
//   - storage: 产品存储
//   - users: 用户存储
//   - listTTL: 列表页缓存时间，为零时不缓存
//   - logger: 日志记录器，nil 表示不记录
//
// 返回:
//   - *ProductService: 一个新的服务实例
func NewProductService(storage *ProductStorage, users *UserStore, listTTL time.Duration, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ProductService{
		storage: storage,
		users:   users,
		logger:  logger,
	}
	s.lists = loader.NewCachedLoader(loader.NewFunctionLoader(s.loadPage), listTTL)
	s.lists.MaxEntries = listCacheEntries
	return s
}

// ListProducts returns one page of the products matching filter.
// A page past the end is empty, not an error.
//
// ListProducts 返回匹配过滤条件的一页产品。超出末页时返回空页而不是错误。
func (s *ProductService) ListProducts(ctx context.Context, filter ListFilter) (ListResponse, error) {
	key := filter.normalize().key()
	resp, _, err := s.lists.Load(ctx, key)
	return resp, err
}

func (s *ProductService) loadPage(ctx context.Context, key string) (ListResponse, error) {
	f, err := parseKey(key)
	if err != nil {
		return ListResponse{}, err
	}

	matched, err := s.storage.Find(ctx, f.Query, f.Category)
	if err != nil {
		return ListResponse{}, err
	}

	total := len(matched)
	start, end := pageBounds(f.Page, f.Limit, total)
	page := make([]catalog.Product, end-start)
	copy(page, matched[start:end])

	s.logger.Debug("listing computed",
		zap.String("query", f.Query),
		zap.String("category", f.Category),
		zap.Int("page", f.Page),
		zap.Int("total", total))

	return ListResponse{
		Products:       page,
		TotalProducts:  total,
		TotalPages:     TotalPages(total, f.Limit),
		CurrentPage:    f.Page,
		ProductsOnPage: len(page),
	}, nil
}

// pageBounds 返回第 page 页在 total 条结果中的下标区间，超出末页时为空区间。
// 先与页数比较再相乘，避免超大页码溢出。
func pageBounds(page, limit, total int) (start, end int) {
	if page < 1 || limit < 1 || page-1 >= TotalPages(total, limit) {
		return total, total
	}
	start = (page - 1) * limit
	return start, min(start+limit, total)
}

// GetProduct looks up a product by the raw path ID.
// A non-numeric or non-positive ID is reported as not found.
//
// GetProduct 按路径参数中的 ID 获取产品，非数字或非正数 ID 视为不存在。
func (s *ProductService) GetProduct(ctx context.Context, rawID string) (catalog.Product, error) {
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil || id <= 0 {
		return catalog.Product{}, serrors.ErrNotFound
	}
	return s.storage.GetProduct(ctx, id)
}

// Categories returns a copy of the category list.
// Concurrent requests share one storage lookup.
//
// Categories 返回分类列表的副本，并发请求共享一次存储查询。
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	v, err, _ := s.group.Do("categories", func() (interface{}, error) {
		return s.storage.Categories(ctx)
	})
	if err != nil {
		return nil, err
	}
	categories := v.([]string)
	out := make([]string, len(categories))
	copy(out, categories)
	return out, nil
}

// Warm loads the first unfiltered page and the first page of every category
// into the list cache.
//
// Warm 将未过滤列表的第一页和每个分类的第一页预先加载到列表缓存中。
func (s *ProductService) Warm(ctx context.Context) error {
	categories, err := s.Categories(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for _, category := range append([]string{""}, categories...) {
		category := category
		g.Go(func() error {
			_, err := s.ListProducts(ctx, ListFilter{Category: category, Page: 1})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("listing cache warmed", zap.Int("entries", s.lists.Len()))
	return nil
}

// Login checks form credentials and returns the welcome message.
//
// Login 校验表单凭证并返回欢迎消息。
func (s *ProductService) Login(email, password string) (MessageResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return MessageResponse{}, ErrMissingFields
	}
	user, err := s.users.Authenticate(email, password)
	if err != nil {
		return MessageResponse{}, err
	}
	s.logger.Info("user logged in", zap.String("email", user.Email))
	return MessageResponse{Message: "Welcome back, " + user.Name + "!", RedirectURL: auth.DefaultAfterLogin}, nil
}

// Register creates an account. The trimmed password and confirmation must match.
//
// Register 创建新用户，去除空白后的两次密码必须一致。
func (s *ProductService) Register(email, password, confirm string) (MessageResponse, error) {
	password = strings.TrimSpace(password)
	if strings.TrimSpace(email) == "" || password == "" {
		return MessageResponse{}, ErrMissingFields
	}
	if password != strings.TrimSpace(confirm) {
		return MessageResponse{}, serrors.ErrPasswordMismatch
	}
	user, err := s.users.Register(email, password)
	if err != nil {
		return MessageResponse{}, err
	}
	s.logger.Info("user registered", zap.String("email", user.Email))
	return MessageResponse{Message: "Registration successful. Please log in."}, nil
}

// GoogleLogin signs in with a Google ID token. The dev server does not
// verify the signature; it only reads the email and name claims.
//
// GoogleLogin 使用 Google 身份令牌登录。
// 开发服务器不校验令牌签名，只读取 email 和 name 声明。
func (s *ProductService) GoogleLogin(idToken string) (MessageResponse, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return MessageResponse{}, serrors.ErrMissingCredential
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return MessageResponse{}, serrors.ErrMissingCredential
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return MessageResponse{}, serrors.ErrMissingCredential
	}
	name, _ := claims["name"].(string)
	user := s.users.UpsertGoogle(email, name)
	s.logger.Info("google login", zap.String("email", user.Email))
	return MessageResponse{Message: "Signed in with Google as " + user.Email + ".", RedirectURL: auth.DefaultAfterLogin}, nil
}

// GoogleCallback completes the authorization code flow. The dev server does
// not exchange the code with Google, so any non-empty code succeeds.
//
// GoogleCallback 完成授权码流程。
// 开发服务器不与 Google 交换授权码，任何非空授权码都视为成功。
func (s *ProductService) GoogleCallback(code, state string) (MessageResponse, error) {
	if strings.TrimSpace(code) == "" {
		return MessageResponse{}, serrors.ErrMissingCredential
	}
	if strings.TrimSpace(state) == "" {
		return MessageResponse{}, serrors.ErrInvalidState
	}
	s.logger.Info("google code flow completed")
	return MessageResponse{Message: "Signed in with Google.", RedirectURL: auth.DefaultAfterLogin}, nil
}
