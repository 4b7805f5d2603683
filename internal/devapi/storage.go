package devapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/storefront/pkg/catalog"
	serrors "github.com/yourusername/storefront/pkg/errors"
)

// Errors returned by UserStore.
//
// UserStore 返回的错误。
var (
	ErrUserExists         = errors.New("devapi: email already registered")
	ErrInvalidCredentials = errors.New("devapi: invalid email or password")
)

// SampleCategories are the categories of the built-in sample catalog.
//
// SampleCategories 是内置样例数据的分类。
var SampleCategories = []string{"electronics", "jewelery", "men's clothing", "women's clothing"}

var sampleNames = map[string][]string{
	"electronics":      {"Wireless Headphones", "Portable SSD", "Smart Watch", "Bluetooth Speaker", "USB-C Hub"},
	"jewelery":         {"Silver Ring", "Gold Necklace", "Pearl Earrings", "Charm Bracelet"},
	"men's clothing":   {"Slim Fit Shirt", "Cotton Jacket", "Casual T-Shirt", "Wool Sweater"},
	"women's clothing": {"Rain Jacket", "Summer Dress", "Knit Cardigan", "Short Sleeve Top"},
}

var sampleOrigins = []string{"Spain", "Italy", "Portugal", "", "Germany"}

// ProductStorage simulates the product database with an in-memory map.
// Every access waits for the configured latency, which makes response
// ordering observable to clients.
//
// ProductStorage 用内存映射模拟产品数据库。
// 每次访问都会等待配置的延迟，使客户端能够观察到响应的先后顺序。
type ProductStorage struct {
	mu            sync.RWMutex
	products      map[int]catalog.Product
	order         []int
	accessLatency time.Duration
}

// NewProductStorage creates a storage holding products.
//
// Parameters:
//   - products: Initial catalog; a later duplicate ID replaces an earlier one
//   - latency: Delay applied to every access, zero for none
//
// Returns:
//   - *ProductStorage: A new storage instance
//
// NewProductStorage 创建保存 products 的存储。
//
// 参数:
//   - products: 初始目录，重复 ID 以后出现的为准
//   - latency: 每次访问的延迟，为零表示无延迟
//
// 返回:
//   - *ProductStorage: 一个新的存储实例
func NewProductStorage(products []catalog.Product, latency time.Duration) *ProductStorage {
	s := &ProductStorage{
		products:      make(map[int]catalog.Product, len(products)),
		accessLatency: latency,
	}
	for _, p := range products {
		if _, dup := s.products[p.ID]; !dup {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = p
	}
	sort.Ints(s.order)
	return s
}

// SampleProducts generates n deterministic sample products with IDs 1..n.
//
// SampleProducts 生成 ID 为 1..n 的 n 个确定性样例产品。
func SampleProducts(n int) []catalog.Product {
	products := make([]catalog.Product, 0, n)
	unit := decimal.RequireFromString("10.99")
	for i := 1; i <= n; i++ {
		category := SampleCategories[i%len(SampleCategories)]
		names := sampleNames[category]
		name := names[(i/len(SampleCategories))%len(names)]
		products = append(products, catalog.Product{
			ID:          i,
			Name:        fmt.Sprintf("%s %d", name, i),
			Description: fmt.Sprintf("%s from the %s collection. Item number %d of the sample catalog.", name, category, i),
			Price:       unit.Mul(decimal.NewFromInt(int64(i%20 + 1))),
			ImageURL:    fmt.Sprintf("/static/img/products/%d.jpg", i),
			Category:    category,
			Origin:      sampleOrigins[i%len(sampleOrigins)],
			Rating: catalog.Rating{
				Rate:  float64(10+(i*7)%41) / 10,
				Count: i * 3,
			},
		})
	}
	return products
}

// LoadSeedFile reads a JSON array of products. Every product needs a positive ID.
//
// Parameters:
//   - path: Path to the JSON file
//
// Returns:
//   - []catalog.Product: The products in file order
//   - error: Read, parse or validation error
//
// LoadSeedFile 读取产品 JSON 数组，每个产品都需要正整数 ID。
//
// 参数:
//   - path: JSON 文件路径
//
// 返回:
//   - []catalog.Product: 按文件顺序排列的产品
//   - error: 读取、解析或校验错误
func LoadSeedFile(path string) ([]catalog.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var products []catalog.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	for i, p := range products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("seed product %d has invalid id %d", i, p.ID)
		}
	}
	return products, nil
}

// GetProduct returns the product with the given ID, or serrors.ErrNotFound.
//
// GetProduct 按 ID 获取产品，不存在时返回 serrors.ErrNotFound。
func (s *ProductStorage) GetProduct(ctx context.Context, id int) (catalog.Product, error) {
	if err := s.wait(ctx); err != nil {
		return catalog.Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return catalog.Product{}, serrors.ErrNotFound
	}
	return product, nil
}

// Find returns the products matching query and category, ordered by ID.
// The query matches name or description case-insensitively; the category
// must match exactly, ignoring case. Empty values match everything.
//
// Find 返回匹配查询词和分类的产品，按 ID 排序。
// 查询词不区分大小写地匹配名称或描述，分类忽略大小写精确匹配，空值匹配全部。
func (s *ProductStorage) Find(ctx context.Context, query, category string) ([]catalog.Product, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	query = strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]catalog.Product, 0)
	for _, id := range s.order {
		p := s.products[id]
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

// Categories returns the distinct non-empty categories, sorted.
//
// Categories 返回去重排序后的非空分类列表。
func (s *ProductStorage) Categories(ctx context.Context) ([]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range s.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// Len returns the number of products.
//
// Len 返回产品数量。
func (s *ProductStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// wait 模拟访问延迟，可被上下文取消
func (s *ProductStorage) wait(ctx context.Context) error {
	if s.accessLatency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.accessLatency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// UserStore keeps accounts in memory. Passwords are stored as bcrypt hashes.
//
// UserStore 在内存中保存用户，密码以 bcrypt 哈希保存。
type UserStore struct {
	mu    sync.RWMutex
	users map[string]User
	cost  int
}

// NewUserStore creates an empty user store.
//
// NewUserStore 创建空的用户存储。
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]User),
		cost:  bcrypt.DefaultCost,
	}
}

// Register adds an account. Emails are compared case-insensitively.
//
// Returns:
//   - User: The stored account
//   - error: ErrUserExists when the email is taken
//
// Register 添加用户，邮箱比较不区分大小写。
//
// 返回:
//   - User: 保存的用户
//   - error: 邮箱已被使用时返回 ErrUserExists
func (u *UserStore) Register(email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return User{}, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.users[email]; ok {
		return User{}, ErrUserExists
	}
	user := User{Email: email, Name: displayName(email), PasswordHash: string(hash)}
	u.users[email] = user
	return user, nil
}

// Authenticate checks an email and password pair. Google-only accounts
// have no password and never authenticate here.
//
// Authenticate 校验邮箱和密码。仅通过 Google 登录的用户没有密码，无法在此通过校验。
func (u *UserStore) Authenticate(email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u.mu.RLock()
	user, ok := u.users[email]
	u.mu.RUnlock()

	if !ok || user.PasswordHash == "" {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertGoogle records an account that signed in with Google.
//
// UpsertGoogle 记录通过 Google 登录的用户。
func (u *UserStore) UpsertGoogle(email, name string) User {
	email = strings.ToLower(strings.TrimSpace(email))

	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[email]
	if !ok {
		user = User{Email: email, Name: name}
	}
	if user.Name == "" {
		user.Name = displayName(email)
	}
	user.Google = true
	u.users[email] = user
	return user
}

func displayName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
