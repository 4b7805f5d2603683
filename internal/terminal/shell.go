package terminal

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/yourusername/storefront/internal/history"
	"github.com/yourusername/storefront/internal/metrics"
	"github.com/yourusername/storefront/pkg/auth"
	"github.com/yourusername/storefront/pkg/catalog"
)

// Page paths the shell routes.
//
// Shell 路由的页面路径。
const (
	ProductsPath = "/products"
	LoginPage    = "/login"
	RegisterPage = "/register"
)

type page int

const (
	pageNone page = iota
	pageProducts
	pageDetail
	pageAuth
)

const helpText = `commands:
  search TERM        search products
  category NAME      filter by category
  pick N             choose entry N of the category menu
  all                show every category
  menu               open or close the category menu
  next | prev        change page
  page N             go to page N
  reload             repeat the current request
  open ID            show product ID
  products           back to the product list
  cart               add the current product to the cart
  back | forward     walk the history
  login EMAIL PASSWORD
  register EMAIL PASSWORD CONFIRM
  google TOKEN       sign in with a Google ID token
  google-url         print the Google consent URL
  google-callback CODE STATE
  stats              print fetch counters
  quit
`

// Shell dispatches typed commands to the catalog controller, the detail view
// and the auth service. The active page is chosen from the current history
// path, the way a browser initializes a page from its location.
//
// Shell 把命令行输入分派给目录控制器、详情视图和认证服务。
// 页面按历史记录当前路径选择，与浏览器中按路径初始化页面的方式一致。
type Shell struct {
	out        io.Writer
	renderer   *Renderer
	history    *history.Memory
	controller *catalog.Controller
	detail     *catalog.DetailView
	auth       *auth.Service
	google     *auth.CodeFlow
	metrics    *metrics.Metrics
	page       page
}

// ShellOption configures a Shell.
//
// ShellOption 配置 Shell。
type ShellOption func(*Shell)

// WithAuth enables the login, register and google commands. A nil flow
// disables google-url and google-callback.
//
// WithAuth 启用登录、注册和google命令，flow 为 nil 时不支持授权码流程。
func WithAuth(svc *auth.Service, flow *auth.CodeFlow) ShellOption {
	return func(s *Shell) {
		s.auth = svc
		s.google = flow
	}
}

// WithStats enables the stats command.
//
// WithStats 启用 stats 命令。
func WithStats(m *metrics.Metrics) ShellOption {
	return func(s *Shell) {
		s.metrics = m
	}
}

// NewShell creates a shell. The controller must have been created with hist
// as its history.
//
// Parameters:
//   - out: Destination of command output
//   - renderer: Renderer shared with the controller and detail view
//   - hist: Location history
//   - controller: Catalog controller for the product list
//   - detail: Product detail view
//   - opts: Functional options
//
// Returns:
//   - *Shell: A new shell; call Route to show the first page
//
// NewShell 创建命令分派器。controller 必须使用同一个 hist 创建。
//
// 参数:
//   - out: 命令输出目标
//   - renderer: 与控制器和详情视图共享的渲染器
//   - hist: 位置历史
//   - controller: 产品列表的目录控制器
//   - detail: 产品详情视图
//   - opts: 函数式选项
//
// 返回:
//   - *Shell: 新的Shell，调用Route显示第一个页面
func NewShell(out io.Writer, renderer *Renderer, hist *history.Memory, controller *catalog.Controller, detail *catalog.DetailView, opts ...ShellOption) *Shell {
	s := &Shell{
		out:        out,
		renderer:   renderer,
		history:    hist,
		controller: controller,
		detail:     detail,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Route shows the page for the current path and waits for it to load.
// Returning to the product list reuses the controller through Navigate.
//
// Route 根据当前路径显示对应页面，并等待加载结束。回到产品列表时通过Navigate复用控制器。
func (s *Shell) Route(ctx context.Context) {
	entry := s.history.Current()
	switch {
	case entry.Path == ProductsPath:
		if s.page == pageProducts {
			s.controller.Navigate(ctx)
		} else {
			s.page = pageProducts
			s.controller.Initialize(ctx)
		}
	case strings.HasPrefix(entry.Path, "/product/"):
		s.leaveProducts()
		s.page = pageDetail
		_ = s.detail.Load(ctx, catalog.ProductIDFromPath(entry.Path))
	case entry.Path == LoginPage:
		s.leaveProducts()
		s.page = pageAuth
		fmt.Fprintln(s.out, "Log in with: login EMAIL PASSWORD")
	case entry.Path == RegisterPage:
		s.leaveProducts()
		s.page = pageAuth
		fmt.Fprintln(s.out, "Register with: register EMAIL PASSWORD CONFIRM")
	default:
		s.leaveProducts()
		s.page = pageNone
		fmt.Fprintf(s.out, "Page %s not found.\n", entry.Path)
	}
	s.controller.Wait()
}

func (s *Shell) leaveProducts() {
	if s.page == pageProducts {
		s.controller.Close()
	}
}

// Close releases the controller.
//
// Close 释放控制器。
func (s *Shell) Close() {
	s.leaveProducts()
	s.page = pageNone
}

// Execute runs one command line. It returns false when the user quits.
//
// Parameters:
//   - ctx: Context for the requests the command issues
//   - line: Command and arguments separated by spaces
//
// Returns:
//   - bool: false after quit, true otherwise
//
// Execute 执行一行命令，返回 false 表示退出。
//
// 参数:
//   - ctx: 命令发出的请求所用的上下文
//   - line: 以空格分隔的命令和参数
//
// 返回:
//   - bool: quit 后为 false，否则为 true
func (s *Shell) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	if cmd != "menu" && cmd != "category" && cmd != "pick" {
		s.renderer.Dropdown().Outside()
	}

	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprint(s.out, helpText)
	case "search":
		s.search(ctx, strings.Join(args, " "))
	case "category":
		if len(args) == 0 {
			fmt.Fprintln(s.out, "usage: category NAME")
			break
		}
		s.renderer.Dropdown().Close()
		s.onProducts(func() { s.controller.SelectCategory(ctx, strings.Join(args, " ")) })
	case "pick":
		s.pick(ctx, args)
	case "all":
		s.onProducts(func() { s.controller.ClearCategory(ctx) })
	case "menu":
		if s.renderer.Dropdown().Toggle() {
			s.renderer.PrintMenu()
		}
	case "next":
		s.onProducts(func() { s.controller.Next(ctx) })
	case "prev":
		s.onProducts(func() { s.controller.Prev(ctx) })
	case "page":
		n, err := strconv.Atoi(firstArg(args))
		if err != nil {
			fmt.Fprintln(s.out, "usage: page N")
			break
		}
		s.onProducts(func() { s.controller.GoToPage(ctx, n) })
	case "reload":
		s.onProducts(func() { s.controller.Reload(ctx) })
	case "open":
		id, err := strconv.Atoi(firstArg(args))
		if err != nil {
			fmt.Fprintln(s.out, "usage: open ID")
			break
		}
		s.navigate(ctx, catalog.ProductPath(id))
	case "products":
		s.navigate(ctx, ProductsPath)
	case "cart":
		if s.page != pageDetail {
			fmt.Fprintln(s.out, "Open a product first.")
			break
		}
		s.detail.AddToCart()
	case "back":
		if s.history.Back() {
			s.Route(ctx)
		}
	case "forward":
		if s.history.Forward() {
			s.Route(ctx)
		}
	case "login", "register", "google", "google-url", "google-callback":
		s.authCommand(ctx, cmd, args)
	case "stats":
		s.stats()
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type help for a list.\n", cmd)
	}
	return true
}

// search 在列表页直接搜索，在其他页面跳转到带查询词的列表页
func (s *Shell) search(ctx context.Context, term string) {
	if s.page == pageProducts {
		s.controller.Search(ctx, term)
		s.controller.Wait()
		return
	}
	q := url.Values{}
	if term = strings.TrimSpace(term); term != "" {
		q.Set(catalog.ParamQuery, term)
	}
	target := ProductsPath
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	s.navigate(ctx, target)
}

func (s *Shell) pick(ctx context.Context, args []string) {
	menu := s.renderer.Menu()
	n, err := strconv.Atoi(firstArg(args))
	if err != nil || n < 0 || n >= len(menu) {
		fmt.Fprintln(s.out, "usage: pick N (see menu)")
		return
	}
	s.renderer.Dropdown().Close()
	s.onProducts(func() { s.controller.Choose(ctx, menu[n]) })
}

func (s *Shell) onProducts(fn func()) {
	if s.page != pageProducts {
		fmt.Fprintln(s.out, "Not on the product list. Type products first.")
		return
	}
	fn()
	s.controller.Wait()
}

func (s *Shell) navigate(ctx context.Context, target string) {
	if err := s.history.Open(target); err != nil {
		fmt.Fprintf(s.out, "Invalid location %q.\n", target)
		return
	}
	s.Route(ctx)
}

func (s *Shell) authCommand(ctx context.Context, cmd string, args []string) {
	if s.auth == nil {
		fmt.Fprintln(s.out, "Sign-in is not configured.")
		return
	}

	var (
		res auth.Result
		err error
	)
	switch cmd {
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "usage: login EMAIL PASSWORD")
			return
		}
		res, err = s.auth.Login(ctx, args[0], args[1])
	case "register":
		if len(args) != 3 {
			fmt.Fprintln(s.out, "usage: register EMAIL PASSWORD CONFIRM")
			return
		}
		res, err = s.auth.Register(ctx, args[0], args[1], args[2])
	case "google":
		res, err = s.auth.GoogleCredentialLogin(ctx, firstArg(args))
	case "google-url":
		if s.google == nil {
			fmt.Fprintln(s.out, "Google sign-in is not configured.")
			return
		}
		authURL, _ := s.google.AuthURL()
		fmt.Fprintln(s.out, authURL)
		return
	case "google-callback":
		if s.google == nil {
			fmt.Fprintln(s.out, "Google sign-in is not configured.")
			return
		}
		if len(args) != 2 {
			fmt.Fprintln(s.out, "usage: google-callback CODE STATE")
			return
		}
		res, err = s.google.Callback(ctx, args[0], args[1])
	}
	// failures were already reported through the notifier
	if err != nil || res.RedirectURL == "" {
		return
	}
	s.navigate(ctx, res.RedirectURL)
}

func (s *Shell) stats() {
	if s.metrics == nil {
		fmt.Fprintln(s.out, "Metrics are disabled.")
		return
	}
	data, err := s.metrics.GetSnapshot().ToJSON()
	if err != nil {
		fmt.Fprintf(s.out, "Failed to read metrics: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, string(data))
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
