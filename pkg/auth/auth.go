// Package auth implements the storefront's login, registration and Google
// sign-in flows on top of the API client. Every outcome is surfaced through a
// notifier and, on success, a path to redirect to.
//
// Package auth 基于API客户端实现店面的登录、注册和Google登录流程。
// 每个结果都通过通知器呈现，成功时还会给出重定向路径。
package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	serrors "github.com/yourusername/storefront/pkg/errors"
	"github.com/yourusername/storefront/pkg/notify"
)

// Default endpoints and redirect targets.
//
// 默认的端点和重定向目标。
const (
	LoginPath          = "/api/login"
	RegisterPath       = "/api/register"
	GoogleLoginPath    = "/api/auth/google-login"
	GoogleCallbackPath = "/api/auth/google/callback"

	DefaultAfterLogin    = "/products"
	DefaultAfterRegister = "/login"
)

// Poster sends form and JSON posts and decodes the JSON reply.
// *client.Client implements it.
//
// Poster 发送表单和JSON请求并解码JSON响应。*client.Client实现了该接口。
type Poster interface {
	PostForm(ctx context.Context, path string, form url.Values, out interface{}) error
	PostJSON(ctx context.Context, path string, body, out interface{}) error
}

// Result is the server's reply to an auth request plus the resolved redirect.
//
// Result 是服务器对认证请求的响应以及解析后的重定向路径。
type Result struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Service runs the auth flows.
//
// Service 执行认证流程。
type Service struct {
	api           Poster
	notifier      notify.Notifier
	logger        *zap.Logger
	afterLogin    string
	afterRegister string
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRedirects overrides the paths used after login and registration.
func WithRedirects(afterLogin, afterRegister string) Option {
	return func(s *Service) {
		if afterLogin != "" {
			s.afterLogin = afterLogin
		}
		if afterRegister != "" {
			s.afterRegister = afterRegister
		}
	}
}

// NewService creates an auth service.
//
// NewService 创建认证服务。
func NewService(api Poster, opts ...Option) *Service {
	s := &Service{
		api:           api,
		notifier:      notify.Discard,
		logger:        zap.NewNop(),
		afterLogin:    DefaultAfterLogin,
		afterRegister: DefaultAfterRegister,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login posts the login form.
//
// Login 提交登录表单。
//
// Returns:
//   - Result: Server message and the path to redirect to
//   - error: API or network error, already notified
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	form := url.Values{"email": {email}, "password": {password}}
	var res Result
	if err := s.api.PostForm(ctx, LoginPath, form, &res); err != nil {
		return Result{}, s.fail("Login failed", err)
	}
	res.RedirectURL = s.afterLogin
	s.notifier.Notify("Login successful. Redirecting...", notify.Success)
	s.logger.Info("login succeeded", zap.String("email", email))
	return res, nil
}

// Register posts the registration form. The trimmed password and
// confirmation must match; otherwise no request is made.
//
// Register 提交注册表单。去除空白后的密码和确认密码必须一致，否则不发送请求。
func (s *Service) Register(ctx context.Context, email, password, confirm string) (Result, error) {
	password = strings.TrimSpace(password)
	confirm = strings.TrimSpace(confirm)
	if password != confirm {
		s.notifier.Notify("Passwords do not match.", notify.Error)
		return Result{}, serrors.ErrPasswordMismatch
	}

	form := url.Values{"email": {email}, "password": {password}, "confirm_password": {confirm}}
	var res Result
	if err := s.api.PostForm(ctx, RegisterPath, form, &res); err != nil {
		return Result{}, s.fail("Registration failed", err)
	}
	msg := res.Message
	if msg == "" {
		msg = "Registration successful. Please log in."
	}
	res.RedirectURL = s.afterRegister
	s.notifier.Notify(msg, notify.Success)
	s.logger.Info("registration succeeded", zap.String("email", email))
	return res, nil
}

// GoogleCredentialLogin sends a Google ID token to the backend. The token is
// only checked for JWT shape here; the backend verifies it.
//
// GoogleCredentialLogin 将Google ID令牌发送到后端。这里只检查JWT格式，由后端负责验证。
func (s *Service) GoogleCredentialLogin(ctx context.Context, credential string) (Result, error) {
	claims, err := credentialClaims(credential)
	if err != nil {
		s.notifier.Notify("Google sign-in failed: no token received.", notify.Error)
		return Result{}, err
	}
	if email, ok := claims["email"].(string); ok {
		s.logger.Debug("google credential received", zap.String("email", email))
	}

	var res Result
	if err := s.api.PostJSON(ctx, GoogleLoginPath, map[string]string{"id_token": credential}, &res); err != nil {
		return Result{}, s.fail("Google sign-in failed", err)
	}
	return s.redirect(res), nil
}

func (s *Service) redirect(res Result) Result {
	if res.RedirectURL == "" {
		res.RedirectURL = s.afterLogin
	}
	s.notifier.Notify("Google sign-in successful. Redirecting...", notify.Success)
	return res
}

func (s *Service) fail(action string, err error) error {
	s.logger.Warn(strings.ToLower(action), zap.Error(err))
	if serrors.IsNetwork(err) {
		s.notifier.Notify(action+": network error.", notify.Error)
	} else {
		s.notifier.Notify(action+": "+serrors.UserMessage(err), notify.Error)
	}
	return err
}

func credentialClaims(credential string) (jwt.MapClaims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, serrors.ErrMissingCredential
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", serrors.ErrMissingCredential, err)
	}
	return claims, nil
}
