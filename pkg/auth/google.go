package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	serrors "github.com/yourusername/storefront/pkg/errors"
	"github.com/yourusername/storefront/pkg/notify"
)

// DefaultStateTTL is how long an issued OAuth state stays valid.
//
// DefaultStateTTL 是已签发OAuth state的有效时长。
const DefaultStateTTL = 10 * time.Minute

// CodeFlow drives the Google authorization code flow. It builds the consent
// URL with a one-time state and forwards the callback code to the backend,
// which performs the token exchange.
//
// CodeFlow 驱动Google授权码流程。它使用一次性state构建授权URL，
// 并把回调中的code转发给后端，由后端完成令牌交换。
type CodeFlow struct {
	svc    *Service
	config *oauth2.Config
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	states map[string]time.Time
}

// NewCodeFlow creates a code flow for the given OAuth client.
//
// NewCodeFlow 为给定的OAuth客户端创建授权码流程。
//
// Parameters:
//   - svc: The auth service used for the callback post and notifications
//   - clientID: Google OAuth client id
//   - redirectURL: Registered redirect URI
//
// Returns:
//   - *CodeFlow: A new code flow
func NewCodeFlow(svc *Service, clientID, redirectURL string) *CodeFlow {
	return &CodeFlow{
		svc: svc,
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Scopes:      []string{"openid", "email", "profile"},
			Endpoint:    google.Endpoint,
		},
		ttl:    DefaultStateTTL,
		now:    time.Now,
		states: make(map[string]time.Time),
	}
}

// AuthURL returns the consent page URL and the state it carries.
//
// AuthURL 返回授权页面URL及其携带的state。
func (f *CodeFlow) AuthURL() (authURL, state string) {
	state = uuid.NewString()

	f.mu.Lock()
	now := f.now()
	for s, exp := range f.states {
		if now.After(exp) {
			delete(f.states, s)
		}
	}
	f.states[state] = now.Add(f.ttl)
	f.mu.Unlock()

	return f.config.AuthCodeURL(state, oauth2.AccessTypeOnline), state
}

// Callback verifies the state and forwards the code to the backend.
// A state is accepted once.
//
// Callback 验证state并将code转发给后端。每个state只接受一次。
func (f *CodeFlow) Callback(ctx context.Context, code, state string) (Result, error) {
	if !f.consume(state) {
		f.svc.notifier.Notify("Google sign-in failed: invalid or expired state.", notify.Error)
		f.svc.logger.Warn("oauth state rejected", zap.String("state", state))
		return Result{}, serrors.ErrInvalidState
	}
	if code == "" {
		f.svc.notifier.Notify("Google sign-in failed: no authorization code.", notify.Error)
		return Result{}, serrors.ErrMissingCredential
	}

	body := map[string]string{
		"code":         code,
		"state":        state,
		"redirect_uri": f.config.RedirectURL,
	}
	var res Result
	if err := f.svc.api.PostJSON(ctx, GoogleCallbackPath, body, &res); err != nil {
		return Result{}, f.svc.fail("Google sign-in failed", err)
	}
	return f.svc.redirect(res), nil
}

func (f *CodeFlow) consume(state string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, ok := f.states[state]
	if !ok {
		return false
	}
	delete(f.states, state)
	return !f.now().After(exp)
}
