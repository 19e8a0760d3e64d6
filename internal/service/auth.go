package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/remote"
	"github.com/five82/ava/internal/repository"
	"github.com/five82/ava/internal/state"
)

// TokenSink receives the session token of a restored user.
type TokenSink interface {
	SetToken(token string)
}

// AuthService signs the user in. Remote authentication runs only when no user
// is cached; the cached user is always what ends up in the slot.
type AuthService struct {
	eng      *Engine
	remote   remote.Authenticator
	users    *repository.Repository[model.User]
	settings *repository.Repository[model.Setting]
	tokens   TokenSink
	holdBack time.Duration

	user    *state.Slot[model.User]
	setting *state.Slot[model.Setting]
}

// AuthDeps are the collaborators of AuthService.
type AuthDeps struct {
	Remote   remote.Authenticator
	Users    *repository.Repository[model.User]
	Settings *repository.Repository[model.Setting]
	Tokens   TokenSink
	HoldBack time.Duration
}

func NewAuthService(eng *Engine, deps AuthDeps) *AuthService {
	return &AuthService{
		eng:      eng,
		remote:   deps.Remote,
		users:    deps.Users,
		settings: deps.Settings,
		tokens:   deps.Tokens,
		holdBack: deps.HoldBack,
		user:     state.Bind(eng.Store(), state.UserPath),
		setting:  state.Bind(eng.Store(), state.SettingPath),
	}
}

// Login signs in with email and password.
func (s *AuthService) Login(email, password string) *Request {
	creds := remote.Credentials{Email: strings.TrimSpace(email), Password: password}
	return run(s.eng, s.user, func() *Request { return s.Login(email, password) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[model.User] {
			if err := validateCredentials(creds.Email, creds.Password); err != nil {
				return loadable.Failed[model.User](err)
			}
			return s.guarded(ctx, func(ctx context.Context) (remote.AuthResult, error) {
				return s.remote.Login(ctx, creds)
			})
		})
}

// Register creates an account and signs in.
func (s *AuthService) Register(reg remote.Registration) *Request {
	reg.Email = strings.TrimSpace(reg.Email)
	return run(s.eng, s.user, func() *Request { return s.Register(reg) },
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[model.User] {
			if err := validateCredentials(reg.Email, reg.Password); err != nil {
				return loadable.Failed[model.User](err)
			}
			return s.guarded(ctx, func(ctx context.Context) (remote.AuthResult, error) {
				return s.remote.Register(ctx, reg)
			})
		})
}

// CheckLoggedStatus loads the cached user, if any, without a remote call.
func (s *AuthService) CheckLoggedStatus() *Request {
	return run(s.eng, s.user, s.CheckLoggedStatus,
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[model.User] {
			return s.loadUser(ctx)
		})
}

// LoadSetting loads the cached settings of the signed-in user.
func (s *AuthService) LoadSetting() *Request {
	return run(s.eng, s.setting, s.LoadSetting,
		func(ctx context.Context, _ *loadable.Handle) loadable.Loadable[model.Setting] {
			items, err := s.settings.Cached(ctx, 0)
			if err != nil {
				return loadable.Failed[model.Setting](err)
			}
			if len(items) == 0 {
				return loadable.Failed[model.Setting](averrors.NotFound(string(model.KindSetting), 0))
			}
			return loadable.Loaded(items[0])
		})
}

// guarded skips authenticate when a user is cached, otherwise persists its
// result, then loads the cached user.
func (s *AuthService) guarded(ctx context.Context, authenticate func(context.Context) (remote.AuthResult, error)) loadable.Loadable[model.User] {
	n, err := s.users.Count(ctx, 0)
	if err != nil {
		return loadable.Failed[model.User](err)
	}
	if n == 0 {
		start := time.Now()
		res, err := authenticate(ctx)
		holdBack(ctx, start, s.holdBack)
		if err != nil {
			return loadable.Failed[model.User](err)
		}
		if _, err := s.users.Upsert(ctx, res.User); err != nil {
			return loadable.Failed[model.User](err)
		}
		if _, err := s.settings.Upsert(ctx, res.Setting); err != nil {
			return loadable.Failed[model.User](err)
		}
	}
	return s.loadUser(ctx)
}

func (s *AuthService) loadUser(ctx context.Context) loadable.Loadable[model.User] {
	users, err := s.users.Cached(ctx, 0)
	if err != nil {
		return loadable.Failed[model.User](err)
	}
	if len(users) == 0 {
		return loadable.Failed[model.User](averrors.NotFound(string(model.KindUser), 0))
	}
	u := users[0]
	if s.tokens != nil && u.Token != "" {
		s.tokens.SetToken(u.Token)
	}
	return loadable.Loaded(u)
}

func validateCredentials(email, password string) error {
	if email == "" {
		return averrors.Validation("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return averrors.Validation("email", "email is not valid")
	}
	if password == "" {
		return averrors.Validation("password", "password is required")
	}
	return nil
}
