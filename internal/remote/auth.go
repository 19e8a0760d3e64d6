package remote

import (
	"context"
	"net/http"

	"github.com/five82/ava/internal/model"
)

const (
	endpointLogin    = "user/login"
	endpointRegister = "user/register/"
)

// AuthResult is the payload of a successful login or registration.
type AuthResult struct {
	Auth    bool          `json:"auth"`
	Token   string        `json:"token"`
	ID      int64         `json:"id"`
	User    model.User    `json:"user"`
	Setting model.Setting `json:"userSetting"`
}

// normalize fills the user from the flat id/token fields older servers send.
func (r AuthResult) normalize(email string) AuthResult {
	if r.User.ID == 0 {
		r.User.ID = r.ID
	}
	if r.User.Token == "" {
		r.User.Token = r.Token
	}
	if r.User.Email == "" {
		r.User.Email = email
	}
	if r.Setting.UserID == 0 {
		r.Setting.UserID = r.User.ID
	}
	return r
}

// Credentials identify a user at login.
type Credentials struct {
	Email    string
	Password string
}

// Registration carries the fields of a new account.
type Registration struct {
	Nickname     string `json:"nickname"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	MobileNumber string `json:"mobileNumber,omitempty"`
}

// Authenticator performs remote authentication.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (AuthResult, error)
	Register(ctx context.Context, reg Registration) (AuthResult, error)
}

var _ Authenticator = (*Client)(nil)

type loginRequest struct {
	User struct {
		Username string `json:"username"`
		Password string `json:"password"`
	} `json:"user"`
}

// Login authenticates and remembers the returned token for later requests.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var body loginRequest
	body.User.Username = creds.Email
	body.User.Password = creds.Password

	res, err := call[AuthResult](ctx, c, http.MethodPost, endpointLogin, endpointLogin, nil, body)
	if err != nil {
		return AuthResult{}, err
	}
	res = res.normalize(creds.Email)
	c.SetToken(res.User.Token)
	return res, nil
}

// Register creates an account and remembers the returned token.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	res, err := call[AuthResult](ctx, c, http.MethodPost, endpointRegister, endpointRegister, nil, reg)
	if err != nil {
		return AuthResult{}, err
	}
	res = res.normalize(reg.Email)
	if res.User.Nickname == "" {
		res.User.Nickname = reg.Nickname
	}
	c.SetToken(res.User.Token)
	return res, nil
}
