package auth

import (
	"context"
	"errors"
	"time"

	"github.com/LivrariumProject/back-end/model"
	"github.com/LivrariumProject/back-end/util/hash"
	jwtutil "github.com/LivrariumProject/back-end/util/jwt"
)

type ErrCode string

const (
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrNoToken      ErrCode = "NO_TOKEN"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const tokenTTLHours = 24

type Users interface {
	ByEmail(ctx context.Context, email string) (*model.User, error)
}

type Service interface {
	// Login checks the password and issues a bearer token.
	Login(ctx context.Context, email, password string) (*model.User, string, error)

	// Logout puts the token on the blacklist until it would expire anyway.
	Logout(token string) error

	// Revoked reports whether a token has been logged out.
	Revoked(token string) bool
}

type service struct {
	users  Users
	secret string
	bl     *Blacklist
}

func New(users Users, secret string, bl *Blacklist) Service {
	return &service{users: users, secret: secret, bl: bl}
}

func (s *service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}
	token, err := jwtutil.Issue(s.secret, u.ID, u.Name, tokenTTLHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Logout(token string) error {
	token = jwtutil.StripBearer(token)
	if token == "" {
		return makeErr(ErrNoToken)
	}

	// Keep revoked tokens no longer than their own lifetime.
	exp := time.Now().Add(tokenTTLHours * time.Hour)
	if claims, err := jwtutil.ParseAuth(token, s.secret); err == nil {
		if t, err := claims.GetExpirationTime(); err == nil && t != nil {
			exp = t.Time
		}
	}
	s.bl.Add(token, exp)
	return nil
}

func (s *service) Revoked(token string) bool {
	return s.bl.Contains(jwtutil.StripBearer(token))
}
