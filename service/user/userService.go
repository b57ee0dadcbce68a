package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/LivrariumProject/back-end/model"
	urepo "github.com/LivrariumProject/back-end/repository/user"
	"github.com/LivrariumProject/back-end/util/hash"
)

type ErrCode string

const (
	ErrNotFound   ErrCode = "USER_NOT_FOUND"
	ErrEmailTaken ErrCode = "EMAIL_TAKEN"
	ErrBadInput   ErrCode = "BAD_INPUT"
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

// Filters = repository shape
type Filters = urepo.Filters

type Stats struct {
	Total int64 `json:"total"`
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) (bool, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByName(ctx context.Context, name string) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Search(ctx context.Context, f Filters) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
}

type Service interface {
	Create(ctx context.Context, name, email, password string) (*model.User, error)
	Update(ctx context.Context, id int64, name, email, password string) (*model.User, error)
	Delete(ctx context.Context, id int64) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByName(ctx context.Context, name string) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Search(ctx context.Context, f Filters) ([]model.User, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if len(name) < 2 || email == "" || len(password) < 6 {
		return nil, makeErr(ErrBadInput)
	}

	existing, err := s.r.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, makeErr(ErrEmailTaken)
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{Name: name, Email: strings.ToLower(email), PasswordHash: hashed}
	if err := s.r.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, id int64, name, email, password string) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}

	if name != "" {
		if len(strings.TrimSpace(name)) < 2 {
			return nil, makeErr(ErrBadInput)
		}
		u.Name = strings.TrimSpace(name)
	}
	if email != "" && !strings.EqualFold(email, u.Email) {
		other, err := s.r.ByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, makeErr(ErrEmailTaken)
		}
		u.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if password != "" {
		if len(password) < 6 {
			return nil, makeErr(ErrBadInput)
		}
		hashed, err := hash.HashPassword(password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hashed
	}

	if err := s.r.Update(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	if _, err := s.r.Delete(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	return u, nil
}

func (s *service) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.r.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrNotFound)
	}
	return u, nil
}

func (s *service) ByName(ctx context.Context, name string) ([]model.User, error) {
	return s.r.ByName(ctx, name)
}

func (s *service) List(ctx context.Context) ([]model.User, error) { return s.r.List(ctx) }

func (s *service) Search(ctx context.Context, f Filters) ([]model.User, error) {
	return s.r.Search(ctx, f)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	n, err := s.r.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Total: n}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
