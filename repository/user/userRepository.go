package user

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LivrariumProject/back-end/model"
)

const userCols = `id, name, email, password_hash, created_at`

var dialect = goqu.Dialect("postgres")

type Filters struct {
	Name  *string
	Email *string
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

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, u.Name, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete user")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE lower(email) = lower($1)`
	return r.getOne(ctx, q, email)
}

func (r *repo) ByName(ctx context.Context, name string) ([]model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE name ILIKE '%' || $1 || '%' ORDER BY name ASC`
	var out []model.User
	if err := r.db.SelectContext(ctx, &out, q, name); err != nil {
		return nil, errors.Wrap(err, "select users by name")
	}
	return out, nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users ORDER BY id ASC`
	var out []model.User
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, errors.Wrap(err, "select users")
	}
	return out, nil
}

func (r *repo) Search(ctx context.Context, f Filters) ([]model.User, error) {
	ds := dialect.From("users").
		Select(goqu.L(userCols)).
		Order(goqu.C("id").Asc())

	if f.Name != nil {
		ds = ds.Where(goqu.C("name").ILike("%" + *f.Name + "%"))
	}
	if f.Email != nil {
		ds = ds.Where(goqu.C("email").ILike("%" + *f.Email + "%"))
	}

	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build user search query")
	}
	var out []model.User
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "search users")
	}
	return out, nil
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return n, nil
}

func (r *repo) getOne(ctx context.Context, q string, arg interface{}) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get user")
	}
	return &u, nil
}
