package purchase

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LivrariumProject/back-end/model"
)

const purchaseCols = `id, user_id, book_id, price, payment_method, payment_status, purchase_date`

var dialect = goqu.Dialect("postgres")

type Filters struct {
	UserID        *int64
	BookID        *int64
	PaymentStatus *model.PaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

type Repo interface {
	Create(ctx context.Context, p *model.Purchase) error
	ByID(ctx context.Context, id int64) (*model.Purchase, error)
	List(ctx context.Context) ([]model.Purchase, error)
	ByUser(ctx context.Context, userID int64) ([]model.Purchase, error)
	ByBook(ctx context.Context, bookID int64) ([]model.Purchase, error)
	Search(ctx context.Context, f Filters) ([]model.Purchase, error)
	Delete(ctx context.Context, id int64) (bool, error)
	UserHasPurchased(ctx context.Context, userID, bookID int64) (bool, error)

	// SetPaymentStatus flips the status only when the current value matches
	// from; reports whether a row changed.
	SetPaymentStatus(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error)

	Count(ctx context.Context) (int64, error)
	CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, p *model.Purchase) error {
	const q = `
		INSERT INTO purchases (user_id, book_id, price, payment_method, payment_status, purchase_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, q,
		p.UserID, p.BookID, p.Price, p.PaymentMethod, p.PaymentStatus, p.PurchaseDate,
	).Scan(&p.ID)
	return errors.Wrap(err, "insert purchase")
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Purchase, error) {
	const q = `SELECT ` + purchaseCols + ` FROM purchases WHERE id = $1`
	var p model.Purchase
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get purchase")
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context) ([]model.Purchase, error) {
	const q = `SELECT ` + purchaseCols + ` FROM purchases ORDER BY purchase_date DESC, id DESC`
	return r.selectMany(ctx, q)
}

func (r *repo) ByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	const q = `SELECT ` + purchaseCols + ` FROM purchases WHERE user_id = $1 ORDER BY purchase_date DESC, id DESC`
	return r.selectMany(ctx, q, userID)
}

func (r *repo) ByBook(ctx context.Context, bookID int64) ([]model.Purchase, error) {
	const q = `SELECT ` + purchaseCols + ` FROM purchases WHERE book_id = $1 ORDER BY purchase_date DESC, id DESC`
	return r.selectMany(ctx, q, bookID)
}

func (r *repo) Search(ctx context.Context, f Filters) ([]model.Purchase, error) {
	ds := dialect.From("purchases").
		Select(goqu.L(purchaseCols)).
		Order(goqu.C("purchase_date").Desc())

	if f.UserID != nil {
		ds = ds.Where(goqu.C("user_id").Eq(*f.UserID))
	}
	if f.BookID != nil {
		ds = ds.Where(goqu.C("book_id").Eq(*f.BookID))
	}
	if f.PaymentStatus != nil {
		ds = ds.Where(goqu.C("payment_status").Eq(string(*f.PaymentStatus)))
	}
	if f.StartDate != nil {
		ds = ds.Where(goqu.C("purchase_date").Gte(*f.StartDate))
	}
	if f.EndDate != nil {
		ds = ds.Where(goqu.C("purchase_date").Lte(*f.EndDate))
	}

	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build purchase search query")
	}
	return r.selectMany(ctx, q, args...)
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete purchase")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) UserHasPurchased(ctx context.Context, userID, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM purchases WHERE user_id = $1 AND book_id = $2)`
	var ok bool
	if err := r.db.GetContext(ctx, &ok, q, userID, bookID); err != nil {
		return false, errors.Wrap(err, "check purchase")
	}
	return ok, nil
}

func (r *repo) SetPaymentStatus(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error) {
	const q = `UPDATE purchases SET payment_status = $3 WHERE id = $1 AND payment_status = $2`
	res, err := r.db.ExecContext(ctx, q, id, from, to)
	if err != nil {
		return false, errors.Wrap(err, "set purchase payment status")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM purchases`)
}

func (r *repo) CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error) {
	var n int64
	const q = `SELECT COUNT(*) FROM purchases WHERE payment_status = $1`
	if err := r.db.GetContext(ctx, &n, q, status); err != nil {
		return 0, errors.Wrap(err, "count purchases by status")
	}
	return n, nil
}

func (r *repo) TotalRevenue(ctx context.Context) (float64, error) {
	const q = `SELECT COALESCE(SUM(price), 0) FROM purchases WHERE payment_status = 'completed'`
	var sum float64
	if err := r.db.GetContext(ctx, &sum, q); err != nil {
		return 0, errors.Wrap(err, "sum purchase revenue")
	}
	return sum, nil
}

func (r *repo) selectMany(ctx context.Context, q string, args ...interface{}) ([]model.Purchase, error) {
	var out []model.Purchase
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "select purchases")
	}
	return out, nil
}

func (r *repo) count(ctx context.Context, q string) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, q); err != nil {
		return 0, errors.Wrap(err, "count purchases")
	}
	return n, nil
}
