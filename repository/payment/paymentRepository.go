package payment

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LivrariumProject/back-end/model"
)

const paymentCols = `id, user_id, amount, payment_method, status, type, transaction_id, payment_date, created_at`

var dialect = goqu.Dialect("postgres")

type Filters struct {
	UserID *int64
	Status *model.PaymentStatus
	Type   *model.PaymentType
	Method *model.PaymentMethod
}

type Repo interface {
	Create(ctx context.Context, p *model.Payment) error
	ByID(ctx context.Context, id int64) (*model.Payment, error)
	List(ctx context.Context) ([]model.Payment, error)
	ByUser(ctx context.Context, userID int64) ([]model.Payment, error)
	ByStatus(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error)
	Search(ctx context.Context, f Filters) ([]model.Payment, error)

	// MarkProcessed finalizes a pending payment; reports whether the row was
	// still pending.
	MarkProcessed(ctx context.Context, id int64, status model.PaymentStatus, transactionID *string, at time.Time) (bool, error)

	// MarkRefunded flips a completed payment to refunded; reports whether the
	// row was still completed.
	MarkRefunded(ctx context.Context, id int64) (bool, error)

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.PaymentStatus) (int64, error)
	SumAmountByStatus(ctx context.Context, status model.PaymentStatus) (float64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, p *model.Payment) error {
	const q = `
		INSERT INTO payments (user_id, amount, payment_method, status, type)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q,
		p.UserID, p.Amount, p.PaymentMethod, p.Status, p.Type,
	).Scan(&p.ID, &p.CreatedAt)
	return errors.Wrap(err, "insert payment")
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE id = $1`
	var p model.Payment
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get payment")
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context) ([]model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments ORDER BY created_at DESC, id DESC`
	return r.selectMany(ctx, q)
}

func (r *repo) ByUser(ctx context.Context, userID int64) ([]model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.selectMany(ctx, q, userID)
}

func (r *repo) ByStatus(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE status = $1 ORDER BY created_at DESC, id DESC`
	return r.selectMany(ctx, q, status)
}

func (r *repo) Search(ctx context.Context, f Filters) ([]model.Payment, error) {
	ds := dialect.From("payments").
		Select(goqu.L(paymentCols)).
		Order(goqu.C("created_at").Desc())

	if f.UserID != nil {
		ds = ds.Where(goqu.C("user_id").Eq(*f.UserID))
	}
	if f.Status != nil {
		ds = ds.Where(goqu.C("status").Eq(string(*f.Status)))
	}
	if f.Type != nil {
		ds = ds.Where(goqu.C("type").Eq(string(*f.Type)))
	}
	if f.Method != nil {
		ds = ds.Where(goqu.C("payment_method").Eq(string(*f.Method)))
	}

	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build payment search query")
	}
	return r.selectMany(ctx, q, args...)
}

func (r *repo) MarkProcessed(ctx context.Context, id int64, status model.PaymentStatus, transactionID *string, at time.Time) (bool, error) {
	const q = `
		UPDATE payments
		SET status = $2, transaction_id = $3, payment_date = $4
		WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, id, status, transactionID, at)
	if err != nil {
		return false, errors.Wrap(err, "mark payment processed")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) MarkRefunded(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE payments SET status = 'refunded' WHERE id = $1 AND status = 'completed'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, errors.Wrap(err, "mark payment refunded")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM payments`); err != nil {
		return 0, errors.Wrap(err, "count payments")
	}
	return n, nil
}

func (r *repo) CountByStatus(ctx context.Context, status model.PaymentStatus) (int64, error) {
	var n int64
	const q = `SELECT COUNT(*) FROM payments WHERE status = $1`
	if err := r.db.GetContext(ctx, &n, q, status); err != nil {
		return 0, errors.Wrap(err, "count payments by status")
	}
	return n, nil
}

func (r *repo) SumAmountByStatus(ctx context.Context, status model.PaymentStatus) (float64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = $1`
	var sum float64
	if err := r.db.GetContext(ctx, &sum, q, status); err != nil {
		return 0, errors.Wrap(err, "sum payments")
	}
	return sum, nil
}

func (r *repo) selectMany(ctx context.Context, q string, args ...interface{}) ([]model.Payment, error) {
	var out []model.Payment
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "select payments")
	}
	return out, nil
}
