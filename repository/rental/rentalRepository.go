// repository/rental/rentalRepository.go
package rental

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LivrariumProject/back-end/model"
)

const rentalCols = `id, user_id, book_id, rental_price, payment_method, payment_status, rental_status, rental_date, due_date, return_date`

var dialect = goqu.Dialect("postgres")

// Filters combine with AND; nil fields impose no constraint.
type Filters struct {
	UserID        *int64
	BookID        *int64
	PaymentStatus *model.PaymentStatus
	RentalStatus  *model.RentalStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

// Tx is the mutation surface available inside a rental transaction. Row
// reads lock with FOR UPDATE so read-check-write sequences cannot interleave.
type Tx interface {
	ByIDForUpdate(ctx context.Context, id int64) (*model.Rental, error)
	MarkReturned(ctx context.Context, id int64, at time.Time) error
	SetPaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error
	ExtendDueDate(ctx context.Context, id int64, due time.Time) error
	OverdueForUpdate(ctx context.Context, now time.Time) ([]model.Rental, error)
	MarkOverdue(ctx context.Context, id int64) error
}

type Repo interface {
	Create(ctx context.Context, rt *model.Rental) error
	ByID(ctx context.Context, id int64) (*model.Rental, error)
	List(ctx context.Context) ([]model.Rental, error)
	ByUser(ctx context.Context, userID int64) ([]model.Rental, error)
	ByBook(ctx context.Context, bookID int64) ([]model.Rental, error)
	Active(ctx context.Context) ([]model.Rental, error)
	ActiveByUser(ctx context.Context, userID int64) ([]model.Rental, error)
	Overdue(ctx context.Context, now time.Time) ([]model.Rental, error)
	Search(ctx context.Context, f Filters) ([]model.Rental, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByRentalStatus(ctx context.Context, status model.RentalStatus) (int64, error)
	CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error)
	TotalRevenue(ctx context.Context) (float64, error)

	// InTx runs fn inside a single transaction, committing when fn returns
	// nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, rt *model.Rental) error {
	const q = `
		INSERT INTO rentals (user_id, book_id, rental_price, payment_method, payment_status, rental_status, rental_date, due_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, q,
		rt.UserID, rt.BookID, rt.RentalPrice, rt.PaymentMethod,
		rt.PaymentStatus, rt.RentalStatus, rt.RentalDate, rt.DueDate,
	).Scan(&rt.ID)
	return errors.Wrap(err, "insert rental")
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals WHERE id = $1`
	var rt model.Rental
	if err := r.db.GetContext(ctx, &rt, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get rental")
	}
	return &rt, nil
}

func (r *repo) List(ctx context.Context) ([]model.Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals ORDER BY rental_date DESC, id DESC`
	return r.selectMany(ctx, q)
}

func (r *repo) ByUser(ctx context.Context, userID int64) ([]model.Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals WHERE user_id = $1 ORDER BY rental_date DESC, id DESC`
	return r.selectMany(ctx, q, userID)
}

func (r *repo) ByBook(ctx context.Context, bookID int64) ([]model.Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals WHERE book_id = $1 ORDER BY rental_date DESC, id DESC`
	return r.selectMany(ctx, q, bookID)
}

// Active and Overdue list soonest-due first.

func (r *repo) Active(ctx context.Context) ([]model.Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals WHERE rental_status = 'active' ORDER BY due_date ASC`
	return r.selectMany(ctx, q)
}

func (r *repo) ActiveByUser(ctx context.Context, userID int64) ([]model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE user_id = $1 AND rental_status = 'active'
		ORDER BY due_date ASC`
	return r.selectMany(ctx, q, userID)
}

func (r *repo) Overdue(ctx context.Context, now time.Time) ([]model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE rental_status = 'active' AND due_date < $1
		ORDER BY due_date ASC`
	return r.selectMany(ctx, q, now)
}

func (r *repo) Search(ctx context.Context, f Filters) ([]model.Rental, error) {
	ds := dialect.From("rentals").
		Select(goqu.L(rentalCols)).
		Order(goqu.C("rental_date").Desc())

	if f.UserID != nil {
		ds = ds.Where(goqu.C("user_id").Eq(*f.UserID))
	}
	if f.BookID != nil {
		ds = ds.Where(goqu.C("book_id").Eq(*f.BookID))
	}
	if f.PaymentStatus != nil {
		ds = ds.Where(goqu.C("payment_status").Eq(string(*f.PaymentStatus)))
	}
	if f.RentalStatus != nil {
		ds = ds.Where(goqu.C("rental_status").Eq(string(*f.RentalStatus)))
	}
	if f.StartDate != nil {
		ds = ds.Where(goqu.C("rental_date").Gte(*f.StartDate))
	}
	if f.EndDate != nil {
		ds = ds.Where(goqu.C("rental_date").Lte(*f.EndDate))
	}

	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build rental search query")
	}
	return r.selectMany(ctx, q, args...)
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete rental")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM rentals`)
}

func (r *repo) CountByRentalStatus(ctx context.Context, status model.RentalStatus) (int64, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM rentals WHERE rental_status = $1`, status)
}

func (r *repo) CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error) {
	return r.countWhere(ctx, `SELECT COUNT(*) FROM rentals WHERE payment_status = $1`, status)
}

func (r *repo) TotalRevenue(ctx context.Context) (float64, error) {
	const q = `SELECT COALESCE(SUM(rental_price), 0) FROM rentals WHERE payment_status = 'completed'`
	var sum float64
	if err := r.db.GetContext(ctx, &sum, q); err != nil {
		return 0, errors.Wrap(err, "sum rental revenue")
	}
	return sum, nil
}

func (r *repo) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	txx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin rental tx")
	}
	defer func() {
		if err != nil {
			_ = txx.Rollback()
		}
	}()
	if err = fn(&txRepo{tx: txx}); err != nil {
		return err
	}
	return errors.Wrap(txx.Commit(), "commit rental tx")
}

func (r *repo) selectMany(ctx context.Context, q string, args ...interface{}) ([]model.Rental, error) {
	var out []model.Rental
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "select rentals")
	}
	return out, nil
}

func (r *repo) countWhere(ctx context.Context, q string, args ...interface{}) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, errors.Wrap(err, "count rentals")
	}
	return n, nil
}

// ----- transactional ops -----

type txRepo struct{ tx *sqlx.Tx }

func (t *txRepo) ByIDForUpdate(ctx context.Context, id int64) (*model.Rental, error) {
	const q = `SELECT ` + rentalCols + ` FROM rentals WHERE id = $1 FOR UPDATE`
	var rt model.Rental
	if err := t.tx.GetContext(ctx, &rt, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "lock rental")
	}
	return &rt, nil
}

func (t *txRepo) MarkReturned(ctx context.Context, id int64, at time.Time) error {
	const q = `
		UPDATE rentals
		SET rental_status = 'returned', return_date = $2
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, id, at)
	return errors.Wrap(err, "mark rental returned")
}

func (t *txRepo) SetPaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	const q = `UPDATE rentals SET payment_status = $2 WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, id, status)
	return errors.Wrap(err, "set rental payment status")
}

func (t *txRepo) ExtendDueDate(ctx context.Context, id int64, due time.Time) error {
	const q = `UPDATE rentals SET due_date = $2 WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, id, due)
	return errors.Wrap(err, "extend rental due date")
}

func (t *txRepo) OverdueForUpdate(ctx context.Context, now time.Time) ([]model.Rental, error) {
	const q = `
		SELECT ` + rentalCols + `
		FROM rentals
		WHERE rental_status = 'active' AND due_date < $1
		ORDER BY due_date ASC
		FOR UPDATE`
	var out []model.Rental
	if err := t.tx.SelectContext(ctx, &out, q, now); err != nil {
		return nil, errors.Wrap(err, "lock overdue rentals")
	}
	return out, nil
}

func (t *txRepo) MarkOverdue(ctx context.Context, id int64) error {
	const q = `UPDATE rentals SET rental_status = 'overdue' WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, id)
	return errors.Wrap(err, "mark rental overdue")
}
