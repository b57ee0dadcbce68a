package rental

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/LivrariumProject/back-end/model"
	rrepo "github.com/LivrariumProject/back-end/repository/rental"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound         ErrCode = "RENTAL_NOT_FOUND"
	ErrUserNotFound     ErrCode = "USER_NOT_FOUND"
	ErrBookNotFound     ErrCode = "BOOK_NOT_FOUND"
	ErrInvalidPeriod    ErrCode = "INVALID_RENTAL_PERIOD"
	ErrInvalidPayMethod ErrCode = "INVALID_PAYMENT_METHOD"
	ErrAlreadyReturned  ErrCode = "ALREADY_RETURNED"
	ErrNotActive        ErrCode = "NOT_ACTIVE"
	ErrInvalidState     ErrCode = "INVALID_STATE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const (
	minRentalDays = 1
	maxRentalDays = 30
)

// Filters = repository shape
type Filters = rrepo.Filters

// Snapshot is a rental enriched with fields derived from the clock at read
// time. DaysRemaining and IsOverdue are only set while the rental is active.
type Snapshot struct {
	model.Rental
	DaysRemaining *int64 `json:"days_remaining,omitempty"`
	IsOverdue     *bool  `json:"is_overdue,omitempty"`
}

type Stats struct {
	Total            int64   `json:"total"`
	Active           int64   `json:"active"`
	Returned         int64   `json:"returned"`
	Overdue          int64   `json:"overdue"`
	PendingPayment   int64   `json:"pending_payment"`
	CompletedPayment int64   `json:"completed_payment"`
	TotalRevenue     float64 `json:"total_revenue"`
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
	InTx(ctx context.Context, fn func(tx rrepo.Tx) error) error
}

type Books interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Service interface {
	// Create snapshots the book's rental price and opens an active rental
	// with payment pending and due date rentalDays calendar days from now.
	Create(ctx context.Context, userID, bookID int64, method string, rentalDays int) (*Snapshot, error)

	// Return marks an un-returned rental returned; a second call fails.
	Return(ctx context.Context, id int64) (*Snapshot, error)

	// ConfirmPayment completes a pending payment; rental status is untouched.
	ConfirmPayment(ctx context.Context, id int64) (*Snapshot, error)

	// Renew extends the due date by additionalDays relative to the current
	// due date, never relative to the clock.
	Renew(ctx context.Context, id int64, additionalDays int, method string) (*Snapshot, error)

	Delete(ctx context.Context, id int64) (*Snapshot, error)
	ByID(ctx context.Context, id int64) (*Snapshot, error)
	List(ctx context.Context) ([]Snapshot, error)
	ByUser(ctx context.Context, userID int64) ([]Snapshot, error)
	ByBook(ctx context.Context, bookID int64) ([]Snapshot, error)
	Active(ctx context.Context) ([]Snapshot, error)
	ActiveByUser(ctx context.Context, userID int64) ([]Snapshot, error)
	Search(ctx context.Context, f Filters) ([]Snapshot, error)

	// Overdue is a pure read: active rentals past due, soonest-due first.
	Overdue(ctx context.Context) ([]Snapshot, error)

	// RefreshOverdue persists rental_status=overdue for every active rental
	// past due and returns the rentals it flagged. This is the only place
	// the overdue status cache is written.
	RefreshOverdue(ctx context.Context) ([]Snapshot, error)

	// Stats refreshes the overdue cache first, then counts.
	Stats(ctx context.Context) (*Stats, error)
}

// ----- Service implementation -----

type service struct {
	r     Repo
	books Books
	users Users
	now   func() time.Time
}

func New(r Repo, books Books, users Users) Service {
	return &service{r: r, books: books, users: users, now: time.Now}
}

// NewWithClock is used by tests to freeze time.
func NewWithClock(r Repo, books Books, users Users, now func() time.Time) Service {
	return &service{r: r, books: books, users: users, now: now}
}

func (s *service) Create(ctx context.Context, userID, bookID int64, method string, rentalDays int) (*Snapshot, error) {
	if !model.PaymentMethod(method).Valid() {
		return nil, makeErr(ErrInvalidPayMethod)
	}
	if rentalDays < minRentalDays || rentalDays > maxRentalDays {
		return nil, makeErr(ErrInvalidPeriod)
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}

	b, err := s.books.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}

	now := s.now()
	rt := &model.Rental{
		UserID:        userID,
		BookID:        bookID,
		RentalPrice:   b.RentalPrice,
		PaymentMethod: model.PaymentMethod(method),
		PaymentStatus: model.PaymentPending,
		RentalStatus:  model.RentalActive,
		RentalDate:    now,
		DueDate:       now.AddDate(0, 0, rentalDays),
	}
	if err := s.r.Create(ctx, rt); err != nil {
		return nil, err
	}
	return s.snapshot(rt), nil
}

func (s *service) Return(ctx context.Context, id int64) (*Snapshot, error) {
	var rt *model.Rental
	err := s.r.InTx(ctx, func(tx rrepo.Tx) error {
		var err error
		rt, err = tx.ByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rt == nil {
			return makeErr(ErrNotFound)
		}
		if rt.RentalStatus == model.RentalReturned {
			return makeErr(ErrAlreadyReturned)
		}
		now := s.now()
		if err := tx.MarkReturned(ctx, id, now); err != nil {
			return err
		}
		rt.RentalStatus = model.RentalReturned
		rt.ReturnDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.snapshot(rt), nil
}

func (s *service) ConfirmPayment(ctx context.Context, id int64) (*Snapshot, error) {
	var rt *model.Rental
	err := s.r.InTx(ctx, func(tx rrepo.Tx) error {
		var err error
		rt, err = tx.ByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rt == nil {
			return makeErr(ErrNotFound)
		}
		if rt.PaymentStatus == model.PaymentCompleted {
			return makeErr(ErrInvalidState)
		}
		if err := tx.SetPaymentStatus(ctx, id, model.PaymentCompleted); err != nil {
			return err
		}
		rt.PaymentStatus = model.PaymentCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.snapshot(rt), nil
}

func (s *service) Renew(ctx context.Context, id int64, additionalDays int, method string) (*Snapshot, error) {
	var rt *model.Rental
	err := s.r.InTx(ctx, func(tx rrepo.Tx) error {
		var err error
		rt, err = tx.ByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rt == nil {
			return makeErr(ErrNotFound)
		}
		if rt.RentalStatus != model.RentalActive {
			return makeErr(ErrNotActive)
		}
		if additionalDays < minRentalDays || additionalDays > maxRentalDays {
			return makeErr(ErrInvalidPeriod)
		}
		if !model.PaymentMethod(method).Valid() {
			return makeErr(ErrInvalidPayMethod)
		}
		// Extension is anchored on the current due date: a rental overdue by
		// five days renewed for seven is due in two.
		newDue := rt.DueDate.AddDate(0, 0, additionalDays)
		if err := tx.ExtendDueDate(ctx, id, newDue); err != nil {
			return err
		}
		rt.DueDate = newDue
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.snapshot(rt), nil
}

func (s *service) Delete(ctx context.Context, id int64) (*Snapshot, error) {
	rt, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, makeErr(ErrNotFound)
	}
	snap := s.snapshot(rt)
	if _, err := s.r.Delete(ctx, id); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*Snapshot, error) {
	rt, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rt == nil {
		return nil, makeErr(ErrNotFound)
	}
	return s.snapshot(rt), nil
}

func (s *service) List(ctx context.Context) ([]Snapshot, error) {
	rts, err := s.r.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.snapshots(rts), nil
}

func (s *service) ByUser(ctx context.Context, userID int64) ([]Snapshot, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	rts, err := s.r.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshots(rts), nil
}

func (s *service) ByBook(ctx context.Context, bookID int64) ([]Snapshot, error) {
	b, err := s.books.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	rts, err := s.r.ByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.snapshots(rts), nil
}

func (s *service) Active(ctx context.Context) ([]Snapshot, error) {
	rts, err := s.r.Active(ctx)
	if err != nil {
		return nil, err
	}
	return s.snapshots(rts), nil
}

func (s *service) ActiveByUser(ctx context.Context, userID int64) ([]Snapshot, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	rts, err := s.r.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.snapshots(rts), nil
}

func (s *service) Search(ctx context.Context, f Filters) ([]Snapshot, error) {
	rts, err := s.r.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.snapshots(rts), nil
}

func (s *service) Overdue(ctx context.Context) ([]Snapshot, error) {
	rts, err := s.r.Overdue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return s.snapshots(rts), nil
}

func (s *service) RefreshOverdue(ctx context.Context) ([]Snapshot, error) {
	var flagged []model.Rental
	err := s.r.InTx(ctx, func(tx rrepo.Tx) error {
		rts, err := tx.OverdueForUpdate(ctx, s.now())
		if err != nil {
			return err
		}
		for i := range rts {
			if err := tx.MarkOverdue(ctx, rts[i].ID); err != nil {
				return err
			}
			rts[i].RentalStatus = model.RentalOverdue
		}
		flagged = rts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.snapshots(flagged), nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	if _, err := s.RefreshOverdue(ctx); err != nil {
		return nil, err
	}

	out := &Stats{}
	var err error
	if out.Total, err = s.r.Count(ctx); err != nil {
		return nil, err
	}
	if out.Active, err = s.r.CountByRentalStatus(ctx, model.RentalActive); err != nil {
		return nil, err
	}
	if out.Returned, err = s.r.CountByRentalStatus(ctx, model.RentalReturned); err != nil {
		return nil, err
	}
	if out.Overdue, err = s.r.CountByRentalStatus(ctx, model.RentalOverdue); err != nil {
		return nil, err
	}
	if out.PendingPayment, err = s.r.CountByPaymentStatus(ctx, model.PaymentPending); err != nil {
		return nil, err
	}
	if out.CompletedPayment, err = s.r.CountByPaymentStatus(ctx, model.PaymentCompleted); err != nil {
		return nil, err
	}
	if out.TotalRevenue, err = s.r.TotalRevenue(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) requireUser(ctx context.Context, userID int64) error {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return makeErr(ErrUserNotFound)
	}
	return nil
}

func (s *service) snapshot(rt *model.Rental) *Snapshot {
	out := &Snapshot{Rental: *rt}
	if rt.RentalStatus != model.RentalActive {
		return out
	}
	now := s.now()
	overdue := rt.DueDate.Before(now)
	remaining := int64(math.Ceil(rt.DueDate.Sub(now).Hours() / 24))
	if remaining < 0 {
		remaining = 0
	}
	out.DaysRemaining = &remaining
	out.IsOverdue = &overdue
	return out
}

func (s *service) snapshots(rts []model.Rental) []Snapshot {
	out := make([]Snapshot, 0, len(rts))
	for i := range rts {
		out = append(out, *s.snapshot(&rts[i]))
	}
	return out
}
