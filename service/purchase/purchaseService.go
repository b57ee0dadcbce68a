package purchase

import (
	"context"
	"errors"
	"time"

	"github.com/LivrariumProject/back-end/model"
	prepo "github.com/LivrariumProject/back-end/repository/purchase"
)

type ErrCode string

const (
	ErrNotFound         ErrCode = "PURCHASE_NOT_FOUND"
	ErrUserNotFound     ErrCode = "USER_NOT_FOUND"
	ErrBookNotFound     ErrCode = "BOOK_NOT_FOUND"
	ErrInvalidPayMethod ErrCode = "INVALID_PAYMENT_METHOD"
	ErrAlreadyCompleted ErrCode = "ALREADY_COMPLETED"
	ErrAlreadyRefunded  ErrCode = "ALREADY_REFUNDED"
	ErrInvalidState     ErrCode = "INVALID_STATE"
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
type Filters = prepo.Filters

type Stats struct {
	Total        int64   `json:"total"`
	Pending      int64   `json:"pending"`
	Completed    int64   `json:"completed"`
	Failed       int64   `json:"failed"`
	Refunded     int64   `json:"refunded"`
	TotalRevenue float64 `json:"total_revenue"`
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
	SetPaymentStatus(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
}

type Books interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Service interface {
	// Create snapshots the book's sale price into the purchase row.
	Create(ctx context.Context, userID, bookID int64, method string) (*model.Purchase, error)

	ByID(ctx context.Context, id int64) (*model.Purchase, error)
	List(ctx context.Context) ([]model.Purchase, error)
	ByUser(ctx context.Context, userID int64) ([]model.Purchase, error)
	ByBook(ctx context.Context, bookID int64) ([]model.Purchase, error)
	Search(ctx context.Context, f Filters) ([]model.Purchase, error)
	Delete(ctx context.Context, id int64) (*model.Purchase, error)
	UserHasPurchased(ctx context.Context, userID, bookID int64) (bool, error)

	ConfirmPayment(ctx context.Context, id int64) (*model.Purchase, error)
	FailPayment(ctx context.Context, id int64) (*model.Purchase, error)
	Refund(ctx context.Context, id int64) (*model.Purchase, error)

	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	r     Repo
	books Books
	users Users
}

func New(r Repo, books Books, users Users) Service {
	return &service{r: r, books: books, users: users}
}

func (s *service) Create(ctx context.Context, userID, bookID int64, method string) (*model.Purchase, error) {
	if !model.PaymentMethod(method).Valid() {
		return nil, makeErr(ErrInvalidPayMethod)
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

	p := &model.Purchase{
		UserID:        userID,
		BookID:        bookID,
		Price:         b.Price,
		PaymentMethod: model.PaymentMethod(method),
		PaymentStatus: model.PaymentPending,
		PurchaseDate:  time.Now(),
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Purchase, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, makeErr(ErrNotFound)
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]model.Purchase, error) { return s.r.List(ctx) }

func (s *service) ByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	return s.r.ByUser(ctx, userID)
}

func (s *service) ByBook(ctx context.Context, bookID int64) ([]model.Purchase, error) {
	b, err := s.books.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return s.r.ByBook(ctx, bookID)
}

func (s *service) Search(ctx context.Context, f Filters) ([]model.Purchase, error) {
	return s.r.Search(ctx, f)
}

func (s *service) Delete(ctx context.Context, id int64) (*model.Purchase, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, makeErr(ErrNotFound)
	}
	if _, err := s.r.Delete(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UserHasPurchased(ctx context.Context, userID, bookID int64) (bool, error) {
	return s.r.UserHasPurchased(ctx, userID, bookID)
}

func (s *service) ConfirmPayment(ctx context.Context, id int64) (*model.Purchase, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, makeErr(ErrNotFound)
	}
	switch p.PaymentStatus {
	case model.PaymentCompleted:
		return nil, makeErr(ErrAlreadyCompleted)
	case model.PaymentRefunded:
		return nil, makeErr(ErrAlreadyRefunded)
	}
	return s.transition(ctx, p, p.PaymentStatus, model.PaymentCompleted)
}

func (s *service) FailPayment(ctx context.Context, id int64) (*model.Purchase, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, makeErr(ErrNotFound)
	}
	if p.PaymentStatus == model.PaymentCompleted {
		return nil, makeErr(ErrAlreadyCompleted)
	}
	return s.transition(ctx, p, p.PaymentStatus, model.PaymentFailed)
}

func (s *service) Refund(ctx context.Context, id int64) (*model.Purchase, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, makeErr(ErrNotFound)
	}
	if p.PaymentStatus == model.PaymentRefunded {
		return nil, makeErr(ErrAlreadyRefunded)
	}
	if p.PaymentStatus != model.PaymentCompleted {
		return nil, makeErr(ErrInvalidState)
	}
	return s.transition(ctx, p, model.PaymentCompleted, model.PaymentRefunded)
}

// transition applies a guarded status flip; a concurrent writer losing the
// race surfaces as InvalidState rather than a silent overwrite.
func (s *service) transition(ctx context.Context, p *model.Purchase, from, to model.PaymentStatus) (*model.Purchase, error) {
	ok, err := s.r.SetPaymentStatus(ctx, p.ID, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrInvalidState)
	}
	p.PaymentStatus = to
	return p, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{}
	var err error
	if out.Total, err = s.r.Count(ctx); err != nil {
		return nil, err
	}
	if out.Pending, err = s.r.CountByPaymentStatus(ctx, model.PaymentPending); err != nil {
		return nil, err
	}
	if out.Completed, err = s.r.CountByPaymentStatus(ctx, model.PaymentCompleted); err != nil {
		return nil, err
	}
	if out.Failed, err = s.r.CountByPaymentStatus(ctx, model.PaymentFailed); err != nil {
		return nil, err
	}
	if out.Refunded, err = s.r.CountByPaymentStatus(ctx, model.PaymentRefunded); err != nil {
		return nil, err
	}
	if out.TotalRevenue, err = s.r.TotalRevenue(ctx); err != nil {
		return nil, err
	}
	return out, nil
}
