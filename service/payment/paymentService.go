package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LivrariumProject/back-end/model"
	"github.com/LivrariumProject/back-end/repository/gateway"
	prepo "github.com/LivrariumProject/back-end/repository/payment"
)

type ErrCode string

const (
	ErrNotFound         ErrCode = "PAYMENT_NOT_FOUND"
	ErrUserNotFound     ErrCode = "USER_NOT_FOUND"
	ErrInvalidPayMethod ErrCode = "INVALID_PAYMENT_METHOD"
	ErrBadInput         ErrCode = "BAD_INPUT"
	ErrNotPending       ErrCode = "NOT_PENDING"
	ErrNotCompleted     ErrCode = "NOT_COMPLETED"
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

type Filters = prepo.Filters

type Stats struct {
	Total          int64   `json:"total"`
	Pending        int64   `json:"pending"`
	Completed      int64   `json:"completed"`
	Failed         int64   `json:"failed"`
	Refunded       int64   `json:"refunded"`
	CompletedTotal float64 `json:"completed_amount"`
}

type Repo interface {
	Create(ctx context.Context, p *model.Payment) error
	ByID(ctx context.Context, id int64) (*model.Payment, error)
	List(ctx context.Context) ([]model.Payment, error)
	ByUser(ctx context.Context, userID int64) ([]model.Payment, error)
	ByStatus(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error)
	Search(ctx context.Context, f Filters) ([]model.Payment, error)
	MarkProcessed(ctx context.Context, id int64, status model.PaymentStatus, transactionID *string, at time.Time) (bool, error)
	MarkRefunded(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.PaymentStatus) (int64, error)
	SumAmountByStatus(ctx context.Context, status model.PaymentStatus) (float64, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Service interface {
	Create(ctx context.Context, userID int64, amount float64, method string, paymentType model.PaymentType) (*model.Payment, error)

	ByID(ctx context.Context, id int64) (*model.Payment, error)
	List(ctx context.Context) ([]model.Payment, error)
	ByUser(ctx context.Context, userID int64) ([]model.Payment, error)
	ByStatus(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error)
	Search(ctx context.Context, f Filters) ([]model.Payment, error)

	// Process settles a pending payment. When approved and no transaction id
	// is supplied, one is obtained from the configured gateway.
	Process(ctx context.Context, id int64, approve bool, transactionID string) (*model.Payment, error)

	Refund(ctx context.Context, id int64) (*model.Payment, error)

	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	r     Repo
	users Users
	gw    gateway.Gateway
	now   func() time.Time
}

func New(r Repo, users Users, gw gateway.Gateway) Service {
	return &service{r: r, users: users, gw: gw, now: time.Now}
}

func NewWithClock(r Repo, users Users, gw gateway.Gateway, now func() time.Time) Service {
	return &service{r: r, users: users, gw: gw, now: now}
}

func (s *service) Create(ctx context.Context, userID int64, amount float64, method string, paymentType model.PaymentType) (*model.Payment, error) {
	if !model.PaymentMethod(method).Valid() {
		return nil, makeErr(ErrInvalidPayMethod)
	}
	if amount <= 0 {
		return nil, makeErr(ErrBadInput)
	}
	if paymentType != model.PaymentForPurchase && paymentType != model.PaymentForRental {
		return nil, makeErr(ErrBadInput)
	}

	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}

	p := &model.Payment{
		UserID:        userID,
		Amount:        amount,
		PaymentMethod: model.PaymentMethod(method),
		Status:        model.PaymentPending,
		Type:          paymentType,
		CreatedAt:     s.now(),
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Payment, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, makeErr(ErrNotFound)
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]model.Payment, error) { return s.r.List(ctx) }

func (s *service) ByUser(ctx context.Context, userID int64) ([]model.Payment, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, makeErr(ErrUserNotFound)
	}
	return s.r.ByUser(ctx, userID)
}

func (s *service) ByStatus(ctx context.Context, status model.PaymentStatus) ([]model.Payment, error) {
	return s.r.ByStatus(ctx, status)
}

func (s *service) Search(ctx context.Context, f Filters) ([]model.Payment, error) {
	return s.r.Search(ctx, f)
}

func (s *service) Process(ctx context.Context, id int64, approve bool, transactionID string) (*model.Payment, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, makeErr(ErrNotFound)
	}
	if p.Status != model.PaymentPending {
		return nil, makeErr(ErrNotPending)
	}

	status := model.PaymentFailed
	var txnID *string
	if approve {
		status = model.PaymentCompleted
		if transactionID == "" {
			resp, err := s.gw.Charge(ctx, gateway.ChargeReq{
				ExternalID: fmt.Sprintf("payment-%d", p.ID),
				Amount:     p.Amount,
				Method:     p.PaymentMethod,
			})
			if err != nil {
				return nil, err
			}
			transactionID = resp.TransactionID
		}
		txnID = &transactionID
	}

	at := s.now()
	ok, err := s.r.MarkProcessed(ctx, p.ID, status, txnID, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrInvalidState)
	}

	p.Status = status
	p.TransactionID = txnID
	p.PaymentDate = &at
	return p, nil
}

func (s *service) Refund(ctx context.Context, id int64) (*model.Payment, error) {
	p, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, makeErr(ErrNotFound)
	}
	if p.Status != model.PaymentCompleted {
		return nil, makeErr(ErrNotCompleted)
	}

	ok, err := s.r.MarkRefunded(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrInvalidState)
	}

	p.Status = model.PaymentRefunded
	return p, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{}
	var err error
	if out.Total, err = s.r.Count(ctx); err != nil {
		return nil, err
	}
	if out.Pending, err = s.r.CountByStatus(ctx, model.PaymentPending); err != nil {
		return nil, err
	}
	if out.Completed, err = s.r.CountByStatus(ctx, model.PaymentCompleted); err != nil {
		return nil, err
	}
	if out.Failed, err = s.r.CountByStatus(ctx, model.PaymentFailed); err != nil {
		return nil, err
	}
	if out.Refunded, err = s.r.CountByStatus(ctx, model.PaymentRefunded); err != nil {
		return nil, err
	}
	if out.CompletedTotal, err = s.r.SumAmountByStatus(ctx, model.PaymentCompleted); err != nil {
		return nil, err
	}
	return out, nil
}
