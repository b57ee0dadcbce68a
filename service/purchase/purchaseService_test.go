package purchase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LivrariumProject/back-end/model"
)

type repoMock struct {
	createFn     func(ctx context.Context, p *model.Purchase) error
	byIDFn       func(ctx context.Context, id int64) (*model.Purchase, error)
	listFn       func(ctx context.Context) ([]model.Purchase, error)
	byUserFn     func(ctx context.Context, userID int64) ([]model.Purchase, error)
	byBookFn     func(ctx context.Context, bookID int64) ([]model.Purchase, error)
	searchFn     func(ctx context.Context, f Filters) ([]model.Purchase, error)
	deleteFn     func(ctx context.Context, id int64) (bool, error)
	hasFn        func(ctx context.Context, userID, bookID int64) (bool, error)
	setStatusFn  func(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error)
	countFn      func(ctx context.Context) (int64, error)
	countByPayFn func(ctx context.Context, status model.PaymentStatus) (int64, error)
	revenueFn    func(ctx context.Context) (float64, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Create(ctx context.Context, p *model.Purchase) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, p)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Purchase, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *repoMock) List(ctx context.Context) ([]model.Purchase, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}
func (m *repoMock) ByUser(ctx context.Context, userID int64) ([]model.Purchase, error) {
	if m.byUserFn == nil {
		return nil, nil
	}
	return m.byUserFn(ctx, userID)
}
func (m *repoMock) ByBook(ctx context.Context, bookID int64) ([]model.Purchase, error) {
	if m.byBookFn == nil {
		return nil, nil
	}
	return m.byBookFn(ctx, bookID)
}
func (m *repoMock) Search(ctx context.Context, f Filters) ([]model.Purchase, error) {
	if m.searchFn == nil {
		return nil, nil
	}
	return m.searchFn(ctx, f)
}
func (m *repoMock) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn == nil {
		return true, nil
	}
	return m.deleteFn(ctx, id)
}
func (m *repoMock) UserHasPurchased(ctx context.Context, userID, bookID int64) (bool, error) {
	if m.hasFn == nil {
		return false, nil
	}
	return m.hasFn(ctx, userID, bookID)
}
func (m *repoMock) SetPaymentStatus(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error) {
	if m.setStatusFn == nil {
		return true, nil
	}
	return m.setStatusFn(ctx, id, from, to)
}
func (m *repoMock) Count(ctx context.Context) (int64, error) {
	if m.countFn == nil {
		return 0, nil
	}
	return m.countFn(ctx)
}
func (m *repoMock) CountByPaymentStatus(ctx context.Context, status model.PaymentStatus) (int64, error) {
	if m.countByPayFn == nil {
		return 0, nil
	}
	return m.countByPayFn(ctx, status)
}
func (m *repoMock) TotalRevenue(ctx context.Context) (float64, error) {
	if m.revenueFn == nil {
		return 0, nil
	}
	return m.revenueFn(ctx)
}

type booksMock struct {
	byIDFn func(ctx context.Context, id int64) (*model.Book, error)
}

func (m *booksMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}

type usersMock struct {
	byIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *usersMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}

func knownBook(price float64) *booksMock {
	return &booksMock{byIDFn: func(_ context.Context, id int64) (*model.Book, error) {
		return &model.Book{ID: id, Title: "Memórias Póstumas", Price: price}, nil
	}}
}

func knownUser() *usersMock {
	return &usersMock{byIDFn: func(_ context.Context, id int64) (*model.User, error) {
		return &model.User{ID: id}, nil
	}}
}

func TestCreate_SnapshotsBookPrice(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{createFn: func(ctx context.Context, p *model.Purchase) error {
		p.ID = 7
		return nil
	}}
	svc := New(m, knownBook(49.90), knownUser())

	p, err := svc.Create(ctx, 1, 2, "boleto")
	require.NoError(t, err)
	require.Equal(t, int64(7), p.ID)
	require.Equal(t, 49.90, p.Price)
	require.Equal(t, model.MethodBoleto, p.PaymentMethod)
	require.Equal(t, model.PaymentPending, p.PaymentStatus)
	require.False(t, p.PurchaseDate.IsZero())
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc := New(&repoMock{}, knownBook(1), knownUser())

	_, err := svc.Create(ctx, 1, 2, "cash")
	require.Equal(t, ErrInvalidPayMethod, Code(err))

	svcNoUser := New(&repoMock{}, knownBook(1), &usersMock{
		byIDFn: func(_ context.Context, id int64) (*model.User, error) { return nil, nil },
	})
	_, err = svcNoUser.Create(ctx, 1, 2, "pix")
	require.Equal(t, ErrUserNotFound, Code(err))

	svcNoBook := New(&repoMock{}, &booksMock{
		byIDFn: func(_ context.Context, id int64) (*model.Book, error) { return nil, nil },
	}, knownUser())
	_, err = svcNoBook.Create(ctx, 1, 2, "pix")
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestConfirmPayment_Transitions(t *testing.T) {
	ctx := context.Background()
	stored := &model.Purchase{ID: 3, PaymentStatus: model.PaymentPending}
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Purchase, error) {
			cp := *stored
			return &cp, nil
		},
		setStatusFn: func(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error) {
			if stored.PaymentStatus != from {
				return false, nil
			}
			stored.PaymentStatus = to
			return true, nil
		},
	}
	svc := New(m, knownBook(1), knownUser())

	p, err := svc.ConfirmPayment(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, model.PaymentCompleted, p.PaymentStatus)

	_, err = svc.ConfirmPayment(ctx, 3)
	require.Equal(t, ErrAlreadyCompleted, Code(err))
}

func TestFailPayment_CompletedRejected(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{byIDFn: func(ctx context.Context, id int64) (*model.Purchase, error) {
		return &model.Purchase{ID: id, PaymentStatus: model.PaymentCompleted}, nil
	}}
	svc := New(m, knownBook(1), knownUser())

	_, err := svc.FailPayment(ctx, 3)
	require.Equal(t, ErrAlreadyCompleted, Code(err))
}

func TestRefund_OnlyCompleted(t *testing.T) {
	ctx := context.Background()

	pending := &repoMock{byIDFn: func(ctx context.Context, id int64) (*model.Purchase, error) {
		return &model.Purchase{ID: id, PaymentStatus: model.PaymentPending}, nil
	}}
	svc := New(pending, knownBook(1), knownUser())
	_, err := svc.Refund(ctx, 3)
	require.Equal(t, ErrInvalidState, Code(err))

	refunded := &repoMock{byIDFn: func(ctx context.Context, id int64) (*model.Purchase, error) {
		return &model.Purchase{ID: id, PaymentStatus: model.PaymentRefunded}, nil
	}}
	svc = New(refunded, knownBook(1), knownUser())
	_, err = svc.Refund(ctx, 3)
	require.Equal(t, ErrAlreadyRefunded, Code(err))

	completed := &repoMock{byIDFn: func(ctx context.Context, id int64) (*model.Purchase, error) {
		return &model.Purchase{ID: id, PaymentStatus: model.PaymentCompleted}, nil
	}}
	svc = New(completed, knownBook(1), knownUser())
	p, err := svc.Refund(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, model.PaymentRefunded, p.PaymentStatus)
}

func TestRefund_LostRace(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Purchase, error) {
			return &model.Purchase{ID: id, PaymentStatus: model.PaymentCompleted}, nil
		},
		setStatusFn: func(ctx context.Context, id int64, from, to model.PaymentStatus) (bool, error) {
			return false, nil
		},
	}
	svc := New(m, knownBook(1), knownUser())

	_, err := svc.Refund(ctx, 3)
	require.Equal(t, ErrInvalidState, Code(err))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{
		countFn: func(ctx context.Context) (int64, error) { return 10, nil },
		countByPayFn: func(ctx context.Context, status model.PaymentStatus) (int64, error) {
			switch status {
			case model.PaymentPending:
				return 2, nil
			case model.PaymentCompleted:
				return 6, nil
			case model.PaymentFailed:
				return 1, nil
			case model.PaymentRefunded:
				return 1, nil
			}
			return 0, nil
		},
		revenueFn: func(ctx context.Context) (float64, error) { return 299.40, nil },
	}
	svc := New(m, knownBook(1), knownUser())

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 10, st.Total)
	require.EqualValues(t, 2, st.Pending)
	require.EqualValues(t, 6, st.Completed)
	require.EqualValues(t, 1, st.Failed)
	require.EqualValues(t, 1, st.Refunded)
	require.Equal(t, 299.40, st.TotalRevenue)
}
