package rental

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LivrariumProject/back-end/model"
	rrepo "github.com/LivrariumProject/back-end/repository/rental"
)

// in-memory repo; InTx hands the same store to the Tx view, so the service's
// read-check-write sequences run against realistic state.
type repoMock struct {
	rentals map[int64]*model.Rental
	nextID  int64
}

var _ Repo = (*repoMock)(nil)

func newRepoMock() *repoMock {
	return &repoMock{rentals: map[int64]*model.Rental{}, nextID: 1}
}

func (m *repoMock) put(rt model.Rental) int64 {
	id := m.nextID
	m.nextID++
	rt.ID = id
	m.rentals[id] = &rt
	return id
}

func (m *repoMock) Create(_ context.Context, rt *model.Rental) error {
	rt.ID = m.put(*rt)
	return nil
}

func (m *repoMock) ByID(_ context.Context, id int64) (*model.Rental, error) {
	rt, ok := m.rentals[id]
	if !ok {
		return nil, nil
	}
	cp := *rt
	return &cp, nil
}

func (m *repoMock) all() []model.Rental {
	out := make([]model.Rental, 0, len(m.rentals))
	for _, rt := range m.rentals {
		out = append(out, *rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *repoMock) List(_ context.Context) ([]model.Rental, error) { return m.all(), nil }

func (m *repoMock) ByUser(_ context.Context, userID int64) ([]model.Rental, error) {
	var out []model.Rental
	for _, rt := range m.all() {
		if rt.UserID == userID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (m *repoMock) ByBook(_ context.Context, bookID int64) ([]model.Rental, error) {
	var out []model.Rental
	for _, rt := range m.all() {
		if rt.BookID == bookID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (m *repoMock) Active(_ context.Context) ([]model.Rental, error) {
	var out []model.Rental
	for _, rt := range m.all() {
		if rt.RentalStatus == model.RentalActive {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (m *repoMock) ActiveByUser(_ context.Context, userID int64) ([]model.Rental, error) {
	var out []model.Rental
	for _, rt := range m.all() {
		if rt.UserID == userID && rt.RentalStatus == model.RentalActive {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (m *repoMock) Overdue(_ context.Context, now time.Time) ([]model.Rental, error) {
	var out []model.Rental
	for _, rt := range m.all() {
		if rt.RentalStatus != model.RentalReturned && rt.DueDate.Before(now) {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (m *repoMock) Search(_ context.Context, f Filters) ([]model.Rental, error) {
	var out []model.Rental
	for _, rt := range m.all() {
		if f.UserID != nil && rt.UserID != *f.UserID {
			continue
		}
		if f.RentalStatus != nil && rt.RentalStatus != *f.RentalStatus {
			continue
		}
		if f.PaymentStatus != nil && rt.PaymentStatus != *f.PaymentStatus {
			continue
		}
		out = append(out, rt)
	}
	return out, nil
}

func (m *repoMock) Delete(_ context.Context, id int64) (bool, error) {
	_, ok := m.rentals[id]
	delete(m.rentals, id)
	return ok, nil
}

func (m *repoMock) Count(_ context.Context) (int64, error) { return int64(len(m.rentals)), nil }

func (m *repoMock) CountByRentalStatus(_ context.Context, status model.RentalStatus) (int64, error) {
	var n int64
	for _, rt := range m.rentals {
		if rt.RentalStatus == status {
			n++
		}
	}
	return n, nil
}

func (m *repoMock) CountByPaymentStatus(_ context.Context, status model.PaymentStatus) (int64, error) {
	var n int64
	for _, rt := range m.rentals {
		if rt.PaymentStatus == status {
			n++
		}
	}
	return n, nil
}

func (m *repoMock) TotalRevenue(_ context.Context) (float64, error) {
	var sum float64
	for _, rt := range m.rentals {
		if rt.PaymentStatus == model.PaymentCompleted {
			sum += rt.RentalPrice
		}
	}
	return sum, nil
}

func (m *repoMock) InTx(_ context.Context, fn func(tx rrepo.Tx) error) error {
	return fn(&txMock{m: m})
}

type txMock struct{ m *repoMock }

func (t *txMock) ByIDForUpdate(ctx context.Context, id int64) (*model.Rental, error) {
	return t.m.ByID(ctx, id)
}

func (t *txMock) MarkReturned(_ context.Context, id int64, at time.Time) error {
	rt := t.m.rentals[id]
	rt.RentalStatus = model.RentalReturned
	rt.ReturnDate = &at
	return nil
}

func (t *txMock) SetPaymentStatus(_ context.Context, id int64, status model.PaymentStatus) error {
	t.m.rentals[id].PaymentStatus = status
	return nil
}

func (t *txMock) ExtendDueDate(_ context.Context, id int64, due time.Time) error {
	t.m.rentals[id].DueDate = due
	return nil
}

func (t *txMock) OverdueForUpdate(ctx context.Context, now time.Time) ([]model.Rental, error) {
	var out []model.Rental
	for _, rt := range t.m.all() {
		if rt.RentalStatus == model.RentalActive && rt.DueDate.Before(now) {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (t *txMock) MarkOverdue(_ context.Context, id int64) error {
	t.m.rentals[id].RentalStatus = model.RentalOverdue
	return nil
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

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func knownBook(price float64) *booksMock {
	return &booksMock{byIDFn: func(_ context.Context, id int64) (*model.Book, error) {
		return &model.Book{ID: id, Title: "Dom Casmurro", RentalPrice: price, Available: true}, nil
	}}
}

func knownUser() *usersMock {
	return &usersMock{byIDFn: func(_ context.Context, id int64) (*model.User, error) {
		return &model.User{ID: id, Name: "Capitu"}, nil
	}}
}

func newSvc(m *repoMock, at time.Time) Service {
	return NewWithClock(m, knownBook(10.00), knownUser(), fixedClock(at))
}

// --- create ---

func TestCreate_Success(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	out, err := svc.Create(ctx, 1, 2, "pix", 7)
	require.NoError(t, err)
	require.Equal(t, model.MethodPix, out.PaymentMethod)
	require.Equal(t, model.PaymentPending, out.PaymentStatus)
	require.Equal(t, model.RentalActive, out.RentalStatus)
	require.Equal(t, 10.00, out.RentalPrice)
	require.Equal(t, t0, out.RentalDate)
	require.Equal(t, t0.AddDate(0, 0, 7), out.DueDate)
	require.NotNil(t, out.DaysRemaining)
	require.EqualValues(t, 7, *out.DaysRemaining)
	require.NotNil(t, out.IsOverdue)
	require.False(t, *out.IsOverdue)
}

func TestCreate_PeriodBounds(t *testing.T) {
	ctx := context.Background()
	svc := newSvc(newRepoMock(), t0)

	for _, days := range []int{1, 30} {
		_, err := svc.Create(ctx, 1, 2, "credit_card", days)
		require.NoError(t, err, "days=%d", days)
	}
	for _, days := range []int{0, 31, -1} {
		_, err := svc.Create(ctx, 1, 2, "credit_card", days)
		require.Error(t, err, "days=%d", days)
		require.Equal(t, ErrInvalidPeriod, Code(err))
	}
}

func TestCreate_InvalidMethodCheckedFirst(t *testing.T) {
	ctx := context.Background()
	svc := newSvc(newRepoMock(), t0)

	// both method and days invalid: method wins
	_, err := svc.Create(ctx, 1, 2, "cash", 0)
	require.Equal(t, ErrInvalidPayMethod, Code(err))
}

func TestCreate_UserCheckedBeforeBook(t *testing.T) {
	ctx := context.Background()
	bookCalled := false
	books := &booksMock{byIDFn: func(_ context.Context, id int64) (*model.Book, error) {
		bookCalled = true
		return nil, nil
	}}
	users := &usersMock{byIDFn: func(_ context.Context, id int64) (*model.User, error) {
		return nil, nil
	}}
	svc := NewWithClock(newRepoMock(), books, users, fixedClock(t0))

	_, err := svc.Create(ctx, 1, 2, "pix", 7)
	require.Equal(t, ErrUserNotFound, Code(err))
	require.False(t, bookCalled)
}

func TestCreate_BookNotFound(t *testing.T) {
	ctx := context.Background()
	books := &booksMock{byIDFn: func(_ context.Context, id int64) (*model.Book, error) {
		return nil, nil
	}}
	svc := NewWithClock(newRepoMock(), books, knownUser(), fixedClock(t0))

	_, err := svc.Create(ctx, 1, 2, "pix", 7)
	require.Equal(t, ErrBookNotFound, Code(err))
}

// --- return ---

func TestReturn_SetsReturnDateOnce(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	id := m.put(model.Rental{
		UserID: 1, BookID: 2,
		PaymentStatus: model.PaymentCompleted,
		RentalStatus:  model.RentalActive,
		RentalDate:    t0.AddDate(0, 0, -3),
		DueDate:       t0.AddDate(0, 0, 4),
	})

	out, err := svc.Return(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, out.RentalStatus)
	require.NotNil(t, out.ReturnDate)
	require.Equal(t, t0, *out.ReturnDate)
	// derived fields are gone once the rental is no longer active
	require.Nil(t, out.DaysRemaining)
	require.Nil(t, out.IsOverdue)

	_, err = svc.Return(ctx, id)
	require.Equal(t, ErrAlreadyReturned, Code(err))
}

func TestReturn_OverdueRentalStillReturnable(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	id := m.put(model.Rental{
		UserID: 1, BookID: 2,
		RentalStatus: model.RentalOverdue,
		DueDate:      t0.AddDate(0, 0, -5),
	})

	out, err := svc.Return(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, out.RentalStatus)
}

func TestReturn_NotFound(t *testing.T) {
	svc := newSvc(newRepoMock(), t0)
	_, err := svc.Return(context.Background(), 99)
	require.Equal(t, ErrNotFound, Code(err))
}

// --- confirm payment ---

func TestConfirmPayment_OnceOnly(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	id := m.put(model.Rental{
		UserID: 1, BookID: 2,
		PaymentStatus: model.PaymentPending,
		RentalStatus:  model.RentalActive,
		DueDate:       t0.AddDate(0, 0, 7),
	})

	out, err := svc.ConfirmPayment(ctx, id)
	require.NoError(t, err)
	require.Equal(t, model.PaymentCompleted, out.PaymentStatus)
	// rental lifecycle untouched
	require.Equal(t, model.RentalActive, out.RentalStatus)

	_, err = svc.ConfirmPayment(ctx, id)
	require.Equal(t, ErrInvalidState, Code(err))
}

// --- renew ---

func TestRenew_AnchoredOnDueDate(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	// overdue by five days but still marked active
	due := t0.AddDate(0, 0, -5)
	id := m.put(model.Rental{
		UserID: 1, BookID: 2,
		RentalStatus: model.RentalActive,
		DueDate:      due,
	})

	out, err := svc.Renew(ctx, id, 7, "boleto")
	require.NoError(t, err)
	// extension counts from the old due date, not from the clock
	require.Equal(t, due.AddDate(0, 0, 7), out.DueDate)
	require.NotNil(t, out.DaysRemaining)
	require.EqualValues(t, 2, *out.DaysRemaining)
	require.NotNil(t, out.IsOverdue)
	require.False(t, *out.IsOverdue)
}

func TestRenew_RequiresActive(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	returned := m.put(model.Rental{RentalStatus: model.RentalReturned, DueDate: t0})
	overdue := m.put(model.Rental{RentalStatus: model.RentalOverdue, DueDate: t0.AddDate(0, 0, -2)})

	_, err := svc.Renew(ctx, returned, 7, "pix")
	require.Equal(t, ErrNotActive, Code(err))

	_, err = svc.Renew(ctx, overdue, 7, "pix")
	require.Equal(t, ErrNotActive, Code(err))
}

func TestRenew_Validation(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	id := m.put(model.Rental{RentalStatus: model.RentalActive, DueDate: t0.AddDate(0, 0, 3)})

	_, err := svc.Renew(ctx, id, 0, "pix")
	require.Equal(t, ErrInvalidPeriod, Code(err))

	_, err = svc.Renew(ctx, id, 31, "pix")
	require.Equal(t, ErrInvalidPeriod, Code(err))

	_, err = svc.Renew(ctx, id, 7, "cash")
	require.Equal(t, ErrInvalidPayMethod, Code(err))

	_, err = svc.Renew(ctx, 404, 7, "pix")
	require.Equal(t, ErrNotFound, Code(err))
}

// --- derived fields ---

func TestSnapshot_OverdueBoundary(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()

	due := t0
	id := m.put(model.Rental{RentalStatus: model.RentalActive, DueDate: due})

	// one second before the due date: not overdue, one day remains
	svc := newSvc(m, due.Add(-time.Second))
	out, err := svc.ByID(ctx, id)
	require.NoError(t, err)
	require.False(t, *out.IsOverdue)
	require.EqualValues(t, 1, *out.DaysRemaining)

	// one second past: overdue, nothing remains
	svc = newSvc(m, due.Add(time.Second))
	out, err = svc.ByID(ctx, id)
	require.NoError(t, err)
	require.True(t, *out.IsOverdue)
	require.EqualValues(t, 0, *out.DaysRemaining)
}

// --- overdue scan + stats ---

func TestRefreshOverdue_FlagsOnlyActivePastDue(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	late1 := m.put(model.Rental{RentalStatus: model.RentalActive, DueDate: t0.AddDate(0, 0, -1)})
	late2 := m.put(model.Rental{RentalStatus: model.RentalActive, DueDate: t0.AddDate(0, 0, -10)})
	onTime := m.put(model.Rental{RentalStatus: model.RentalActive, DueDate: t0.AddDate(0, 0, 1)})
	done := m.put(model.Rental{RentalStatus: model.RentalReturned, DueDate: t0.AddDate(0, 0, -9)})

	flagged, err := svc.RefreshOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 2)

	require.Equal(t, model.RentalOverdue, m.rentals[late1].RentalStatus)
	require.Equal(t, model.RentalOverdue, m.rentals[late2].RentalStatus)
	require.Equal(t, model.RentalActive, m.rentals[onTime].RentalStatus)
	require.Equal(t, model.RentalReturned, m.rentals[done].RentalStatus)

	// second scan finds nothing new
	flagged, err = svc.RefreshOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 0)
}

func TestStats_RefreshesBeforeCounting(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	// active but past due: the stats call must reclassify it
	m.put(model.Rental{
		RentalStatus:  model.RentalActive,
		PaymentStatus: model.PaymentCompleted,
		RentalPrice:   10.00,
		DueDate:       t0.AddDate(0, 0, -1),
	})
	m.put(model.Rental{
		RentalStatus:  model.RentalActive,
		PaymentStatus: model.PaymentPending,
		RentalPrice:   25.50,
		DueDate:       t0.AddDate(0, 0, 3),
	})
	m.put(model.Rental{
		RentalStatus:  model.RentalReturned,
		PaymentStatus: model.PaymentCompleted,
		RentalPrice:   8.00,
		DueDate:       t0.AddDate(0, 0, -2),
	})

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, st.Total)
	require.EqualValues(t, 1, st.Active)
	require.EqualValues(t, 1, st.Returned)
	require.EqualValues(t, 1, st.Overdue)
	require.EqualValues(t, 1, st.PendingPayment)
	require.EqualValues(t, 2, st.CompletedPayment)
	// only completed payments count toward revenue
	require.Equal(t, 18.00, st.TotalRevenue)
}

// --- delete ---

func TestDelete_ReturnsLastSnapshot(t *testing.T) {
	ctx := context.Background()
	m := newRepoMock()
	svc := newSvc(m, t0)

	id := m.put(model.Rental{RentalStatus: model.RentalActive, DueDate: t0.AddDate(0, 0, 5)})

	out, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, out.ID)
	require.Empty(t, m.rentals)

	_, err = svc.Delete(ctx, id)
	require.Equal(t, ErrNotFound, Code(err))
}
