package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LivrariumProject/back-end/model"
	"github.com/LivrariumProject/back-end/util/hash"
)

type repoMock struct {
	createFn  func(ctx context.Context, u *model.User) error
	updateFn  func(ctx context.Context, u *model.User) error
	deleteFn  func(ctx context.Context, id int64) (bool, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	byNameFn  func(ctx context.Context, name string) ([]model.User, error)
	listFn    func(ctx context.Context) ([]model.User, error)
	searchFn  func(ctx context.Context, f Filters) ([]model.User, error)
	countFn   func(ctx context.Context) (int64, error)
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}
func (m *repoMock) Update(ctx context.Context, u *model.User) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, u)
}
func (m *repoMock) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn == nil {
		return true, nil
	}
	return m.deleteFn(ctx, id)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *repoMock) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, nil
	}
	return m.byEmailFn(ctx, email)
}
func (m *repoMock) ByName(ctx context.Context, name string) ([]model.User, error) {
	if m.byNameFn == nil {
		return nil, nil
	}
	return m.byNameFn(ctx, name)
}
func (m *repoMock) List(ctx context.Context) ([]model.User, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}
func (m *repoMock) Search(ctx context.Context, f Filters) ([]model.User, error) {
	if m.searchFn == nil {
		return nil, nil
	}
	return m.searchFn(ctx, f)
}
func (m *repoMock) Count(ctx context.Context) (int64, error) {
	if m.countFn == nil {
		return 0, nil
	}
	return m.countFn(ctx)
}

func TestCreate_Success(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m)

	u, err := svc.Create(ctx, "Bentinho", "Bento@Example.COM", "supersecret")
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "bento@example.com", u.Email)
	require.NotEmpty(t, u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestCreate_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&repoMock{})

	_, err := svc.Create(ctx, "B", "b@example.com", "supersecret")
	require.Equal(t, ErrBadInput, Code(err))

	_, err = svc.Create(ctx, "Bentinho", "", "supersecret")
	require.Equal(t, ErrBadInput, Code(err))

	_, err = svc.Create(ctx, "Bentinho", "b@example.com", "12345")
	require.Equal(t, ErrBadInput, Code(err))
}

func TestCreate_EmailTaken(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 1, Email: email}, nil
		},
	}
	svc := New(m)

	_, err := svc.Create(ctx, "Bentinho", "taken@example.com", "supersecret")
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestUpdate_PartialFields(t *testing.T) {
	ctx := context.Background()
	stored := &model.User{ID: 5, Name: "Old Name", Email: "old@example.com", PasswordHash: "oldhash"}
	var saved *model.User
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			cp := *stored
			return &cp, nil
		},
		updateFn: func(ctx context.Context, u *model.User) error {
			saved = u
			return nil
		},
	}
	svc := New(m)

	// only the name changes; email and password stay
	u, err := svc.Update(ctx, 5, "New Name", "", "")
	require.NoError(t, err)
	require.Equal(t, "New Name", u.Name)
	require.Equal(t, "old@example.com", u.Email)
	require.Equal(t, "oldhash", u.PasswordHash)
	require.NotNil(t, saved)
}

func TestUpdate_EmailConflict(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: 5, Email: "me@example.com"}, nil
		},
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 9, Email: email}, nil
		},
	}
	svc := New(m)

	_, err := svc.Update(ctx, 5, "", "other@example.com", "")
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestUpdate_NotFound(t *testing.T) {
	svc := New(&repoMock{})
	_, err := svc.Update(context.Background(), 99, "Name", "", "")
	require.Equal(t, ErrNotFound, Code(err))
}

func TestDelete_ReturnsDeletedUser(t *testing.T) {
	ctx := context.Background()
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Name: "Gone"}, nil
		},
	}
	svc := New(m)

	u, err := svc.Delete(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "Gone", u.Name)
}

func TestByID_NotFound(t *testing.T) {
	svc := New(&repoMock{})
	_, err := svc.ByID(context.Background(), 1)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestStats(t *testing.T) {
	m := &repoMock{countFn: func(ctx context.Context) (int64, error) { return 12, nil }}
	svc := New(m)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 12, st.Total)
}
