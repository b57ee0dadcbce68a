package book_test

import (
	"context"
	"testing"

	"github.com/LivrariumProject/back-end/model"
	booksvc "github.com/LivrariumProject/back-end/service/book"
)

type repoMock struct {
	createFn    func(ctx context.Context, b *model.Book) error
	updateFn    func(ctx context.Context, b *model.Book) error
	updAvailFn  func(ctx context.Context, id int64, available bool) (bool, error)
	deleteFn    func(ctx context.Context, id int64) (bool, error)
	byIDFn      func(ctx context.Context, id int64) (*model.Book, error)
	byISBNFn    func(ctx context.Context, isbn string) (*model.Book, error)
	byAuthorFn  func(ctx context.Context, author string) ([]model.Book, error)
	byGenreFn   func(ctx context.Context, genre string) ([]model.Book, error)
	byTitleFn   func(ctx context.Context, title string) ([]model.Book, error)
	listFn      func(ctx context.Context) ([]model.Book, error)
	availableFn func(ctx context.Context) ([]model.Book, error)
	searchFn    func(ctx context.Context, f booksvc.Filters) ([]model.Book, error)
	countFn     func(ctx context.Context) (int64, error)
	countAvFn   func(ctx context.Context) (int64, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, b)
}
func (m *repoMock) Update(ctx context.Context, b *model.Book) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, b)
}
func (m *repoMock) UpdateAvailability(ctx context.Context, id int64, available bool) (bool, error) {
	if m.updAvailFn == nil {
		return true, nil
	}
	return m.updAvailFn(ctx, id, available)
}
func (m *repoMock) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn == nil {
		return true, nil
	}
	return m.deleteFn(ctx, id)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	if m.byIDFn == nil {
		return nil, nil
	}
	return m.byIDFn(ctx, id)
}
func (m *repoMock) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	if m.byISBNFn == nil {
		return nil, nil
	}
	return m.byISBNFn(ctx, isbn)
}
func (m *repoMock) ByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	if m.byAuthorFn == nil {
		return nil, nil
	}
	return m.byAuthorFn(ctx, author)
}
func (m *repoMock) ByGenre(ctx context.Context, genre string) ([]model.Book, error) {
	if m.byGenreFn == nil {
		return nil, nil
	}
	return m.byGenreFn(ctx, genre)
}
func (m *repoMock) ByTitle(ctx context.Context, title string) ([]model.Book, error) {
	if m.byTitleFn == nil {
		return nil, nil
	}
	return m.byTitleFn(ctx, title)
}
func (m *repoMock) List(ctx context.Context) ([]model.Book, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}
func (m *repoMock) Available(ctx context.Context) ([]model.Book, error) {
	if m.availableFn == nil {
		return nil, nil
	}
	return m.availableFn(ctx)
}
func (m *repoMock) Search(ctx context.Context, f booksvc.Filters) ([]model.Book, error) {
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
func (m *repoMock) CountAvailable(ctx context.Context) (int64, error) {
	if m.countAvFn == nil {
		return 0, nil
	}
	return m.countAvFn(ctx)
}

func validBook() *model.Book {
	return &model.Book{
		Title:  "Grande Sertão: Veredas",
		Author: "Guimarães Rosa",
		ISBN:   "978-8520939918", PublishedYear: 1956,
		Genre: "Fiction", Price: 49.90, RentalPrice: 9.90,
	}
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	ctx := context.Background()

	b := validBook()
	b.Title = ""
	if _, err := s.Create(ctx, b); booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatalf("expected BAD_INPUT for empty title, got %v", err)
	}

	b = validBook()
	b.Price = -1
	if _, err := s.Create(ctx, b); booksvc.Code(err) != booksvc.ErrBadInput {
		t.Fatalf("expected BAD_INPUT for negative price, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			b.ID = 42
			return nil
		},
	}
	s := booksvc.New(m)

	b, err := s.Create(context.Background(), validBook())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID != 42 {
		t.Fatalf("got id=%d; want 42", b.ID)
	}
	if !b.Available {
		t.Fatal("new books must start available")
	}
}

func TestCreate_ISBNTaken(t *testing.T) {
	m := &repoMock{
		byISBNFn: func(ctx context.Context, isbn string) (*model.Book, error) {
			return &model.Book{ID: 1, ISBN: isbn}, nil
		},
	}
	s := booksvc.New(m)

	if _, err := s.Create(context.Background(), validBook()); booksvc.Code(err) != booksvc.ErrISBNTaken {
		t.Fatalf("expected ISBN_TAKEN, got %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, Available: false}, nil
		},
	}
	s := booksvc.New(m)

	ok, err := s.CheckAvailability(context.Background(), 3)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatal("expected unavailable")
	}
}

func TestMarkAvailability_NotFound(t *testing.T) {
	m := &repoMock{
		updAvailFn: func(ctx context.Context, id int64, available bool) (bool, error) {
			return false, nil
		},
	}
	s := booksvc.New(m)

	if _, err := s.MarkAvailability(context.Background(), 99, true); booksvc.Code(err) != booksvc.ErrNotFound {
		t.Fatalf("expected BOOK_NOT_FOUND, got %v", err)
	}
}

func TestStats(t *testing.T) {
	m := &repoMock{
		countFn:   func(ctx context.Context) (int64, error) { return 10, nil },
		countAvFn: func(ctx context.Context) (int64, error) { return 7, nil },
	}
	s := booksvc.New(m)

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 10 || st.Available != 7 || st.Unavailable != 3 {
		t.Fatalf("got %+v; want 10/7/3", st)
	}
}
