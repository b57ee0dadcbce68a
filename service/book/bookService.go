package book

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/LivrariumProject/back-end/model"
	brepo "github.com/LivrariumProject/back-end/repository/book"
)

type ErrCode string

const (
	ErrNotFound  ErrCode = "BOOK_NOT_FOUND"
	ErrISBNTaken ErrCode = "ISBN_TAKEN"
	ErrBadInput  ErrCode = "BAD_INPUT"
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
type Filters = brepo.Filters

type Stats struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Unavailable int64 `json:"unavailable"`
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	UpdateAvailability(ctx context.Context, id int64, available bool) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByISBN(ctx context.Context, isbn string) (*model.Book, error)
	ByAuthor(ctx context.Context, author string) ([]model.Book, error)
	ByGenre(ctx context.Context, genre string) ([]model.Book, error)
	ByTitle(ctx context.Context, title string) ([]model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Available(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, f Filters) ([]model.Book, error)
	Count(ctx context.Context) (int64, error)
	CountAvailable(ctx context.Context) (int64, error)
}

type Service interface {
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
	Update(ctx context.Context, id int64, b *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id int64) (*model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	ByISBN(ctx context.Context, isbn string) (*model.Book, error)
	ByAuthor(ctx context.Context, author string) ([]model.Book, error)
	ByGenre(ctx context.Context, genre string) ([]model.Book, error)
	ByTitle(ctx context.Context, title string) ([]model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Available(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, f Filters) ([]model.Book, error)

	// CheckAvailability reports the availability flag of one book.
	CheckAvailability(ctx context.Context, id int64) (bool, error)

	// MarkAvailability flips the flag. Renting a book does not call this;
	// only the explicit endpoint does.
	MarkAvailability(ctx context.Context, id int64, available bool) (*model.Book, error)

	Stats(ctx context.Context) (*Stats, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" ||
		strings.TrimSpace(b.ISBN) == "" || strings.TrimSpace(b.Genre) == "" {
		return nil, makeErr(ErrBadInput)
	}
	if b.PublishedYear < 0 || b.Price < 0 || b.RentalPrice < 0 {
		return nil, makeErr(ErrBadInput)
	}

	existing, err := s.r.ByISBN(ctx, b.ISBN)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, makeErr(ErrISBNTaken)
	}

	b.Available = true
	if err := s.r.Create(ctx, b); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrISBNTaken)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id int64, b *model.Book) (*model.Book, error) {
	existing, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, makeErr(ErrNotFound)
	}

	if b.ISBN != "" && b.ISBN != existing.ISBN {
		other, err := s.r.ByISBN(ctx, b.ISBN)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, makeErr(ErrISBNTaken)
		}
	}

	b.ID = id
	if err := s.r.Update(ctx, b); err != nil {
		if isUniqueViolation(err) {
			return nil, makeErr(ErrISBNTaken)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	if _, err := s.r.Delete(ctx, id); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	b, err := s.r.ByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) ByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	return s.r.ByAuthor(ctx, author)
}
func (s *service) ByGenre(ctx context.Context, genre string) ([]model.Book, error) {
	return s.r.ByGenre(ctx, genre)
}
func (s *service) ByTitle(ctx context.Context, title string) ([]model.Book, error) {
	return s.r.ByTitle(ctx, title)
}
func (s *service) List(ctx context.Context) ([]model.Book, error)      { return s.r.List(ctx) }
func (s *service) Available(ctx context.Context) ([]model.Book, error) { return s.r.Available(ctx) }
func (s *service) Search(ctx context.Context, f Filters) ([]model.Book, error) {
	return s.r.Search(ctx, f)
}

func (s *service) CheckAvailability(ctx context.Context, id int64) (bool, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, makeErr(ErrNotFound)
	}
	return b.Available, nil
}

func (s *service) MarkAvailability(ctx context.Context, id int64, available bool) (*model.Book, error) {
	ok, err := s.r.UpdateAvailability(ctx, id, available)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, makeErr(ErrNotFound)
	}
	return s.r.ByID(ctx, id)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.r.Count(ctx)
	if err != nil {
		return nil, err
	}
	available, err := s.r.CountAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Total: total, Available: available, Unavailable: total - available}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
