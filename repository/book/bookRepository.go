package book

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/LivrariumProject/back-end/model"
)

const bookCols = `id, title, author, isbn, published_year, genre, price, rental_price, available, description`

var dialect = goqu.Dialect("postgres")

type Filters struct {
	Title     *string
	Author    *string
	Genre     *string
	Available *bool
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

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, isbn, published_year, genre, price, rental_price, available, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.PublishedYear, b.Genre,
		b.Price, b.RentalPrice, b.Available, b.Description,
	).Scan(&b.ID)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title = $2, author = $3, isbn = $4, published_year = $5,
		    genre = $6, price = $7, rental_price = $8, available = $9, description = $10
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.ISBN, b.PublishedYear,
		b.Genre, b.Price, b.RentalPrice, b.Available, b.Description,
	)
	return err
}

func (r *repo) UpdateAvailability(ctx context.Context, id int64, available bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE books SET available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return false, errors.Wrap(err, "update book availability")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete book")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *repo) ByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE isbn = $1`
	return r.getOne(ctx, q, isbn)
}

func (r *repo) ByAuthor(ctx context.Context, author string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE author ILIKE '%' || $1 || '%' ORDER BY title ASC`
	return r.selectMany(ctx, q, author)
}

func (r *repo) ByGenre(ctx context.Context, genre string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE genre ILIKE $1 ORDER BY title ASC`
	return r.selectMany(ctx, q, genre)
}

func (r *repo) ByTitle(ctx context.Context, title string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE title ILIKE '%' || $1 || '%' ORDER BY title ASC`
	return r.selectMany(ctx, q, title)
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books ORDER BY id DESC`
	return r.selectMany(ctx, q)
}

func (r *repo) Available(ctx context.Context) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE available ORDER BY title ASC`
	return r.selectMany(ctx, q)
}

func (r *repo) Search(ctx context.Context, f Filters) ([]model.Book, error) {
	ds := dialect.From("books").
		Select(goqu.L(bookCols)).
		Order(goqu.C("title").Asc())

	if f.Title != nil {
		ds = ds.Where(goqu.C("title").ILike("%" + *f.Title + "%"))
	}
	if f.Author != nil {
		ds = ds.Where(goqu.C("author").ILike("%" + *f.Author + "%"))
	}
	if f.Genre != nil {
		ds = ds.Where(goqu.C("genre").ILike(*f.Genre))
	}
	if f.Available != nil {
		ds = ds.Where(goqu.C("available").Eq(*f.Available))
	}

	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build book search query")
	}
	return r.selectMany(ctx, q, args...)
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books`)
}

func (r *repo) CountAvailable(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books WHERE available`)
}

func (r *repo) getOne(ctx context.Context, q string, arg interface{}) (*model.Book, error) {
	var b model.Book
	if err := r.db.GetContext(ctx, &b, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get book")
	}
	return &b, nil
}

func (r *repo) selectMany(ctx context.Context, q string, args ...interface{}) ([]model.Book, error) {
	var out []model.Book
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, errors.Wrap(err, "select books")
	}
	return out, nil
}

func (r *repo) count(ctx context.Context, q string) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, q); err != nil {
		return 0, errors.Wrap(err, "count books")
	}
	return n, nil
}
