// model/book.go
package model

type Book struct {
	ID            int64   `db:"id" json:"id"`
	Title         string  `db:"title" json:"title"`
	Author        string  `db:"author" json:"author"`
	ISBN          string  `db:"isbn" json:"isbn"`
	PublishedYear int     `db:"published_year" json:"published_year"`
	Genre         string  `db:"genre" json:"genre"`
	Price         float64 `db:"price" json:"price"`
	RentalPrice   float64 `db:"rental_price" json:"rental_price"`
	Available     bool    `db:"available" json:"available"`
	Description   *string `db:"description" json:"description,omitempty"`
}
