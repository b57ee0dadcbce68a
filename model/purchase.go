// model/purchase.go
package model

import "time"

// Purchase records a book sale. Price is taken from the book at purchase
// time, same snapshot rule as Rental.RentalPrice.
type Purchase struct {
	ID            int64         `db:"id" json:"id"`
	UserID        int64         `db:"user_id" json:"user_id"`
	BookID        int64         `db:"book_id" json:"book_id"`
	Price         float64       `db:"price" json:"price"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	PurchaseDate  time.Time     `db:"purchase_date" json:"purchase_date"`
}
