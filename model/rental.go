// model/rental.go
package model

import "time"

type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	MethodDebitCard  PaymentMethod = "debit_card"
	MethodPix        PaymentMethod = "pix"
	MethodBoleto     PaymentMethod = "boleto"
)

// Valid reports whether m is one of the four accepted methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodPix, MethodBoleto:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type RentalStatus string

const (
	RentalActive   RentalStatus = "active"
	RentalReturned RentalStatus = "returned"
	RentalOverdue  RentalStatus = "overdue"
)

// Rental snapshots the book's rental price at creation; the price never
// changes afterwards, even if the book's own price does.
type Rental struct {
	ID            int64         `db:"id" json:"id"`
	UserID        int64         `db:"user_id" json:"user_id"`
	BookID        int64         `db:"book_id" json:"book_id"`
	RentalPrice   float64       `db:"rental_price" json:"rental_price"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
	RentalStatus  RentalStatus  `db:"rental_status" json:"rental_status"`
	RentalDate    time.Time     `db:"rental_date" json:"rental_date"`
	DueDate       time.Time     `db:"due_date" json:"due_date"`
	ReturnDate    *time.Time    `db:"return_date" json:"return_date,omitempty"`
}
