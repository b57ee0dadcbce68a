// model/payment.go
package model

import "time"

type PaymentType string

const (
	PaymentForPurchase PaymentType = "purchase"
	PaymentForRental   PaymentType = "rental"
)

type Payment struct {
	ID            int64         `db:"id" json:"id"`
	UserID        int64         `db:"user_id" json:"user_id"`
	Amount        float64       `db:"amount" json:"amount"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	Status        PaymentStatus `db:"status" json:"status"`
	Type          PaymentType   `db:"type" json:"type"`
	TransactionID *string       `db:"transaction_id" json:"transaction_id,omitempty"`
	PaymentDate   *time.Time    `db:"payment_date" json:"payment_date,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
