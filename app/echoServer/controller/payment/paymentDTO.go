package payment

type CreatePaymentReq struct {
	UserID        int64   `json:"user_id" validate:"required,gt=0"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	Type          string  `json:"type" validate:"required,oneof=purchase rental"`
}

type ProcessPaymentReq struct {
	Approve       bool   `json:"approve"`
	TransactionID string `json:"transaction_id"`
}
