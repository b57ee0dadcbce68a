package rental

type CreateRentalReq struct {
	UserID        int64  `json:"user_id" validate:"required,gt=0"`
	BookID        int64  `json:"book_id" validate:"required,gt=0"`
	PaymentMethod string `json:"payment_method" validate:"required"`
	RentalDays    int    `json:"rental_days" validate:"required"`
}

type RenewRentalReq struct {
	AdditionalDays int    `json:"additional_days" validate:"required"`
	PaymentMethod  string `json:"payment_method" validate:"required"`
}
