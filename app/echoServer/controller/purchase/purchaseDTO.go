package purchase

type CreatePurchaseReq struct {
	UserID        int64  `json:"user_id" validate:"required,gt=0"`
	BookID        int64  `json:"book_id" validate:"required,gt=0"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}
