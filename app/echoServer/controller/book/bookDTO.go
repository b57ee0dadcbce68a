package book

type CreateBookReq struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	ISBN          string  `json:"isbn" validate:"required"`
	PublishedYear int     `json:"published_year" validate:"gte=0"`
	Genre         string  `json:"genre" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	RentalPrice   float64 `json:"rental_price" validate:"gte=0"`
	Description   *string `json:"description"`
}

type UpdateBookReq struct {
	Title         string  `json:"title" validate:"required"`
	Author        string  `json:"author" validate:"required"`
	ISBN          string  `json:"isbn" validate:"required"`
	PublishedYear int     `json:"published_year" validate:"gte=0"`
	Genre         string  `json:"genre" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	RentalPrice   float64 `json:"rental_price" validate:"gte=0"`
	Available     bool    `json:"available"`
	Description   *string `json:"description"`
}

type AvailabilityReq struct {
	Available *bool `json:"available" validate:"required"`
}
