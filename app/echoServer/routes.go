package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	authctl "github.com/LivrariumProject/back-end/app/echoServer/controller/auth"
	bookctl "github.com/LivrariumProject/back-end/app/echoServer/controller/book"
	payctl "github.com/LivrariumProject/back-end/app/echoServer/controller/payment"
	purchasectl "github.com/LivrariumProject/back-end/app/echoServer/controller/purchase"
	rentalctl "github.com/LivrariumProject/back-end/app/echoServer/controller/rental"
	userctl "github.com/LivrariumProject/back-end/app/echoServer/controller/user"
	authsvc "github.com/LivrariumProject/back-end/service/auth"
)

type C struct {
	Auth      *authctl.Controller
	User      *userctl.Controller
	Book      *bookctl.Controller
	Rental    *rentalctl.Controller
	Purchase  *purchasectl.Controller
	Payment   *payctl.Controller
	AuthSvc   authsvc.Service
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public
	pub := e.Group("/v1")
	pub.POST("/users", c.User.Create)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup: "header:Authorization:Bearer ",
	}))
	// reject tokens that were logged out
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if c.AuthSvc.Revoked(ctx.Request().Header.Get("Authorization")) {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "token revoked"})
			}
			return next(ctx)
		}
	})

	auth.POST("/auth/logout", c.Auth.Logout)

	// Users
	auth.GET("/users", c.User.List)
	auth.GET("/users/search", c.User.Search)
	auth.GET("/users/stats", c.User.Stats)
	auth.GET("/users/email/:email", c.User.ByEmail)
	auth.GET("/users/name/:name", c.User.ByName)
	auth.GET("/users/:id", c.User.Detail)
	auth.PUT("/users/:id", c.User.Update)
	auth.DELETE("/users/:id", c.User.Delete)

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/search", c.Book.Search)
	auth.GET("/books/available", c.Book.Available)
	auth.GET("/books/stats", c.Book.Stats)
	auth.GET("/books/isbn/:isbn", c.Book.ByISBN)
	auth.GET("/books/author/:author", c.Book.ByAuthor)
	auth.GET("/books/genre/:genre", c.Book.ByGenre)
	auth.GET("/books/:id", c.Book.Detail)
	auth.GET("/books/:id/availability", c.Book.CheckAvailability)
	auth.POST("/books", c.Book.Create)
	auth.PUT("/books/:id", c.Book.Update)
	auth.PATCH("/books/:id/availability", c.Book.MarkAvailability)
	auth.DELETE("/books/:id", c.Book.Delete)

	// Rentals
	auth.GET("/rentals", c.Rental.List)
	auth.GET("/rentals/search", c.Rental.Search)
	auth.GET("/rentals/stats", c.Rental.Stats)
	auth.GET("/rentals/active", c.Rental.Active)
	auth.GET("/rentals/overdue", c.Rental.Overdue)
	auth.GET("/rentals/my", c.Rental.My)
	auth.GET("/rentals/user/:userId", c.Rental.ByUser)
	auth.GET("/rentals/user/:userId/active", c.Rental.ActiveByUser)
	auth.GET("/rentals/book/:bookId", c.Rental.ByBook)
	auth.GET("/rentals/:id", c.Rental.Detail)
	auth.POST("/rentals", c.Rental.Create)
	auth.PATCH("/rentals/:id/return", c.Rental.Return)
	auth.PATCH("/rentals/:id/confirm", c.Rental.ConfirmPayment)
	auth.PATCH("/rentals/:id/renew", c.Rental.Renew)
	auth.DELETE("/rentals/:id", c.Rental.Delete)

	// Purchases
	auth.GET("/purchases", c.Purchase.List)
	auth.GET("/purchases/search", c.Purchase.Search)
	auth.GET("/purchases/stats", c.Purchase.Stats)
	auth.GET("/purchases/user/:userId", c.Purchase.ByUser)
	auth.GET("/purchases/book/:bookId", c.Purchase.ByBook)
	auth.GET("/purchases/check/:userId/:bookId", c.Purchase.CheckUserPurchase)
	auth.GET("/purchases/:id", c.Purchase.Detail)
	auth.POST("/purchases", c.Purchase.Create)
	auth.PATCH("/purchases/:id/confirm", c.Purchase.ConfirmPayment)
	auth.PATCH("/purchases/:id/fail", c.Purchase.FailPayment)
	auth.PATCH("/purchases/:id/refund", c.Purchase.Refund)
	auth.DELETE("/purchases/:id", c.Purchase.Delete)

	// Payments
	auth.GET("/payments", c.Payment.List)
	auth.GET("/payments/search", c.Payment.Search)
	auth.GET("/payments/stats", c.Payment.Stats)
	auth.GET("/payments/user/:userId", c.Payment.ByUser)
	auth.GET("/payments/:id", c.Payment.Detail)
	auth.POST("/payments", c.Payment.Create)
	auth.PATCH("/payments/:id/process", c.Payment.Process)
	auth.PATCH("/payments/:id/refund", c.Payment.Refund)
}
