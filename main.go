// Package main Livrarium API.
//
// @title           Livrarium API
// @version         1.0
// @description     Bookstore backend (users, books, rentals, purchases, payments).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/LivrariumProject/back-end/app/echoServer"
	authctrl "github.com/LivrariumProject/back-end/app/echoServer/controller/auth"
	bookctrl "github.com/LivrariumProject/back-end/app/echoServer/controller/book"
	paymentctrl "github.com/LivrariumProject/back-end/app/echoServer/controller/payment"
	purchasectrl "github.com/LivrariumProject/back-end/app/echoServer/controller/purchase"
	rentalctrl "github.com/LivrariumProject/back-end/app/echoServer/controller/rental"
	userctrl "github.com/LivrariumProject/back-end/app/echoServer/controller/user"
	"github.com/LivrariumProject/back-end/app/echoServer/validation"
	"github.com/LivrariumProject/back-end/config"
	bookrepo "github.com/LivrariumProject/back-end/repository/book"
	"github.com/LivrariumProject/back-end/repository/gateway"
	paymentrepo "github.com/LivrariumProject/back-end/repository/payment"
	purchaserepo "github.com/LivrariumProject/back-end/repository/purchase"
	rentalrepo "github.com/LivrariumProject/back-end/repository/rental"
	userrepo "github.com/LivrariumProject/back-end/repository/user"
	authsvc "github.com/LivrariumProject/back-end/service/auth"
	booksvc "github.com/LivrariumProject/back-end/service/book"
	paymentsvc "github.com/LivrariumProject/back-end/service/payment"
	purchasesvc "github.com/LivrariumProject/back-end/service/purchase"
	rentalsvc "github.com/LivrariumProject/back-end/service/rental"
	usersvc "github.com/LivrariumProject/back-end/service/user"
	"github.com/LivrariumProject/back-end/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := rentalrepo.New(db)
	pr := purchaserepo.New(db)
	payr := paymentrepo.New(db)

	var gw gateway.Gateway
	if cfg.GatewayURL != "" {
		gw = gateway.NewHTTP(cfg.GatewayURL, cfg.GatewayKey)
	} else {
		gw = gateway.NewLocal()
	}

	// services
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	rs := rentalsvc.New(rr, br, ur)
	ps := purchasesvc.New(pr, br, ur)
	pays := paymentsvc.New(payr, ur, gw)
	bl := authsvc.NewBlacklist()
	as := authsvc.New(ur, cfg.JWTSecret, bl)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	purchaseC := &purchasectrl.Controller{Svc: ps, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: pays, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		User:     userC,
		Book:     bookC,
		Rental:   rentalC,
		Purchase: purchaseC,
		Payment:  paymentC,

		AuthSvc:   as,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
