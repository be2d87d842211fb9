// Package main smart library API.
//
// @title           Smart Library API
// @version         1.0
// @description     library service (books, users, borrow requests, reports).
// @BasePath        /
// @schemes         http
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/eminekibar/SmartLibrarySystem/app/echoServer"
	bookctrl "github.com/eminekibar/SmartLibrarySystem/app/echoServer/controller/book"
	borrowctrl "github.com/eminekibar/SmartLibrarySystem/app/echoServer/controller/borrow"
	reportctrl "github.com/eminekibar/SmartLibrarySystem/app/echoServer/controller/report"
	userctrl "github.com/eminekibar/SmartLibrarySystem/app/echoServer/controller/user"
	echovalidation "github.com/eminekibar/SmartLibrarySystem/app/echoServer/validation"
	"github.com/eminekibar/SmartLibrarySystem/config"
	bookrepo "github.com/eminekibar/SmartLibrarySystem/repository/book"
	requestrepo "github.com/eminekibar/SmartLibrarySystem/repository/request"
	userrepo "github.com/eminekibar/SmartLibrarySystem/repository/user"
	booksvc "github.com/eminekibar/SmartLibrarySystem/service/book"
	"github.com/eminekibar/SmartLibrarySystem/service/borrow"
	reportsvc "github.com/eminekibar/SmartLibrarySystem/service/report"
	usersvc "github.com/eminekibar/SmartLibrarySystem/service/user"
	"github.com/eminekibar/SmartLibrarySystem/util/database"
	"github.com/eminekibar/SmartLibrarySystem/validation"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	br := bookrepo.New(db)
	rr := requestrepo.New(db)
	ur := userrepo.New(db)

	// services
	v := validator.New()
	gate := validation.NewGate(v)
	bs := booksvc.New(br, gate)
	us := usersvc.New(ur, gate)
	ws := borrow.New(br, rr)
	rs := reportsvc.New(rr, cfg.AllowedLoanDays)

	// controllers
	bookC := &bookctrl.Controller{Svc: bs, Log: log}
	userC := &userctrl.Controller{Svc: us, Log: log}
	borrowC := &borrowctrl.Controller{Svc: ws, V: v, Log: log}
	reportC := &reportctrl.Controller{Svc: rs, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = echovalidation.New(v)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Book:   bookC,
		User:   userC,
		Borrow: borrowC,
		Report: reportC,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
