package echoServer

import (
	"github.com/labstack/echo/v4"

	"github.com/eminekibar/SmartLibrarySystem/app/echoServer/controller/book"
	"github.com/eminekibar/SmartLibrarySystem/app/echoServer/controller/borrow"
	"github.com/eminekibar/SmartLibrarySystem/app/echoServer/controller/report"
	"github.com/eminekibar/SmartLibrarySystem/app/echoServer/controller/user"
)

type C struct {
	Book   *book.Controller
	User   *user.Controller
	Borrow *borrow.Controller
	Report *report.Controller
}

func Register(e *echo.Echo, c C) {
	v1 := e.Group("/v1")

	// Books
	v1.GET("/books", c.Book.List)
	v1.GET("/books/:id", c.Book.Detail)
	v1.POST("/books", c.Book.Create)
	v1.PUT("/books/:id", c.Book.Update)
	v1.DELETE("/books/:id", c.Book.Delete)
	v1.PATCH("/books/:id/stock", c.Book.SetStock)

	// Users
	v1.POST("/users", c.User.Register)
	v1.GET("/users", c.User.List)
	v1.GET("/users/:id", c.User.Detail)
	v1.PUT("/users/:id", c.User.Update)
	v1.DELETE("/users/:id", c.User.Deactivate)
	v1.GET("/users/:id/requests", c.Borrow.ListByUser)

	// Borrow requests
	v1.POST("/requests", c.Borrow.Create)
	v1.GET("/requests", c.Borrow.List)
	v1.GET("/requests/:id", c.Borrow.Detail)
	v1.POST("/requests/:id/advance", c.Borrow.Advance)
	v1.DELETE("/requests/:id", c.Borrow.Withdraw)

	// Reports
	v1.GET("/reports/borrows", c.Report.BorrowCount)
	v1.GET("/reports/returns", c.Report.ReturnCount)
	v1.GET("/reports/overdue", c.Report.Overdue)
	v1.GET("/reports/top-books", c.Report.TopBooks)
	v1.GET("/reports/borrow-stats", c.Report.BorrowStats)
}
