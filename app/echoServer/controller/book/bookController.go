package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eminekibar/SmartLibrarySystem/model"
	booksvc "github.com/eminekibar/SmartLibrarySystem/service/book"
	"github.com/eminekibar/SmartLibrarySystem/validation"
)

// Field-level rules live in the validation gate behind the service, so
// the controller only binds and maps errors.
type Controller struct {
	Svc booksvc.Service
	Log *slog.Logger
}

// POST /v1/books
func (h *Controller) Create(c echo.Context) error {
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}

	id, err := h.Svc.Create(c.Request().Context(), model.Book{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		PublishYear: req.PublishYear,
		Stock:       req.Stock,
		Shelf:       req.Shelf,
	})
	if err != nil {
		return h.mapError(c, err, "book create")
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// PUT /v1/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}

	err = h.Svc.Update(c.Request().Context(), model.Book{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		PublishYear: req.PublishYear,
		Stock:       req.Stock,
		Shelf:       req.Shelf,
	})
	if err != nil {
		return h.mapError(c, err, "book update")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// DELETE /v1/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.mapError(c, err, "book delete")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// PATCH /v1/books/:id/stock
func (h *Controller) SetStock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req SetStockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.Svc.SetStock(c.Request().Context(), id, req.Stock); err != nil {
		return h.mapError(c, err, "book set stock")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "stock updated"})
}

// GET /v1/books  (with ?category&author&year&q as search filters)
func (h *Controller) List(c echo.Context) error {
	year, _ := strconv.Atoi(c.QueryParam("year"))
	rows, err := h.Svc.Search(c.Request().Context(), model.BookSearch{
		Category: c.QueryParam("category"),
		Author:   c.QueryParam("author"),
		Year:     year,
		Keyword:  c.QueryParam("q"),
	})
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, "book detail")
	}
	return c.JSON(http.StatusOK, row)
}

func (h *Controller) mapError(c echo.Context, err error, op string) error {
	switch booksvc.Code(err) {
	case booksvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case booksvc.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  validation.Violations(err),
		})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
