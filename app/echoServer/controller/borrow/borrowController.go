package borrow

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/eminekibar/SmartLibrarySystem/model"
	bs "github.com/eminekibar/SmartLibrarySystem/service/borrow"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/requests
func (h *Controller) Create(c echo.Context) error {
	var req CreateRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.CreateRequest(c.Request().Context(), req.UserID, req.BookID)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case bs.ErrOutOfStock:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is out of stock"})
		default:
			h.Log.Error("request create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// POST /v1/requests/:id/advance
func (h *Controller) Advance(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req AdvanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	out, err := h.Svc.AdvanceStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrRequestNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		case bs.ErrInvalidTransition:
			return c.JSON(http.StatusConflict, echo.Map{"message": "invalid status transition"})
		case bs.ErrOutOfStock:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is out of stock"})
		default:
			h.Log.Error("request advance", "err", err, "request_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// DELETE /v1/requests/:id
func (h *Controller) Withdraw(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req WithdrawReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	if err := h.Svc.Withdraw(c.Request().Context(), id, req.UserID); err != nil {
		switch bs.Code(err) {
		case bs.ErrRequestNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		case bs.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case bs.ErrInvalidTransition:
			return c.JSON(http.StatusConflict, echo.Map{"message": "request is no longer pending"})
		default:
			h.Log.Error("request withdraw", "err", err, "request_id", id)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "withdrawn"})
}

// GET /v1/requests/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.GetRequest(c.Request().Context(), id)
	if err != nil {
		if bs.Code(err) == bs.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		}
		h.Log.Error("request detail", "err", err, "request_id", id)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/requests?status=
func (h *Controller) List(c echo.Context) error {
	var filter *model.Status
	if raw := c.QueryParam("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown status"})
		}
		filter = &status
	}

	rows, err := h.Svc.Requests(c.Request().Context(), filter)
	if err != nil {
		h.Log.Error("request list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/:id/requests
func (h *Controller) ListByUser(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.UserRequests(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("request list by user", "err", err, "user_id", userID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
