package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eminekibar/SmartLibrarySystem/model"
	usersvc "github.com/eminekibar/SmartLibrarySystem/service/user"
	"github.com/eminekibar/SmartLibrarySystem/validation"
)

// Field-level rules live in the validation gate behind the service, so
// the controller only binds and maps errors.
type Controller struct {
	Svc usersvc.Service
	Log *slog.Logger
}

// POST /v1/users
func (h *Controller) Register(c echo.Context) error {
	var req RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}

	u, err := h.Svc.Register(c.Request().Context(), model.User{
		FullName:     req.FullName,
		Email:        req.Email,
		SchoolNumber: req.SchoolNumber,
		Phone:        req.Phone,
		Role:         req.Role,
	}, req.Password)
	if err != nil {
		return h.mapError(c, err, "user register")
	}
	return c.JSON(http.StatusCreated, u)
}

// PUT /v1/users/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}

	err = h.Svc.Update(c.Request().Context(), model.User{
		ID:           id,
		FullName:     req.FullName,
		Email:        req.Email,
		SchoolNumber: req.SchoolNumber,
		Phone:        req.Phone,
		Role:         req.Role,
	}, req.Password)
	if err != nil {
		return h.mapError(c, err, "user update")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// DELETE /v1/users/:id
func (h *Controller) Deactivate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Deactivate(c.Request().Context(), id); err != nil {
		return h.mapError(c, err, "user deactivate")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deactivated"})
}

// GET /v1/users?role=
func (h *Controller) List(c echo.Context) error {
	role := c.QueryParam("role")
	rows, err := h.Svc.List(c.Request().Context(), role)
	if err != nil {
		h.Log.Error("user list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err, "user detail")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Controller) mapError(c echo.Context, err error, op string) error {
	switch usersvc.Code(err) {
	case usersvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case usersvc.ErrEmailTaken:
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	case usersvc.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  validation.Violations(err),
		})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
