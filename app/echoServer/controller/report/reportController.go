package report

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	reportsvc "github.com/eminekibar/SmartLibrarySystem/service/report"
)

type Controller struct {
	Svc reportsvc.Service
	Log *slog.Logger
}

const dayLayout = "2006-01-02"

func parseDay(raw string) (time.Time, error) {
	return time.Parse(dayLayout, raw)
}

// GET /v1/reports/borrows?from&to  or  ?day&period=daily|weekly|monthly
func (h *Controller) BorrowCount(c echo.Context) error {
	if day := c.QueryParam("day"); day != "" {
		d, err := parseDay(day)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid day"})
		}
		period := reportsvc.Period(c.QueryParam("period"))
		if period == "" {
			period = reportsvc.PeriodDaily
		}
		n, err := h.Svc.BorrowCountFor(c.Request().Context(), d, period)
		if err != nil {
			if errors.Is(err, reportsvc.ErrUnknownPeriod) {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid period"})
			}
			h.Log.Error("borrow count", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"count": n})
	}

	from, to, err := h.parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date range"})
	}
	n, err := h.Svc.BorrowCount(c.Request().Context(), from, to)
	if err != nil {
		h.Log.Error("borrow count", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// GET /v1/reports/returns?from&to
func (h *Controller) ReturnCount(c echo.Context) error {
	from, to, err := h.parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date range"})
	}
	n, err := h.Svc.ReturnCount(c.Request().Context(), from, to)
	if err != nil {
		h.Log.Error("return count", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// GET /v1/reports/overdue?allowed_days
func (h *Controller) Overdue(c echo.Context) error {
	days := 0
	if raw := c.QueryParam("allowed_days"); raw != "" {
		var err error
		if days, err = strconv.Atoi(raw); err != nil || days < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid allowed_days"})
		}
	}
	rows, err := h.Svc.Overdue(c.Request().Context(), days)
	if err != nil {
		h.Log.Error("overdue", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/reports/top-books?limit
func (h *Controller) TopBooks(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid limit"})
		}
	}
	rows, err := h.Svc.TopBooks(c.Request().Context(), limit)
	if err != nil {
		h.Log.Error("top books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/reports/borrow-stats?from&to
func (h *Controller) BorrowStats(c echo.Context) error {
	from, to, err := h.parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid date range"})
	}
	stats, err := h.Svc.BorrowStats(c.Request().Context(), from, to)
	if err != nil {
		h.Log.Error("borrow stats", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": stats})
}

// parseRange reads from/to days; to is exclusive and defaults to the day
// after from, so a single ?from=... asks for exactly that day.
func (h *Controller) parseRange(c echo.Context) (time.Time, time.Time, error) {
	from, err := parseDay(c.QueryParam("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := parseDay(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return from, to, nil
	}
	return from, from.AddDate(0, 0, 1), nil
}
