// Package reportsvc serves the read-only borrowing projections: counts
// by date range, overdue listings and the top-borrowed ranking. It has no
// invariants of its own; every answer reflects the store at query time.
package reportsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eminekibar/SmartLibrarySystem/model"
	requestrepo "github.com/eminekibar/SmartLibrarySystem/repository/request"
)

// DefaultAllowedDays is the loan period used when the caller does not
// pick one.
const DefaultAllowedDays = 14

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ErrUnknownPeriod marks a period token outside the three listed values,
// so callers can tell a bad request apart from a store failure.
var ErrUnknownPeriod = errors.New("unknown period")

type Repo interface {
	CountByDateRange(ctx context.Context, field requestrepo.DateField, from, to time.Time) (int, error)
	Overdue(ctx context.Context, now time.Time, allowedDays int) ([]model.RequestDetail, error)
	TopBorrowed(ctx context.Context, n int) ([]model.BookCount, error)
	BorrowStats(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type Service interface {
	// BorrowCount counts requests opened in [from, to).
	BorrowCount(ctx context.Context, from, to time.Time) (int, error)

	// ReturnCount counts requests returned in [from, to).
	ReturnCount(ctx context.Context, from, to time.Time) (int, error)

	// BorrowCountFor counts requests opened in the daily, weekly or
	// monthly window starting at the given day.
	BorrowCountFor(ctx context.Context, day time.Time, period Period) (int, error)

	// Overdue lists delivered, unreturned requests older than
	// allowedDays (<= 0 selects the service default).
	Overdue(ctx context.Context, allowedDays int) ([]model.RequestDetail, error)

	TopBooks(ctx context.Context, n int) ([]model.BookCount, error)
	BorrowStats(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type service struct {
	r           Repo
	allowedDays int
	now         func() time.Time
}

func New(r Repo, allowedDays int) Service {
	if allowedDays <= 0 {
		allowedDays = DefaultAllowedDays
	}
	return &service{r: r, allowedDays: allowedDays, now: time.Now}
}

func (s *service) BorrowCount(ctx context.Context, from, to time.Time) (int, error) {
	return s.r.CountByDateRange(ctx, requestrepo.FieldRequestDate, from, to)
}

func (s *service) ReturnCount(ctx context.Context, from, to time.Time) (int, error) {
	return s.r.CountByDateRange(ctx, requestrepo.FieldReturnDate, from, to)
}

func (s *service) BorrowCountFor(ctx context.Context, day time.Time, period Period) (int, error) {
	from := day.Truncate(24 * time.Hour)
	var to time.Time
	switch period {
	case PeriodDaily:
		to = from.AddDate(0, 0, 1)
	case PeriodWeekly:
		to = from.AddDate(0, 0, 7)
	case PeriodMonthly:
		to = from.AddDate(0, 1, 0)
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownPeriod, period)
	}
	return s.r.CountByDateRange(ctx, requestrepo.FieldRequestDate, from, to)
}

func (s *service) Overdue(ctx context.Context, allowedDays int) ([]model.RequestDetail, error) {
	if allowedDays <= 0 {
		allowedDays = s.allowedDays
	}
	return s.r.Overdue(ctx, s.now(), allowedDays)
}

func (s *service) TopBooks(ctx context.Context, n int) ([]model.BookCount, error) {
	if n <= 0 {
		n = 10
	}
	return s.r.TopBorrowed(ctx, n)
}

func (s *service) BorrowStats(ctx context.Context, from, to time.Time) (map[string]int, error) {
	return s.r.BorrowStats(ctx, from, to)
}
