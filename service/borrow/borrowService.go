// Package borrow is the workflow engine for borrow requests. It owns the
// ordered status flow and every stock side effect tied to it; no other
// component mutates stock as part of borrowing or returning.
package borrow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/eminekibar/SmartLibrarySystem/model"
	bookrepo "github.com/eminekibar/SmartLibrarySystem/repository/book"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound      ErrCode = "BOOK_NOT_FOUND"
	ErrRequestNotFound   ErrCode = "REQUEST_NOT_FOUND"
	ErrOutOfStock        ErrCode = "OUT_OF_STOCK"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrNotOwner          ErrCode = "NOT_OWNER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for plain errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Books is the slice of the catalog store the engine needs.
type Books interface {
	Get(ctx context.Context, id int64) (*model.Book, error)
	AdjustStock(ctx context.Context, id int64, delta int) error
}

// Requests is the slice of the request store the engine needs.
type Requests interface {
	Insert(ctx context.Context, req *model.BorrowRequest) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.BorrowRequest, error)
	GetDetail(ctx context.Context, id int64) (*model.RequestDetail, error)
	ListByUser(ctx context.Context, userID int64) ([]model.RequestDetail, error)
	List(ctx context.Context, status *model.Status) ([]model.RequestDetail, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status, deliveryDate, returnDate *time.Time) error
	DeletePending(ctx context.Context, id, userID int64) (bool, error)
	ActiveStatus(ctx context.Context, userID, bookID int64) (*model.Status, error)
}

type Service interface {
	// CreateRequest opens a Pending request. Stock is checked but not
	// touched: the copy leaves the shelf at delivery, not at request time.
	CreateRequest(ctx context.Context, userID, bookID int64) (*model.BorrowRequest, error)

	// AdvanceStatus moves a request to target, which must be the raw
	// token of the immediate successor of its current status. Delivered
	// decrements the book's stock by one (re-checked at that moment);
	// Returned increments it by one.
	AdvanceStatus(ctx context.Context, requestID int64, target string) (*model.BorrowRequest, error)

	// Withdraw deletes a request that is still Pending, on behalf of the
	// user who opened it.
	Withdraw(ctx context.Context, requestID, userID int64) error

	GetRequest(ctx context.Context, requestID int64) (*model.RequestDetail, error)
	UserRequests(ctx context.Context, userID int64) ([]model.RequestDetail, error)
	Requests(ctx context.Context, status *model.Status) ([]model.RequestDetail, error)

	// ActiveRequestStatus reports the latest non-Returned request of
	// (userID, bookID), or nil. Informational only; CreateRequest does
	// not enforce uniqueness.
	ActiveRequestStatus(ctx context.Context, userID, bookID int64) (*model.Status, error)
}

// ----- Service implementation -----

type service struct {
	books Books
	reqs  Requests
	locks keyedMutex
}

func New(b Books, r Requests) Service {
	return &service{books: b, reqs: r}
}

func (s *service) CreateRequest(ctx context.Context, userID, bookID int64) (*model.BorrowRequest, error) {
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	if book.Stock <= 0 {
		return nil, makeErr(ErrOutOfStock)
	}

	req := &model.BorrowRequest{
		UserID:      userID,
		BookID:      bookID,
		Status:      model.StatusPending,
		RequestDate: time.Now(),
	}
	if _, err := s.reqs.Insert(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) AdvanceStatus(ctx context.Context, requestID int64, target string) (*model.BorrowRequest, error) {
	// Unrecognized tokens fail the same way as any other illegal target.
	targetStatus, err := model.ParseStatus(target)
	if err != nil {
		return nil, makeErr(ErrInvalidTransition)
	}

	// At most one advance per request id at a time, so two callers cannot
	// both pass the transition check and double-apply the stock delta.
	unlock := s.locks.lock(requestID)
	defer unlock()

	req, err := s.reqs.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRequestNotFound)
		}
		return nil, err
	}

	next, ok := req.Status.Successor()
	if !ok || next != targetStatus {
		return nil, makeErr(ErrInvalidTransition)
	}

	now := time.Now()
	deliveryDate, returnDate := req.DeliveryDate, req.ReturnDate

	switch targetStatus {
	case model.StatusDelivered:
		// Stock may have been drained by other approved requests since
		// creation; the guarded delta re-checks it atomically.
		if err := s.books.AdjustStock(ctx, req.BookID, -1); err != nil {
			if errors.Is(err, bookrepo.ErrInsufficientStock) {
				return nil, makeErr(ErrOutOfStock)
			}
			return nil, err
		}
		deliveryDate = &now
	case model.StatusReturned:
		// A return is always accepted.
		if err := s.books.AdjustStock(ctx, req.BookID, 1); err != nil {
			return nil, err
		}
		returnDate = &now
	}

	if err := s.reqs.UpdateStatus(ctx, requestID, targetStatus, deliveryDate, returnDate); err != nil {
		return nil, err
	}

	req.Status = targetStatus
	req.DeliveryDate = deliveryDate
	req.ReturnDate = returnDate
	return req, nil
}

func (s *service) Withdraw(ctx context.Context, requestID, userID int64) error {
	deleted, err := s.reqs.DeletePending(ctx, requestID, userID)
	if err != nil {
		return err
	}
	if deleted {
		return nil
	}

	// The guarded DELETE matched nothing; look up the row to report why.
	req, err := s.reqs.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrRequestNotFound)
		}
		return err
	}
	if req.UserID != userID {
		return makeErr(ErrNotOwner)
	}
	return makeErr(ErrInvalidTransition)
}

func (s *service) GetRequest(ctx context.Context, requestID int64) (*model.RequestDetail, error) {
	d, err := s.reqs.GetDetail(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRequestNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (s *service) UserRequests(ctx context.Context, userID int64) ([]model.RequestDetail, error) {
	return s.reqs.ListByUser(ctx, userID)
}

func (s *service) Requests(ctx context.Context, status *model.Status) ([]model.RequestDetail, error) {
	return s.reqs.List(ctx, status)
}

func (s *service) ActiveRequestStatus(ctx context.Context, userID, bookID int64) (*model.Status, error) {
	return s.reqs.ActiveStatus(ctx, userID, bookID)
}
