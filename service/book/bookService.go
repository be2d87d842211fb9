package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eminekibar/SmartLibrarySystem/model"
	"github.com/eminekibar/SmartLibrarySystem/validation"
)

type ErrCode string

const (
	ErrNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrValidation ErrCode = "VALIDATION_FAILED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// validationError keeps the violation list reachable via errors.As while
// still carrying a code for the controller switch.
type validationError struct{ inner *validation.Error }

func (e validationError) Error() string { return e.inner.Error() }
func (e validationError) Code() ErrCode { return ErrValidation }
func (e validationError) Unwrap() error { return e.inner }

// Code extracts the error code, or "" for plain errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, f model.BookSearch) ([]model.Book, error)
	SetStock(ctx context.Context, id int64, stock int) error
}

type Service interface {
	// Create and Update run the full validation gate; nothing is
	// persisted unless every rule passes.
	Create(ctx context.Context, b model.Book) (int64, error)
	Update(ctx context.Context, b model.Book) error

	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, f model.BookSearch) ([]model.Book, error)

	// SetStock replaces the absolute stock value (admin restock).
	// Borrow-driven changes go through the workflow engine instead.
	SetStock(ctx context.Context, id int64, stock int) error
}

type service struct {
	r    Repo
	gate *validation.Gate
}

func New(r Repo, gate *validation.Gate) Service { return &service{r: r, gate: gate} }

func (s *service) Create(ctx context.Context, b model.Book) (int64, error) {
	if err := s.gate.Book(b).Err(); err != nil {
		return 0, validationError{inner: err.(*validation.Error)}
	}
	return s.r.Create(ctx, &b)
}

func (s *service) Update(ctx context.Context, b model.Book) error {
	if err := s.gate.Book(b).Err(); err != nil {
		return validationError{inner: err.(*validation.Error)}
	}
	if err := s.r.Update(ctx, &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) Search(ctx context.Context, f model.BookSearch) ([]model.Book, error) {
	if f.Empty() {
		return s.r.List(ctx)
	}
	return s.r.Search(ctx, f)
}

func (s *service) SetStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		r := &validation.Result{}
		r.Add("stock must not be negative")
		return validationError{inner: r.Err().(*validation.Error)}
	}
	if err := s.r.SetStock(ctx, id, stock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}
