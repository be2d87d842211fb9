package usersvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eminekibar/SmartLibrarySystem/model"
	"github.com/eminekibar/SmartLibrarySystem/util/hash"
	"github.com/eminekibar/SmartLibrarySystem/validation"
)

type ErrCode string

const (
	ErrNotFound   ErrCode = "USER_NOT_FOUND"
	ErrValidation ErrCode = "VALIDATION_FAILED"
	ErrEmailTaken ErrCode = "EMAIL_TAKEN"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

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
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
}

type Service interface {
	// Register creates a user behind the full validation gate,
	// including the strong-password rule and email uniqueness.
	Register(ctx context.Context, u model.User, password string) (*model.User, error)

	// Update rewrites the record. An empty password keeps the stored
	// hash; a non-empty one is re-validated and re-hashed.
	Update(ctx context.Context, u model.User, password string) error

	Deactivate(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)

	// List returns active users, optionally filtered by role.
	List(ctx context.Context, role string) ([]model.User, error)
}

type service struct {
	r    Repo
	gate *validation.Gate
}

func New(r Repo, gate *validation.Gate) Service { return &service{r: r, gate: gate} }

func (s *service) Register(ctx context.Context, u model.User, password string) (*model.User, error) {
	res := s.gate.User(u, password, true)
	if err := s.checkEmailFree(ctx, res, u.Email, 0); err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, validationError{inner: err.(*validation.Error)}
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hashed
	u.IsActive = true
	if u.Role == "" {
		u.Role = model.RoleStudent
	}

	if err := s.r.Create(ctx, &u); err != nil {
		if isUniqueEmail(err) {
			return nil, makeErr(ErrEmailTaken)
		}
		return nil, err
	}
	return &u, nil
}

func (s *service) Update(ctx context.Context, u model.User, password string) error {
	changePassword := strings.TrimSpace(password) != ""
	res := s.gate.User(u, password, changePassword)
	if err := s.checkEmailFree(ctx, res, u.Email, u.ID); err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return validationError{inner: err.(*validation.Error)}
	}

	if changePassword {
		hashed, err := hash.HashPassword(password)
		if err != nil {
			return err
		}
		u.PasswordHash = hashed
	} else {
		existing, err := s.r.ByID(ctx, u.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}
		u.PasswordHash = existing.PasswordHash
	}

	if err := s.r.Update(ctx, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		if isUniqueEmail(err) {
			return makeErr(ErrEmailTaken)
		}
		return err
	}
	return nil
}

// checkEmailFree appends the uniqueness violation to the gate result so
// callers see it in the same aggregated list as the field rules.
func (s *service) checkEmailFree(ctx context.Context, res *validation.Result, email string, excludeID int64) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	exists, err := s.r.EmailExists(ctx, email, excludeID)
	if err != nil {
		return err
	}
	res.Check(!exists, "a user with this email already exists")
	return nil
}

func isUniqueEmail(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(strings.ToLower(pgErr.ConstraintName), "email")
}

func (s *service) Deactivate(ctx context.Context, id int64) error {
	if err := s.r.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.r.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) List(ctx context.Context, role string) ([]model.User, error) {
	if role != "" {
		return s.r.ListByRole(ctx, role)
	}
	return s.r.List(ctx)
}
