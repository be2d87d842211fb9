package userrepo

import (
	"context"
	"database/sql"

	"github.com/eminekibar/SmartLibrarySystem/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)

	// EmailExists reports whether another active user already holds
	// email. excludeID skips the record's own row on update (0 = none).
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const userColumns = `id, full_name, email, password_hash, school_number, phone, role, is_active, created_at`

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
INSERT INTO users (full_name, email, password_hash, school_number, phone, role, is_active)
VALUES ($1,$2,$3,$4,$5,$6,TRUE)
RETURNING id, created_at`,
		u.FullName, u.Email, u.PasswordHash, u.SchoolNumber, u.Phone, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET full_name=$1, email=$2, password_hash=$3, school_number=$4, phone=$5, role=$6
WHERE id=$7`,
		u.FullName, u.Email, u.PasswordHash, u.SchoolNumber, u.Phone, u.Role, u.ID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active=FALSE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) List(ctx context.Context) ([]model.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE is_active ORDER BY full_name, id`)
}

func (r *repo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE is_active AND role=$1 ORDER BY full_name, id`, role)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email)
}

func (r *repo) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	q := `SELECT COUNT(1) FROM users WHERE lower(email)=lower($1) AND is_active`
	args := []any{email}
	if excludeID > 0 {
		q += ` AND id <> $2`
		args = append(args, excludeID)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) queryUser(ctx context.Context, q string, args ...any) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash,
		&u.SchoolNumber, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) queryUsers(ctx context.Context, q string, args ...any) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.FullName, &u.Email, &u.PasswordHash,
			&u.SchoolNumber, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
