// repository/request/requestRepository.go
package requestrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eminekibar/SmartLibrarySystem/model"
)

// DateField names a timestamp column usable in CountByDateRange. Only the
// two listed fields are accepted; anything else errors before touching SQL.
type DateField string

const (
	FieldRequestDate DateField = "request_date"
	FieldReturnDate  DateField = "return_date"
)

func (f DateField) column() (string, bool) {
	switch f {
	case FieldRequestDate, FieldReturnDate:
		return string(f), true
	}
	return "", false
}

type Repo interface {
	Insert(ctx context.Context, req *model.BorrowRequest) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.BorrowRequest, error)
	GetDetail(ctx context.Context, id int64) (*model.RequestDetail, error)
	ListByUser(ctx context.Context, userID int64) ([]model.RequestDetail, error)
	List(ctx context.Context, status *model.Status) ([]model.RequestDetail, error)

	// UpdateStatus writes status and both optional dates as one UPDATE.
	UpdateStatus(ctx context.Context, id int64, status model.Status, deliveryDate, returnDate *time.Time) error

	// DeletePending removes the row only while the request is still
	// Pending and owned by userID. Reports whether a row was deleted.
	DeletePending(ctx context.Context, id, userID int64) (bool, error)

	// ActiveStatus returns the status of the most recent non-Returned
	// request for (userID, bookID), or nil when there is none.
	ActiveStatus(ctx context.Context, userID, bookID int64) (*model.Status, error)

	CountByDateRange(ctx context.Context, field DateField, from, to time.Time) (int, error)
	Overdue(ctx context.Context, now time.Time, allowedDays int) ([]model.RequestDetail, error)
	TopBorrowed(ctx context.Context, n int) ([]model.BookCount, error)
	BorrowStats(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, req *model.BorrowRequest) (int64, error) {
	const q = `
INSERT INTO borrow_requests (user_id, book_id, status, request_date)
VALUES ($1,$2,$3,$4)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q,
		req.UserID, req.BookID, req.Status.String(), req.RequestDate,
	).Scan(&id); err != nil {
		return 0, err
	}
	req.ID = id
	return id, nil
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.BorrowRequest, error) {
	const q = `
SELECT id, user_id, book_id, status, request_date, delivery_date, return_date
FROM borrow_requests
WHERE id=$1`
	var (
		req    model.BorrowRequest
		status string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&req.ID, &req.UserID, &req.BookID, &status,
		&req.RequestDate, &req.DeliveryDate, &req.ReturnDate)
	if err != nil {
		return nil, err
	}
	if req.Status, err = model.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("request %d: %w", id, err)
	}
	return &req, nil
}

const detailColumns = `
br.id, br.user_id, br.book_id, br.status, br.request_date, br.delivery_date, br.return_date,
u.full_name AS user_name, b.title AS book_title, b.author AS book_author`

const detailJoins = `
FROM borrow_requests br
JOIN users u ON u.id = br.user_id
JOIN books b ON b.id = br.book_id`

func (r *repo) GetDetail(ctx context.Context, id int64) (*model.RequestDetail, error) {
	q := "SELECT" + detailColumns + detailJoins + " WHERE br.id=$1"
	rows, err := r.queryDetails(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	return &rows[0], nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.RequestDetail, error) {
	q := "SELECT" + detailColumns + detailJoins + `
 WHERE br.user_id=$1
 ORDER BY br.request_date DESC, br.id DESC`
	return r.queryDetails(ctx, q, userID)
}

func (r *repo) List(ctx context.Context, status *model.Status) ([]model.RequestDetail, error) {
	q := "SELECT" + detailColumns + detailJoins
	var args []any
	if status != nil {
		q += " WHERE br.status=$1"
		args = append(args, status.String())
	}
	q += " ORDER BY br.request_date DESC, br.id DESC"
	return r.queryDetails(ctx, q, args...)
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, status model.Status, deliveryDate, returnDate *time.Time) error {
	const q = `
UPDATE borrow_requests
SET status=$2, delivery_date=$3, return_date=$4
WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, status.String(), deliveryDate, returnDate)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) DeletePending(ctx context.Context, id, userID int64) (bool, error) {
	const q = `
DELETE FROM borrow_requests
WHERE id=$1 AND user_id=$2 AND status=$3`
	res, err := r.db.ExecContext(ctx, q, id, userID, model.StatusPending.String())
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) ActiveStatus(ctx context.Context, userID, bookID int64) (*model.Status, error) {
	const q = `
SELECT status
FROM borrow_requests
WHERE user_id=$1 AND book_id=$2 AND status <> $3
ORDER BY request_date DESC, id DESC
LIMIT 1`
	var raw string
	err := r.db.QueryRowContext(ctx, q, userID, bookID, model.StatusReturned.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	status, err := model.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *repo) CountByDateRange(ctx context.Context, field DateField, from, to time.Time) (int, error) {
	col, ok := field.column()
	if !ok {
		return 0, fmt.Errorf("unknown date field %q", field)
	}
	q := fmt.Sprintf(`SELECT COUNT(1) FROM borrow_requests WHERE %s >= $1 AND %s < $2`, col, col)
	var n int
	if err := r.db.QueryRowContext(ctx, q, from, to).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *repo) Overdue(ctx context.Context, now time.Time, allowedDays int) ([]model.RequestDetail, error) {
	q := "SELECT" + detailColumns + detailJoins + `
 WHERE br.status=$1
 AND br.delivery_date IS NOT NULL
 AND br.return_date IS NULL
 AND br.delivery_date < $2
 ORDER BY br.delivery_date`
	cutoff := now.AddDate(0, 0, -allowedDays)
	return r.queryDetails(ctx, q, model.StatusDelivered.String(), cutoff)
}

func (r *repo) TopBorrowed(ctx context.Context, n int) ([]model.BookCount, error) {
	const q = `
SELECT b.title, COUNT(*) AS borrow_count
FROM borrow_requests br
JOIN books b ON b.id = br.book_id
GROUP BY b.title
ORDER BY borrow_count DESC, b.title
LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookCount
	for rows.Next() {
		var bc model.BookCount
		if err := rows.Scan(&bc.Title, &bc.Count); err != nil {
			return nil, err
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}

func (r *repo) BorrowStats(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const q = `
SELECT CAST(request_date AS DATE) AS request_day, COUNT(*) AS cnt
FROM borrow_requests
WHERE request_date >= $1 AND request_date < $2
GROUP BY CAST(request_date AS DATE)`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var (
			day time.Time
			cnt int
		)
		if err := rows.Scan(&day, &cnt); err != nil {
			return nil, err
		}
		stats[day.Format("2006-01-02")] = cnt
	}
	return stats, rows.Err()
}

func (r *repo) queryDetails(ctx context.Context, q string, args ...any) ([]model.RequestDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RequestDetail
	for rows.Next() {
		var (
			d      model.RequestDetail
			status string
		)
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.BookID, &status,
			&d.RequestDate, &d.DeliveryDate, &d.ReturnDate,
			&d.UserName, &d.BookTitle, &d.BookAuthor,
		); err != nil {
			return nil, err
		}
		if d.Status, err = model.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("request %d: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
