package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eminekibar/SmartLibrarySystem/model"
)

// ErrInsufficientStock is returned by AdjustStock when applying the delta
// would push stock below zero (or the book row does not exist).
var ErrInsufficientStock = errors.New("insufficient stock")

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, f model.BookSearch) ([]model.Book, error)

	// AdjustStock applies delta atomically in SQL. It never reads stock
	// first; the guard in the UPDATE keeps stock non-negative.
	AdjustStock(ctx context.Context, id int64, delta int) error
	SetStock(ctx context.Context, id int64, stock int) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
INSERT INTO books (title, author, category, publish_year, stock, shelf)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.Category, b.PublishYear, b.Stock, b.Shelf,
	).Scan(&id); err != nil {
		return 0, err
	}
	b.ID = id
	return id, nil
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
UPDATE books
SET title=$1, author=$2, category=$3, publish_year=$4, stock=$5, shelf=$6
WHERE id=$7`
	res, err := r.db.ExecContext(ctx, q,
		b.Title, b.Author, b.Category, b.PublishYear, b.Stock, b.Shelf, b.ID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, title, author, category, publish_year, stock, shelf
FROM books
WHERE id=$1`
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.Category, &b.PublishYear, &b.Stock, &b.Shelf)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
SELECT id, title, author, category, publish_year, stock, shelf
FROM books
ORDER BY title, id`
	return r.queryBooks(ctx, q)
}

func (r *repo) Search(ctx context.Context, f model.BookSearch) ([]model.Book, error) {
	var sb strings.Builder
	sb.WriteString(`
SELECT id, title, author, category, publish_year, stock, shelf
FROM books
WHERE 1=1`)
	var args []any
	next := func() string { return fmt.Sprintf("$%d", len(args)) }

	if f.Category != "" {
		args = append(args, "%"+f.Category+"%")
		sb.WriteString(" AND category ILIKE " + next())
	}
	if f.Author != "" {
		args = append(args, "%"+f.Author+"%")
		sb.WriteString(" AND author ILIKE " + next())
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		sb.WriteString(" AND publish_year = " + next())
	}
	if f.Keyword != "" {
		args = append(args, "%"+f.Keyword+"%")
		p := next()
		sb.WriteString(" AND (title ILIKE " + p + " OR author ILIKE " + p + " OR category ILIKE " + p + ")")
	}
	sb.WriteString(" ORDER BY title, id")

	return r.queryBooks(ctx, sb.String(), args...)
}

func (r *repo) queryBooks(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.PublishYear, &b.Stock, &b.Shelf); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) AdjustStock(ctx context.Context, id int64, delta int) error {
	// Guard: the delta only lands when it keeps stock non-negative.
	const q = `
UPDATE books
SET stock = stock + $2
WHERE id = $1
AND stock + $2 >= 0`
	res, err := r.db.ExecContext(ctx, q, id, delta)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *repo) SetStock(ctx context.Context, id int64, stock int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE books SET stock=$2 WHERE id=$1`, id, stock)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
