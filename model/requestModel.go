// model/requestModel.go
package model

import "time"

// BorrowRequest is a request row as stored, without any joined display
// columns. RequestDate is set at creation and never changes. DeliveryDate
// is non-nil exactly when the request has reached Delivered; ReturnDate
// is non-nil exactly when it has reached Returned.
type BorrowRequest struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	BookID       int64      `json:"book_id"`
	Status       Status     `json:"status"`
	RequestDate  time.Time  `json:"request_date"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
}

// RequestDetail is a request joined with user and book display columns.
// List and detail queries return this shape; the workflow engine works on
// the plain BorrowRequest only.
type RequestDetail struct {
	BorrowRequest
	UserName   string `json:"user_name,omitempty"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
}

// BookCount is one row of the top-borrowed ranking.
type BookCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}
