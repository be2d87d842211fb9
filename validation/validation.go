// Package validation is the gate in front of Book and User mutations.
// Every rule is checked and every violation reported together, so callers
// can surface all problems at once. Nothing is persisted by the caller
// unless the whole gate passes.
package validation

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/eminekibar/SmartLibrarySystem/model"
)

// Error carries the aggregated list of violated rules.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Violations extracts the rule list from err, or nil if err does not
// carry one.
func Violations(err error) []string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Violations
	}
	return nil
}

// Result collects violations during one gate pass.
type Result struct {
	violations []string
}

func (r *Result) Add(msg string) {
	if strings.TrimSpace(msg) != "" {
		r.violations = append(r.violations, msg)
	}
}

// Check adds msg when ok is false.
func (r *Result) Check(ok bool, msg string) {
	if !ok {
		r.Add(msg)
	}
}

func (r *Result) OK() bool { return len(r.violations) == 0 }

// Err returns nil when the result is clean, otherwise an *Error with
// every collected violation.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Violations: r.violations}
}

// Gate runs the field-level rules through a shared validator instance.
type Gate struct {
	v *validator.Validate
}

func NewGate(v *validator.Validate) *Gate { return &Gate{v: v} }

type bookRules struct {
	Title       string `validate:"required"`
	Author      string `validate:"required"`
	Category    string `validate:"required"`
	PublishYear int    `validate:"gt=0"`
	Stock       int    `validate:"gte=0"`
	Shelf       string `validate:"required"`
}

var bookMessages = map[string]string{
	"Title":       "title must not be empty",
	"Author":      "author must not be empty",
	"Category":    "category must not be empty",
	"PublishYear": "publish year must be positive",
	"Stock":       "stock must not be negative",
	"Shelf":       "shelf must not be empty",
}

// Book checks every field rule for a book record.
func (g *Gate) Book(b model.Book) *Result {
	r := &Result{}
	g.collect(r, bookRules{
		Title:       strings.TrimSpace(b.Title),
		Author:      strings.TrimSpace(b.Author),
		Category:    strings.TrimSpace(b.Category),
		PublishYear: b.PublishYear,
		Stock:       b.Stock,
		Shelf:       strings.TrimSpace(b.Shelf),
	}, bookMessages)
	return r
}

type userRules struct {
	FullName     string `validate:"required"`
	Email        string `validate:"required,email"`
	SchoolNumber string `validate:"required"`
}

var userMessages = map[string]string{
	"FullName":     "full name must not be empty",
	"Email":        "email is malformed",
	"SchoolNumber": "school number must not be empty",
}

// User checks the field rules for a user record. The password is only
// checked when one is being set (registration, or an update that changes
// it). Email uniqueness is a store-backed check and is appended by the
// user service onto the same Result.
func (g *Gate) User(u model.User, password string, checkPassword bool) *Result {
	r := &Result{}
	g.collect(r, userRules{
		FullName:     strings.TrimSpace(u.FullName),
		Email:        strings.TrimSpace(u.Email),
		SchoolNumber: strings.TrimSpace(u.SchoolNumber),
	}, userMessages)
	if checkPassword {
		r.Check(StrongPassword(password),
			"password must be at least 8 characters with an upper-case letter, a lower-case letter and a digit")
	}
	return r
}

func (g *Gate) collect(r *Result, rules any, messages map[string]string) {
	err := g.v.Struct(rules)
	if err == nil {
		return
	}
	var ferrs validator.ValidationErrors
	if !errors.As(err, &ferrs) {
		r.Add(err.Error())
		return
	}
	for _, fe := range ferrs {
		if msg, ok := messages[fe.StructField()]; ok {
			r.Add(msg)
		} else {
			r.Add(fe.StructField() + " is invalid")
		}
	}
}

// StrongPassword reports whether pw has at least 8 characters and one
// upper-case letter, one lower-case letter and one digit.
func StrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, c := range pw {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
