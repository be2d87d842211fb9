package validation_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/eminekibar/SmartLibrarySystem/model"
	"github.com/eminekibar/SmartLibrarySystem/validation"
)

func newGate() *validation.Gate {
	return validation.NewGate(validator.New())
}

func TestBookGate_AllViolationsReported(t *testing.T) {
	res := newGate().Book(model.Book{Stock: -1})
	require.False(t, res.OK())

	violations := validation.Violations(res.Err())
	require.Len(t, violations, 6, "every broken rule must be listed, not just the first")
	require.Contains(t, violations, "title must not be empty")
	require.Contains(t, violations, "stock must not be negative")
	require.Contains(t, violations, "publish year must be positive")
}

func TestBookGate_Valid(t *testing.T) {
	res := newGate().Book(model.Book{
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		Category:    "Programming",
		PublishYear: 2015,
		Stock:       0, // zero stock is valid, negative is not
		Shelf:       "A-3",
	})
	require.True(t, res.OK())
	require.NoError(t, res.Err())
}

func TestUserGate(t *testing.T) {
	gate := newGate()

	res := gate.User(model.User{Email: "not-an-email"}, "weak", true)
	violations := validation.Violations(res.Err())
	require.Contains(t, violations, "full name must not be empty")
	require.Contains(t, violations, "email is malformed")
	require.Contains(t, violations, "school number must not be empty")
	require.Len(t, violations, 4)

	ok := gate.User(model.User{
		FullName:     "Ada Lovelace",
		Email:        "ada@example.com",
		SchoolNumber: "2024001",
	}, "Sup3rSecret", true)
	require.True(t, ok.OK())

	// Password is skipped when none is being set.
	noPw := gate.User(model.User{
		FullName:     "Ada Lovelace",
		Email:        "ada@example.com",
		SchoolNumber: "2024001",
	}, "", false)
	require.True(t, noPw.OK())
}

func TestStrongPassword(t *testing.T) {
	require.True(t, validation.StrongPassword("Abcdef12"))
	require.False(t, validation.StrongPassword("Abc12"), "too short")
	require.False(t, validation.StrongPassword("abcdefg1"), "no upper")
	require.False(t, validation.StrongPassword("ABCDEFG1"), "no lower")
	require.False(t, validation.StrongPassword("Abcdefgh"), "no digit")
}

func TestViolations_PlainError(t *testing.T) {
	require.Nil(t, validation.Violations(nil))

	res := &validation.Result{}
	require.NoError(t, res.Err())
}
