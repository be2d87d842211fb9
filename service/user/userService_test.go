package usersvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/eminekibar/SmartLibrarySystem/model"
	"github.com/eminekibar/SmartLibrarySystem/util/hash"
	"github.com/eminekibar/SmartLibrarySystem/validation"
)

type mockRepo struct {
	createFn      func(ctx context.Context, u *model.User) error
	updateFn      func(ctx context.Context, u *model.User) error
	deactivateFn  func(ctx context.Context, id int64) error
	listFn        func(ctx context.Context) ([]model.User, error)
	listByRoleFn  func(ctx context.Context, role string) ([]model.User, error)
	byIDFn        func(ctx context.Context, id int64) (*model.User, error)
	byEmailFn     func(ctx context.Context, email string) (*model.User, error)
	emailExistsFn func(ctx context.Context, email string, excludeID int64) (bool, error)
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}
func (m *mockRepo) Update(ctx context.Context, u *model.User) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, u)
}
func (m *mockRepo) Deactivate(ctx context.Context, id int64) error {
	if m.deactivateFn == nil {
		return nil
	}
	return m.deactivateFn(ctx, id)
}
func (m *mockRepo) List(ctx context.Context) ([]model.User, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx)
}
func (m *mockRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	if m.listByRoleFn == nil {
		return nil, nil
	}
	return m.listByRoleFn(ctx, role)
}
func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byIDFn(ctx, id)
}
func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.byEmailFn(ctx, email)
}
func (m *mockRepo) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	if m.emailExistsFn == nil {
		return false, nil
	}
	return m.emailExistsFn(ctx, email, excludeID)
}

func newSvc(m *mockRepo) Service {
	return New(m, validation.NewGate(validator.New()))
}

func sampleUser() model.User {
	return model.User{
		FullName:     "Ada Lovelace",
		Email:        "ada@example.com",
		SchoolNumber: "2024001",
		Role:         model.RoleStudent,
	}
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}

	u, err := newSvc(m).Register(ctx, sampleUser(), "Sup3rSecret")
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.True(t, u.IsActive)
	require.NotEmpty(t, u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "Sup3rSecret"))
}

func TestRegister_DefaultsRoleToStudent(t *testing.T) {
	ctx := context.Background()
	u := sampleUser()
	u.Role = ""

	got, err := newSvc(&mockRepo{}).Register(ctx, u, "Sup3rSecret")
	require.NoError(t, err)
	require.Equal(t, model.RoleStudent, got.Role)
}

func TestRegister_AggregatesAllViolations(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		emailExistsFn: func(ctx context.Context, email string, excludeID int64) (bool, error) {
			return true, nil
		},
	}

	u := sampleUser()
	u.FullName = " "

	_, err := newSvc(m).Register(ctx, u, "weak")
	require.Error(t, err)
	require.Equal(t, ErrValidation, Code(err))
	violations := validation.Violations(err)
	require.Contains(t, violations, "full name must not be empty")
	require.Contains(t, violations, "a user with this email already exists")
	require.Len(t, violations, 3)
}

func TestUpdate_KeepsOldHashWithoutPassword(t *testing.T) {
	ctx := context.Background()
	var written *model.User
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, PasswordHash: "old-hash"}, nil
		},
		updateFn: func(ctx context.Context, u *model.User) error {
			written = u
			return nil
		},
	}

	u := sampleUser()
	u.ID = 7
	require.NoError(t, newSvc(m).Update(ctx, u, ""))
	require.Equal(t, "old-hash", written.PasswordHash)
}

func TestUpdate_ExcludesOwnRowFromUniqueness(t *testing.T) {
	ctx := context.Background()
	var gotExclude int64
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, PasswordHash: "h"}, nil
		},
		emailExistsFn: func(ctx context.Context, email string, excludeID int64) (bool, error) {
			gotExclude = excludeID
			return false, nil
		},
	}

	u := sampleUser()
	u.ID = 7
	require.NoError(t, newSvc(m).Update(ctx, u, ""))
	require.Equal(t, int64(7), gotExclude)
}

func TestUpdate_NotFound(t *testing.T) {
	ctx := context.Background()
	u := sampleUser()
	u.ID = 9

	err := newSvc(&mockRepo{}).Update(ctx, u, "")
	require.Equal(t, ErrNotFound, Code(err))
}

func TestList_RoleFilter(t *testing.T) {
	ctx := context.Background()
	var gotRole string
	m := &mockRepo{
		listByRoleFn: func(ctx context.Context, role string) ([]model.User, error) {
			gotRole = role
			return nil, nil
		},
	}
	svc := newSvc(m)

	_, err := svc.List(ctx, model.RoleStaff)
	require.NoError(t, err)
	require.Equal(t, model.RoleStaff, gotRole)

	_, err = svc.List(ctx, "")
	require.NoError(t, err)
}

func TestCodeExtractor(t *testing.T) {
	require.Equal(t, ErrEmailTaken, Code(makeErr(ErrEmailTaken)))
	require.Equal(t, ErrCode(""), Code(sql.ErrNoRows))
}
