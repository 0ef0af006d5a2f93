package user

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
	"github.com/ogurasousui/staff-directory/internal/core/session"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRoleRepo struct {
	roles map[string]*Role
	err   error
}

func newFakeRoleRepo() *fakeRoleRepo {
	repo := &fakeRoleRepo{roles: make(map[string]*Role)}
	for i, name := range KnownRoles() {
		repo.roles[name] = &Role{ID: int64(i + 1), Name: name}
	}
	return repo
}

func (r *fakeRoleRepo) FindByName(_ context.Context, name string) (*Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	role, ok := r.roles[name]
	if !ok {
		return nil, ErrInvalidRole
	}
	clone := *role
	return &clone, nil
}

func (r *fakeRoleRepo) List(_ context.Context) ([]*Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*Role, 0, len(r.roles))
	for _, role := range r.roles {
		clone := *role
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeUserRepo struct {
	users     map[int64]*User
	roles     *fakeRoleRepo
	employees map[int64]string
	sequence  int64
	writes    int
	listErr   error
}

func newFakeUserRepo(roles *fakeRoleRepo) *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*User), roles: roles, employees: make(map[int64]string)}
}

func (r *fakeUserRepo) roleName(id int64) string {
	for _, role := range r.roles.roles {
		if role.ID == id {
			return role.Name
		}
	}
	return ""
}

func (r *fakeUserRepo) Create(_ context.Context, f Fields, createdAt time.Time) (*User, error) {
	if err := r.ensureUniqueEmail(0, f.Email); err != nil {
		return nil, err
	}
	r.writes++
	r.sequence++
	created := createdAt
	u := &User{ID: r.sequence, Email: f.Email, RoleID: f.RoleID, RoleName: r.roleName(f.RoleID), CreatedAt: &created}
	r.users[u.ID] = u
	return cloneUser(u), nil
}

func (r *fakeUserRepo) Update(_ context.Context, id int64, f Fields) (*User, error) {
	existing, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if err := r.ensureUniqueEmail(id, f.Email); err != nil {
		return nil, err
	}
	r.writes++
	existing.Email = f.Email
	existing.RoleID = f.RoleID
	existing.RoleName = r.roleName(f.RoleID)
	return cloneUser(existing), nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) LinkEmployee(_ context.Context, id int64, employeeID *int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	if employeeID != nil {
		if _, exists := r.employees[*employeeID]; !exists {
			return nil, ErrEmployeeReferenceMissing
		}
		for otherID, other := range r.users {
			if otherID != id && other.EmployeeID != nil && *other.EmployeeID == *employeeID {
				return nil, ErrEmployeeAlreadyLinked
			}
		}
	}
	r.writes++
	u.EmployeeID = cloneInt64(employeeID)
	return cloneUser(u), nil
}

func (r *fakeUserRepo) ListExtended(_ context.Context) ([]*Extended, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*Extended, 0, len(ids))
	for _, id := range ids {
		u := r.users[id]
		row := &Extended{UserID: u.ID, Email: u.Email, RoleName: u.RoleName}
		if u.EmployeeID != nil {
			if name, ok := r.employees[*u.EmployeeID]; ok {
				row.EmployeeID = cloneInt64(u.EmployeeID)
				row.EmployeeName = &name
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// deleteEmployee は外部キーの ON DELETE SET NULL を模倣します。
func (r *fakeUserRepo) deleteEmployee(id int64) {
	delete(r.employees, id)
	for _, u := range r.users {
		if u.EmployeeID != nil && *u.EmployeeID == id {
			u.EmployeeID = nil
		}
	}
}

func (r *fakeUserRepo) ensureUniqueEmail(selfID int64, email string) error {
	for id, u := range r.users {
		if id != selfID && u.Email == email {
			return ErrEmailAlreadyExists
		}
	}
	return nil
}

func cloneUser(u *User) *User {
	copy := *u
	copy.EmployeeID = cloneInt64(u.EmployeeID)
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		copy.CreatedAt = &t
	}
	return &copy
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}

func authedContext() context.Context {
	return session.ContextWithIdentity(context.Background(), session.Identity{UserID: 1, Email: "admin@example.com", RoleName: RoleAdmin})
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	roles := newFakeRoleRepo()
	repo := newFakeUserRepo(roles)
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return NewService(repo, roles, &stubClock{now: now}, nil), repo
}

func TestService_CreateUser_Success(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	created, err := svc.CreateUser(authedContext(), CreateUserInput{Email: "hr@example.com", RoleName: RoleHR})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if created.ID != 1 || created.RoleName != RoleHR || created.RoleID != 3 {
		t.Fatalf("unexpected user %+v", created)
	}
	if created.CreatedAt == nil || !created.CreatedAt.Equal(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected clock timestamp, got %v", created.CreatedAt)
	}
}

func TestService_CreateUser_InvalidRoleNoWrite(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)

	for _, role := range []string{"ROLE_ROOT", "", "role_admin"} {
		_, err := svc.CreateUser(authedContext(), CreateUserInput{Email: "x@example.com", RoleName: role})
		if !errors.Is(err, failure.ErrInvalidRole) {
			t.Fatalf("role %q: expected InvalidRole, got %v", role, err)
		}
	}
	if repo.writes != 0 || len(repo.users) != 0 {
		t.Fatalf("invalid role must not write, got %d writes", repo.writes)
	}
}

func TestService_CreateUser_RoleMissingFromStorage(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	delete(repo.roles.roles, RoleIT)

	_, err := svc.CreateUser(authedContext(), CreateUserInput{Email: "it@example.com", RoleName: RoleIT})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("expected no write, got %d", repo.writes)
	}
}

func TestService_CreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := authedContext()

	if _, err := svc.CreateUser(ctx, CreateUserInput{Email: "dup@example.com", RoleName: RoleEmployee}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "dup@example.com", RoleName: RoleIT})
	if !errors.Is(err, failure.ErrConstraintViolation) {
		t.Fatalf("expected ConstraintViolation, got %v", err)
	}
}

func TestService_UpdateUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := authedContext()

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "old@example.com", RoleName: RoleEmployee})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.UpdateUser(ctx, UpdateUserInput{ID: created.ID, Email: "new@example.com", RoleName: RoleManager})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if updated.Email != "new@example.com" || updated.RoleName != RoleManager {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := svc.UpdateUser(ctx, UpdateUserInput{ID: 404, Email: "x@example.com", RoleName: RoleManager}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.UpdateUser(ctx, UpdateUserInput{ID: created.ID, Email: "x@example.com", RoleName: "ROLE_GOD"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestService_LinkEmployee_AndDeleteSetsNull(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := authedContext()
	repo.employees[10] = "Ada Lovelace"

	first, err := svc.CreateUser(ctx, CreateUserInput{Email: "ada@example.com", RoleName: RoleEmployee})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := svc.CreateUser(ctx, CreateUserInput{Email: "other@example.com", RoleName: RoleEmployee})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	employeeID := int64(10)
	linked, err := svc.LinkEmployee(ctx, LinkEmployeeInput{UserID: first.ID, EmployeeID: &employeeID})
	if err != nil {
		t.Fatalf("LinkEmployee returned error: %v", err)
	}
	if linked.EmployeeID == nil || *linked.EmployeeID != 10 {
		t.Fatalf("expected link to employee 10, got %+v", linked.EmployeeID)
	}

	if _, err := svc.LinkEmployee(ctx, LinkEmployeeInput{UserID: second.ID, EmployeeID: &employeeID}); !errors.Is(err, ErrEmployeeAlreadyLinked) {
		t.Fatalf("expected ErrEmployeeAlreadyLinked, got %v", err)
	}

	missing := int64(77)
	if _, err := svc.LinkEmployee(ctx, LinkEmployeeInput{UserID: second.ID, EmployeeID: &missing}); !errors.Is(err, failure.ErrConstraintViolation) {
		t.Fatalf("expected ConstraintViolation for missing employee, got %v", err)
	}

	rows, err := svc.ListUsersExtended(ctx)
	if err != nil {
		t.Fatalf("ListUsersExtended returned error: %v", err)
	}
	if rows[0].EmployeeName == nil || *rows[0].EmployeeName != "Ada Lovelace" {
		t.Fatalf("expected employee name on first row, got %+v", rows[0])
	}

	repo.deleteEmployee(10)

	rows, err = svc.ListUsersExtended(ctx)
	if err != nil {
		t.Fatalf("ListUsersExtended returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("user rows must survive employee deletion, got %d", len(rows))
	}
	if rows[0].EmployeeID != nil || rows[0].EmployeeName != nil {
		t.Fatalf("expected null employee after delete, got %+v", rows[0])
	}
}

func TestService_LinkEmployee_Unlink(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := authedContext()
	repo.employees[3] = "Grace Hopper"

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "grace@example.com", RoleName: RoleIT})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	employeeID := int64(3)
	if _, err := svc.LinkEmployee(ctx, LinkEmployeeInput{UserID: created.ID, EmployeeID: &employeeID}); err != nil {
		t.Fatalf("link failed: %v", err)
	}

	unlinked, err := svc.LinkEmployee(ctx, LinkEmployeeInput{UserID: created.ID})
	if err != nil {
		t.Fatalf("unlink failed: %v", err)
	}
	if unlinked.EmployeeID != nil {
		t.Fatalf("expected unlinked user, got %v", *unlinked.EmployeeID)
	}

	zero := int64(0)
	if _, err := svc.LinkEmployee(ctx, LinkEmployeeInput{UserID: created.ID, EmployeeID: &zero}); !errors.Is(err, ErrEmployeeReferenceMissing) {
		t.Fatalf("expected ErrEmployeeReferenceMissing, got %v", err)
	}
}

func TestService_ListUsersExtended_SortedByUserID(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := authedContext()

	for i := 0; i < 5; i++ {
		if _, err := svc.CreateUser(ctx, CreateUserInput{Email: fmt.Sprintf("u%d@example.com", i), RoleName: RoleEmployee}); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	rows, err := svc.ListUsersExtended(ctx)
	if err != nil {
		t.Fatalf("ListUsersExtended returned error: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].UserID >= rows[i].UserID {
			t.Fatalf("rows not sorted by user_id: %d then %d", rows[i-1].UserID, rows[i].UserID)
		}
	}
	for _, row := range rows {
		if row.EmployeeName != nil {
			t.Fatalf("unlinked users must have null employee name")
		}
	}
}

func TestService_ListUsersExtended_SurfacesFailure(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	repo.listErr = failure.Wrap(failure.ErrQueryFailure, errors.New("relation users_extended does not exist"))

	rows, err := svc.ListUsersExtended(authedContext())
	if !errors.Is(err, failure.ErrQueryFailure) {
		t.Fatalf("expected QueryFailure, got %v", err)
	}
	if rows != nil {
		t.Fatalf("failure must not be hidden behind an empty list")
	}
}

func TestService_GetUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := authedContext()

	created, err := svc.CreateUser(ctx, CreateUserInput{Email: "get@example.com", RoleName: RoleAdmin})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := svc.GetUser(ctx, GetUserInput{ID: created.ID})
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if found.Email != "get@example.com" {
		t.Fatalf("unexpected user %+v", found)
	}
	if _, err := svc.GetUser(ctx, GetUserInput{ID: 0}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestService_ListRoles(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	roles, err := svc.ListRoles(authedContext())
	if err != nil {
		t.Fatalf("ListRoles returned error: %v", err)
	}
	if len(roles) != len(KnownRoles()) || roles[0].Name != RoleAdmin {
		t.Fatalf("unexpected roles %+v", roles)
	}
}

func TestService_RequiresSession(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t)
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["ListUsersExtended"] = svc.ListUsersExtended(ctx)
	_, checks["GetUser"] = svc.GetUser(ctx, GetUserInput{ID: 1})
	_, checks["CreateUser"] = svc.CreateUser(ctx, CreateUserInput{Email: "a@example.com", RoleName: RoleAdmin})
	_, checks["UpdateUser"] = svc.UpdateUser(ctx, UpdateUserInput{ID: 1, Email: "a@example.com", RoleName: RoleAdmin})
	_, checks["LinkEmployee"] = svc.LinkEmployee(ctx, LinkEmployeeInput{UserID: 1})
	_, checks["ListRoles"] = svc.ListRoles(ctx)

	for name, err := range checks {
		if !errors.Is(err, failure.ErrUnauthenticated) {
			t.Fatalf("%s: expected Unauthenticated, got %v", name, err)
		}
	}
	if repo.writes != 0 {
		t.Fatalf("expected no writes, got %d", repo.writes)
	}
}

func TestService_SaveUser_NilCommand(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	if _, err := svc.SaveUser(authedContext(), nil); !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("expected ErrUnsupportedCommand, got %v", err)
	}
}

func TestIsKnownRole(t *testing.T) {
	t.Parallel()

	for _, name := range KnownRoles() {
		if !IsKnownRole(name) {
			t.Fatalf("%s should be known", name)
		}
	}
	if IsKnownRole("ROLE_UNKNOWN") {
		t.Fatalf("ROLE_UNKNOWN must not be known")
	}

	roles := KnownRoles()
	roles[0] = "mutated"
	if KnownRoles()[0] != RoleAdmin {
		t.Fatalf("KnownRoles must return a copy")
	}
}
