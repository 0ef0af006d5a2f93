package directoryhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	directoryv1 "github.com/ogurasousui/staff-directory/internal/adapters/grpc/directoryv1"
	"github.com/ogurasousui/staff-directory/internal/adapters/session/redisstore"
	"github.com/ogurasousui/staff-directory/internal/core/auth"
	"github.com/ogurasousui/staff-directory/internal/core/employee"
	"github.com/ogurasousui/staff-directory/internal/core/failure"
	"github.com/ogurasousui/staff-directory/internal/core/user"
	"github.com/ogurasousui/staff-directory/internal/platform/observability"
)

type memoryEmployeeRepo struct {
	seq  int64
	rows map[int64]*employee.Employee
}

func newMemoryEmployeeRepo() *memoryEmployeeRepo {
	return &memoryEmployeeRepo{rows: make(map[int64]*employee.Employee)}
}

func (m *memoryEmployeeRepo) List(ctx context.Context) ([]*employee.Employee, error) {
	out := make([]*employee.Employee, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryEmployeeRepo) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	e, ok := m.rows[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memoryEmployeeRepo) emailTaken(email *string, except int64) bool {
	if email == nil {
		return false
	}
	for id, e := range m.rows {
		if id != except && e.Email != nil && *e.Email == *email {
			return true
		}
	}
	return false
}

func (m *memoryEmployeeRepo) Create(ctx context.Context, fields employee.Fields) (*employee.Employee, error) {
	if m.emailTaken(fields.Email, 0) {
		return nil, employee.ErrEmailAlreadyExists
	}
	m.seq++
	first, last := fields.FirstName, fields.LastName
	e := &employee.Employee{ID: m.seq, FirstName: &first, LastName: &last, Email: fields.Email}
	m.rows[e.ID] = e
	return e, nil
}

func (m *memoryEmployeeRepo) Update(ctx context.Context, id int64, fields employee.Fields) (*employee.Employee, error) {
	if _, ok := m.rows[id]; !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	if m.emailTaken(fields.Email, id) {
		return nil, employee.ErrEmailAlreadyExists
	}
	first, last := fields.FirstName, fields.LastName
	e := &employee.Employee{ID: id, FirstName: &first, LastName: &last, Email: fields.Email}
	m.rows[id] = e
	return e, nil
}

func (m *memoryEmployeeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(m.rows, id)
	return nil
}

type staticRoles struct{}

func (staticRoles) FindByName(ctx context.Context, name string) (*user.Role, error) {
	for i, r := range user.KnownRoles() {
		if r == name {
			return &user.Role{ID: int64(i + 1), Name: r}, nil
		}
	}
	return nil, user.ErrInvalidRole
}

func (staticRoles) List(ctx context.Context) ([]*user.Role, error) {
	out := make([]*user.Role, 0)
	for i, r := range user.KnownRoles() {
		out = append(out, &user.Role{ID: int64(i + 1), Name: r})
	}
	return out, nil
}

type failingUserRepo struct {
	err error
}

func (f failingUserRepo) Create(ctx context.Context, fields user.Fields, createdAt time.Time) (*user.User, error) {
	return &user.User{ID: 10, Email: fields.Email, RoleID: fields.RoleID, CreatedAt: &createdAt}, nil
}

func (f failingUserRepo) Update(ctx context.Context, id int64, fields user.Fields) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (f failingUserRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (f failingUserRepo) LinkEmployee(ctx context.Context, id int64, employeeID *int64) (*user.User, error) {
	return nil, user.ErrEmployeeAlreadyLinked
}

func (f failingUserRepo) ListExtended(ctx context.Context) ([]*user.Extended, error) {
	return nil, f.err
}

type credentialRepo map[string]*auth.Credentials

func (c credentialRepo) FindCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	creds, ok := c[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return creds, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testEnv struct {
	router http.Handler
	redis  *miniredis.Miniredis
}

func newTestEnv(t *testing.T, storage Pinger) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	creds := credentialRepo{
		"admin@example.com": {UserID: 1, Email: "admin@example.com", RoleName: user.RoleAdmin, PasswordHash: string(hash)},
	}

	router := NewRouter(Deps{
		Employees: employee.NewService(newMemoryEmployeeRepo(), nil),
		Users: user.NewService(
			failingUserRepo{err: failure.Wrap(failure.ErrConnectionFailure, errors.New("refused"))},
			staticRoles{}, nil, nil),
		Auth:    auth.NewService(creds, redisstore.NewStore(client, time.Hour)),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: observability.NewMetrics(),
		Storage: storage,
	})
	return &testEnv{router: router, redis: mr}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login", "", directoryv1.LoginRequest{Email: "admin@example.com", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp directoryv1.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()

	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestRouter_RequiresSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/employees", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, decodeProblem(t, rec).Status)

	rec = env.do(t, http.MethodGet, "/api/employees", "forged-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_EmployeeLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	token := env.login(t)
	email := "ada@example.com"

	rec := env.do(t, http.MethodPost, "/api/employees", token, directoryv1.CreateEmployeeRequest{FirstName: "Ada", LastName: "Lovelace", Email: &email})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created directoryv1.CreateEmployeeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Employee.ID
	assert.Positive(t, id)

	rec = env.do(t, http.MethodPost, "/api/employees", token, directoryv1.CreateEmployeeRequest{FirstName: "Other", Email: &email})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/employees/%d", id), token, directoryv1.UpdateEmployeeRequest{FirstName: "Augusta", LastName: "King"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated directoryv1.UpdateEmployeeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Augusta", *updated.Employee.FirstName)
	assert.Nil(t, updated.Employee.Email)

	rec = env.do(t, http.MethodGet, "/api/employees", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list directoryv1.ListEmployeesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Employees, 1)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/employees/%d", id), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/employees/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/employees/999", token, directoryv1.UpdateEmployeeRequest{FirstName: "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/employees/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UserErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/users", token, directoryv1.CreateUserRequest{Email: "x@example.com", RoleName: "ROLE_GUEST"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/users", token, directoryv1.CreateUserRequest{Email: "x@example.com", RoleName: user.RoleIT})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	employeeID := int64(3)
	rec = env.do(t, http.MethodPut, "/api/users/1/employee", token, directoryv1.LinkEmployeeRequest{EmployeeID: &employeeID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/roles", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roles directoryv1.ListRolesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roles))
	assert.Len(t, roles.Roles, len(user.KnownRoles()))
}

func TestRouter_LoginAndLogout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", directoryv1.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", directoryv1.LoginRequest{Email: "admin@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := env.login(t)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/employees", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/employees", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/auth/logout", token, nil).Code)
}

func TestRouter_SessionExpires(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	token := env.login(t)

	env.redis.FastForward(2 * time.Hour)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/employees", token, nil).Code)
}

func TestRouter_LoginRateLimited(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	var last int
	for i := 0; i < loginRateLimit+1; i++ {
		last = env.do(t, http.MethodPost, "/api/auth/login", "", directoryv1.LoginRequest{Email: "admin@example.com", Password: "wrong"}).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	healthy := newTestEnv(t, pingFunc(func(ctx context.Context) error { return nil }))
	rec := healthy.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = healthy.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "directory_http_requests_total"))

	down := newTestEnv(t, pingFunc(func(ctx context.Context) error { return errors.New("down") }))
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, http.MethodGet, "/healthz", "", nil).Code)
}

func TestRespondError_HidesStorageDetail(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	h := &handler{logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	pgErr := errors.New(`duplicate key value violates unique constraint "employee_email_key" (SQLSTATE 23505)`)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/employees", nil)
	h.respondError(rec, req, fmt.Errorf("%w: %w", employee.ErrEmailAlreadyExists, pgErr))

	require.Equal(t, http.StatusConflict, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, employee.ErrEmailAlreadyExists.Error(), p.Detail)
	assert.NotContains(t, rec.Body.String(), "employee_email_key")
	assert.Contains(t, logs.String(), "employee_email_key")

	rec = httptest.NewRecorder()
	h.respondError(rec, req, fmt.Errorf("id 9: %w", user.ErrUserNotFound))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user: not found", decodeProblem(t, rec).Detail)

	rec = httptest.NewRecorder()
	h.respondError(rec, req, failure.Wrap(failure.ErrQueryFailure, errors.New(`relation "employee" does not exist`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, decodeProblem(t, rec).Detail)
}
