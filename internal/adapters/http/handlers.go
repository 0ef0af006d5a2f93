package directoryhttp

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	directoryv1 "github.com/ogurasousui/staff-directory/internal/adapters/grpc/directoryv1"
	"github.com/ogurasousui/staff-directory/internal/core/auth"
	"github.com/ogurasousui/staff-directory/internal/core/employee"
	"github.com/ogurasousui/staff-directory/internal/core/failure"
	"github.com/ogurasousui/staff-directory/internal/core/session"
	"github.com/ogurasousui/staff-directory/internal/core/user"
)

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, failure.Wrap(failure.ErrInvalidArgument, fmt.Errorf("id %q: %w", raw, err))
	}
	return id, nil
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.storage != nil {
		if err := h.storage.Ping(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "health check failed", "error", err)
			writeProblem(w, http.StatusServiceUnavailable, "Storage Unavailable", "")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req directoryv1.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := directoryv1.Validate(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), auth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, directoryv1.LoginResponse{
		Token:    result.Token,
		UserID:   result.Identity.UserID,
		Email:    result.Identity.Email,
		RoleName: result.Identity.RoleName,
	})
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := session.TokenFromAuthorization(r.Header.Get("Authorization"))
	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.employees.ListEmployees(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, directoryv1.ListEmployeesResponse{Employees: directoryv1.FromEmployees(employees)})
}

func (h *handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	found, err := h.employees.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, directoryv1.GetEmployeeResponse{Employee: directoryv1.FromEmployee(found)})
}

func (h *handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req directoryv1.CreateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := directoryv1.Validate(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	created, err := h.employees.CreateEmployee(r.Context(), employee.CreateEmployeeInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, directoryv1.CreateEmployeeResponse{Employee: directoryv1.FromEmployee(created)})
}

func (h *handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req directoryv1.UpdateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := directoryv1.Validate(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	updated, err := h.employees.UpdateEmployee(r.Context(), employee.UpdateEmployeeInput{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, directoryv1.UpdateEmployeeResponse{Employee: directoryv1.FromEmployee(updated)})
}

func (h *handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.employees.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{ID: id}); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleListUsersExtended(w http.ResponseWriter, r *http.Request) {
	rows, err := h.users.ListUsersExtended(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, directoryv1.ListUsersExtendedResponse{Users: directoryv1.FromUsersExtended(rows)})
}

func (h *handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	found, err := h.users.GetUser(r.Context(), user.GetUserInput{ID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, directoryv1.GetUserResponse{User: directoryv1.FromUser(found)})
}

func (h *handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req directoryv1.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := directoryv1.Validate(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	created, err := h.users.CreateUser(r.Context(), user.CreateUserInput{Email: req.Email, RoleName: req.RoleName})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, directoryv1.CreateUserResponse{User: directoryv1.FromUser(created)})
}

func (h *handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req directoryv1.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := directoryv1.Validate(&req); err != nil {
		h.respondError(w, r, err)
		return
	}

	updated, err := h.users.UpdateUser(r.Context(), user.UpdateUserInput{ID: id, Email: req.Email, RoleName: req.RoleName})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, directoryv1.UpdateUserResponse{User: directoryv1.FromUser(updated)})
}

func (h *handler) handleLinkEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req directoryv1.LinkEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	linked, err := h.users.LinkEmployee(r.Context(), user.LinkEmployeeInput{UserID: id, EmployeeID: req.EmployeeID})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, directoryv1.LinkEmployeeResponse{User: directoryv1.FromUser(linked)})
}

func (h *handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.users.ListRoles(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, directoryv1.ListRolesResponse{Roles: directoryv1.FromRoles(roles)})
}
