package directoryv1

import (
	"github.com/ogurasousui/staff-directory/internal/core/employee"
	"github.com/ogurasousui/staff-directory/internal/core/user"
)

// FromEmployee はドメインの社員をメッセージへ変換します。
func FromEmployee(e *employee.Employee) *Employee {
	if e == nil {
		return nil
	}
	return &Employee{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
	}
}

// FromEmployees は一覧を変換します。入力が空でも nil ではなく空スライスを返します。
func FromEmployees(in []*employee.Employee) []*Employee {
	out := make([]*Employee, 0, len(in))
	for _, e := range in {
		out = append(out, FromEmployee(e))
	}
	return out
}

// FromUser はドメインのユーザーをメッセージへ変換します。
func FromUser(u *user.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:         u.ID,
		Email:      u.Email,
		RoleID:     u.RoleID,
		RoleName:   u.RoleName,
		CreatedAt:  u.CreatedAt,
		EmployeeID: u.EmployeeID,
	}
}

// FromUsersExtended は users_extended の行を変換します。
func FromUsersExtended(in []*user.Extended) []*UserExtended {
	out := make([]*UserExtended, 0, len(in))
	for _, e := range in {
		if e == nil {
			continue
		}
		out = append(out, &UserExtended{
			UserID:       e.UserID,
			Email:        e.Email,
			RoleName:     e.RoleName,
			EmployeeID:   e.EmployeeID,
			EmployeeName: e.EmployeeName,
		})
	}
	return out
}

// FromRoles はロール一覧を変換します。
func FromRoles(in []*user.Role) []*Role {
	out := make([]*Role, 0, len(in))
	for _, r := range in {
		if r == nil {
			continue
		}
		out = append(out, &Role{ID: r.ID, Name: r.Name})
	}
	return out
}
