package user

import "time"

// ロール名の既知集合です。
const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleManager  = "ROLE_MANAGER"
	RoleHR       = "ROLE_HR"
	RoleIT       = "ROLE_IT"
	RoleEmployee = "ROLE_EMPLOYEE"
)

var knownRoles = []string{RoleAdmin, RoleManager, RoleHR, RoleIT, RoleEmployee}

// KnownRoles は既知のロール名を定義順で返します。
func KnownRoles() []string {
	out := make([]string, len(knownRoles))
	copy(out, knownRoles)
	return out
}

// IsKnownRole は name が既知のロール名かを返します。
func IsKnownRole(name string) bool {
	for _, r := range knownRoles {
		if r == name {
			return true
		}
	}
	return false
}

// User はユーザーエンティティです。パスワードハッシュは保持しません。
type User struct {
	ID         int64
	Email      string
	RoleID     int64
	RoleName   string
	CreatedAt  *time.Time
	EmployeeID *int64
}

// Role はロールの参照データです。
type Role struct {
	ID   int64
	Name string
}

// Extended は users_extended ビューの 1 行です。読み取り専用の射影で、永続化されません。
type Extended struct {
	UserID       int64
	Email        string
	RoleName     string
	EmployeeID   *int64
	EmployeeName *string
}

// Fields は作成・更新で書き込まれるユーザーの項目です。
type Fields struct {
	Email  string
	RoleID int64
}
