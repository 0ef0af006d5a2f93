package directoryv1

import "time"

// Employee は社員メッセージです。未設定の項目は null になります。
type Employee struct {
	ID        int64   `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

type ListEmployeesRequest struct{}

type ListEmployeesResponse struct {
	Employees []*Employee `json:"employees"`
}

type GetEmployeeRequest struct {
	ID int64 `json:"id"`
}

type GetEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

// CreateEmployeeRequest は社員作成リクエストです。email を省略すると NULL で保存します。
type CreateEmployeeRequest struct {
	FirstName string  `json:"first_name" validate:"max=255"`
	LastName  string  `json:"last_name" validate:"max=255"`
	Email     *string `json:"email" validate:"omitempty,max=320"`
}

type CreateEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

// UpdateEmployeeRequest は社員更新リクエストです。3 項目を丸ごと置き換えます。
type UpdateEmployeeRequest struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name" validate:"max=255"`
	LastName  string  `json:"last_name" validate:"max=255"`
	Email     *string `json:"email" validate:"omitempty,max=320"`
}

type UpdateEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type DeleteEmployeeRequest struct {
	ID int64 `json:"id"`
}

type DeleteEmployeeResponse struct{}

// User はユーザーメッセージです。パスワードハッシュは含みません。
type User struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	RoleID     int64      `json:"role_id"`
	RoleName   string     `json:"role_name"`
	CreatedAt  *time.Time `json:"created_at"`
	EmployeeID *int64     `json:"employee_id"`
}

// UserExtended は users_extended ビューの 1 行です。
type UserExtended struct {
	UserID       int64   `json:"user_id"`
	Email        string  `json:"email"`
	RoleName     string  `json:"role_name"`
	EmployeeID   *int64  `json:"employee_id"`
	EmployeeName *string `json:"employee_name"`
}

type ListUsersExtendedRequest struct{}

type ListUsersExtendedResponse struct {
	Users []*UserExtended `json:"users"`
}

type GetUserRequest struct {
	ID int64 `json:"id"`
}

type GetUserResponse struct {
	User *User `json:"user"`
}

// CreateUserRequest のロール名は既知集合かどうかをサービス側で検証します。
type CreateUserRequest struct {
	Email    string `json:"email" validate:"max=320"`
	RoleName string `json:"role_name"`
}

type CreateUserResponse struct {
	User *User `json:"user"`
}

type UpdateUserRequest struct {
	ID       int64  `json:"id"`
	Email    string `json:"email" validate:"max=320"`
	RoleName string `json:"role_name"`
}

type UpdateUserResponse struct {
	User *User `json:"user"`
}

// LinkEmployeeRequest は employee_id を null にすると紐づけを解除します。
type LinkEmployeeRequest struct {
	UserID     int64  `json:"user_id"`
	EmployeeID *int64 `json:"employee_id"`
}

type LinkEmployeeResponse struct {
	User *User `json:"user"`
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ListRolesRequest struct{}

type ListRolesResponse struct {
	Roles []*Role `json:"roles"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=320"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	RoleName string `json:"role_name"`
}

// LogoutRequest の token が空の場合は authorization メタデータのトークンを破棄します。
type LogoutRequest struct {
	Token string `json:"token"`
}

type LogoutResponse struct{}
