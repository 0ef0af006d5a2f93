package user

import "github.com/ogurasousui/staff-directory/internal/core/failure"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = failure.Define("user", failure.ErrNotFound)
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = failure.Define("user: email already exists", failure.ErrConstraintViolation)
	// ErrInvalidRole は未知のロール名が指定された場合に返却されます。
	ErrInvalidRole = failure.Define("user", failure.ErrInvalidRole)
	// ErrEmployeeAlreadyLinked は社員が既に別ユーザーに紐づいている場合に返却されます。
	ErrEmployeeAlreadyLinked = failure.Define("user: employee already linked", failure.ErrConstraintViolation)
	// ErrEmployeeReferenceMissing は紐づけ先の社員が存在しない場合に返却されます。
	ErrEmployeeReferenceMissing = failure.Define("user: referenced employee does not exist", failure.ErrConstraintViolation)
	// ErrUnsupportedCommand は未知の保存コマンドが渡された場合に返却されます。
	ErrUnsupportedCommand = failure.Define("user: unsupported command", failure.ErrInvalidArgument)
)
