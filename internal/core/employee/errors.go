package employee

import "github.com/ogurasousui/staff-directory/internal/core/failure"

var (
	ErrEmployeeNotFound   = failure.Define("employee", failure.ErrNotFound)
	ErrEmailAlreadyExists = failure.Define("employee: email already exists", failure.ErrConstraintViolation)
	ErrUnsupportedCommand = failure.Define("employee: unsupported command", failure.ErrInvalidArgument)
)
