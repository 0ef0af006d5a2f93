package directoryv1

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate はリクエストの struct タグを検証します。違反は failure.ErrInvalidArgument でラップされます。
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return failure.Wrap(failure.ErrInvalidArgument, fmt.Errorf("validate %T: %w", req, err))
	}
	return nil
}
