package employee

import "context"

// Repository は社員永続化の抽象です。書き込みはいずれも単一ステートメントで完結します。
type Repository interface {
	List(ctx context.Context) ([]*Employee, error)
	FindByID(ctx context.Context, id int64) (*Employee, error)
	Create(ctx context.Context, fields Fields) (*Employee, error)
	Update(ctx context.Context, id int64, fields Fields) (*Employee, error)
	Delete(ctx context.Context, id int64) error
}
