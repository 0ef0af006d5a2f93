package user

import (
	"context"
	"time"
)

// Repository はユーザーエンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, fields Fields, createdAt time.Time) (*User, error)
	Update(ctx context.Context, id int64, fields Fields) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	LinkEmployee(ctx context.Context, id int64, employeeID *int64) (*User, error)
	ListExtended(ctx context.Context) ([]*Extended, error)
}

// RoleRepository はロール参照データの読み取りを行うインターフェースです。
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]*Role, error)
}
