package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/staff-directory/internal/core/user"
	pgdb "github.com/ogurasousui/staff-directory/internal/platform/db/postgres"
)

// RoleRepository は app_role テーブルを読み取ります。
type RoleRepository struct {
	pool pgdb.Queryer
}

// NewRoleRepository は RoleRepository を生成します。
func NewRoleRepository(pool pgdb.Queryer) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// FindByName はロール名でロールを取得します。存在しない場合は ErrInvalidRole です。
func (r *RoleRepository) FindByName(ctx context.Context, name string) (*user.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var role user.Role
	err := exec.QueryRow(ctx, `SELECT id, name FROM app_role WHERE name = $1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("role %q: %w", name, user.ErrInvalidRole)
		}
		return nil, pgdb.Classify(err)
	}
	return &role, nil
}

// List はロールを ID 昇順で返します。
func (r *RoleRepository) List(ctx context.Context) ([]*user.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT id, name FROM app_role ORDER BY id`)
	if err != nil {
		return nil, pgdb.Classify(err)
	}
	defer rows.Close()

	roles := make([]*user.Role, 0, len(user.KnownRoles()))
	for rows.Next() {
		var role user.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, pgdb.Classify(err)
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, pgdb.Classify(err)
	}
	return roles, nil
}
