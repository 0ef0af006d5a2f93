package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/staff-directory/internal/core/auth"
	"github.com/ogurasousui/staff-directory/internal/core/user"
	pgdb "github.com/ogurasousui/staff-directory/internal/platform/db/postgres"
)

// users テーブルの制約名です。
const (
	usersEmailUniqueConstraint        = "users_email_key"
	usersEmployeeUniqueConstraint     = "users_employee_id_key"
	usersEmployeeForeignKeyConstraint = "users_employee_id_fkey"
	usersRoleForeignKeyConstraint     = "users_role_id_fkey"
)

// 書き込み結果にロール名を付けて返すための共通 SELECT です。
const userProjection = `
        SELECT w.id, w.email, w.role_id, r.name, w.created_at, w.employee_id
          FROM written w
          JOIN app_role r ON r.id = w.role_id
`

// UserRepository は PostgreSQL を利用したユーザー永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create はユーザーを新規作成します。
func (r *UserRepository) Create(ctx context.Context, fields user.Fields, createdAt time.Time) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH written AS (
            INSERT INTO users (email, role_id, created_at)
            VALUES ($1, $2, $3)
            RETURNING id, email, role_id, created_at, employee_id
        )`+userProjection, fields.Email, fields.RoleID, createdAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return created, nil
}

// Update はメールアドレスとロールを置き換えます。
func (r *UserRepository) Update(ctx context.Context, id int64, fields user.Fields) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH written AS (
            UPDATE users
               SET email = $1,
                   role_id = $2
             WHERE id = $3
            RETURNING id, email, role_id, created_at, employee_id
        )`+userProjection, fields.Email, fields.RoleID, id)

	updated, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return updated, nil
}

// LinkEmployee は employee_id を設定します。nil の場合は紐づけを解除します。
func (r *UserRepository) LinkEmployee(ctx context.Context, id int64, employeeID *int64) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        WITH written AS (
            UPDATE users
               SET employee_id = $1
             WHERE id = $2
            RETURNING id, email, role_id, created_at, employee_id
        )`+userProjection, nullableInt64(employeeID), id)

	linked, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return linked, nil
}

// FindByID は ID でユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT u.id, u.email, u.role_id, r.name, u.created_at, u.employee_id
          FROM users u
          JOIN app_role r ON r.id = u.role_id
         WHERE u.id = $1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// ListExtended は users_extended ビューを user_id 昇順で読み取ります。
func (r *UserRepository) ListExtended(ctx context.Context) ([]*user.Extended, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT user_id, email, role_name, employee_id, employee_name
          FROM users_extended
         ORDER BY user_id
    `)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	defer rows.Close()

	result := make([]*user.Extended, 0)
	for rows.Next() {
		var (
			ext          user.Extended
			employeeID   sql.NullInt64
			employeeName sql.NullString
		)
		if err := rows.Scan(&ext.UserID, &ext.Email, &ext.RoleName, &employeeID, &employeeName); err != nil {
			return nil, translateUserPgError(err)
		}
		ext.EmployeeID = int64Ptr(employeeID)
		ext.EmployeeName = stringPtr(employeeName)
		result = append(result, &ext)
	}
	if err := rows.Err(); err != nil {
		return nil, translateUserPgError(err)
	}

	return result, nil
}

// FindCredentials はログイン検証用にパスワードハッシュを含む情報を取得します。
func (r *UserRepository) FindCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var creds auth.Credentials
	err := exec.QueryRow(ctx, `
        SELECT u.id, u.email, r.name, u.password_hash
          FROM users u
          JOIN app_role r ON r.id = u.role_id
         WHERE u.email = $1
    `, email).Scan(&creds.UserID, &creds.Email, &creds.RoleName, &creds.PasswordHash)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return &creds, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u          user.User
		createdAt  sql.NullTime
		employeeID sql.NullInt64
	)

	if err := row.Scan(&u.ID, &u.Email, &u.RoleID, &u.RoleName, &createdAt, &employeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	if createdAt.Valid {
		t := createdAt.Time.UTC()
		u.CreatedAt = &t
	}
	u.EmployeeID = int64Ptr(employeeID)
	return &u, nil
}

func translateUserPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrUserNotFound
	}

	code, constraint, ok := pgdb.ConstraintName(err)
	if ok {
		switch code {
		case pgdb.UniqueViolationCode:
			switch constraint {
			case usersEmployeeUniqueConstraint:
				return fmt.Errorf("%w: %w", user.ErrEmployeeAlreadyLinked, err)
			case usersEmailUniqueConstraint, "":
				return fmt.Errorf("%w: %w", user.ErrEmailAlreadyExists, err)
			}
		case pgdb.ForeignKeyViolationCode:
			switch constraint {
			case usersEmployeeForeignKeyConstraint:
				return fmt.Errorf("%w: %w", user.ErrEmployeeReferenceMissing, err)
			case usersRoleForeignKeyConstraint:
				return fmt.Errorf("%w: %w", user.ErrInvalidRole, err)
			}
		}
	}

	return pgdb.Classify(err)
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
