package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ogurasousui/staff-directory/internal/core/employee"
	pgdb "github.com/ogurasousui/staff-directory/internal/platform/db/postgres"
)

const employeeEmailUniqueConstraint = "employee_email_key"

const employeeColumns = `id, first_name, last_name, email`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// List は全社員を ID 昇順で取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employee
         ORDER BY id
    `)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employee
         WHERE id = $1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// Create は社員を新規作成し、採番された ID を含めて返します。
func (r *EmployeeRepository) Create(ctx context.Context, fields employee.Fields) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employee (first_name, last_name, email)
        VALUES ($1, $2, $3)
        RETURNING `+employeeColumns,
		fields.FirstName,
		fields.LastName,
		nullableString(fields.Email),
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員の 3 項目を置き換えます。対象行が無い場合は ErrEmployeeNotFound です。
func (r *EmployeeRepository) Update(ctx context.Context, id int64, fields employee.Fields) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employee
           SET first_name = $1,
               last_name = $2,
               email = $3
         WHERE id = $4
        RETURNING `+employeeColumns,
		fields.FirstName,
		fields.LastName,
		nullableString(fields.Email),
		id,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employee WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("id %d: %w", id, employee.ErrEmployeeNotFound)
	}
	return nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id        int64
		firstName sql.NullString
		lastName  sql.NullString
		email     sql.NullString
	)

	if err := row.Scan(&id, &firstName, &lastName, &email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	return &employee.Employee{
		ID:        id,
		FirstName: stringPtr(firstName),
		LastName:  stringPtr(lastName),
		Email:     stringPtr(email),
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	if code, constraint, ok := pgdb.ConstraintName(err); ok && code == pgdb.UniqueViolationCode {
		if constraint == employeeEmailUniqueConstraint || constraint == "" {
			return fmt.Errorf("%w: %w", employee.ErrEmailAlreadyExists, err)
		}
	}

	return pgdb.Classify(err)
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
