package employee

import (
	"context"
	"fmt"

	"github.com/ogurasousui/staff-directory/internal/core/session"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	ListEmployees(ctx context.Context) ([]*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	SaveEmployee(ctx context.Context, cmd Command) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// Command は作成と更新を一つの保存処理で扱うための入力です。
type Command interface {
	fields() Fields
}

// CreateEmployeeInput は社員作成時の入力です。Email が nil の場合は NULL で保存します。
type CreateEmployeeInput struct {
	FirstName string
	LastName  string
	Email     *string
}

func (in CreateEmployeeInput) fields() Fields {
	return Fields{FirstName: in.FirstName, LastName: in.LastName, Email: cloneString(in.Email)}
}

// UpdateEmployeeInput は社員更新時の入力です。3 項目を丸ごと置き換えます。
type UpdateEmployeeInput struct {
	ID        int64
	FirstName string
	LastName  string
	Email     *string
}

func (in UpdateEmployeeInput) fields() Fields {
	return Fields{FirstName: in.FirstName, LastName: in.LastName, Email: cloneString(in.Email)}
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID int64
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID int64
}

// ListEmployees は全社員を ID 昇順で返します。0 件はエラーではありません。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}

	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}
	if in.ID <= 0 {
		return nil, fmt.Errorf("id %d: %w", in.ID, ErrEmployeeNotFound)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	return s.SaveEmployee(ctx, in)
}

// UpdateEmployee は社員情報を更新します。存在しない ID で行が作られることはありません。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	return s.SaveEmployee(ctx, in)
}

// SaveEmployee は作成・更新の共通処理です。
func (s *Service) SaveEmployee(ctx context.Context, cmd Command) (*Employee, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}

	var saved *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		var err error
		switch c := cmd.(type) {
		case CreateEmployeeInput:
			saved, err = s.repo.Create(txCtx, c.fields())
		case UpdateEmployeeInput:
			if c.ID <= 0 {
				return fmt.Errorf("id %d: %w", c.ID, ErrEmployeeNotFound)
			}
			saved, err = s.repo.Update(txCtx, c.ID, c.fields())
		default:
			return fmt.Errorf("%T: %w", cmd, ErrUnsupportedCommand)
		}
		return err
	}); err != nil {
		return nil, err
	}

	return saved, nil
}

// DeleteEmployee は社員を削除します。紐づくユーザーの employee_id は外部キーにより NULL になります。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if _, err := session.Require(ctx); err != nil {
		return err
	}
	if in.ID <= 0 {
		return fmt.Errorf("id %d: %w", in.ID, ErrEmployeeNotFound)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
