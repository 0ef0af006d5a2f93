package user

import (
	"context"
	"fmt"
	"time"

	"github.com/ogurasousui/staff-directory/internal/core/session"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

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

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	roles RoleRepository
	clock Clock
	tx    TransactionManager
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	ListUsersExtended(ctx context.Context) ([]*Extended, error)
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error)
	SaveUser(ctx context.Context, cmd Command) (*User, error)
	LinkEmployee(ctx context.Context, in LinkEmployeeInput) (*User, error)
	ListRoles(ctx context.Context) ([]*Role, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, roles RoleRepository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, roles: roles, clock: clock, tx: tx}
}

// Command は作成と更新を一つの保存処理で扱うための入力です。
type Command interface {
	roleName() string
}

// CreateUserInput はユーザー作成時の入力です。
type CreateUserInput struct {
	Email    string
	RoleName string
}

func (in CreateUserInput) roleName() string { return in.RoleName }

// UpdateUserInput はユーザー更新時の入力です。
type UpdateUserInput struct {
	ID       int64
	Email    string
	RoleName string
}

func (in UpdateUserInput) roleName() string { return in.RoleName }

// GetUserInput はユーザー取得時の入力です。
type GetUserInput struct {
	ID int64
}

// LinkEmployeeInput はユーザーと社員の紐づけ入力です。EmployeeID が nil なら紐づけを解除します。
type LinkEmployeeInput struct {
	UserID     int64
	EmployeeID *int64
}

// ListUsersExtended はユーザー・ロール・社員を結合したビューを user_id 昇順で返します。
func (s *Service) ListUsersExtended(ctx context.Context) ([]*Extended, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}

	var rows []*Extended
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListExtended(txCtx)
		if err != nil {
			return err
		}
		rows = found
		return nil
	}); err != nil {
		return nil, fmt.Errorf("list users extended: %w", err)
	}

	if rows == nil {
		rows = []*Extended{}
	}
	return rows, nil
}

// GetUser は ID でユーザーを取得します。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}
	if in.ID <= 0 {
		return nil, fmt.Errorf("id %d: %w", in.ID, ErrUserNotFound)
	}

	var found *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		u, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		found = u
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}

// CreateUser は新しいユーザーを作成します。
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	return s.SaveUser(ctx, in)
}

// UpdateUser はユーザー情報を更新します。
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error) {
	return s.SaveUser(ctx, in)
}

// SaveUser は作成・更新の共通処理です。ロール解決と書き込みは同一トランザクションで行います。
func (s *Service) SaveUser(ctx context.Context, cmd Command) (*User, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, ErrUnsupportedCommand
	}

	roleName := cmd.roleName()
	if !IsKnownRole(roleName) {
		return nil, fmt.Errorf("role %q: %w", roleName, ErrInvalidRole)
	}

	var saved *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		role, err := s.roles.FindByName(txCtx, roleName)
		if err != nil {
			return err
		}

		switch c := cmd.(type) {
		case CreateUserInput:
			saved, err = s.repo.Create(txCtx, Fields{Email: c.Email, RoleID: role.ID}, s.clock.Now())
		case UpdateUserInput:
			if c.ID <= 0 {
				return fmt.Errorf("id %d: %w", c.ID, ErrUserNotFound)
			}
			saved, err = s.repo.Update(txCtx, c.ID, Fields{Email: c.Email, RoleID: role.ID})
		default:
			return fmt.Errorf("%T: %w", cmd, ErrUnsupportedCommand)
		}
		return err
	}); err != nil {
		return nil, err
	}

	return saved, nil
}

// LinkEmployee はユーザーに社員を紐づけます。1 社員につき 1 ユーザーまでです。
func (s *Service) LinkEmployee(ctx context.Context, in LinkEmployeeInput) (*User, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}
	if in.UserID <= 0 {
		return nil, fmt.Errorf("id %d: %w", in.UserID, ErrUserNotFound)
	}
	if in.EmployeeID != nil && *in.EmployeeID <= 0 {
		return nil, fmt.Errorf("employee id %d: %w", *in.EmployeeID, ErrEmployeeReferenceMissing)
	}

	var linked *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		u, err := s.repo.LinkEmployee(txCtx, in.UserID, in.EmployeeID)
		if err != nil {
			return err
		}
		linked = u
		return nil
	}); err != nil {
		return nil, err
	}
	return linked, nil
}

// ListRoles はロール一覧を返します。
func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}

	var roles []*Role
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.roles.List(txCtx)
		if err != nil {
			return err
		}
		roles = found
		return nil
	}); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	if roles == nil {
		roles = []*Role{}
	}
	return roles, nil
}
