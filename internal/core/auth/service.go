// Package auth はログイン・ログアウトによるセッションゲートの切り替えを扱います。
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
	"github.com/ogurasousui/staff-directory/internal/core/session"
)

// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しない場合に返却されます。
var ErrInvalidCredentials = failure.Define("auth: invalid credentials", failure.ErrUnauthenticated)

// Credentials はログイン検証に必要なユーザー情報です。
type Credentials struct {
	UserID       int64
	Email        string
	RoleName     string
	PasswordHash string
}

// CredentialRepository はメールアドレスから認証情報を引きます。
type CredentialRepository interface {
	FindCredentials(ctx context.Context, email string) (*Credentials, error)
}

// LoginInput はログイン時の入力です。
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult はログイン成功時に払い出されるセッションです。
type LoginResult struct {
	Token    string
	Identity session.Identity
}

// UseCase は認証ユースケースの公開インターフェースです。
type UseCase interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (session.Identity, error)
}

// Service は UseCase の実装です。
type Service struct {
	creds CredentialRepository
	store session.Store
}

// NewService は Service を生成します。
func NewService(creds CredentialRepository, store session.Store) *Service {
	return &Service{creds: creds, store: store}
}

// Login は資格情報を検証し、新しいセッショントークンを発行します。
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	creds, err := s.creds.FindCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, failure.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// パスワード未設定のアカウントはログイン不可。
	if creds.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	identity := session.Identity{UserID: creds.UserID, Email: creds.Email, RoleName: creds.RoleName}
	token, err := s.store.Create(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("auth: create session: %w", err)
	}

	return &LoginResult{Token: token, Identity: identity}, nil
}

// Logout はセッションを破棄します。未知のトークンは何もしません。
func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	if err := s.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("auth: delete session: %w", err)
	}
	return nil
}

// Resolve はトークンに対応する Identity を返します。
func (s *Service) Resolve(ctx context.Context, token string) (session.Identity, error) {
	if strings.TrimSpace(token) == "" {
		return session.Identity{}, session.ErrSessionNotFound
	}
	return s.store.Lookup(ctx, token)
}
