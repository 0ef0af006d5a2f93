// Package session はリクエストスコープの認証済み ID を扱います。
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
)

var (
	// ErrNoSession は認証済み ID がコンテキストに存在しない場合に返却されます。
	ErrNoSession = failure.Define("session", failure.ErrUnauthenticated)
	// ErrSessionNotFound はトークンに対応するセッションが存在しない場合に返却されます。
	ErrSessionNotFound = failure.Define("session: token", failure.ErrUnauthenticated)
)

// Identity は認証済みの呼び出し元を表します。
type Identity struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	RoleName string `json:"role_name"`
}

// Store はセッショントークンと Identity の対応を保持します。
type Store interface {
	Create(ctx context.Context, identity Identity) (string, error)
	Lookup(ctx context.Context, token string) (Identity, error)
	Delete(ctx context.Context, token string) error
}

type identityContextKey struct{}

// ContextWithIdentity は Identity をコンテキストへ格納します。
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext はコンテキストから Identity を取り出します。
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}

// Require は保護された操作の先頭で呼び出し、認証済みでなければ ErrNoSession を返します。
func Require(ctx context.Context) (Identity, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.UserID <= 0 {
		return Identity{}, ErrNoSession
	}
	return identity, nil
}

// IsUnauthenticated は err が認証不足によるものかを返します。
func IsUnauthenticated(err error) bool {
	return errors.Is(err, failure.ErrUnauthenticated)
}

// TokenFromAuthorization は "Bearer <token>" 形式の値からトークンを取り出します。形式が違えば空文字です。
func TokenFromAuthorization(value string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
