// Package failure はディレクトリ操作が返却する失敗種別を定義します。
//
// 各ドメインパッケージのセンチネルエラーはここで定義した種別をラップするため、
// 呼び出し側は errors.Is で種別を判定できます。
package failure

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound は参照された ID が存在しない場合の種別です。
	ErrNotFound = errors.New("not found")
	// ErrConstraintViolation は一意制約・外部キー制約違反の種別です。
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrInvalidRole は未知のロール名が指定された場合の種別です。
	ErrInvalidRole = errors.New("invalid role")
	// ErrConnectionFailure はストレージへ到達できない場合の種別です。呼び出し側で再試行できます。
	ErrConnectionFailure = errors.New("connection failure")
	// ErrQueryFailure はクエリ不正や想定外のストレージエラーの種別です。
	ErrQueryFailure = errors.New("query failure")
	// ErrUnauthenticated は認証済みセッションが無い場合の種別です。
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidArgument は入力形式が不正な場合の種別です。
	ErrInvalidArgument = errors.New("invalid argument")
)

var kinds = []error{
	ErrNotFound,
	ErrConstraintViolation,
	ErrInvalidRole,
	ErrConnectionFailure,
	ErrQueryFailure,
	ErrUnauthenticated,
	ErrInvalidArgument,
}

// Wrap は err を kind でラップします。err が既にいずれかの種別を持つ場合はそのまま返します。
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// KindOf は err が属する種別を返します。該当しない場合は nil です。
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// sentinel は利用者へそのまま返してよいドメインのセンチネルエラーです。
type sentinel struct {
	text string
	kind error
}

func (e *sentinel) Error() string { return e.text + ": " + e.kind.Error() }

func (e *sentinel) Unwrap() error { return e.kind }

// Define は kind に属するドメインのセンチネルエラーを定義します。
// Message はラップされた原因ではなく、このエラーの文言を利用者向けに返します。
func Define(text string, kind error) error {
	return &sentinel{text: text, kind: kind}
}

// Message は err のうち利用者へ返してよい文言を返します。
// ストレージ由来の原因 (SQL やドライバーのメッセージ) は含めません。
func Message(err error) string {
	if err == nil {
		return ""
	}
	var s *sentinel
	if errors.As(err, &s) {
		return s.Error()
	}
	// 入力不正はリクエスト自身の内容なのでそのまま返す。
	if errors.Is(err, ErrInvalidArgument) {
		return err.Error()
	}
	if kind := KindOf(err); kind != nil {
		return kind.Error()
	}
	return "internal error"
}

// Retryable は呼び出し側が同じ入力で再試行してよい失敗かを返します。
func Retryable(err error) bool {
	return errors.Is(err, ErrConnectionFailure)
}
