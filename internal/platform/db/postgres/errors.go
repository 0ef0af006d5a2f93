package postgres

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
)

// PostgreSQL の SQLSTATE コードです。
const (
	UniqueViolationCode     = "23505"
	ForeignKeyViolationCode = "23503"
	NotNullViolationCode    = "23502"
	CheckViolationCode      = "23514"
)

var connectionStates = map[string]struct{}{
	"57P01": {}, // admin_shutdown
	"57P02": {}, // crash_shutdown
	"57P03": {}, // cannot_connect_now
	"53300": {}, // too_many_connections
}

// Classify は pgx のエラーを failure の種別でラップします。既に種別を持つエラーはそのまま返します。
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if failure.KindOf(err) != nil {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == UniqueViolationCode,
			pgErr.Code == ForeignKeyViolationCode,
			pgErr.Code == NotNullViolationCode,
			pgErr.Code == CheckViolationCode:
			return failure.Wrap(failure.ErrConstraintViolation, err)
		case strings.HasPrefix(pgErr.Code, "08"):
			return failure.Wrap(failure.ErrConnectionFailure, err)
		}
		if _, ok := connectionStates[pgErr.Code]; ok {
			return failure.Wrap(failure.ErrConnectionFailure, err)
		}
		return failure.Wrap(failure.ErrQueryFailure, err)
	}

	if isConnectionError(err) {
		return failure.Wrap(failure.ErrConnectionFailure, err)
	}

	return failure.Wrap(failure.ErrQueryFailure, err)
}

// ConstraintName は制約違反エラーの制約名を返します。
func ConstraintName(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}

func isConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	// 呼び出し元のキャンセルも再試行可能な失敗として扱う。
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	return strings.Contains(err.Error(), "closed pool")
}
