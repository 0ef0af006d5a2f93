package handler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
	"github.com/ogurasousui/staff-directory/internal/core/session"
)

// SessionResolver はトークンから Identity を引きます。
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Identity, error)
}

// RecoveryInterceptor はハンドラ内の panic を Internal エラーに変換します。
func RecoveryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "grpc handler panic",
					slog.String("method", info.FullMethod),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				resp = nil
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor は呼び出しごとにアクセスログを出力します。
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		level := slog.LevelInfo
		switch code {
		case codes.OK, codes.NotFound, codes.AlreadyExists, codes.InvalidArgument, codes.Unauthenticated:
		case codes.Unavailable:
			level = slog.LevelWarn
		default:
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("duration", time.Since(start)),
		}
		if identity, ok := session.IdentityFromContext(ctx); ok {
			attrs = append(attrs, slog.Int64("user_id", identity.UserID))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		logger.LogAttrs(ctx, level, "grpc request", attrs...)
		return resp, err
	}
}

// SessionInterceptor は authorization メタデータのトークンを解決し、Identity をコンテキストへ付与します。
// 認可の判断は各サービスが行うため、ここでは拒否しません。
func SessionInterceptor(resolver SessionResolver, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		token := bearerFromMetadata(ctx)
		if token == "" {
			return handler(ctx, req)
		}

		identity, err := resolver.Resolve(ctx, token)
		switch {
		case err == nil:
			ctx = session.ContextWithIdentity(ctx, identity)
		case failure.Retryable(err):
			logger.WarnContext(ctx, "session store unavailable", slog.String("method", info.FullMethod), slog.Any("error", err))
		}
		return handler(ctx, req)
	}
}
