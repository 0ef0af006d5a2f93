package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	directoryv1 "github.com/ogurasousui/staff-directory/internal/adapters/grpc/directoryv1"
	"github.com/ogurasousui/staff-directory/internal/core/auth"
	"github.com/ogurasousui/staff-directory/internal/core/session"
)

// AuthGrpcHandler は AuthService の gRPC 実装です。
type AuthGrpcHandler struct {
	svc auth.UseCase
}

var _ directoryv1.AuthServiceServer = (*AuthGrpcHandler)(nil)

// NewAuthGrpcHandler は AuthGrpcHandler を生成します。
func NewAuthGrpcHandler(svc auth.UseCase) *AuthGrpcHandler {
	return &AuthGrpcHandler{svc: svc}
}

// Login は資格情報を検証してセッショントークンを返します。
func (h *AuthGrpcHandler) Login(ctx context.Context, req *directoryv1.LoginRequest) (*directoryv1.LoginResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := directoryv1.Validate(req); err != nil {
		return nil, toStatusError(err)
	}

	result, err := h.svc.Login(ctx, auth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &directoryv1.LoginResponse{
		Token:    result.Token,
		UserID:   result.Identity.UserID,
		Email:    result.Identity.Email,
		RoleName: result.Identity.RoleName,
	}, nil
}

// Logout はセッショントークンを破棄します。未知のトークンでもエラーにしません。
func (h *AuthGrpcHandler) Logout(ctx context.Context, req *directoryv1.LogoutRequest) (*directoryv1.LogoutResponse, error) {
	token := ""
	if req != nil {
		token = req.Token
	}
	if token == "" {
		token = bearerFromMetadata(ctx)
	}

	if err := h.svc.Logout(ctx, token); err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.LogoutResponse{}, nil
}

func bearerFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get("authorization") {
		if token := session.TokenFromAuthorization(v); token != "" {
			return token
		}
	}
	return ""
}
