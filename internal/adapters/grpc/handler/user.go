package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	directoryv1 "github.com/ogurasousui/staff-directory/internal/adapters/grpc/directoryv1"
	"github.com/ogurasousui/staff-directory/internal/core/user"
)

// UserGrpcHandler は UserService の gRPC 実装です。
type UserGrpcHandler struct {
	svc user.UseCase
}

var _ directoryv1.UserServiceServer = (*UserGrpcHandler)(nil)

// NewUserGrpcHandler は UserGrpcHandler を生成します。
func NewUserGrpcHandler(svc user.UseCase) *UserGrpcHandler {
	return &UserGrpcHandler{svc: svc}
}

// ListUsersExtended は users_extended ビューの内容を返します。
func (h *UserGrpcHandler) ListUsersExtended(ctx context.Context, _ *directoryv1.ListUsersExtendedRequest) (*directoryv1.ListUsersExtendedResponse, error) {
	rows, err := h.svc.ListUsersExtended(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &directoryv1.ListUsersExtendedResponse{Users: directoryv1.FromUsersExtended(rows)}, nil
}

// GetUser はユーザーを取得します。
func (h *UserGrpcHandler) GetUser(ctx context.Context, req *directoryv1.GetUserRequest) (*directoryv1.GetUserResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.svc.GetUser(ctx, user.GetUserInput{ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.GetUserResponse{User: directoryv1.FromUser(found)}, nil
}

// CreateUser はユーザーを作成します。
func (h *UserGrpcHandler) CreateUser(ctx context.Context, req *directoryv1.CreateUserRequest) (*directoryv1.CreateUserResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := directoryv1.Validate(req); err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.svc.CreateUser(ctx, user.CreateUserInput{Email: req.Email, RoleName: req.RoleName})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.CreateUserResponse{User: directoryv1.FromUser(created)}, nil
}

// UpdateUser はユーザーを更新します。
func (h *UserGrpcHandler) UpdateUser(ctx context.Context, req *directoryv1.UpdateUserRequest) (*directoryv1.UpdateUserResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := directoryv1.Validate(req); err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.svc.UpdateUser(ctx, user.UpdateUserInput{ID: req.ID, Email: req.Email, RoleName: req.RoleName})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.UpdateUserResponse{User: directoryv1.FromUser(updated)}, nil
}

// LinkEmployee はユーザーと社員を紐づけます。
func (h *UserGrpcHandler) LinkEmployee(ctx context.Context, req *directoryv1.LinkEmployeeRequest) (*directoryv1.LinkEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	linked, err := h.svc.LinkEmployee(ctx, user.LinkEmployeeInput{UserID: req.UserID, EmployeeID: req.EmployeeID})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.LinkEmployeeResponse{User: directoryv1.FromUser(linked)}, nil
}

// ListRoles はロール一覧を返します。
func (h *UserGrpcHandler) ListRoles(ctx context.Context, _ *directoryv1.ListRolesRequest) (*directoryv1.ListRolesResponse, error) {
	roles, err := h.svc.ListRoles(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &directoryv1.ListRolesResponse{Roles: directoryv1.FromRoles(roles)}, nil
}
