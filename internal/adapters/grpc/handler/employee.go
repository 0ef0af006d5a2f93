package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	directoryv1 "github.com/ogurasousui/staff-directory/internal/adapters/grpc/directoryv1"
	"github.com/ogurasousui/staff-directory/internal/core/employee"
)

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
}

var _ directoryv1.EmployeeServiceServer = (*EmployeeGrpcHandler)(nil)

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// ListEmployees は社員一覧を返します。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, _ *directoryv1.ListEmployeesRequest) (*directoryv1.ListEmployeesResponse, error) {
	employees, err := h.svc.ListEmployees(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &directoryv1.ListEmployeesResponse{Employees: directoryv1.FromEmployees(employees)}, nil
}

// GetEmployee は社員を取得します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *directoryv1.GetEmployeeRequest) (*directoryv1.GetEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.svc.GetEmployee(ctx, employee.GetEmployeeInput{ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.GetEmployeeResponse{Employee: directoryv1.FromEmployee(found)}, nil
}

// CreateEmployee は社員を作成します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *directoryv1.CreateEmployeeRequest) (*directoryv1.CreateEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := directoryv1.Validate(req); err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.svc.CreateEmployee(ctx, employee.CreateEmployeeInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.CreateEmployeeResponse{Employee: directoryv1.FromEmployee(created)}, nil
}

// UpdateEmployee は社員を更新します。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *directoryv1.UpdateEmployeeRequest) (*directoryv1.UpdateEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := directoryv1.Validate(req); err != nil {
		return nil, toStatusError(err)
	}

	updated, err := h.svc.UpdateEmployee(ctx, employee.UpdateEmployeeInput{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.UpdateEmployeeResponse{Employee: directoryv1.FromEmployee(updated)}, nil
}

// DeleteEmployee は社員を削除します。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *directoryv1.DeleteEmployeeRequest) (*directoryv1.DeleteEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: req.ID}); err != nil {
		return nil, toStatusError(err)
	}
	return &directoryv1.DeleteEmployeeResponse{}, nil
}
