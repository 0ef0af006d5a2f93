package directoryv1

import (
	"context"

	"google.golang.org/grpc"
)

// 完全修飾メソッド名です。
const (
	EmployeeService_ListEmployees_FullMethodName  = "/directory.v1.EmployeeService/ListEmployees"
	EmployeeService_GetEmployee_FullMethodName    = "/directory.v1.EmployeeService/GetEmployee"
	EmployeeService_CreateEmployee_FullMethodName = "/directory.v1.EmployeeService/CreateEmployee"
	EmployeeService_UpdateEmployee_FullMethodName = "/directory.v1.EmployeeService/UpdateEmployee"
	EmployeeService_DeleteEmployee_FullMethodName = "/directory.v1.EmployeeService/DeleteEmployee"

	UserService_ListUsersExtended_FullMethodName = "/directory.v1.UserService/ListUsersExtended"
	UserService_GetUser_FullMethodName           = "/directory.v1.UserService/GetUser"
	UserService_CreateUser_FullMethodName        = "/directory.v1.UserService/CreateUser"
	UserService_UpdateUser_FullMethodName        = "/directory.v1.UserService/UpdateUser"
	UserService_LinkEmployee_FullMethodName      = "/directory.v1.UserService/LinkEmployee"
	UserService_ListRoles_FullMethodName         = "/directory.v1.UserService/ListRoles"

	AuthService_Login_FullMethodName  = "/directory.v1.AuthService/Login"
	AuthService_Logout_FullMethodName = "/directory.v1.AuthService/Logout"
)

// EmployeeServiceServer は directory.v1.EmployeeService のサーバー実装が満たすインターフェースです。
type EmployeeServiceServer interface {
	ListEmployees(context.Context, *ListEmployeesRequest) (*ListEmployeesResponse, error)
	GetEmployee(context.Context, *GetEmployeeRequest) (*GetEmployeeResponse, error)
	CreateEmployee(context.Context, *CreateEmployeeRequest) (*CreateEmployeeResponse, error)
	UpdateEmployee(context.Context, *UpdateEmployeeRequest) (*UpdateEmployeeResponse, error)
	DeleteEmployee(context.Context, *DeleteEmployeeRequest) (*DeleteEmployeeResponse, error)
}

// UserServiceServer は directory.v1.UserService のサーバー実装が満たすインターフェースです。
type UserServiceServer interface {
	ListUsersExtended(context.Context, *ListUsersExtendedRequest) (*ListUsersExtendedResponse, error)
	GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error)
	CreateUser(context.Context, *CreateUserRequest) (*CreateUserResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UpdateUserResponse, error)
	LinkEmployee(context.Context, *LinkEmployeeRequest) (*LinkEmployeeResponse, error)
	ListRoles(context.Context, *ListRolesRequest) (*ListRolesResponse, error)
}

// AuthServiceServer は directory.v1.AuthService のサーバー実装が満たすインターフェースです。
type AuthServiceServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
}

// unaryHandler はリクエストをデコードし、インターセプター経由で call を呼び出す MethodHandler を作ります。
func unaryHandler[S any, Req any, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// EmployeeService_ServiceDesc は directory.v1.EmployeeService のサービス記述子です。
var EmployeeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "directory.v1.EmployeeService",
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListEmployees", Handler: unaryHandler(EmployeeService_ListEmployees_FullMethodName, EmployeeServiceServer.ListEmployees)},
		{MethodName: "GetEmployee", Handler: unaryHandler(EmployeeService_GetEmployee_FullMethodName, EmployeeServiceServer.GetEmployee)},
		{MethodName: "CreateEmployee", Handler: unaryHandler(EmployeeService_CreateEmployee_FullMethodName, EmployeeServiceServer.CreateEmployee)},
		{MethodName: "UpdateEmployee", Handler: unaryHandler(EmployeeService_UpdateEmployee_FullMethodName, EmployeeServiceServer.UpdateEmployee)},
		{MethodName: "DeleteEmployee", Handler: unaryHandler(EmployeeService_DeleteEmployee_FullMethodName, EmployeeServiceServer.DeleteEmployee)},
	},
	Streams: []grpc.StreamDesc{},
}

// UserService_ServiceDesc は directory.v1.UserService のサービス記述子です。
var UserService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "directory.v1.UserService",
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListUsersExtended", Handler: unaryHandler(UserService_ListUsersExtended_FullMethodName, UserServiceServer.ListUsersExtended)},
		{MethodName: "GetUser", Handler: unaryHandler(UserService_GetUser_FullMethodName, UserServiceServer.GetUser)},
		{MethodName: "CreateUser", Handler: unaryHandler(UserService_CreateUser_FullMethodName, UserServiceServer.CreateUser)},
		{MethodName: "UpdateUser", Handler: unaryHandler(UserService_UpdateUser_FullMethodName, UserServiceServer.UpdateUser)},
		{MethodName: "LinkEmployee", Handler: unaryHandler(UserService_LinkEmployee_FullMethodName, UserServiceServer.LinkEmployee)},
		{MethodName: "ListRoles", Handler: unaryHandler(UserService_ListRoles_FullMethodName, UserServiceServer.ListRoles)},
	},
	Streams: []grpc.StreamDesc{},
}

// AuthService_ServiceDesc は directory.v1.AuthService のサービス記述子です。
var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "directory.v1.AuthService",
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unaryHandler(AuthService_Login_FullMethodName, AuthServiceServer.Login)},
		{MethodName: "Logout", Handler: unaryHandler(AuthService_Logout_FullMethodName, AuthServiceServer.Logout)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterEmployeeServiceServer は EmployeeService を登録します。
func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeService_ServiceDesc, srv)
}

// RegisterUserServiceServer は UserService を登録します。
func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserService_ServiceDesc, srv)
}

// RegisterAuthServiceServer は AuthService を登録します。
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}
