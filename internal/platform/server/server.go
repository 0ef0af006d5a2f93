package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	directoryv1 "github.com/ogurasousui/staff-directory/internal/adapters/grpc/directoryv1"
	"github.com/ogurasousui/staff-directory/internal/adapters/grpc/handler"
	"github.com/ogurasousui/staff-directory/internal/core/auth"
	"github.com/ogurasousui/staff-directory/internal/core/employee"
	"github.com/ogurasousui/staff-directory/internal/core/user"
	"github.com/ogurasousui/staff-directory/internal/platform/observability"
)

// Services はサーバーへ登録するユースケースの集合です。
type Services struct {
	Employees employee.UseCase
	Users     user.UseCase
	Auth      auth.UseCase
}

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
func New(listenAddr string, svcs Services, logger *slog.Logger, metrics *observability.Metrics, opts ...grpc.ServerOption) *Server {
	interceptors := grpc.ChainUnaryInterceptor(
		handler.RecoveryInterceptor(logger),
		metrics.UnaryServerInterceptor(),
		handler.SessionInterceptor(svcs.Auth, logger),
		handler.LoggingInterceptor(logger),
	)
	srv := grpc.NewServer(append([]grpc.ServerOption{interceptors}, opts...)...)

	directoryv1.RegisterEmployeeServiceServer(srv, handler.NewEmployeeGrpcHandler(svcs.Employees))
	directoryv1.RegisterUserServiceServer(srv, handler.NewUserGrpcHandler(svcs.Users))
	directoryv1.RegisterAuthServiceServer(srv, handler.NewAuthGrpcHandler(svcs.Auth))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	for _, name := range []string{
		directoryv1.EmployeeService_ServiceDesc.ServiceName,
		directoryv1.UserService_ServiceDesc.ServiceName,
		directoryv1.AuthService_ServiceDesc.ServiceName,
	} {
		healthSrv.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     healthSrv,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は与えられたリスナーで待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はヘルスチェックを NOT_SERVING にしてから安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
