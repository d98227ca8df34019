package main

import (
	"context"
	"log/slog"
	"net"

	"github.com/mike7019/Masajes-sub000/libs/config"
	"github.com/mike7019/Masajes-sub000/libs/grpcx"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/grpcserver"
)

func startGrpcServer(ctx context.Context, logger *slog.Logger, svc grpcserver.Service) error {
	port, err := config.Port("GRPC_PORT", "9093")
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	srv := grpcx.NewServer(logger)
	grpcserver.Register(srv, svc, logger)

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	return nil
}
