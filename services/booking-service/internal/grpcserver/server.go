package grpcserver

import (
	"context"
	"log/slog"

	"github.com/mike7019/Masajes-sub000/libs/bookingrpc"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/booking"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service is the part of the booking service exposed over gRPC.
type Service interface {
	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	Slots(ctx context.Context, date, serviceID string) ([]string, error)
	ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error)
}

type server struct {
	svc    Service
	logger *slog.Logger
}

func Register(grpcServer *grpc.Server, svc Service, logger *slog.Logger) {
	bookingrpc.RegisterReservationsServer(grpcServer, &server{svc: svc, logger: logger})
}

func (s *server) GetReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id := in.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	res, err := s.svc.GetReservation(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return bookingrpc.Reservation{
		ID:          res.ID,
		Status:      string(res.Status),
		ServiceID:   res.ServiceID,
		ServiceName: s.serviceName(ctx, res.ServiceID),
		ClientName:  res.ClientName,
		ClientEmail: res.ClientEmail,
		StartAt:     res.StartAt,
		EndAt:       res.EndAt,
	}.Struct()
}

func (s *server) serviceName(ctx context.Context, id string) string {
	services, err := s.svc.ListServices(ctx, false)
	if err != nil {
		s.logger.WarnContext(ctx, "service lookup failed", "err", err, "service_id", id)
		return ""
	}
	for _, svc := range services {
		if svc.ID == id {
			return svc.Name
		}
	}
	return ""
}

func (s *server) ListSlots(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := in.GetFields()
	slots, err := s.svc.Slots(ctx, f["date"].GetStringValue(), f["service_id"].GetStringValue())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	values := make([]any, 0, len(slots))
	for _, slot := range slots {
		values = append(values, slot)
	}
	return structpb.NewStruct(map[string]any{"slots": values})
}

func (s *server) toStatus(ctx context.Context, err error) error {
	kind := booking.KindOf(err)
	var code codes.Code
	switch kind {
	case booking.KindInvalidInput, booking.KindInvalidRange:
		code = codes.InvalidArgument
	case booking.KindNotFound, booking.KindServiceNotFound:
		code = codes.NotFound
	case booking.KindInternal:
		s.logger.ErrorContext(ctx, "grpc call failed", "err", err)
		code = codes.Internal
	default:
		code = codes.FailedPrecondition
	}
	return status.Error(code, string(kind)+": "+booking.MessageOf(err))
}
