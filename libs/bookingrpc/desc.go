// Package bookingrpc is the gRPC contract of booking-service. Messages are
// google.protobuf.Struct values so no generated code is needed on either side.
package bookingrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "masajes.booking.v1.Reservations"

	GetReservationMethod = "/" + ServiceName + "/GetReservation"
	ListSlotsMethod      = "/" + ServiceName + "/ListSlots"
)

// ReservationsServer is implemented by booking-service.
type ReservationsServer interface {
	// GetReservation expects {"id"} and returns the reservation fields.
	GetReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	// ListSlots expects {"date", "service_id"} and returns {"slots": [...]}.
	ListSlots(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func RegisterReservationsServer(s grpc.ServiceRegistrar, srv ReservationsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReservationsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetReservation",
			Handler:    unaryHandler(GetReservationMethod, ReservationsServer.GetReservation),
		},
		{
			MethodName: "ListSlots",
			Handler:    unaryHandler(ListSlotsMethod, ReservationsServer.ListSlots),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "masajes/booking/v1/reservations.proto",
}

type unaryMethod func(ReservationsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ReservationsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ReservationsServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
