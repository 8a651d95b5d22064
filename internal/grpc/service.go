package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
)

const (
	ServiceName = "disasteralerts.v1.AlertService"

	getAlertMethod         = "/" + ServiceName + "/GetAlert"
	listNearbyAlertsMethod = "/" + ServiceName + "/ListNearbyAlerts"
	streamWarningsMethod   = "/" + ServiceName + "/StreamWarnings"
)

type GetAlertRequest struct {
	ID string `json:"id"`
}

type ListNearbyAlertsRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// RadiusKm defaults to the server's alert radius when zero.
	RadiusKm float64 `json:"radiusKm"`
}

type NearbyAlert struct {
	Alert      models.DisasterAlert `json:"alert"`
	DistanceKm float64              `json:"distanceKm"`
	Distance   string               `json:"distance"`
}

type ListNearbyAlertsResponse struct {
	Alerts []NearbyAlert `json:"alerts"`
}

// StreamWarningsRequest filters the warning stream. Empty fields match
// everything.
type StreamWarningsRequest struct {
	Type        models.DisasterType  `json:"type,omitempty"`
	MinSeverity models.AlertSeverity `json:"minSeverity,omitempty"`
}

type AlertServiceServer interface {
	GetAlert(context.Context, *GetAlertRequest) (*models.DisasterAlert, error)
	ListNearbyAlerts(context.Context, *ListNearbyAlertsRequest) (*ListNearbyAlertsResponse, error)
	StreamWarnings(*StreamWarningsRequest, WarningStream) error
}

// WarningStream is the server side of StreamWarnings.
type WarningStream interface {
	Send(*proximity.Warning) error
	grpc.ServerStream
}

type warningServerStream struct {
	grpc.ServerStream
}

func (s *warningServerStream) Send(w *proximity.Warning) error {
	return s.SendMsg(w)
}

func getAlertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAlertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AlertServiceServer).GetAlert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getAlertMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlertServiceServer).GetAlert(ctx, req.(*GetAlertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listNearbyAlertsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListNearbyAlertsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AlertServiceServer).ListNearbyAlerts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listNearbyAlertsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlertServiceServer).ListNearbyAlerts(ctx, req.(*ListNearbyAlertsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func streamWarningsHandler(srv any, stream grpc.ServerStream) error {
	in := new(StreamWarningsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AlertServiceServer).StreamWarnings(in, &warningServerStream{stream})
}

// AlertServiceDesc describes the service for grpc.Server.RegisterService.
// Messages are JSON encoded, so there are no generated stubs.
var AlertServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlertServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAlert", Handler: getAlertHandler},
		{MethodName: "ListNearbyAlerts", Handler: listNearbyAlertsHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamWarnings", Handler: streamWarningsHandler, ServerStreams: true},
	},
	Metadata: "disasteralerts/v1/alerts",
}
