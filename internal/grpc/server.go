package grpc

import (
	"context"
	"log/slog"
	"math"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/mr1hm/go-disaster-alerts/internal/geo"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
	"github.com/mr1hm/go-disaster-alerts/internal/source"
)

type Server struct {
	src           source.Source
	broadcaster   *proximity.Broadcaster
	alertRadiusKm float64
	grpcServer    *grpc.Server
	health        *health.Server
}

func NewServer(src source.Source, broadcaster *proximity.Broadcaster, alertRadiusKm float64) *Server {
	if alertRadiusKm <= 0 {
		alertRadiusKm = proximity.AlertRadiusKm
	}
	s := &Server{
		src:           src,
		broadcaster:   broadcaster,
		alertRadiusKm: alertRadiusKm,
		grpcServer:    grpc.NewServer(),
		health:        health.NewServer(),
	}
	s.grpcServer.RegisterService(&AlertServiceDesc, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	slog.Info("gRPC server listening", "addr", addr)
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func (s *Server) GetAlert(ctx context.Context, req *GetAlertRequest) (*models.DisasterAlert, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	a := s.src.GetAlertByID(ctx, req.ID)
	if a == nil {
		return nil, status.Errorf(codes.NotFound, "alert not found: %s", req.ID)
	}
	return a, nil
}

func (s *Server) ListNearbyAlerts(ctx context.Context, req *ListNearbyAlertsRequest) (*ListNearbyAlertsResponse, error) {
	origin := models.Coordinates{Latitude: req.Latitude, Longitude: req.Longitude}
	if !origin.Valid() {
		return nil, status.Error(codes.InvalidArgument, "coordinates out of range")
	}
	radius := req.RadiusKm
	if radius == 0 {
		radius = s.alertRadiusKm
	}
	if radius < 0 || math.IsNaN(radius) {
		return nil, status.Error(codes.InvalidArgument, "radius must not be negative")
	}

	alerts := proximity.SortBySeverityThenRecency(s.src.GetAlertsNearLocation(ctx, origin.Latitude, origin.Longitude, radius))
	resp := &ListNearbyAlertsResponse{
		Alerts: make([]NearbyAlert, len(alerts)),
	}
	for i, a := range alerts {
		d := geo.Distance(origin, a.Location.Coordinates)
		resp.Alerts[i] = NearbyAlert{Alert: a, DistanceKm: math.Round(d*10) / 10, Distance: geo.DistanceDescription(d)}
	}
	return resp, nil
}

func (s *Server) StreamWarnings(req *StreamWarningsRequest, stream WarningStream) error {
	if req.Type != "" {
		if _, ok := models.ParseDisasterType(string(req.Type)); !ok {
			return status.Errorf(codes.InvalidArgument, "unsupported type: %s", req.Type)
		}
	}
	if req.MinSeverity != "" {
		if _, ok := models.ParseAlertSeverity(string(req.MinSeverity)); !ok {
			return status.Errorf(codes.InvalidArgument, "unsupported severity: %s", req.MinSeverity)
		}
	}

	id, ch := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(id)

	slog.Info("client subscribed to warning stream", "subscriber_id", id)

	for {
		select {
		case <-stream.Context().Done():
			slog.Info("client disconnected from warning stream", "subscriber_id", id)
			return nil
		case w, ok := <-ch:
			if !ok {
				return nil
			}

			filtered := filterWarning(w, req)
			if filtered == nil {
				continue
			}
			if err := stream.Send(filtered); err != nil {
				slog.Error("failed to send warning to stream", "error", err, "subscriber_id", id)
				return err
			}
		}
	}
}

// filterWarning returns w restricted to the alerts req asks for, or nil
// when none are left. w itself is shared with other subscribers and is
// never modified.
func filterWarning(w *proximity.Warning, req *StreamWarningsRequest) *proximity.Warning {
	if req.Type == "" && req.MinSeverity == "" {
		return w
	}

	typ, _ := models.ParseDisasterType(string(req.Type))
	minSev, _ := models.ParseAlertSeverity(string(req.MinSeverity))

	alerts := make([]models.DisasterAlert, 0, len(w.Alerts))
	for _, a := range w.Alerts {
		if typ != "" && a.Type != typ {
			continue
		}
		if minSev != "" && a.Severity.Rank() > minSev.Rank() {
			continue
		}
		alerts = append(alerts, a)
	}
	if len(alerts) == 0 {
		return nil
	}
	return &proximity.Warning{Location: w.Location, Alerts: alerts, At: w.At}
}
