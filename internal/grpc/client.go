package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
)

// Client calls AlertService over any connection, using the JSON codec.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) GetAlert(ctx context.Context, id string) (*models.DisasterAlert, error) {
	out := new(models.DisasterAlert)
	if err := c.conn.Invoke(ctx, getAlertMethod, &GetAlertRequest{ID: id}, out, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListNearbyAlerts(ctx context.Context, req *ListNearbyAlertsRequest) (*ListNearbyAlertsResponse, error) {
	out := new(ListNearbyAlertsResponse)
	if err := c.conn.Invoke(ctx, listNearbyAlertsMethod, req, out, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return out, nil
}

// WarningReceiver is the client side of StreamWarnings.
type WarningReceiver struct {
	stream grpc.ClientStream
}

func (r *WarningReceiver) Recv() (*proximity.Warning, error) {
	w := new(proximity.Warning)
	if err := r.stream.RecvMsg(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (c *Client) StreamWarnings(ctx context.Context, req *StreamWarningsRequest) (*WarningReceiver, error) {
	stream, err := c.conn.NewStream(ctx, &AlertServiceDesc.Streams[0], streamWarningsMethod, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &WarningReceiver{stream: stream}, nil
}
