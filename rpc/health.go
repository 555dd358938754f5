package rpc

import (
	"net"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/wfunc/minesduel/logger"
)

// ServiceName is the name reported by the gRPC health service.
const ServiceName = "minesduel"

// HealthServer 提供标准的 gRPC 健康检查
type HealthServer struct {
	listener net.Listener
	address  string
	server   *grpc.Server
	health   *health.Server
	started  atomic.Bool
}

func NewHealthServer(addr string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	h := &HealthServer{
		listener: listener,
		address:  listener.Addr().String(),
		server:   grpc.NewServer(),
		health:   health.NewServer(),
	}
	healthpb.RegisterHealthServer(h.server, h.health)
	h.SetServing(false)
	return h, nil
}

func (h *HealthServer) Addr() string {
	return h.address
}

// Start marks the service as serving and begins accepting connections.
func (h *HealthServer) Start() {
	h.SetServing(true)
	h.started.Store(true)
	logger.Log.Infof("gRPC health server listening on %s", h.address)
	go func() {
		if err := h.server.Serve(h.listener); err != nil {
			logger.Log.Errorf("gRPC health server stopped: %v", err)
		}
	}()
}

func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Stop 先报告 NOT_SERVING，再等待进行中的请求结束
func (h *HealthServer) Stop() {
	h.SetServing(false)
	h.health.Shutdown()
	h.server.GracefulStop()
	if !h.started.Load() {
		h.listener.Close()
	}
}
