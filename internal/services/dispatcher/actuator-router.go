package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	pb "github.com/firewatch/firewatch/grpc/gen/go/actuatorpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// actuatorRouter keeps one gRPC connection per zone.
type actuatorRouter struct {
	mu    sync.RWMutex
	conns map[string]*grpc.ClientConn
	clis  map[string]pb.ActuatorClient
}

var _ ActuatorRouter = (*actuatorRouter)(nil)

// NewActuatorRouter accepts a string like "room-a=host1:50051,room-b=host2:50051".
func NewActuatorRouter(ctx context.Context, mapStr string) (ActuatorRouter, error) {
	ar := &actuatorRouter{
		conns: make(map[string]*grpc.ClientConn),
		clis:  make(map[string]pb.ActuatorClient),
	}

	pairs := strings.Split(mapStr, ",")
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid ACTUATOR_GRPC_ADDR_MAP entry: %q", p)
		}
		zone, addr := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])

		dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		conn, err := grpc.DialContext(
			dctx,
			addr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithReturnConnectionError(),
		)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("dial %s (%s): %w", zone, addr, err)
		}

		ar.mu.Lock()
		ar.conns[zone] = conn
		ar.clis[zone] = pb.NewActuatorClient(conn)
		ar.mu.Unlock()
	}
	return ar, nil
}

func (a *actuatorRouter) Get(zone string) (pb.ActuatorClient, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cli, ok := a.clis[zone]
	return cli, ok
}

func (a *actuatorRouter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.conns {
		if c != nil {
			_ = c.Close()
		}
	}
	a.clis = map[string]pb.ActuatorClient{}
	a.conns = map[string]*grpc.ClientConn{}
}
