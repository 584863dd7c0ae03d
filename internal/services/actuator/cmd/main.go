package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	pb "github.com/firewatch/firewatch/grpc/gen/go/actuatorpb"
	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/services/actuator"
	"github.com/firewatch/firewatch/pkg/mqttbus"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if lvl, ok := logger.ParseLogLevel(env("LOG_LEVEL", "info")); ok {
		logger.SetLevel(lvl)
	}
	log := logger.Logger()

	zones := strings.Split(env("ACTUATOR_ZONES", "room-a,room-b"), ",")
	for i := range zones {
		zones[i] = strings.TrimSpace(zones[i])
	}

	mqttCfg := &mqttbus.Config{
		Host:     env("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     env("MQTT_USER", "guest"),
		Password: env("MQTT_PASSWORD", "guest"),
		ClientID: fmt.Sprintf("Actuator-%s", env("HOSTNAME", "local")),
	}
	client, err := mqttbus.NewConn(ctx, mqttCfg)
	if err != nil {
		log.Fatalf("MQTT connect failed: %v", err)
	}
	defer mqttbus.CloseConn(client)

	publisherFactory := func(topic string) mqttbus.IPublisher {
		return mqttbus.NewPublisher(client, topic)
	}

	addr := ":" + env("GRPC_PORT", "50051")
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen %s: %v", addr, err)
	}
	grpcServer := grpc.NewServer()
	pb.RegisterActuatorServer(grpcServer, actuator.NewGrpcHandler(publisherFactory, zones))

	go func() {
		log.Infof("actuator service gRPC %s, zones=%v", addr, zones)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("gRPC serve error: %v", err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	log.Info("shutting down...")
	grpcServer.GracefulStop()
	cancel()
	time.Sleep(300 * time.Millisecond)
}
