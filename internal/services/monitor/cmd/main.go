package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/firewatch/firewatch/internal/config"
	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/model"
	"github.com/firewatch/firewatch/internal/services/dispatcher"
	"github.com/firewatch/firewatch/internal/services/monitor"
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

	cfg, err := config.Load(env("CONFIG_PATH", "/app/config/firewatch.yaml"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	mqttCfg := &mqttbus.Config{
		Host:     env("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     env("MQTT_USER", "guest"),
		Password: env("MQTT_PASSWORD", "guest"),
		ClientID: fmt.Sprintf("Monitor-%s", env("HOSTNAME", "local")),
	}
	client, err := mqttbus.NewConn(ctx, mqttCfg)
	if err != nil {
		log.Fatalf("MQTT connect failed: %v", err)
	}
	defer mqttbus.CloseConn(client)

	router, err := dispatcher.NewActuatorRouter(ctx,
		env("ACTUATOR_GRPC_ADDR_MAP", "room-a=actuator-a:50051,room-b=actuator-b:50051"))
	if err != nil {
		log.Fatalf("actuator router init: %v", err)
	}
	defer router.Close()

	publisher := mqttbus.NewPublisher(client, "telemetry/verdict/all")
	disp, err := dispatcher.NewDispatcher(publisher, router)
	if err != nil {
		log.Fatalf("dispatcher init: %v", err)
	}

	var consumer mqttbus.IConsumer[model.RawSample] = mqttbus.NewConsumer(
		client, env("SENSOR_SUB_TOPIC", "sensor/data/#"), nil)

	svc := monitor.NewService(cfg, consumer, publisher, disp)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	httpAddr := env("HTTP_ADDR", ":9090")
	go func() {
		if err := http.ListenAndServe(httpAddr, mux); err != nil {
			log.Errorf("http server: %v", err)
		}
	}()

	log.Infof("monitor running, zones=%d http=%s", len(cfg.Zones), httpAddr)
	go svc.Start(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	cancel()
}
