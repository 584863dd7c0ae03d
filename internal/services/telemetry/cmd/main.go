package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/services/telemetry"
	"github.com/firewatch/firewatch/pkg/dedup"
	"github.com/firewatch/firewatch/pkg/mqttbus"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	cfg := struct {
		MQTT mqttbus.Config

		InfluxURL    string
		InfluxToken  string
		InfluxOrg    string
		InfluxBucket string

		Topics        []string
		BatchSize     int
		FlushInterval time.Duration

		HTTPPort       int
		ReadinessGrace time.Duration
	}{
		MQTT: mqttbus.Config{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "telemetry-service"),
		},

		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "firewatch"),
		InfluxBucket: envStr("INFLUX_BUCKET", "events"),

		Topics: func() []string {
			raw := envStr("TELEMETRY_SUB_TOPICS",
				"telemetry/verdict/#,event/actuationResult/#,event/alert/#,telemetry/reading/#")
			parts := strings.Split(raw, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if s := strings.TrimSpace(p); s != "" {
					out = append(out, s)
				}
			}
			return out
		}(),
		BatchSize:     envInt("WRITE_BATCH_SIZE", 10),
		FlushInterval: time.Duration(envInt("WRITE_FLUSH_INTERVAL_MS", 200)) * time.Millisecond,

		HTTPPort:       envInt("HTTP_PORT", 8080),
		ReadinessGrace: 5 * time.Second,
	}

	if lvl, ok := logger.ParseLogLevel(envStr("LOG_LEVEL", "info")); ok {
		logger.SetLevel(lvl)
	}
	log := logger.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
	defer influx.Close()
	writeAPI := influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket)
	writer := telemetry.NewWriter(writeAPI)

	mqttClient, err := mqttbus.NewConn(ctx, &cfg.MQTT)
	if err != nil {
		log.Fatalf("mqtt connection error: %v", err)
	}
	defer mqttbus.CloseConn(mqttClient)

	mux := http.NewServeMux()
	mux.Handle("/healthz", telemetry.NewHealthHandler(mqttClient, influx, writer))
	mux.Handle("/readyz", telemetry.NewReadyHandler(mqttClient, influx, writer, 2*time.Second))
	mux.Handle("/events/verdicts/latest",
		telemetry.NewVerdictLatestHandler(influx, cfg.InfluxOrg, cfg.InfluxBucket))
	mux.Handle("/events/readings/latest",
		telemetry.NewReadingLatestHandler(influx, cfg.InfluxOrg, cfg.InfluxBucket))

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Infof("telemetry-svc: HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	h := telemetry.NewMQTTHandler(func(evt telemetry.CommonEvent) {
		writeAPI.WritePoint(telemetry.EventToPoint(evt))
		writer.MarkIngest(evt.EventType)
	})

	// Deduper for the QoS1 topics: redeliveries would double-count events.
	d := dedup.New(10*time.Minute, 20000)

	for _, topic := range cfg.Topics {
		log.Infof("telemetry-svc: subscribing to %s", topic)
		qos := mqttbus.QosFor(topic)
		if token := mqttClient.Subscribe(topic, qos, func(_ mqtt.Client, m mqtt.Message) {
			if mqttbus.QosFor(m.Topic()) == 1 {
				hh := sha256.Sum256(m.Payload())
				if !d.ShouldProcess(hex.EncodeToString(hh[:])) {
					return
				}
			}
			_ = h.Handle("", m)
		}); token.Wait() && token.Error() != nil {
			log.Fatalf("subscribe error on %s: %v", topic, token.Error())
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("telemetry-svc: shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), cfg.ReadinessGrace)
	defer shCancel()
	_ = hs.Shutdown(shCtx)

	time.Sleep(cfg.FlushInterval + 100*time.Millisecond)
}
