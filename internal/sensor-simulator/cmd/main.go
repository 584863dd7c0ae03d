package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/firewatch/firewatch/internal/config"
	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/model"
	sensorSimulator "github.com/firewatch/firewatch/internal/sensor-simulator"
	"github.com/firewatch/firewatch/pkg/mqttbus"
)

func main() {
	zoneID := flag.String("zone-id", "room-a", "zone this gateway simulates")
	configPath := flag.String("config", "config/firewatch.yaml", "deployment config path")
	host := flag.String("mqtt-host", "localhost", "MQTT broker host")
	port := flag.Int("mqtt-port", 1883, "MQTT broker port")
	user := flag.String("mqtt-user", "guest", "MQTT username")
	pass := flag.String("mqtt-password", "guest", "MQTT password")
	interval := flag.Duration("interval", time.Second, "publish interval")
	seed := flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	flag.Parse()

	log := logger.Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var channels []model.SensorChannel
	for _, z := range cfg.Zones {
		if z.ID == *zoneID {
			channels = z.Channels
		}
	}
	if len(channels) == 0 {
		log.Fatalf("zone %q has no channels in %s", *zoneID, *configPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	busCfg := &mqttbus.Config{
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *pass,
		ClientID: fmt.Sprintf("SensorSim-%s", *zoneID),
	}
	client, err := mqttbus.NewConn(ctx, busCfg)
	if err != nil {
		log.Fatal(err)
	}

	publisher := mqttbus.NewPublisher(client, "sensor/data")
	consumer := mqttbus.NewConsumer(client, "control/#", nil)
	generator := sensorSimulator.NewDataGenerator(channels, *seed)

	sim := sensorSimulator.NewZoneSimulator(consumer, publisher, generator, *zoneID, channels)

	log.Infof("simulating zone %s with %d channels every %s", *zoneID, len(channels), *interval)
	sim.Start(ctx, *interval)
}
