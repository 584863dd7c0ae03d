// The dashboard gateway aggregates the cloud-side REST endpoints into one
// payload for the UI. Each upstream sits behind its own circuit breaker and
// keeps a last-good cache, so a flaky backend degrades the dashboard instead
// of emptying it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/firewatch/firewatch/internal/logger"
	"github.com/firewatch/firewatch/internal/services/telemetry"
)

type Payload struct {
	Verdicts []telemetry.ZoneStatus  `json:"verdicts"`
	Readings []telemetry.ZoneReading `json:"readings"`
	Stats    map[string]float64      `json:"stats"`
}

type Upstream struct {
	http *http.Client
}

func NewUpstream(timeoutMs int) *Upstream {
	return &Upstream{
		http: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
	}
}

func (u *Upstream) getJSON(ctx context.Context, url string, out any) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := u.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("GET %s -> %s", url, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func mkCB(name string, fails, openMs, intervalMs int) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: time.Duration(intervalMs) * time.Millisecond,
		Timeout:  time.Duration(openMs) * time.Millisecond,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
	})
}

var (
	verdictCB *gobreaker.CircuitBreaker
	readingCB *gobreaker.CircuitBreaker

	cacheMu          sync.Mutex
	lastGoodVerdicts []telemetry.ZoneStatus
	lastGoodReadings []telemetry.ZoneReading
)

func main() {
	cfg := loadConfig()
	log := logger.Logger()

	verdictCB = mkCB("telemetry-verdicts", cfg.CBFails, cfg.CBOpenMs, cfg.CBIntervalMs)
	readingCB = mkCB("telemetry-readings", cfg.CBFails, cfg.CBOpenMs, cfg.CBIntervalMs)

	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	http.HandleFunc("/dashboard/data", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(cfg.TimeoutMs)*time.Millisecond)
		defer cancel()

		up := NewUpstream(cfg.TimeoutMs)

		var verdicts []telemetry.ZoneStatus
		if res, err := verdictCB.Execute(func() (any, error) {
			var vs []telemetry.ZoneStatus
			if err := up.getJSON(ctx, cfg.TelemetryURL+"/events/verdicts/latest", &vs); err != nil {
				return nil, err
			}
			if len(vs) == 0 {
				return nil, fmt.Errorf("empty verdicts")
			}
			return vs, nil
		}); err == nil {
			verdicts = res.([]telemetry.ZoneStatus)
			cacheMu.Lock()
			lastGoodVerdicts = verdicts
			cacheMu.Unlock()
		} else {
			cacheMu.Lock()
			verdicts = lastGoodVerdicts
			cacheMu.Unlock()
		}

		var readings []telemetry.ZoneReading
		if res, err := readingCB.Execute(func() (any, error) {
			var rs []telemetry.ZoneReading
			if err := up.getJSON(ctx, cfg.TelemetryURL+"/events/readings/latest", &rs); err != nil {
				return nil, err
			}
			if len(rs) == 0 {
				return nil, fmt.Errorf("empty readings")
			}
			return rs, nil
		}); err == nil {
			readings = res.([]telemetry.ZoneReading)
			cacheMu.Lock()
			lastGoodReadings = readings
			cacheMu.Unlock()
		} else {
			cacheMu.Lock()
			readings = lastGoodReadings
			cacheMu.Unlock()
		}

		sort.Slice(readings, func(i, j int) bool {
			if readings[i].ZoneID != readings[j].ZoneID {
				return readings[i].ZoneID < readings[j].ZoneID
			}
			return readings[i].Sensor < readings[j].Sensor
		})

		stats := map[string]float64{}
		if n := len(readings); n > 0 {
			var sum float64
			minv, maxv := readings[0].Value, readings[0].Value
			for _, s := range readings {
				sum += s.Value
				if s.Value < minv {
					minv = s.Value
				}
				if s.Value > maxv {
					maxv = s.Value
				}
			}
			stats["mean"] = sum / float64(n)
			stats["min"] = minv
			stats["max"] = maxv
		}

		resp := Payload{
			Verdicts: verdicts,
			Readings: readings,
			Stats:    stats,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)

		log.Infof("GET /dashboard/data [%dms] cb[verdicts]=%v cb[readings]=%v verdicts=%d readings=%d",
			time.Since(start).Milliseconds(), verdictCB.State(), readingCB.State(),
			len(resp.Verdicts), len(resp.Readings))
	})

	addr := ":" + cfg.Port
	log.Infof("gateway listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
