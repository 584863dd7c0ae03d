package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// ZoneStatus is the shape served to the dashboard gateway.
type ZoneStatus struct {
	ZoneID string `json:"zone_id"`
	Level  string `json:"level"`
	Time   string `json:"time"` // RFC3339
}

type statusQueryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseStatus(r *http.Request, defMin, defLim, defTOms int) statusQueryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return statusQueryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

func buildStatusFlux(bucket string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == "zone_event" and r.event_type == "zone.verdict")
  |> filter(fn: (r) => r._field == "level")
  |> keep(columns: ["_time","_value","zone_id"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, limit)
}

func runStatus(w http.ResponseWriter, r *http.Request, influx influxdb2.Client, org, bucket string, defMin, defLim int) {
	p := parseStatus(r, defMin, defLim, 2000)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
	defer cancel()

	api := influx.QueryAPI(org)
	res, err := api.Query(ctx, buildStatusFlux(bucket, p.Minutes, p.Limit))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Error", "influx-query-error")
		_, _ = w.Write([]byte("[]"))
		return
	}
	defer func() { _ = res.Close() }()

	out := make([]ZoneStatus, 0, p.Limit)
	for res.Next() {
		rec := res.Record()

		level, _ := rec.Value().(string)

		var zoneID string
		if v := rec.ValueByKey("zone_id"); v != nil {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				zoneID = s
			}
		}

		out = append(out, ZoneStatus{
			ZoneID: zoneID,
			Level:  level,
			Time:   rec.Time().UTC().Format(time.RFC3339),
		})
	}
	if res.Err() != nil {
		w.Header().Set("X-Error", "influx-iter-error")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// NewVerdictLatestHandler serves GET /events/verdicts/latest?limit=20[&minutes=1440].
func NewVerdictLatestHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runStatus(w, r, influx, org, bucket, 1440, 20)
	})
}

// ZoneReading is one sensor value row served to the dashboard gateway.
type ZoneReading struct {
	ZoneID string  `json:"zone_id"`
	Sensor string  `json:"sensor"`
	Value  float64 `json:"value"`
	Time   string  `json:"time"` // RFC3339
}

func buildReadingFlux(bucket string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == "zone_event" and r.event_type == "zone.reading")
  |> filter(fn: (r) => r._field != "level" and r._field != "count")
  |> keep(columns: ["_time","_field","_value","zone_id"])
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, limit)
}

// NewReadingLatestHandler serves GET /events/readings/latest?limit=50[&minutes=60].
func NewReadingLatestHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := parseStatus(r, 60, 50, 2000)

		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
		defer cancel()

		api := influx.QueryAPI(org)
		res, err := api.Query(ctx, buildReadingFlux(bucket, p.Minutes, p.Limit))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Error", "influx-query-error")
			_, _ = w.Write([]byte("[]"))
			return
		}
		defer func() { _ = res.Close() }()

		out := make([]ZoneReading, 0, p.Limit)
		for res.Next() {
			rec := res.Record()

			var value float64
			switch v := rec.Value().(type) {
			case float64:
				value = v
			case int64:
				value = float64(v)
			case bool:
				continue // observed flags, not values
			}

			var zoneID string
			if v := rec.ValueByKey("zone_id"); v != nil {
				if s, ok := v.(string); ok {
					zoneID = s
				}
			}
			sensor := rec.Field()
			if strings.HasSuffix(sensor, "_observed") {
				continue
			}

			out = append(out, ZoneReading{
				ZoneID: zoneID,
				Sensor: sensor,
				Value:  value,
				Time:   rec.Time().UTC().Format(time.RFC3339),
			})
		}
		if res.Err() != nil {
			w.Header().Set("X-Error", "influx-iter-error")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
}
