package influxdb_test

import (
	"context"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"powerwall-monitor/internal/infrastructure/config"
	"powerwall-monitor/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for the local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		URL:    "http://127.0.0.1:8086",
		Token:  "powerwall-dev-token",
		Org:    "home",
		Bucket: "powerwall",
	}
}

// skipIfNoInfluxDB skips the test if InfluxDB is not running locally.
func skipIfNoInfluxDB(t *testing.T) {
	t.Helper()
	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	client.Close()
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // Non-existent port

	_, err := influxdb.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error for invalid URL")
	}
}

func TestConnect(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestWritePoints(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	now := time.Now()
	power := influxdb2.NewPoint("power",
		nil,
		map[string]interface{}{"grid": 1500, "battery": -300, "solar": 801, "home": 2000},
		now,
	)
	battery := influxdb2.NewPoint("battery",
		nil,
		map[string]interface{}{"level": 88},
		now,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.WritePoints(ctx, power, battery); err != nil {
		t.Errorf("WritePoints() error = %v", err)
	}
}

func TestWritePoints_Empty(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	// Zero points is a no-op, not an error.
	if err := client.WritePoints(context.Background()); err != nil {
		t.Errorf("WritePoints() with no points error = %v", err)
	}
}

func TestWritePoints_Cancelled(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	point := influxdb2.NewPoint("power",
		nil,
		map[string]interface{}{"grid": 0},
		time.Now(),
	)

	if err := client.WritePoints(ctx, point); err == nil {
		t.Error("WritePoints() should return error for cancelled context")
	}
}
