package powerwall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeGateway imitates the local gateway: cookie-session login plus the two
// telemetry endpoints. Sessions can be expired to exercise re-login.
type fakeGateway struct {
	mu         sync.Mutex
	password   string
	logins     int
	session    string
	aggregates aggregatesResponse
	soe        soeResponse

	// breakAggregates forces a malformed body on the aggregates endpoint.
	breakAggregates bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		password: "gw-password",
		aggregates: aggregatesResponse{
			Site:    meterAggregate{InstantPower: 1500.4},
			Battery: meterAggregate{InstantPower: -300.5},
			Solar:   meterAggregate{InstantPower: 800.6},
			Load:    meterAggregate{InstantPower: 2000.0},
		},
		soe: soeResponse{Percentage: 87.6},
	}
}

func (g *fakeGateway) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password != g.password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		g.mu.Lock()
		g.logins++
		g.session = fmt.Sprintf("session-%d", g.logins)
		session := g.session
		g.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "AuthCookie", Value: session, Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(aggregatesPath, func(w http.ResponseWriter, r *http.Request) {
		if !g.authorised(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if g.breakAggregates {
			fmt.Fprint(w, "{not json")
			return
		}
		json.NewEncoder(w).Encode(g.aggregates)
	})
	mux.HandleFunc(soePath, func(w http.ResponseWriter, r *http.Request) {
		if !g.authorised(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(g.soe)
	})
	return mux
}

func (g *fakeGateway) authorised(r *http.Request) bool {
	cookie, err := r.Cookie("AuthCookie")
	if err != nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session != "" && cookie.Value == g.session
}

// expireSession invalidates the current session so the next poll gets 401.
func (g *fakeGateway) expireSession() {
	g.mu.Lock()
	g.session = "expired"
	g.mu.Unlock()
}

func (g *fakeGateway) loginCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.logins
}

func connectTestClient(t *testing.T, g *fakeGateway) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(g.handler())
	t.Cleanup(server.Close)

	client, err := Connect(Config{
		Host:     server.URL,
		Email:    "owner@example.com",
		Password: g.password,
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return client, server
}

func TestConnect(t *testing.T) {
	gateway := newFakeGateway()
	connectTestClient(t, gateway)

	if got := gateway.loginCount(); got != 1 {
		t.Errorf("login count = %d, want 1", got)
	}
}

func TestConnect_BadCredentials(t *testing.T) {
	gateway := newFakeGateway()
	server := httptest.NewServer(gateway.handler())
	defer server.Close()

	_, err := Connect(Config{
		Host:     server.URL,
		Email:    "owner@example.com",
		Password: "wrong",
	})
	if err == nil {
		t.Fatal("Connect() should fail with bad credentials")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Connect() error = %v, want ErrAuthFailed in chain", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(Config{
		Host:     "http://127.0.0.1:59999",
		Password: "whatever",
	})
	if err == nil {
		t.Fatal("Connect() should fail for unreachable gateway")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestPowerFlow(t *testing.T) {
	gateway := newFakeGateway()
	client, _ := connectTestClient(t, gateway)

	flow, err := client.PowerFlow(context.Background())
	if err != nil {
		t.Fatalf("PowerFlow() error = %v", err)
	}

	want := PowerFlow{Site: 1500.4, Battery: -300.5, Solar: 800.6, Load: 2000.0}
	if flow != want {
		t.Errorf("PowerFlow() = %+v, want %+v", flow, want)
	}
}

func TestPowerFlow_MalformedResponse(t *testing.T) {
	gateway := newFakeGateway()
	client, _ := connectTestClient(t, gateway)
	gateway.breakAggregates = true

	_, err := client.PowerFlow(context.Background())
	if err == nil {
		t.Fatal("PowerFlow() should fail on malformed body")
	}
	if !errors.Is(err, ErrReadFailed) {
		t.Errorf("PowerFlow() error = %v, want ErrReadFailed", err)
	}
}

func TestPowerFlow_GatewayDown(t *testing.T) {
	gateway := newFakeGateway()
	client, server := connectTestClient(t, gateway)
	server.Close()

	_, err := client.PowerFlow(context.Background())
	if err == nil {
		t.Fatal("PowerFlow() should fail when the gateway is down")
	}
	if !errors.Is(err, ErrReadFailed) {
		t.Errorf("PowerFlow() error = %v, want ErrReadFailed", err)
	}
}

func TestPowerFlow_ReloginOnExpiredSession(t *testing.T) {
	gateway := newFakeGateway()
	client, _ := connectTestClient(t, gateway)
	gateway.expireSession()

	flow, err := client.PowerFlow(context.Background())
	if err != nil {
		t.Fatalf("PowerFlow() error = %v, want transparent re-login", err)
	}
	if flow.Site != 1500.4 {
		t.Errorf("PowerFlow().Site = %v, want 1500.4", flow.Site)
	}
	if got := gateway.loginCount(); got != 2 {
		t.Errorf("login count = %d, want 2 (initial + re-login)", got)
	}
}

func TestBatteryLevel(t *testing.T) {
	gateway := newFakeGateway()
	client, _ := connectTestClient(t, gateway)

	level, err := client.BatteryLevel(context.Background())
	if err != nil {
		t.Fatalf("BatteryLevel() error = %v", err)
	}
	if level != 87.6 {
		t.Errorf("BatteryLevel() = %v, want 87.6", level)
	}
}

func TestBatteryLevel_OutOfRangePassesThrough(t *testing.T) {
	gateway := newFakeGateway()
	gateway.soe = soeResponse{Percentage: 103.2}
	client, _ := connectTestClient(t, gateway)

	level, err := client.BatteryLevel(context.Background())
	if err != nil {
		t.Fatalf("BatteryLevel() error = %v", err)
	}
	if level != 103.2 {
		t.Errorf("BatteryLevel() = %v, want 103.2 (no clamping)", level)
	}
}

func TestPowerFlow_Cancelled(t *testing.T) {
	gateway := newFakeGateway()
	client, _ := connectTestClient(t, gateway)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.PowerFlow(ctx); err == nil {
		t.Error("PowerFlow() should fail for cancelled context")
	}
}

func TestGatewayURL(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "bare host", host: "192.168.91.1", want: "https://192.168.91.1"},
		{name: "https url", host: "https://192.168.91.1", want: "https://192.168.91.1"},
		{name: "trailing slash", host: "https://192.168.91.1/", want: "https://192.168.91.1"},
		{name: "http url kept", host: "http://127.0.0.1:8043", want: "http://127.0.0.1:8043"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gatewayURL(tt.host); got != tt.want {
				t.Errorf("gatewayURL(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}
