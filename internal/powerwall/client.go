package powerwall

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// Endpoint paths on the local gateway.
const (
	loginPath      = "/api/login/Basic"
	aggregatesPath = "/api/meters/aggregates"
	soePath        = "/api/system_status/soe"
)

// defaultTimeout is the per-request timeout when the config supplies none.
const defaultTimeout = 10 * time.Second

// Config contains what the client needs to reach a gateway.
//
// It deliberately mirrors config.PowerwallConfig without importing it, so
// the package stays usable without the monitor's config layer.
type Config struct {
	// Host is the gateway hostname or IP.
	Host string

	// Email and Password are the customer credentials for the local
	// login endpoint.
	Email    string
	Password string

	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration

	// InsecureTLS skips certificate verification. Gateways serve a
	// self-signed certificate, so production deployments set this.
	InsecureTLS bool
}

// Client reads instantaneous telemetry from a Powerwall local gateway.
//
// The gateway exposes a small HTTPS API behind cookie-session auth: login
// once, then poll the meter aggregates and state-of-energy endpoints.
// Sessions expire server-side, so every read transparently re-authenticates
// once on a 401/403 before giving up.
//
// Thread Safety:
//   - All methods are safe for concurrent use, though the collector only
//     ever calls them sequentially.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        Config

	// loginMu serialises re-authentication so concurrent 401s do not
	// stampede the login endpoint.
	loginMu sync.Mutex
}

// Connect builds a client for the configured gateway and verifies it.
//
// It performs the following:
//  1. Creates an HTTP client with a cookie jar (session auth) and, when
//     configured, a TLS transport that accepts the gateway's self-signed cert
//  2. Logs in with the customer credentials
//  3. Verifies the session with one meter poll
//
// Parameters:
//   - cfg: Gateway connection settings
//
// Returns:
//   - *Client: Authenticated client ready for polling
//   - error: Wrapped ErrConnectionFailed if the gateway is unreachable or
//     rejects the credentials; the process must not start the loop
func Connect(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating cookie jar: %w", ErrConnectionFailed, err)
	}

	transport := http.DefaultTransport
	if cfg.InsecureTLS {
		transport = &http.Transport{
			// Gateway certificates are self-signed and bound to an
			// internal name, so verification cannot succeed.
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		}
	}

	c := &Client{
		baseURL: gatewayURL(cfg.Host),
		httpClient: &http.Client{
			Jar:       jar,
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cfg: cfg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := c.login(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// One poll proves the session actually works, not just the login.
	if _, err := c.PowerFlow(ctx); err != nil {
		return nil, fmt.Errorf("%w: verification poll: %w", ErrConnectionFailed, err)
	}

	return c, nil
}

// gatewayURL normalises a host into the gateway base URL.
func gatewayURL(host string) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return strings.TrimRight(host, "/")
	}
	return "https://" + host
}

// PowerFlow returns the instantaneous power snapshot of all four meters.
//
// Parameters:
//   - ctx: Context for timeout/cancellation (aborts an in-flight request)
//
// Returns:
//   - PowerFlow: Site, battery, solar, and load power in watts
//   - error: Wrapped ErrReadFailed; recoverable, the cycle is skipped
func (c *Client) PowerFlow(ctx context.Context) (PowerFlow, error) {
	var agg aggregatesResponse
	if err := c.getJSON(ctx, aggregatesPath, &agg); err != nil {
		return PowerFlow{}, fmt.Errorf("%w: meter aggregates: %w", ErrReadFailed, err)
	}

	return PowerFlow{
		Site:    agg.Site.InstantPower,
		Battery: agg.Battery.InstantPower,
		Solar:   agg.Solar.InstantPower,
		Load:    agg.Load.InstantPower,
	}, nil
}

// BatteryLevel returns the battery charge percentage as reported by the
// gateway. The value is passed through untouched; the gateway is
// authoritative even if it reports outside [0, 100].
//
// Returns:
//   - float64: Charge percentage
//   - error: Wrapped ErrReadFailed; recoverable, the level is treated as absent
func (c *Client) BatteryLevel(ctx context.Context) (float64, error) {
	var soe soeResponse
	if err := c.getJSON(ctx, soePath, &soe); err != nil {
		return 0, fmt.Errorf("%w: state of energy: %w", ErrReadFailed, err)
	}
	return soe.Percentage, nil
}

// login authenticates against the gateway's local login endpoint.
// The session cookie lands in the client's jar.
func (c *Client) login(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{
		Username: "customer",
		Password: c.cfg.Password,
		Email:    c.cfg.Email,
	})
	if err != nil {
		return fmt.Errorf("encoding login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: gateway returned %s", ErrAuthFailed, resp.Status)
	}

	return nil
}

// getJSON fetches a gateway endpoint and decodes the JSON body into out.
//
// An expired session (401/403) triggers exactly one re-login and retry;
// any further rejection is surfaced to the caller.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()

		if err := c.relogin(ctx); err != nil {
			return err
		}

		resp, err = c.get(ctx, path)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %s for %s", resp.Status, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	return resp, nil
}

// relogin re-authenticates under the login mutex.
func (c *Client) relogin(ctx context.Context) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()
	return c.login(ctx)
}
