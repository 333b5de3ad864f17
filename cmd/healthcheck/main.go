// Command healthcheck checks the running liveconfig server for container
// HEALTHCHECK use. It exits non-zero unless /api/v1/health reports both the
// server and its storage as ok.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	defaultAddr  = "127.0.0.1:8080"
	checkTimeout = 2 * time.Second
)

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	url := fmt.Sprintf("http://%s/api/v1/health", normalizeAddr(os.Getenv("LIVECONFIG_LISTEN_ADDR")))
	if err := check(ctx, &http.Client{Timeout: checkTimeout}, url); err != nil {
		fmt.Fprintln(os.Stderr, "unhealthy:", err)
		os.Exit(1)
	}
}

// check fetches url and requires a 200 with status and storage both "ok".
func check(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode health response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("server status %q (HTTP %d)", body.Status, resp.StatusCode)
	}
	if body.Storage != "ok" {
		return fmt.Errorf("storage %q", body.Storage)
	}
	return nil
}

// normalizeAddr points the check at loopback when the server binds every
// interface; the healthcheck runs inside the same container.
func normalizeAddr(raw string) string {
	host, port, err := net.SplitHostPort(raw)
	if raw == "" || err != nil {
		return defaultAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
