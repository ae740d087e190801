package network

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/net/proxy"
)

// NewEgressClient builds the HTTP client used for upstream AI traffic. The
// timeout covers whole requests including streamed bodies, so it is long.
func NewEgressClient(dialer proxy.Dialer, config *EgressConfig) *http.Client {
	dc := func(ctx context.Context, network, address string) (net.Conn, error) {
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, network, address)
		}
		return dialer.Dial(network, address)
	}

	return &http.Client{
		Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		Transport: &http.Transport{
			DialContext:           dc,
			MaxIdleConns:          20,
			IdleConnTimeout:       10 * time.Minute,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 5 * time.Second,
			MaxIdleConnsPerHost:   runtime.GOMAXPROCS(0) + 1,
		},
	}
}
