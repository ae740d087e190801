package network

import (
	"steinberg/sources/tracing"

	"golang.org/x/net/proxy"
)

func NewEgressDialer(config *EgressConfig, log *tracing.Logger) proxy.Dialer {
	if !config.ProxyEnabled {
		return proxy.Direct
	}

	var auth *proxy.Auth
	if config.ProxyUser != "" {
		auth = &proxy.Auth{User: config.ProxyUser, Password: config.ProxyPass}
	}

	dialer, err := proxy.SOCKS5("tcp", config.ProxyAddress, auth, proxy.Direct)
	if err != nil {
		log.F("Failed to create proxy dialer", tracing.InnerError, err)
	}

	log.I("Egress proxy dialer initialized", tracing.ProxyUrl, config.ProxyAddress)
	return dialer
}
