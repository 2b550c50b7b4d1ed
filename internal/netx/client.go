// Package netx builds the outbound HTTP client used for Telegram API calls.
// Local and private destinations always bypass the proxy; everything else is
// dialed through SOCKS5 when a proxy is configured.
package netx

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	xproxy "golang.org/x/net/proxy"

	"mediaBot/config"
)

func hostBypassesProxy(host string, noProxy []string) bool {
	host = strings.ToLower(host)
	for _, token := range noProxy {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		if host == token || strings.HasSuffix(host, "."+token) {
			return true
		}
		if ip := net.ParseIP(host); ip != nil {
			if _, cidr, err := net.ParseCIDR(token); err == nil && cidr.Contains(ip) {
				return true
			}
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() {
			return true
		}
	}
	return host == "localhost"
}

// NewHTTPClient returns a client that dials through SOCKS5 when the proxy is
// enabled, except for hosts on the bypass list.
func NewHTTPClient(proxy *config.ProxyConfig, timeout time.Duration) *http.Client {
	baseDialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tr := &http.Transport{
		// The SOCKS dialer below replaces Proxy so HTTP and SOCKS proxying
		// never mix on the same transport.
		Proxy:             nil,
		ForceAttemptHTTP2: true,
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
	}

	tr.DialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
		host, _, _ := net.SplitHostPort(address)
		if !proxy.Enabled() || hostBypassesProxy(host, proxy.NoProxy) {
			return baseDialer.DialContext(ctx, network, address)
		}
		// Keep the hostname intact so it resolves on the SOCKS side.
		socksAddr := strings.TrimPrefix(strings.TrimPrefix(proxy.ProxyURL, "socks5h://"), "socks5://")
		d, err := xproxy.SOCKS5("tcp", socksAddr, nil, baseDialer)
		if err != nil {
			return nil, err
		}
		return d.Dial(network, address)
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}
}
