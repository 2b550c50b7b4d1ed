package config

import (
	"os"
	"strings"
)

// ProxyConfig holds the outbound proxy settings shared by the Telegram
// client and yt-dlp.
type ProxyConfig struct {
	UseProxy bool
	ProxyURL string
	NoProxy  []string
}

// LoadProxyConfig reads the proxy settings from the environment. The proxy
// is off unless USE_PROXY is explicitly "true".
func LoadProxyConfig() *ProxyConfig {
	noProxy := os.Getenv("NO_PROXY")
	if noProxy == "" {
		noProxy = "localhost,127.0.0.1"
	}

	return &ProxyConfig{
		UseProxy: strings.ToLower(os.Getenv("USE_PROXY")) == "true",
		ProxyURL: os.Getenv("PROXY_URL"),
		NoProxy:  strings.Split(noProxy, ","),
	}
}

// Enabled reports whether outbound traffic should go through the proxy.
func (p *ProxyConfig) Enabled() bool {
	return p != nil && p.UseProxy && p.ProxyURL != ""
}

// YtDlpArgs returns the proxy flags forwarded to yt-dlp, if any.
func (p *ProxyConfig) YtDlpArgs() []string {
	if !p.Enabled() {
		return nil
	}
	return []string{"--proxy", p.ProxyURL}
}
