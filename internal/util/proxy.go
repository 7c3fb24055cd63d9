// Package util provides shared helpers for the websignin tool, currently
// HTTP client proxy wiring.
package util

import (
	"context"
	"net"
	"net/http"
	"net/url"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
)

// SetProxy routes the HTTP client through the given proxy URL. SOCKS5,
// HTTP, and HTTPS schemes are supported; an empty or unparseable URL leaves
// the client untouched.
func SetProxy(proxyRawURL string, httpClient *http.Client) *http.Client {
	if proxyRawURL == "" {
		return httpClient
	}
	proxyURL, err := url.Parse(proxyRawURL)
	if err != nil {
		log.Warnf("unparseable proxy URL %q: %v", proxyRawURL, err)
		return httpClient
	}

	var transport *http.Transport
	switch proxyURL.Scheme {
	case "socks5":
		var auth *proxy.Auth
		if proxyURL.User != nil {
			password, _ := proxyURL.User.Password()
			auth = &proxy.Auth{User: proxyURL.User.Username(), Password: password}
		}
		dialer, errSOCKS5 := proxy.SOCKS5("tcp", proxyURL.Host, auth, proxy.Direct)
		if errSOCKS5 != nil {
			log.Errorf("create SOCKS5 dialer failed: %v", errSOCKS5)
			return httpClient
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	case "http", "https":
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	default:
		log.Warnf("unsupported proxy scheme %q", proxyURL.Scheme)
	}

	if transport != nil {
		httpClient.Transport = transport
	}
	return httpClient
}
