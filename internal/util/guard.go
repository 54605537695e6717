package util

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"github.com/ppiankov/newsgate/internal/model"
)

// ErrPrivateAddress is returned when a guarded client is asked to reach a
// loopback, private, link-local or otherwise non-public address
var ErrPrivateAddress = errors.New("destination is not a public address")

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// IsPublicAddr reports whether addr is a routable public unicast address
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

// publicOnly is a net.Dialer Control hook. It runs after name resolution
// for every connection, redirects included.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, ErrPrivateAddress)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !IsPublicAddr(addr) {
		return fmt.Errorf("dial %s: %w", address, ErrPrivateAddress)
	}
	return nil
}

// NewPublicHTTPClient is NewHTTPClient for URLs supplied by callers of the
// API: connections to non-public addresses fail with ErrPrivateAddress.
// cfg.AllowPrivateHosts turns the guard off.
func NewPublicHTTPClient(cfg model.HTTPConfig) *http.Client {
	client := NewHTTPClient(cfg)
	if cfg.AllowPrivateHosts {
		return client
	}

	transport := client.Transport.(*http.Transport)
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   publicOnly,
	}
	transport.DialContext = dialer.DialContext

	// Through a proxy the dial goes to the proxy, so the target host is
	// resolved and checked here instead.
	proxy := transport.Proxy
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		proxyURL, err := proxy(req)
		if err != nil || proxyURL == nil {
			return proxyURL, err
		}
		if err := checkHost(req); err != nil {
			return nil, err
		}
		return proxyURL, nil
	}
	return client
}

func checkHost(req *http.Request) error {
	host := req.URL.Hostname()
	addrs, err := net.DefaultResolver.LookupNetIP(req.Context(), "ip", host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, addr := range addrs {
		if !IsPublicAddr(addr) {
			return fmt.Errorf("%s resolves to %s: %w", host, addr, ErrPrivateAddress)
		}
	}
	return nil
}
