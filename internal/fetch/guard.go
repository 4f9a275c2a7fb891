package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ErrPrivateHost marks targets that resolve to loopback, link-local or
// RFC 1918 space. Crawl targets arrive from API callers, so a deployment
// that is not on an isolated network should refuse them.
var ErrPrivateHost = errors.New("target resolves to a private or reserved address")

// privateCIDRs are pre-computed at package init to avoid re-parsing on every call.
var privateCIDRs []*net.IPNet

func init() {
	for _, cidr := range []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"100.64.0.0/10",  // CGNAT
		"169.254.0.0/16", // link-local
		"fc00::/7",       // IPv6 ULA
	} {
		_, parsed, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("bad CIDR %q: %v", cidr, err))
		}
		privateCIDRs = append(privateCIDRs, parsed)
	}
}

// ValidateTarget checks that a URL is safe to crawl: http(s) scheme and a
// hostname that does not resolve into private space. This is a fast-path
// check; the authoritative guard is the dialer in NewGuardedTransport.
func ValidateTarget(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("validate %s: %w", rawURL, ErrInvalidURL)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("validate %s: missing hostname", rawURL)
	}

	ips, err := net.LookupHost(host)
	if err != nil {
		return nil, fmt.Errorf("validate %s: dns lookup: %w", rawURL, err)
	}
	for _, ipStr := range ips {
		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}
		if isPrivateIP(ip) {
			return nil, fmt.Errorf("validate %s (%s): %w", rawURL, ipStr, ErrPrivateHost)
		}
	}

	return parsed, nil
}

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, cidr := range privateCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// NewGuardedTransport returns an http.Transport whose DialContext re-checks
// resolved addresses before connecting, preventing DNS rebinding between a
// ValidateTarget call and the actual fetch.
func NewGuardedTransport() *http.Transport {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, fmt.Errorf("guarded dial: invalid address %q: %w", addr, err)
			}

			ips, err := net.DefaultResolver.LookupHost(ctx, host)
			if err != nil {
				return nil, fmt.Errorf("guarded dial: dns lookup %s: %w", host, err)
			}

			for _, ipStr := range ips {
				ip := net.ParseIP(ipStr)
				if ip == nil {
					continue
				}
				if isPrivateIP(ip) {
					return nil, fmt.Errorf("guarded dial %s (%s): %w", host, ipStr, ErrPrivateHost)
				}
			}

			// Connect to the first resolved IP directly so the address checked
			// is the address dialed.
			return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0], port))
		},
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}
