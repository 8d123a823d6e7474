package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var (
	localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1(:\d{1,5})?$`)
)

func IPIsLocal(ipAddr string) bool {
	// used in local development ?
	if strings.HasPrefix(ipAddr, "127.0.0.1") || strings.HasPrefix(ipAddr, "[::1]") || ipAddr == "::1" {
		return true
	}

	// user within docker container ?
	return localDockerIpRegex.MatchString(ipAddr)
}

// TrustedProxies is the set of peers allowed to name the client in
// X-Real-Ip / X-Forwarded-For. The zero value trusts nobody.
type TrustedProxies []*net.IPNet

// ParseTrustedProxies accepts CIDRs ("10.0.0.0/8") and bare addresses.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %s is invalid", entry)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			proxies = append(proxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %s is invalid: %w", entry, err)
		}
		proxies = append(proxies, ipNet)
	}
	return proxies, nil
}

func (p TrustedProxies) Contains(ipAddr string) bool {
	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}
	ip := net.ParseIP(ipAddr)
	if ip == nil {
		return false
	}
	for _, ipNet := range p {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the client address. Proxy headers are honored only when the
// direct peer is a trusted proxy, otherwise the connection address is used.
func (p TrustedProxies) ClientIP(r *http.Request) (string, error) {
	ipAddr := r.RemoteAddr
	if p.Contains(r.RemoteAddr) {
		if fromHeaders := proxiedIP(r); fromHeaders != "" {
			ipAddr = fromHeaders
		}
	}
	return normalizeIP(ipAddr)
}

// ReadUserIP returns the client address, preferring proxy headers. The headers
// are client controlled, so the result is fit for logs only; anything keyed on
// the client (rate limiting) goes through TrustedProxies.ClientIP.
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := proxiedIP(r)
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}
	return normalizeIP(ipAddr)
}

func proxiedIP(r *http.Request) string {
	ipAddr := strings.TrimSpace(r.Header.Get("X-Real-Ip"))
	if ipAddr == "" {
		// first hop is the client
		ipAddr = strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0])
	}
	return ipAddr
}

func normalizeIP(ipAddr string) (string, error) {
	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}

	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}

	if net.ParseIP(ipAddr) == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}

	return ipAddr, nil
}
