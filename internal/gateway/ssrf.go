package gateway

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// blockedHostSuffixes covers internal DNS namespaces that should never be
// reachable through an upstream url= parameter.
var blockedHostSuffixes = []string{
	".internal",
	".local",
	".localhost",
}

// blockedHostnames matches exactly, case-insensitively.
var blockedHostnames = map[string]bool{
	"localhost":        true,
	"metadata":         true,
	"metadata.google.internal": true,
}

// ssrfQueryParams names the query parameters that carry an upstream URL the
// gateway is about to fetch on the caller's behalf and therefore must be
// validated against SSRF before any outbound request is made.
var ssrfQueryParams = []string{"url", "audioUrl", "videoUrl", "watchUrl"}

// isBlockedIP reports whether ip falls in a loopback, private, link-local,
// unspecified, or cloud-metadata range.
func isBlockedIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	// 169.254.169.254 is covered by IsLinkLocalUnicast already, but some
	// cloud metadata endpoints are reachable at other fixed addresses.
	if ip4 := ip.To4(); ip4 != nil && ip4[0] == 100 && ip4[1] >= 64 && ip4[1] <= 127 {
		return true // 100.64.0.0/10, carrier-grade NAT, used by some metadata proxies
	}
	return false
}

// looksNumericOrEncodedIP catches hostnames that are actually an IP address
// spelled to dodge a literal string match: pure-decimal ("2130706433"),
// octal ("0177.0.0.1"), or hex ("0x7f.0.0.1") encodings that net.ParseIP
// also understands once normalized, plus dotted-decimal forms ParseIP
// already handles directly.
func looksNumericOrEncodedIP(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	allNumericParts := true
	parts := strings.Split(host, ".")
	if len(parts) == 0 {
		return false
	}
	for _, p := range parts {
		p = strings.TrimPrefix(strings.ToLower(p), "0x")
		if p == "" {
			allNumericParts = false
			break
		}
		for _, c := range p {
			if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
				allNumericParts = false
				break
			}
		}
		if !allNumericParts {
			break
		}
	}
	return allNumericParts
}

// validateUpstreamHost rejects loopback, private, link-local, and
// metadata-style hosts so a caller cannot use the gateway as an open relay
// into internal infrastructure. Modeled on a canonicalize-then-match
// allow-list approach, adapted here to a deny-list since the upstream set
// (arbitrary social-media CDNs) is unbounded and cannot be enumerated.
func validateUpstreamHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.User != nil {
		return false
	}

	host := u.Hostname()
	if host == "" {
		return false
	}
	lowerHost := strings.ToLower(host)

	if blockedHostnames[lowerHost] {
		return false
	}
	for _, suffix := range blockedHostSuffixes {
		if strings.HasSuffix(lowerHost, suffix) {
			return false
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		return !isBlockedIP(ip)
	}

	if looksNumericOrEncodedIP(host) {
		return false
	}

	if port := u.Port(); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return false
		}
	}

	// Deliberately no DNS resolution here: the upstream set is the open
	// internet's CDN hosts, not a bounded allow-list, so every request
	// would pay a blocking lookup for no real rebinding protection (a
	// hostname can always resolve differently between this check and the
	// eventual fetch). Host/suffix/IP-literal checks above are the line.
	return true
}

// SSRFProtection validates every url/audioUrl/videoUrl/watchUrl query
// parameter on the request against validateUpstreamHost before handing off
// to a delivery handler that will fetch it.
func SSRFProtection() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := r.URL.Query()
			for _, param := range ssrfQueryParams {
				value := query.Get(param)
				if value == "" {
					continue
				}
				if !validateUpstreamHost(value) {
					writeGatewayError(w, http.StatusForbidden, "FORBIDDEN", "The requested upstream host is not permitted.")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
