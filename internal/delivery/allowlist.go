package delivery

import "strings"

// signedURLHosts carries platforms whose CDNs issue their own
// time-limited signed URLs; an unregistered url= is accepted for these
// without a registry hit, since the upstream itself enforces expiry.
var signedURLHosts = []string{
	"googlevideo.com",
	"ytimg.com",
	"bilivideo.com",
	"akamaized.net",
}

// thumbnailHosts is the fixed allow-list GET /thumbnail enforces; an
// open proxy to arbitrary hosts is never acceptable for an image sink.
var thumbnailHosts = []string{
	"cdninstagram.com",
	"fbcdn.net",
	"sinaimg.cn",
	"weibocdn.com",
	"pximg.net",
	"tiktokcdn.com",
	"twimg.com",
}

func hostAllowed(host string, allowlist []string) bool {
	host = strings.ToLower(host)
	for _, suffix := range allowlist {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

// isSignedURLHost reports whether host belongs to a platform CDN that
// signs its own URLs with an expiry, making registry membership optional.
func isSignedURLHost(host string) bool {
	return hostAllowed(host, signedURLHosts)
}

// isThumbnailHost reports whether host is on the thumbnail delivery
// allow-list.
func isThumbnailHost(host string) bool {
	return hostAllowed(host, thumbnailHosts)
}
