package delivery

import "strings"

// modernUserAgent is sent to BiliBili's CDN, which rejects the generic
// httpclient default UA on some edge nodes.
const modernUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// UpstreamHeaders builds the platform-specific request headers the
// delivery proxy must inject before relaying to targetURL, keyed by the
// hostname it was resolved against. YouTube, BiliBili, and Pixiv CDNs all
// reject hotlinked requests without a matching Referer; BiliBili
// additionally wants an explicit Origin and a modern desktop UA.
func UpstreamHeaders(host string) map[string]string {
	host = strings.ToLower(host)

	switch {
	case strings.Contains(host, "bilivideo") || strings.Contains(host, "bilibili"):
		return map[string]string{
			"Referer":    "https://www.bilibili.com/",
			"Origin":     "https://www.bilibili.com",
			"User-Agent": modernUserAgent,
		}
	case strings.Contains(host, "googlevideo") || strings.Contains(host, "ytimg"):
		return map[string]string{
			"Referer": "https://www.youtube.com/",
		}
	case strings.Contains(host, "pximg"):
		return map[string]string{
			"Referer": "https://www.pixiv.net/",
		}
	default:
		return nil
	}
}
