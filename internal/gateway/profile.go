package gateway

import "strings"

// VercelProfileFunc returns an extractor.ProfileFunc-shaped closure over the
// configured deployment profile name. The actual gating logic (which
// platforms are wrapper-only and therefore disabled under "vercel") lives in
// internal/extractor.Registry; this just turns the config string into the
// boolean predicate that registry expects.
func VercelProfileFunc(profileName string) func() bool {
	isVercel := strings.EqualFold(strings.TrimSpace(profileName), "vercel")
	return func() bool { return isVercel }
}
