// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

// Set at build time via -ldflags.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent is sent on every outbound upstream request.
func UserAgent() string {
	return "relay/" + Version
}
