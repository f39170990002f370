// Package version exposes the application version reported by the system endpoints.
package version

// Version is overridden at build time via -ldflags "-X .../internal/version.Version=x.y.z".
var Version = "dev"
