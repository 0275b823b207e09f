// Package version exposes build-time version information.
package version

// Version is overridden at build time via
// -ldflags "-X github.com/stenstad/inkwell/internal/version.Version=v1.2.3".
var Version = "dev"
