// Package larder holds build metadata for the larder module.
package larder

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/larder/pkg/larder.Version=...".
var Version = "v0.1.0-dev"
