// Package usermap holds build-level metadata for the usermap tool.
package usermap

// Version is the released version of the usermap CLI. Release builds
// overwrite it through -ldflags.
var Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/usermap"
