// Package types defines the configuration, mapping and survey table types
// shared by the usermap packages, together with the standard errors the CLI
// maps to exit codes.
package types
