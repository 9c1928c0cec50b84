//go:build mage

// Package main provides build targets for the usermap project using Mage.
//
// Usage:
//
//	mage build          Compile usermap binary to bin/
//	mage test:all       Run all tests
//	mage test:cover     Run tests with a coverage profile
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install usermap to GOPATH/bin
package main
