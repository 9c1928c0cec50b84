//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "usermap"
	binaryDir  = "bin"
	cmdDir     = "./cmd/usermap"

	versionVar = "github.com/mesh-intelligence/usermap/pkg/usermap.Version"
)

// Build compiles the usermap binary to bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := append([]string{"build", "-v"}, ldflags()...)
	args = append(args, "-o", filepath.Join(binaryDir, binaryName), cmdDir)
	return sh.RunV(binGo, args...)
}

// Clean removes build artifacts and the coverage profile.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean", cmdDir)
}

// Install installs usermap into GOBIN (or GOPATH/bin).
func Install() error {
	args := append([]string{"install"}, ldflags()...)
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// ldflags stamps the nearest git tag into usermap.Version. Outside a git
// checkout the compiled-in default is kept.
func ldflags() []string {
	tag, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || tag == "" {
		return nil
	}
	return []string{"-ldflags", "-X " + versionVar + "=" + strings.TrimPrefix(tag, "v")}
}
