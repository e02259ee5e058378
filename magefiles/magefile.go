//go:build mage

// Package main provides build targets for the ownbox project using Mage.
//
// Usage:
//
//	mage build        Compile the ownbox binary to bin/
//	mage install      Install ownbox to GOPATH/bin
//	mage clean        Remove build artifacts
//	mage test:all     Run all tests
//	mage test:unit    Run tests without the SQLite-backed packages
//	mage test:race    Run all tests with the race detector
//	mage lint         Run golangci-lint
//	mage walk         Build and run the walkthrough with an isolated config
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "ownbox"
	binaryDir  = "bin"
	cmdDir     = "./cmd/ownbox"
	scratchDir = ".ownbox-scratch"
)

// Build compiles the ownbox binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts and the walkthrough scratch directory.
func Clean() error {
	for _, dir := range []string{binaryDir, scratchDir} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Walk builds the binary and runs the full walkthrough against a scratch
// config and data directory, then prints the journal.
func Walk() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)
	dirs := []string{
		"--config-dir", filepath.Join(scratchDir, "config"),
		"--data-dir", filepath.Join(scratchDir, "data"),
	}
	if err := sh.RunV(bin, append(dirs, "walk")...); err != nil {
		return err
	}
	return sh.RunV(bin, append(dirs, "journal", "--limit", "20")...)
}
